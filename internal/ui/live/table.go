package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the table layout before the first resize.
func defaultColumns() []table.Column {
	return columnsForWidth(100)
}

// columnsForWidth sizes table columns for the given terminal width.
func columnsForWidth(width int) []table.Column {
	const idWidth = 4
	const statusWidth = 24
	const jobWidth = 13
	const elapsedWidth = 9
	queryWidth := width - idWidth - statusWidth - jobWidth - elapsedWidth - 10
	if queryWidth < 16 {
		queryWidth = 16
	}
	return []table.Column{
		{Title: "ID", Width: idWidth},
		{Title: "Query", Width: queryWidth},
		{Title: "Status", Width: statusWidth},
		{Title: "Job", Width: jobWidth},
		{Title: "Elapsed", Width: elapsedWidth},
	}
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatQueryID(row),
			formatQueryText(row.Query),
			formatStatus(row, noColor),
			formatJobID(row.JobID),
			formatRowDuration(row, now),
		})
	}
	return rows
}
