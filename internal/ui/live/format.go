package live

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"drill/internal/pipeline"
)

// formatQueryID returns the display id for a query row.
func formatQueryID(row QueryRow) string {
	return "Q" + pad2(row.Index+1)
}

// pad2 left-pads a number to two digits when needed.
func pad2(value int) string {
	if value >= 10 {
		return fmtInt(value)
	}
	return "0" + fmtInt(value)
}

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatQueryText truncates query text for display.
func formatQueryText(text string) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return ""
	}
	const limit = 64
	if len(normalized) <= limit {
		return normalized
	}
	return normalized[:limit-3] + "..."
}

// formatStatus renders a status string for a row.
func formatStatus(row QueryRow, noColor bool) string {
	label := statusLabel(row.Status)
	if row.Status == pipeline.QueryFailed && row.Error != "" {
		label = label + ": " + formatQueryText(row.Error)
	}
	return stylizeStatus(label, row.Status, noColor)
}

// statusLabel maps status codes to display labels.
func statusLabel(status pipeline.QueryEventType) string {
	switch status {
	case pipeline.QueryQueued:
		return "queued"
	case pipeline.QueryResearching:
		return "researching"
	case pipeline.QueryPolling:
		return "polling"
	case pipeline.QueryExtracting:
		return "extracting"
	case pipeline.QueryDone:
		return "done"
	case pipeline.QueryFailed:
		return "failed"
	default:
		return string(status)
	}
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row QueryRow, now time.Time) string {
	if !row.FinishedAt.IsZero() && !row.StartedAt.IsZero() {
		return row.FinishedAt.Sub(row.StartedAt).Round(100 * time.Millisecond).String()
	}
	if !row.StartedAt.IsZero() {
		return now.Sub(row.StartedAt).Round(100 * time.Millisecond).String()
	}
	return ""
}

// formatJobID shortens a job id for display.
func formatJobID(jobID string) string {
	const limit = 12
	if len(jobID) <= limit {
		return jobID
	}
	return jobID[:limit-3] + "..."
}

// stylizeStatus applies status coloring when enabled.
func stylizeStatus(text string, status pipeline.QueryEventType, noColor bool) string {
	if noColor {
		return text
	}
	return statusStyle(status).Render(text)
}

// statusStyle selects a style for a given status.
func statusStyle(status pipeline.QueryEventType) lipgloss.Style {
	color := lipgloss.Color("244")
	switch status {
	case pipeline.QueryDone:
		color = lipgloss.Color("42")
	case pipeline.QueryFailed:
		color = lipgloss.Color("196")
	case pipeline.QueryResearching:
		color = lipgloss.Color("33")
	case pipeline.QueryPolling:
		color = lipgloss.Color("39")
	case pipeline.QueryExtracting:
		color = lipgloss.Color("201")
	case pipeline.QueryQueued:
		color = lipgloss.Color("246")
	}
	return lipgloss.NewStyle().Foreground(color)
}
