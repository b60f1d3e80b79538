package live

import (
	"fmt"
	"time"

	"drill/internal/pipeline"
)

// Reduce applies a query event to the UI state.
func Reduce(state State, event pipeline.QueryEvent) State {
	state = ensureRow(state, event)
	state = applyQueryEvent(state, event)
	state.Counts = recount(state.Rows)
	if message := formatLastEvent(event); message != "" {
		state.LastEvent = message
	}
	return state
}

// ensureRow grows the state rows to include the target index.
func ensureRow(state State, event pipeline.QueryEvent) State {
	if event.Index < 0 {
		return state
	}
	if event.Index < len(state.Rows) {
		return state
	}
	rows := make([]QueryRow, event.Index+1)
	copy(rows, state.Rows)
	for i := len(state.Rows); i < len(rows); i++ {
		rows[i] = QueryRow{Index: i, Status: pipeline.QueryQueued}
	}
	state.Rows = rows
	return state
}

// applyQueryEvent updates a row with the given event.
func applyQueryEvent(state State, event pipeline.QueryEvent) State {
	if event.Index < 0 || event.Index >= len(state.Rows) {
		return state
	}
	row := state.Rows[event.Index]
	if row.Query == "" {
		row.Query = event.Query
	}
	if event.JobID != "" {
		row.JobID = event.JobID
	}
	row.Status = event.Type
	if event.Type == pipeline.QueryResearching && row.StartedAt.IsZero() {
		row.StartedAt = event.EmittedAt
	}
	if isTerminalStatus(event.Type) {
		if !event.EmittedAt.IsZero() {
			row.FinishedAt = event.EmittedAt
		}
		row.Error = event.Error
	}
	state.Rows[event.Index] = row
	return state
}

// isTerminalStatus reports whether a status is final.
func isTerminalStatus(status pipeline.QueryEventType) bool {
	return status == pipeline.QueryDone || status == pipeline.QueryFailed
}

// recount recomputes status counts for the current rows.
func recount(rows []QueryRow) StatusCounts {
	var counts StatusCounts
	for _, row := range rows {
		switch row.Status {
		case pipeline.QueryQueued:
			counts.Queued++
		case pipeline.QueryResearching:
			counts.Researching++
		case pipeline.QueryPolling:
			counts.Polling++
		case pipeline.QueryExtracting:
			counts.Extracting++
		case pipeline.QueryDone:
			counts.Settled++
			counts.Done++
		case pipeline.QueryFailed:
			counts.Settled++
			counts.Failed++
		}
	}
	return counts
}

// formatLastEvent creates a short footer message for the event.
func formatLastEvent(event pipeline.QueryEvent) string {
	switch event.Type {
	case pipeline.QueryResearching:
		return fmt.Sprintf("Q%d research started", event.Index+1)
	case pipeline.QueryPolling:
		if event.JobID != "" {
			return fmt.Sprintf("Q%d polling job %s", event.Index+1, event.JobID)
		}
		return fmt.Sprintf("Q%d polling", event.Index+1)
	case pipeline.QueryExtracting:
		return fmt.Sprintf("Q%d extracting structured output", event.Index+1)
	case pipeline.QueryDone:
		return fmt.Sprintf("Q%d completed (%s)", event.Index+1, formatDuration(event.Elapsed))
	case pipeline.QueryFailed:
		return fmt.Sprintf("Q%d failed: %s", event.Index+1, event.Error)
	}
	return ""
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
