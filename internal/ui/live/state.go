package live

import (
	"time"

	"drill/internal/pipeline"
)

// QueryRow holds UI state for a single query.
type QueryRow struct {
	Index      int
	Query      string
	Status     pipeline.QueryEventType
	JobID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}

// StatusCounts aggregates row counts by status bucket.
type StatusCounts struct {
	Queued      int
	Researching int
	Polling     int
	Extracting  int
	Settled     int
	Done        int
	Failed      int
}

// State captures the live UI state for a run.
type State struct {
	RunID     string
	StartedAt time.Time
	LastEvent string
	Rows      []QueryRow
	Counts    StatusCounts
}
