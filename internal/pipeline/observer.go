package pipeline

import "time"

// QueryEventType identifies a query status update for observers.
type QueryEventType string

const (
	// QueryQueued marks a query known but not yet started.
	QueryQueued QueryEventType = "queued"
	// QueryResearching marks a research job being submitted.
	QueryResearching QueryEventType = "researching"
	// QueryPolling marks a research job being polled for completion.
	QueryPolling QueryEventType = "polling"
	// QueryExtracting marks the structured-output call in progress.
	QueryExtracting QueryEventType = "extracting"
	// QueryDone marks a query that produced a structured result.
	QueryDone QueryEventType = "done"
	// QueryFailed marks a query that failed at any stage.
	QueryFailed QueryEventType = "failed"
)

// QueryEvent carries a single status update for a query.
type QueryEvent struct {
	Index     int
	Query     string
	Type      QueryEventType
	JobID     string
	Error     string
	Elapsed   time.Duration
	EmittedAt time.Time
}

// Observer receives pipeline lifecycle events for UI or logging.
type Observer interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID string, queries []string)
	// OnQueryEvent delivers a query status update.
	OnQueryEvent(event QueryEvent)
	// OnRunEnd signals run completion.
	OnRunEnd(results Results)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) OnRunStart(string, []string) {}
func (NopObserver) OnQueryEvent(QueryEvent)     {}
func (NopObserver) OnRunEnd(Results)            {}
