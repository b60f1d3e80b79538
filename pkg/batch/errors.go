package batch

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports that a task exceeded its per-task time budget.
type TimeoutError struct {
	// Index is the task's position in the original input sequence.
	Index int
	// After is the configured per-task timeout.
	After time.Duration
}

// Error describes the timed-out task.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("batch: task %d timed out after %s", e.Index, e.After)
}

// Timeout marks the error as a timeout for errors.As probes.
func (e *TimeoutError) Timeout() bool { return true }

// IsTimeout reports whether err is a task timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}
