// Package batch runs independent tasks in consecutive groups with a
// concurrency cap, a per-task timeout, and a configurable policy for
// tolerating partial failure.
package batch

import (
	"context"
	"fmt"
	"time"
)

// Task is a unit of work producing a value of type T.
type Task[T any] func(ctx context.Context) (T, error)

// Options configures a batch run.
type Options struct {
	// MaxConcurrent caps how many tasks run simultaneously.
	MaxConcurrent int
	// AbortOnError makes the first task failure fail the whole run.
	AbortOnError bool
	// Timeout bounds each individual task; zero disables the bound.
	// A timed-out task is reported failed but is not cancelled: it
	// keeps running in the background and its result is discarded.
	Timeout time.Duration
}

// Result aggregates the outcome of a batch run. Values preserves the
// relative order of the originating tasks, with failures omitted.
type Result[T any] struct {
	Values []T
	Errors []error
}

// ErrorSummary renders the aggregated failure count and first error
// for callers that log partial-mode outcomes. Empty when nothing failed.
func (r Result[T]) ErrorSummary() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return fmt.Sprintf("%d tasks failed; first: %v", len(r.Errors), r.Errors[0])
}

// Run executes tasks in consecutive groups of at most MaxConcurrent.
// A group fully settles before the next group starts. In abort mode the
// first failure is returned as Run's own error; otherwise failures are
// collected in Result.Errors and the run continues.
func Run[T any](ctx context.Context, tasks []Task[T], opts Options) (Result[T], error) {
	if opts.MaxConcurrent <= 0 {
		return Result[T]{}, fmt.Errorf("batch: max concurrent must be positive, got %d", opts.MaxConcurrent)
	}
	result := Result[T]{}
	if len(tasks) == 0 {
		return result, nil
	}
	for start := 0; start < len(tasks); start += opts.MaxConcurrent {
		end := start + opts.MaxConcurrent
		if end > len(tasks) {
			end = len(tasks)
		}
		if err := runGroup(ctx, tasks[start:end], start, opts, &result); err != nil {
			return Result[T]{}, err
		}
	}
	return result, nil
}
