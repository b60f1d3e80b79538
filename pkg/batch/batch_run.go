package batch

import (
	"context"
	"time"
)

// outcome is the settled state of one task in a group.
type outcome[T any] struct {
	offset int
	value  T
	err    error
}

// runGroup starts every task in the group, waits for the group to
// settle, and folds the outcomes into result in task order. In abort
// mode it returns on the first failure without waiting for siblings.
func runGroup[T any](ctx context.Context, group []Task[T], base int, opts Options, result *Result[T]) error {
	outcomes := make(chan outcome[T], len(group))
	for offset, task := range group {
		go func(offset int, task Task[T]) {
			outcomes <- runTask(ctx, task, base+offset, offset, opts.Timeout)
		}(offset, task)
	}

	settled := make([]*outcome[T], len(group))
	for i := 0; i < len(group); i++ {
		o := <-outcomes
		if o.err != nil && opts.AbortOnError {
			return o.err
		}
		settled[o.offset] = &o
	}

	for _, o := range settled {
		if o.err != nil {
			result.Errors = append(result.Errors, o.err)
			continue
		}
		result.Values = append(result.Values, o.value)
	}
	return nil
}

// runTask races a task against its timeout. The timer firing first
// settles the task as failed; the underlying work is left running and
// any late result is discarded.
func runTask[T any](ctx context.Context, task Task[T], index, offset int, timeout time.Duration) outcome[T] {
	if timeout <= 0 {
		value, err := task(ctx)
		return outcome[T]{offset: offset, value: value, err: err}
	}
	done := make(chan outcome[T], 1)
	go func() {
		value, err := task(ctx)
		done <- outcome[T]{offset: offset, value: value, err: err}
	}()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case o := <-done:
		return o
	case <-timer.C:
		return outcome[T]{offset: offset, err: &TimeoutError{Index: index, After: timeout}}
	case <-ctx.Done():
		return outcome[T]{offset: offset, err: ctx.Err()}
	}
}
