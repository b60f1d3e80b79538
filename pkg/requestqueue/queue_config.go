package requestqueue

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultRequestsPerMinute = 60
	defaultRetryCount        = 3
	defaultRetryDelay        = time.Second

	// rateWindow is the trailing interval the admission ceiling applies to.
	rateWindow = time.Minute
	// defaultWindowBuffer pads the wait until the oldest admission
	// timestamp leaves the window.
	defaultWindowBuffer = 100 * time.Millisecond

	defaultSubmitBuffer = 64
)

// queueConfig overrides queue behavior for tests or tuning.
type queueConfig struct {
	now          func() time.Time
	sleep        func(ctx context.Context, d time.Duration) error
	windowBuffer time.Duration
	submitBuffer int
	observer     Observer
}

// defaultQueueConfig returns the production queue defaults.
func defaultQueueConfig() queueConfig {
	return queueConfig{
		now:          time.Now,
		sleep:        sleepContext,
		windowBuffer: defaultWindowBuffer,
		submitBuffer: defaultSubmitBuffer,
	}
}

// withDefaults fills unset options with their default values.
func withDefaults(opts Options) Options {
	if opts.RequestsPerMinute == 0 {
		opts.RequestsPerMinute = defaultRequestsPerMinute
	}
	if opts.RetryCount == 0 {
		opts.RetryCount = defaultRetryCount
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	return opts
}

// validateOptions rejects option values the queue cannot operate with.
func validateOptions(opts Options) error {
	if opts.RequestsPerMinute <= 0 {
		return fmt.Errorf("requestqueue: requests per minute must be positive, got %d", opts.RequestsPerMinute)
	}
	if opts.RetryCount < 0 {
		return fmt.Errorf("requestqueue: retry count must not be negative, got %d", opts.RetryCount)
	}
	if opts.RetryDelay <= 0 {
		return fmt.Errorf("requestqueue: retry delay must be positive, got %s", opts.RetryDelay)
	}
	return nil
}

// sleepContext waits for the duration or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
