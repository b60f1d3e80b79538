package requestqueue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Task is a unit of work admitted by the queue. Results flow through
// closures captured by the task.
type Task func(ctx context.Context) error

// ErrClosed is returned by Do after the queue has been closed.
var ErrClosed = errors.New("requestqueue: queue closed")

// Options configures admission pacing and retry behavior.
type Options struct {
	// RequestsPerMinute caps admissions in any trailing 60s window.
	RequestsPerMinute int
	// RetryCount is the number of retries after a rate-limited attempt.
	RetryCount int
	// RetryDelay is the base delay for linear retry backoff.
	RetryDelay time.Duration
}

// Queue serializes task admission under a requests-per-minute ceiling
// and retries tasks rejected by the upstream rate limit.
type Queue struct {
	opts     Options
	observer Observer

	submitCh chan *entry
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once

	// lifeCtx is cancelled by Close so waits inside the queue never
	// outlive it.
	lifeCtx    context.Context
	lifeCancel context.CancelFunc

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	buffer time.Duration

	mu     sync.Mutex
	window []time.Time
}

// entry is a queued task awaiting admission.
type entry struct {
	id     string
	ctx    context.Context
	task   Task
	result chan error
}

// New creates a queue with the provided options. Zero-valued options
// fall back to defaults; invalid values are rejected.
func New(opts Options) (*Queue, error) {
	return newQueue(opts, defaultQueueConfig())
}

// NewWithObserver creates a queue that reports admission lifecycle events.
func NewWithObserver(opts Options, observer Observer) (*Queue, error) {
	cfg := defaultQueueConfig()
	cfg.observer = observer
	return newQueue(opts, cfg)
}

// Do submits a task and blocks until it settles. Tasks submitted while
// the queue drains are admitted in FIFO order.
func (q *Queue) Do(ctx context.Context, task Task) error {
	e := &entry{
		id:     uuid.NewString(),
		ctx:    ctx,
		task:   task,
		result: make(chan error, 1),
	}
	select {
	case <-q.stopCh:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.submitCh <- e:
	}
	select {
	case err := <-e.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-q.doneCh:
		// The run loop exited after the entry was buffered. Settle
		// whatever is still waiting for admission, ours included.
		q.drain()
		select {
		case err := <-e.result:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops admission. Tasks already admitted run to completion;
// tasks still waiting for admission settle with ErrClosed.
func (q *Queue) Close() {
	q.stopOnce.Do(func() {
		q.lifeCancel()
		close(q.stopCh)
	})
	<-q.doneCh
}

// newQueue builds a Queue with custom configuration, primarily for tests.
func newQueue(opts Options, cfg queueConfig) (*Queue, error) {
	opts = withDefaults(opts)
	if err := validateOptions(opts); err != nil {
		return nil, err
	}
	lifeCtx, lifeCancel := context.WithCancel(context.Background())
	q := &Queue{
		opts:       opts,
		observer:   cfg.observer,
		submitCh:   make(chan *entry, cfg.submitBuffer),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
		lifeCtx:    lifeCtx,
		lifeCancel: lifeCancel,
		now:        cfg.now,
		sleep:      cfg.sleep,
		buffer:     cfg.windowBuffer,
	}
	go q.run()
	return q, nil
}
