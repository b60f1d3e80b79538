package requestqueue

import "time"

// run drives the admission loop until the queue is closed. Entries are
// taken in FIFO order; each admitted entry executes in its own
// goroutine so admission pacing never waits on completion.
func (q *Queue) run() {
	defer close(q.doneCh)
	for {
		select {
		case <-q.stopCh:
			q.drain()
			return
		case e := <-q.submitCh:
			if !q.awaitAdmission(e) {
				q.drain()
				return
			}
			go q.execute(e)
		}
	}
}

// awaitAdmission blocks until the rate window has room for the entry,
// then records its admission timestamp. It reports false when the
// queue is closed while waiting.
func (q *Queue) awaitAdmission(e *entry) bool {
	for {
		now := q.now()
		wait, ok := q.tryAdmit(now)
		if ok {
			if q.observer != nil {
				q.observer.OnAdmit(e.id, now)
			}
			return true
		}
		select {
		case <-q.stopCh:
			e.result <- ErrClosed
			return false
		default:
		}
		if err := q.sleep(q.lifeCtx, wait); err != nil {
			e.result <- ErrClosed
			return false
		}
	}
}

// tryAdmit purges expired admission timestamps and either records a new
// one or returns the delay until the oldest timestamp exits the window.
func (q *Queue) tryAdmit(now time.Time) (time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := now.Add(-rateWindow)
	kept := q.window[:0]
	for _, ts := range q.window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	q.window = kept
	if len(q.window) < q.opts.RequestsPerMinute {
		q.window = append(q.window, now)
		return 0, true
	}
	wait := q.window[0].Add(rateWindow).Sub(now) + q.buffer
	if wait < q.buffer {
		wait = q.buffer
	}
	return wait, false
}

// execute runs an admitted entry, retrying rate-limited attempts with
// linear backoff. Any other failure settles the entry immediately.
func (q *Queue) execute(e *entry) {
	var err error
	for attempt := 0; ; attempt++ {
		err = e.task(e.ctx)
		if err == nil || !IsRateLimit(err) || attempt >= q.opts.RetryCount {
			break
		}
		delay := q.opts.RetryDelay * time.Duration(attempt+1)
		if q.observer != nil {
			q.observer.OnRetry(e.id, attempt+1, delay)
		}
		if sleepErr := q.sleep(e.ctx, delay); sleepErr != nil {
			err = sleepErr
			break
		}
	}
	if q.observer != nil {
		q.observer.OnSettle(e.id, err)
	}
	e.result <- err
}

// drain fails every entry still waiting for admission.
func (q *Queue) drain() {
	for {
		select {
		case e := <-q.submitCh:
			e.result <- ErrClosed
		default:
			return
		}
	}
}

// Admitted reports how many admissions fall inside the trailing window
// ending at now. Intended for tests and diagnostics.
func (q *Queue) Admitted(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := now.Add(-rateWindow)
	count := 0
	for _, ts := range q.window {
		if ts.After(cutoff) {
			count++
		}
	}
	return count
}
