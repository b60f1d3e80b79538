package requestqueue

import "time"

// Observer receives queue lifecycle events for an entry.
type Observer interface {
	// OnAdmit signals that an entry was released against the rate window.
	OnAdmit(id string, at time.Time)
	// OnRetry signals a rate-limited attempt about to back off.
	OnRetry(id string, attempt int, delay time.Duration)
	// OnSettle signals that an entry finished with its final result.
	OnSettle(id string, err error)
}
