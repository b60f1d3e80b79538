package requestqueue

import "errors"

// rateLimited is implemented by errors that represent an upstream
// rate-limit rejection. The kind is decided once, where the HTTP
// status is inspected, so callers never re-probe response structure.
type rateLimited interface {
	RateLimit() bool
}

// IsRateLimit reports whether err is a rate-limit rejection anywhere
// in its chain. Only such errors are retried by the queue.
func IsRateLimit(err error) bool {
	var rl rateLimited
	if errors.As(err, &rl) {
		return rl.RateLimit()
	}
	return false
}
