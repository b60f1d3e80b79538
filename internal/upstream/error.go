// Package upstream holds the shared error taxonomy for external API
// collaborators. The error kind is decided once, where the HTTP status
// is inspected, so call sites never re-probe response structure.
package upstream

import "fmt"

// Kind classifies an upstream failure.
type Kind string

const (
	// KindRateLimit marks an explicit quota rejection (HTTP 429).
	KindRateLimit Kind = "rate_limit"
	// KindTransient marks any other non-2xx response or transport failure.
	KindTransient Kind = "transient"
)

// Error is a typed failure from an external collaborator.
type Error struct {
	Provider string
	Status   int
	Kind     Kind
	Message  string
}

// NewError builds an Error with its kind derived from the HTTP status.
func NewError(provider string, status int, message string) *Error {
	kind := KindTransient
	if status == 429 {
		kind = KindRateLimit
	}
	return &Error{Provider: provider, Status: status, Kind: kind, Message: message}
}

// Error renders the provider, status, and upstream message.
func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: http %d", e.Provider, e.Status)
	}
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.Status, e.Message)
}

// RateLimit reports whether the failure was a quota rejection. The
// request queue retries only errors answering true here.
func (e *Error) RateLimit() bool {
	return e.Kind == KindRateLimit
}
