package session

import "errors"

var (
	// ErrPersistFailure wraps a failed write of a rating; the same card stays current
	ErrPersistFailure = errors.New("session: failed to persist rating")
	// ErrNotActive is returned when an operation needs an active session
	ErrNotActive = errors.New("session: not active")
	// ErrNoCard is returned when the queue has no current card
	ErrNoCard = errors.New("session: no current card")
	// ErrClosed is returned after the session was closed
	ErrClosed = errors.New("session: closed")
)
