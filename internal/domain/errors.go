package domain

import "errors"

// Error taxonomy shared across services. Handlers map these to HTTP status
// codes; services wrap them with context using %w.
var (
	// ErrNotAuthenticated: the operation requires a resolved user and none
	// is present (or the session's principal no longer exists).
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden: authenticated but not authorized for this transition,
	// role, or resource.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound: a referenced entity id is absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition: a state machine rule was violated; state is
	// unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrStaleState: the row was modified concurrently and the transition's
	// precondition no longer holds; callers should refetch and retry.
	ErrStaleState = errors.New("stale state")

	// ErrDuplicateEntity: a uniqueness invariant would be violated.
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrUpstreamUnavailable: the store or an auxiliary system failed for
	// reasons outside domain logic.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
