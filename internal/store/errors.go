package store

import "errors"

// Sentinel errors for store operations. Callers match these with errors.Is
// to map storage outcomes to API responses.
var (
	// ErrUserContextExists is returned when creating a user context for a
	// user ID that already has one.
	ErrUserContextExists = errors.New("user context already exists")

	// ErrUserContextNotFound is returned when a user context lookup finds
	// nothing, and when creating a session for a user without a context.
	ErrUserContextNotFound = errors.New("user context not found")

	// ErrSessionExists is returned when creating a session with an ID that
	// is already taken.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionNotFound is returned when a session lookup or append finds
	// no session with the given ID.
	ErrSessionNotFound = errors.New("session not found")
)
