package session

import "errors"

var (
	// ErrNotFound is returned when a session does not exist, has already been
	// deleted, or has expired (expired sessions are treated as absent).
	ErrNotFound = errors.New("session not found")
)
