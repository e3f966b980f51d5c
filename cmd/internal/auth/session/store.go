package session

import (
	"context"
	"time"
)

// Session is one authenticated login instance.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Store abstracts persistence for session state.
//
// Implementations must make Create atomic (no partial row visible) and must
// treat sessions whose expiry has passed as absent in Get. Delete on an
// already-deleted ID returns ErrNotFound; repeated calls are safe.
type Store interface {
	// Create allocates a new session bound to userID with expiry = now + ttl.
	Create(ctx context.Context, now time.Time, userID string, ttl time.Duration) (Session, error)

	// Get loads a live session; expired or missing sessions yield ErrNotFound.
	Get(ctx context.Context, now time.Time, sessionID string) (Session, error)

	// Delete removes the session; ErrNotFound when it is already gone.
	Delete(ctx context.Context, sessionID string) error
}
