package session

import (
	"context"
	"sync"
	"time"

	"github.com/phucpercy/auth-app-backend/cmd/identity/ids"
)

// MemoryStore is an in-memory Store used when no database is configured and in
// unit tests.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Create allocates a new session bound to userID.
func (s *MemoryStore) Create(_ context.Context, now time.Time, userID string, ttl time.Duration) (Session, error) {
	id, err := ids.NewULID(now)
	if err != nil {
		return Session{}, err
	}

	sess := Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return sess, nil
}

// Get loads a live session; expired sessions are treated as absent.
func (s *MemoryStore) Get(_ context.Context, now time.Time, sessionID string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || !sess.ExpiresAt.After(now) {
		return Session{}, ErrNotFound
	}
	return sess, nil
}

// Delete removes a session; a second delete reports ErrNotFound.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// Len reports the number of stored sessions (test hook).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
