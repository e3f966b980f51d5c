package identity

import (
	"context"
	"sync"

	"github.com/phucpercy/auth-app-backend/cmd/identity/ids"
)

// MemoryStore is an in-memory Store used when no database is configured and in
// unit tests. Uniqueness is enforced under a single mutex, mirroring the
// transactional guarantee of the Postgres store.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]User
	byEmail map[string]string // email -> id
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]User),
		byEmail: make(map[string]string),
	}
}

// CreateUser registers a new user, failing with a ConflictError when the
// email is already taken. No partial state is left on failure.
func (s *MemoryStore) CreateUser(_ context.Context, in CreateUserInput) (User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.PasswordHash == "" {
		return User{}, OpError{Op: "identity.CreateUser", Kind: ErrInvalidInput}
	}

	id, err := ids.NewULID(in.Now)
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[email]; taken {
		return User{}, ConflictError{Op: "identity.CreateUser", Field: "email"}
	}

	u := User{
		ID:           id,
		Email:        email,
		PasswordHash: in.PasswordHash,
		IsActive:     true,
		CreatedAt:    in.Now,
	}
	s.byID[id] = u
	s.byEmail[email] = id
	return u, nil
}

// GetByEmail loads a user by normalized email.
func (s *MemoryStore) GetByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[NormalizeEmail(email)]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetByEmail", Resource: "user"}
	}
	return s.byID[id], nil
}

// GetByID loads a user by ID.
func (s *MemoryStore) GetByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetByID", Resource: "user"}
	}
	return u, nil
}

// Len reports the number of stored users (test hook).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
