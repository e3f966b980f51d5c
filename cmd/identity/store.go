package identity

import (
	"context"
	"time"
)

// User is the canonical security principal.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// CreateUserInput describes a registration request. Email must already be
// normalized (see NormalizeEmail) and PasswordHash must be a stored-form
// digest, never plaintext.
type CreateUserInput struct {
	Email        string
	PasswordHash string
	Now          time.Time
}

// Store is the identity persistence boundary.
//
// CreateUser must be atomic: on a duplicate email it returns a conflict error
// and leaves no partial record behind.
type Store interface {
	CreateUser(ctx context.Context, in CreateUserInput) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
