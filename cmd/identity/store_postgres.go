package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phucpercy/auth-app-backend/cmd/identity/ids"
)

// DB is the subset of pgxpool.Pool the store needs. It is satisfied by
// *pgxpool.Pool and by pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on the users table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a Postgres-backed identity store.
func NewPostgresStore(db DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("identity: nil db")
	}
	return &PostgresStore{db: db}, nil
}

// CreateUser inserts a new user row. A duplicate email surfaces as a
// ConflictError; the insert itself is the atomicity boundary.
func (s *PostgresStore) CreateUser(ctx context.Context, in CreateUserInput) (User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || in.PasswordHash == "" {
		return User{}, OpError{Op: "identity.CreateUser", Kind: ErrInvalidInput}
	}

	id, err := ids.NewULID(in.Now)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           id,
		Email:        email,
		PasswordHash: in.PasswordHash,
		IsActive:     true,
		CreatedAt:    in.Now,
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return User{}, ConflictError{Op: "identity.CreateUser", Field: "email"}
		}
		return User{}, err
	}

	return u, nil
}

// GetByEmail loads a user by normalized email.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.getOne(ctx, `
		SELECT id, email, password_hash, is_active, created_at
		FROM users
		WHERE email = $1
	`, NormalizeEmail(email))
}

// GetByID loads a user by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	return s.getOne(ctx, `
		SELECT id, email, password_hash, is_active, created_at
		FROM users
		WHERE id = $1
	`, id)
}

func (s *PostgresStore) getOne(ctx context.Context, query, arg string) (User, error) {
	var u User
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: "identity.Get", Resource: "user"}
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
