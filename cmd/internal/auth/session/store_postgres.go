package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/phucpercy/auth-app-backend/cmd/identity/ids"
)

// DB is the subset of pgxpool.Pool the store needs. Satisfied by
// *pgxpool.Pool and by pgxmock.PgxPoolIface in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store on the sessions table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a new session row and returns it.
func (s *PostgresStore) Create(ctx context.Context, now time.Time, userID string, ttl time.Duration) (Session, error) {
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

	_, err = s.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, sess.ID, sess.UserID, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return Session{}, err
	}

	return sess, nil
}

// Get loads a session; the expiry predicate lives in the query so an expired
// row is indistinguishable from a missing one.
func (s *PostgresStore) Get(ctx context.Context, now time.Time, sessionID string) (Session, error) {
	var sess Session
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > $2
	`, sessionID, now).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.ExpiresAt,
		&sess.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Delete removes a session row; a second delete of the same ID reports
// ErrNotFound.
func (s *PostgresStore) Delete(ctx context.Context, sessionID string) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM sessions
		WHERE id = $1
	`, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
