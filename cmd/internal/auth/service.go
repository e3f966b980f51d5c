package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phucpercy/auth-app-backend/cmd/identity"
	"github.com/phucpercy/auth-app-backend/cmd/internal/auth/session"
	"github.com/phucpercy/auth-app-backend/cmd/internal/realtime"
	"github.com/phucpercy/auth-app-backend/cmd/security/password"
	"github.com/phucpercy/auth-app-backend/cmd/security/token"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// dummy plaintext hashed once at construction; Login verifies against the
// resulting digest when the handle is unknown so both failure paths cost one
// bcrypt comparison.
const dummyPassword = "login-timing-equalizer"

// Broadcaster fans a notification out to live stream connections.
// *realtime.Registry satisfies it.
type Broadcaster interface {
	Broadcast(n realtime.Notification, excludeUserID string) int
}

// Config tunes the Service.
type Config struct {
	// SessionTTL bounds how long a login's session (and therefore its
	// refresh token) stays usable. Zero selects seven days.
	SessionTTL time.Duration
}

// LoginResult is what a successful register or login hands back: the identity
// plus one freshly minted access/refresh pair.
type LoginResult struct {
	User identity.User

	SessionID        string
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// Service implements the account operations.
type Service struct {
	log      *slog.Logger
	cfg      Config
	users    identity.Store
	sessions session.Store
	hasher   *password.Hasher
	codec    *token.Codec
	notify   Broadcaster

	// dummyHash keeps unknown-handle logins on the same bcrypt path as
	// wrong-password logins.
	dummyHash string
}

// NewService wires the account operations together. notify may be nil when no
// stream fan-out is wanted (tests, CLI tools).
func NewService(log *slog.Logger, cfg Config, users identity.Store, sessions session.Store, hasher *password.Hasher, codec *token.Codec, notify Broadcaster) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	if users == nil || sessions == nil || hasher == nil || codec == nil {
		return nil, errors.New("auth: nil dependency")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}

	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}

	return &Service{
		log:       log,
		cfg:       cfg,
		users:     users,
		sessions:  sessions,
		hasher:    hasher,
		codec:     codec,
		notify:    notify,
		dummyHash: dummyHash,
	}, nil
}

// Register creates a new identity, opens its first session, and issues a
// token pair. A duplicate handle surfaces as a conflict error from the store
// with no record mutated. On success every other live stream connection is
// told about the newcomer.
func (s *Service) Register(ctx context.Context, now time.Time, email, plainPassword string) (LoginResult, error) {
	email = identity.NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return LoginResult{}, err
	}

	hash, err := s.hasher.Hash(plainPassword)
	if err != nil {
		if errors.Is(err, password.ErrTooShort) {
			return LoginResult{}, identity.OpError{
				Op:   "auth.register",
				Kind: identity.ErrInvalidInput,
				Msg:  fmt.Sprintf("password must be at least %d characters", password.MinLength),
			}
		}
		return LoginResult{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, identity.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		Now:          now,
	})
	if err != nil {
		return LoginResult{}, err
	}

	res, err := s.openSession(ctx, now, user)
	if err != nil {
		return LoginResult{}, err
	}

	if s.notify != nil {
		delivered := s.notify.Broadcast(realtime.NewRegistrationNotice(user.Email), user.ID)
		s.log.Info("auth.register.announced", "user_id", user.ID, "delivered", delivered)
	}
	s.log.Info("auth.register", "user_id", user.ID)

	return res, nil
}

// Login verifies the credential and opens a new session. Unknown handle,
// wrong password, and inactive account all return ErrUnauthorized; the
// unknown-handle path still performs one bcrypt comparison so the two cannot
// be told apart by response time.
func (s *Service) Login(ctx context.Context, now time.Time, email, plainPassword string) (LoginResult, error) {
	email = identity.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if identity.IsNotFound(err) {
			_, _ = s.hasher.Verify(plainPassword, s.dummyHash)
			return LoginResult{}, ErrUnauthorized
		}
		return LoginResult{}, err
	}

	ok, err := s.hasher.Verify(plainPassword, user.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: verify password: %w", err)
	}
	if !ok || !user.IsActive {
		return LoginResult{}, ErrUnauthorized
	}

	res, err := s.openSession(ctx, now, user)
	if err != nil {
		return LoginResult{}, err
	}

	s.log.Info("auth.login", "user_id", user.ID, "session_id", res.SessionID)
	return res, nil
}

// Logout revokes the session named by the refresh token. A bad token or an
// already-revoked session returns ErrUnauthorized. Access tokens already in
// the wild stay valid until their natural expiry.
func (s *Service) Logout(ctx context.Context, now time.Time, refreshToken string) error {
	claims, err := s.codec.VerifyRefresh(refreshToken, now)
	if err != nil {
		return ErrUnauthorized
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return ErrUnauthorized
		}
		return err
	}

	s.log.Info("auth.logout", "session_id", claims.SessionID)
	return nil
}

// RefreshAccess mints a new access token from a refresh token. The session
// row is the revocation authority: once logout deletes it, refresh fails even
// though the token's own expiry has not passed. The identity is re-read so a
// deactivated account cannot keep refreshing.
func (s *Service) RefreshAccess(ctx context.Context, now time.Time, refreshToken string) (string, time.Time, error) {
	claims, err := s.codec.VerifyRefresh(refreshToken, now)
	if err != nil {
		return "", time.Time{}, ErrUnauthorized
	}

	sess, err := s.sessions.Get(ctx, now, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return "", time.Time{}, ErrUnauthorized
		}
		return "", time.Time{}, err
	}

	user, err := s.users.GetByEmail(ctx, claims.Handle)
	if err != nil {
		if identity.IsNotFound(err) {
			return "", time.Time{}, ErrUnauthorized
		}
		return "", time.Time{}, err
	}
	if sess.UserID != user.ID || !user.IsActive {
		return "", time.Time{}, ErrUnauthorized
	}

	access, exp, err := s.codec.IssueAccess(user.Email, now)
	if err != nil {
		return "", time.Time{}, err
	}

	s.log.Info("auth.refresh", "user_id", user.ID, "session_id", sess.ID)
	return access, exp, nil
}

// ResolveIdentity verifies an access token and loads the identity behind it.
// It serves both the HTTP request path and the stream handshake.
func (s *Service) ResolveIdentity(ctx context.Context, now time.Time, accessToken string) (identity.User, error) {
	claims, err := s.codec.VerifyAccess(accessToken, now)
	if err != nil {
		return identity.User{}, ErrUnauthorized
	}

	user, err := s.users.GetByEmail(ctx, claims.Handle)
	if err != nil {
		if identity.IsNotFound(err) {
			return identity.User{}, ErrUnauthorized
		}
		return identity.User{}, err
	}
	if !user.IsActive {
		return identity.User{}, ErrUnauthorized
	}
	return user, nil
}

func (s *Service) openSession(ctx context.Context, now time.Time, user identity.User) (LoginResult, error) {
	sess, err := s.sessions.Create(ctx, now, user.ID, s.cfg.SessionTTL)
	if err != nil {
		return LoginResult{}, err
	}

	access, accessExp, err := s.codec.IssueAccess(user.Email, now)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, refreshExp, err := s.codec.IssueRefresh(user.Email, sess.ID, now)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		User:             user,
		SessionID:        sess.ID,
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func validateEmail(normalized string) error {
	at := strings.Index(normalized, "@")
	if at <= 0 || at == len(normalized)-1 || strings.Contains(normalized, " ") {
		return identity.OpError{Op: "auth.register", Kind: identity.ErrInvalidInput, Msg: "invalid email"}
	}
	return nil
}
