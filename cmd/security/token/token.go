package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"

	// minSecretBytes is the minimum HMAC-SHA256 secret size accepted by the codec.
	minSecretBytes = 8
)

// AccessClaims is the payload of a short-lived access token.
// It carries the identity handle only; access tokens never reference a session.
type AccessClaims struct {
	Handle    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshClaims is the payload of a longer-lived refresh token.
// The session reference is what ties the credential to server-side state:
// the token is valid only while that session row still exists.
type RefreshClaims struct {
	Handle    string
	SessionID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Codec signs and verifies credentials with HMAC-SHA256.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec constructs a Codec. The secret must be at least minSecretBytes and
// both TTLs must be positive.
func NewCodec(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Codec, error) {
	if len(secret) < minSecretBytes {
		return nil, ErrConfig
	}
	if issuer == "" || accessTTL <= 0 || refreshTTL <= 0 {
		return nil, ErrConfig
	}
	return &Codec{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// wireClaims is the on-the-wire shape shared by both credential kinds.
// Kind discriminates them so a refresh token fails access verification
// structurally, not just by claim inspection.
type wireClaims struct {
	jwt.RegisteredClaims
	Handle    string `json:"handle"`
	SessionID string `json:"sid,omitempty"`
	Kind      string `json:"typ"`
}

// IssueAccess signs a new access token for handle, expiring at now+accessTTL.
func (c *Codec) IssueAccess(handle string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.accessTTL)
	signed, err := c.sign(wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Handle: handle,
		Kind:   kindAccess,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// IssueRefresh signs a new refresh token bound to sessionID, expiring at
// now+refreshTTL.
func (c *Codec) IssueRefresh(handle, sessionID string, now time.Time) (string, time.Time, error) {
	exp := now.Add(c.refreshTTL)
	signed, err := c.sign(wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Handle:    handle,
		SessionID: sessionID,
		Kind:      kindRefresh,
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess validates signature, expiry, and credential kind against now.
func (c *Codec) VerifyAccess(tokenString string, now time.Time) (AccessClaims, error) {
	claims, err := c.verify(tokenString, now)
	if err != nil {
		return AccessClaims{}, err
	}
	if claims.Kind != kindAccess || claims.SessionID != "" {
		return AccessClaims{}, ErrMalformed
	}
	return AccessClaims{
		Handle:    claims.Handle,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// VerifyRefresh validates signature, expiry, and credential kind against now.
func (c *Codec) VerifyRefresh(tokenString string, now time.Time) (RefreshClaims, error) {
	claims, err := c.verify(tokenString, now)
	if err != nil {
		return RefreshClaims{}, err
	}
	if claims.Kind != kindRefresh || claims.SessionID == "" {
		return RefreshClaims{}, ErrMalformed
	}
	return RefreshClaims{
		Handle:    claims.Handle,
		SessionID: claims.SessionID,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (c *Codec) sign(claims wireClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

func (c *Codec) verify(tokenString string, now time.Time) (*wireClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	parsed, err := parser.ParseWithClaims(tokenString, &wireClaims{}, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrSignatureInvalid
		default:
			return nil, ErrMalformed
		}
	}

	claims, ok := parsed.Claims.(*wireClaims)
	if !ok || !parsed.Valid || claims.Handle == "" {
		return nil, ErrMalformed
	}
	// WithIssuedAt only validates iat when present; every token this codec
	// mints carries both timestamps, so their absence marks a foreign token.
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	return claims, nil
}
