package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-0123456789"

func newTestCodec(t *testing.T) *Codec {
	t.Helper()
	c, err := NewCodec([]byte(testSecret), "authapp", 3*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	return c
}

func TestNewCodec_InvalidConfig(t *testing.T) {
	if _, err := NewCodec([]byte("short"), "authapp", time.Minute, time.Hour); !errors.Is(err, ErrConfig) {
		t.Fatalf("short secret: want ErrConfig, got %v", err)
	}
	if _, err := NewCodec([]byte(testSecret), "", time.Minute, time.Hour); !errors.Is(err, ErrConfig) {
		t.Fatalf("empty issuer: want ErrConfig, got %v", err)
	}
	if _, err := NewCodec([]byte(testSecret), "authapp", 0, time.Hour); !errors.Is(err, ErrConfig) {
		t.Fatalf("zero access TTL: want ErrConfig, got %v", err)
	}
}

func TestAccess_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC().Truncate(time.Second)

	tok, exp, err := c.IssueAccess("a@x.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if !exp.Equal(now.Add(3 * time.Minute)) {
		t.Fatalf("exp = %v, want now+3m", exp)
	}

	claims, err := c.VerifyAccess(tok, now.Add(time.Second))
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.Handle != "a@x.com" {
		t.Fatalf("Handle = %q", claims.Handle)
	}
	if !claims.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt = %v, want %v", claims.ExpiresAt, exp)
	}
}

func TestRefresh_RoundTrip(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC().Truncate(time.Second)

	tok, _, err := c.IssueRefresh("a@x.com", "01HZSESSION", now)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	claims, err := c.VerifyRefresh(tok, now.Add(time.Second))
	if err != nil {
		t.Fatalf("VerifyRefresh: %v", err)
	}
	if claims.Handle != "a@x.com" || claims.SessionID != "01HZSESSION" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestVerify_Expired(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	tok, exp, err := c.IssueAccess("a@x.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := c.VerifyAccess(tok, exp.Add(time.Second)); !errors.Is(err, ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	c := newTestCodec(t)
	other, err := NewCodec([]byte("another-secret-entirely"), "authapp", 3*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	now := time.Now().UTC()
	tok, _, err := c.IssueAccess("a@x.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := other.VerifyAccess(tok, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("want ErrSignatureInvalid, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	for _, s := range []string{"", "garbage", "a.b", "a.b.c"} {
		if _, err := c.VerifyAccess(s, now); !errors.Is(err, ErrMalformed) {
			t.Fatalf("VerifyAccess(%q): want ErrMalformed, got %v", s, err)
		}
	}
}

func TestVerify_MissingIssuedAt(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	// A correctly signed token that omits iat must be rejected, not trusted.
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "authapp",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		},
		Handle: "a@x.com",
		Kind:   kindAccess,
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := c.VerifyAccess(signed, now); !errors.Is(err, ErrMalformed) {
		t.Fatalf("want ErrMalformed, got %v", err)
	}
}

func TestVerify_KindMismatch(t *testing.T) {
	c := newTestCodec(t)
	now := time.Now().UTC()

	access, _, err := c.IssueAccess("a@x.com", now)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, _, err := c.IssueRefresh("a@x.com", "01HZSESSION", now)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if _, err := c.VerifyAccess(refresh, now); !errors.Is(err, ErrMalformed) {
		t.Fatalf("refresh as access: want ErrMalformed, got %v", err)
	}
	if _, err := c.VerifyRefresh(access, now); !errors.Is(err, ErrMalformed) {
		t.Fatalf("access as refresh: want ErrMalformed, got %v", err)
	}
}
