package authapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/phucpercy/auth-app-backend/cmd/identity"
	"github.com/phucpercy/auth-app-backend/cmd/internal/auth"
	"github.com/phucpercy/auth-app-backend/cmd/internal/auth/session"
	"github.com/phucpercy/auth-app-backend/cmd/security/password"
	"github.com/phucpercy/auth-app-backend/cmd/security/token"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()

	codec, err := token.NewCodec([]byte("supersecretkey"), "authapp-test", 3*time.Minute, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := auth.NewService(log, auth.Config{}, identity.NewMemoryStore(), session.NewMemoryStore(), password.NewHasher(bcrypt.MinCost), codec, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	h, err := NewHandler(log, Config{}, svc)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, mux *http.ServeMux, email, pw string) tokenResponse {
	t.Helper()

	rec := doJSON(t, mux, http.MethodPost, "/auth/register", map[string]string{"email": email, "password": pw}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var tok tokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &tok); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return tok
}

func TestRegisterEndpoint(t *testing.T) {
	mux := newTestMux(t)

	tok := registerUser(t, mux, "alice@example.com", "password1")
	if tok.AccessToken == "" || tok.RefreshToken == "" || tok.UserID == "" {
		t.Fatalf("incomplete token response: %+v", tok)
	}
	if tok.Email != "alice@example.com" {
		t.Fatalf("email = %q", tok.Email)
	}

	rec := doJSON(t, mux, http.MethodPost, "/auth/register", map[string]string{"email": "alice@example.com", "password": "password2"}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}
}

func TestRegisterRejectsBadInput(t *testing.T) {
	mux := newTestMux(t)

	cases := []struct {
		name string
		body any
	}{
		{"short password", map[string]string{"email": "a@example.com", "password": "12345"}},
		{"bad email", map[string]string{"email": "nope", "password": "password1"}},
		{"empty body", map[string]string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, mux, http.MethodPost, "/auth/register", tc.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), "invalid email or password format") {
				t.Fatalf("body = %s, want a format error message", rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed json status = %d, want 400", rec.Code)
	}
}

func TestLoginUniformUnauthorized(t *testing.T) {
	mux := newTestMux(t)
	registerUser(t, mux, "bob@example.com", "password1")

	ok := doJSON(t, mux, http.MethodPost, "/auth/login", map[string]string{"email": "bob@example.com", "password": "password1"}, nil)
	if ok.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", ok.Code, ok.Body.String())
	}

	wrongPass := doJSON(t, mux, http.MethodPost, "/auth/login", map[string]string{"email": "bob@example.com", "password": "nope-nope"}, nil)
	unknown := doJSON(t, mux, http.MethodPost, "/auth/login", map[string]string{"email": "ghost@example.com", "password": "password1"}, nil)

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401 / 401", wrongPass.Code, unknown.Code)
	}
	// Wrong password and unknown handle must be indistinguishable by shape.
	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("unauthorized bodies differ: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestMeEndpoint(t *testing.T) {
	mux := newTestMux(t)
	tok := registerUser(t, mux, "carol@example.com", "password1")

	rec := doJSON(t, mux, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + tok.AccessToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, body %s", rec.Code, rec.Body.String())
	}
	var user userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if user.Email != "carol@example.com" || !user.IsActive || user.ID != tok.UserID {
		t.Fatalf("me response = %+v", user)
	}

	if rec := doJSON(t, mux, http.MethodGet, "/me", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token status = %d, want 401", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer garbage"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me with garbage token status = %d, want 401", rec.Code)
	}
	// A refresh token is not an access token.
	if rec := doJSON(t, mux, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + tok.RefreshToken}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("me with refresh token status = %d, want 401", rec.Code)
	}
}

func TestLogoutAndRefreshFlow(t *testing.T) {
	mux := newTestMux(t)
	tok := registerUser(t, mux, "dave@example.com", "password1")

	// Refresh works while the session lives; token arrives in the body here.
	rec := doJSON(t, mux, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": tok.RefreshToken}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rec.Code, rec.Body.String())
	}
	var refreshed refreshResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &refreshed); err != nil {
		t.Fatalf("decode refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatalf("empty refreshed access token")
	}

	// Logout via bearer header.
	rec = doJSON(t, mux, http.MethodPost, "/auth/logout", nil, map[string]string{"Authorization": "Bearer " + tok.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rec.Code, rec.Body.String())
	}
	var msg messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode logout: %v", err)
	}
	if msg.Message != "Logged out successfully" {
		t.Fatalf("logout message = %q", msg.Message)
	}

	// The session is gone: refresh and a second logout both fail with 400.
	if rec := doJSON(t, mux, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": tok.RefreshToken}, nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("post-logout refresh status = %d, want 400", rec.Code)
	}
	if rec := doJSON(t, mux, http.MethodPost, "/auth/logout", nil, map[string]string{"Authorization": "Bearer " + tok.RefreshToken}); rec.Code != http.StatusBadRequest {
		t.Fatalf("repeat logout status = %d, want 400", rec.Code)
	}

	// The refreshed access token outlives the logout.
	if rec := doJSON(t, mux, http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + refreshed.AccessToken}); rec.Code != http.StatusOK {
		t.Fatalf("me after logout status = %d, want 200", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)

	for _, path := range []string{"/auth/register", "/auth/login", "/auth/logout", "/auth/refresh"} {
		if rec := doJSON(t, mux, http.MethodGet, path, nil, nil); rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("GET %s status = %d, want 405", path, rec.Code)
		}
	}
	if rec := doJSON(t, mux, http.MethodPost, "/me", nil, nil); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /me status = %d, want 405", rec.Code)
	}
}
