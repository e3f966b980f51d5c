package app

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.HTTPAddr != "0.0.0.0:8080" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AccessTTL != 3*time.Minute {
		t.Fatalf("AccessTTL = %v, want 3m", cfg.AccessTTL)
	}
	if cfg.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTTL = %v, want 168h", cfg.RefreshTTL)
	}
	if cfg.TokenSecret != devTokenSecret {
		t.Fatalf("TokenSecret = %q", cfg.TokenSecret)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("AUTH_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL", "10m")
	t.Setenv("AUTH_CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("AUTH_DB_AUTO_MIGRATE", "false")

	cfg := LoadConfig()

	if cfg.HTTPAddr != "127.0.0.1:9999" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.AccessTTL != 10*time.Minute {
		t.Fatalf("AccessTTL = %v", cfg.AccessTTL)
	}
	if cfg.AutoMigrate {
		t.Fatalf("AutoMigrate = true, want false")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestValidateSecurityConfig(t *testing.T) {
	cases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"lax default secret", Config{TokenSecret: devTokenSecret}, false},
		{"empty secret", Config{TokenSecret: ""}, true},
		{"strict default secret", Config{TokenSecret: devTokenSecret, RequireStrongSecret: true}, true},
		{"strict short secret", Config{TokenSecret: "short-but-custom", RequireStrongSecret: true}, true},
		{"strict strong secret", Config{TokenSecret: strings.Repeat("k", 32), RequireStrongSecret: true}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSecurityConfig(tc.cfg)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tc.wantErr)
			}
		})
	}
}

func TestNewAppInMemory(t *testing.T) {
	cfg := LoadConfig()
	cfg.DatabaseURL = ""

	a, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.dbEnabled {
		t.Fatalf("dbEnabled = true without a database URL")
	}
	if a.registry == nil || a.gateway == nil || a.authAPI == nil {
		t.Fatalf("incomplete wiring: %+v", a)
	}
	if err := a.store.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}
