package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPrettyHandlerPlainOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}, false))

	log.Info("server.start", "addr", "127.0.0.1:8080", "db_enabled", false)

	out := buf.String()
	if !strings.Contains(out, "[INFO]") {
		t.Fatalf("missing level tag: %q", out)
	}
	if !strings.Contains(out, "server.start") {
		t.Fatalf("missing message: %q", out)
	}
	if !strings.Contains(out, "addr=127.0.0.1:8080") || !strings.Contains(out, "db_enabled=false") {
		t.Fatalf("missing attrs: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color codes present with color disabled: %q", out)
	}
}

func TestPrettyHandlerQuotesValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil, false))

	log.Info("msg", "reason", "has spaces")

	if !strings.Contains(buf.String(), `reason="has spaces"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestPrettyHandlerGroupsAndWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, nil, false)).With("service", "authapp").WithGroup("http")

	log.Info("request", "status", 200)

	out := buf.String()
	if !strings.Contains(out, "service=authapp") {
		t.Fatalf("missing persistent attr: %q", out)
	}
	if !strings.Contains(out, "http.status=200") {
		t.Fatalf("missing grouped attr: %q", out)
	}
}

func TestPrettyHandlerLevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(newPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}, false))

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record not filtered: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn record missing: %q", out)
	}
}
