package http

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var fromContext, fallback bytes.Buffer
	ctx := ContextWithLogger(context.Background(),
		slog.New(slog.NewTextHandler(&fromContext, nil)))

	logger := handlerLogger(ctx, slog.New(slog.NewTextHandler(&fallback, nil)),
		"ScheduleHandler", "Show", "schedule_id", "s1")
	logger.Info("resolved")

	out := fromContext.String()
	if out == "" {
		t.Fatal("expected the context logger to receive the record")
	}
	if fallback.Len() != 0 {
		t.Fatalf("fallback logger must stay silent, got %q", fallback.String())
	}
	for _, want := range []string{"handler=ScheduleHandler", "operation=Show", "schedule_id=s1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("record %q missing %q", out, want)
		}
	}
}

func TestHandlerLoggerFallsBackWithoutContextLogger(t *testing.T) {
	t.Parallel()

	var fallback bytes.Buffer
	logger := handlerLogger(context.Background(),
		slog.New(slog.NewTextHandler(&fallback, nil)), "AuthHandler", "")
	logger.Info("resolved")

	out := fallback.String()
	if !strings.Contains(out, "handler=AuthHandler") {
		t.Fatalf("record %q missing handler tag", out)
	}
	if strings.Contains(out, "operation=") {
		t.Fatalf("empty operation must not be tagged, got %q", out)
	}
}

func TestDefaultLoggerNeverReturnsNil(t *testing.T) {
	t.Parallel()

	if defaultLogger(nil) == nil {
		t.Fatal("expected the process default logger")
	}
	own := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if defaultLogger(own) != own {
		t.Fatal("expected the provided logger back")
	}
}
