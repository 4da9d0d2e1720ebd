package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("mdexpand.engine")
	logger = logging.WithFields(logger, map[string]any{"module": "mdexpand.engine"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"document_path": "README.md",
	})
	logger = logger.WithContext(ctx)

	runID := uuid.MustParse("8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999")
	logger.Info("engine.expand.completed",
		"run_id", runID,
		"expanded", 3,
	)

	got := strings.TrimSpace(buf.String())
	want := "2024-03-14T15:09:26.535897Z INFO engine.expand.completed document_path=README.md expanded=3 logger=mdexpand.engine module=mdexpand.engine run_id=8a51a9b1-2d30-4b2c-8ecd-2c0b87dfa999"
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_DefaultLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, OmitTime: true})

	logger := provider.GetLogger("mdexpand.test")
	logger.Debug("ignored.debug")
	logger.Warn("rule.missing", "keyword", "title")

	got := strings.TrimSpace(buf.String())
	if got != "WARN rule.missing keyword=title logger=mdexpand.test" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestConsoleLogger_QuotesAndPositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf, OmitTime: true})

	provider.GetLogger("x").Error("engine.rule.failed", "error", errors.New("exit status 1"), "dangling")

	got := strings.TrimSpace(buf.String())
	if !strings.Contains(got, `error="exit status 1"`) {
		t.Fatalf("expected quoted error, got %q", got)
	}
	if !strings.Contains(got, "arg_1=dangling") {
		t.Fatalf("expected positional key for dangling arg, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"":        console.LevelInfo,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatal("expected unknown level to be rejected")
	}
}
