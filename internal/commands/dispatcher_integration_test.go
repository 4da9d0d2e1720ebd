package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

type flakyExpand struct {
	Path string
}

func (flakyExpand) Type() string { return "mdexpand.test.flaky_expand" }

func (flakyExpand) Validate() error { return nil }

type brokenExpand struct {
	Path string
}

func (brokenExpand) Type() string { return "mdexpand.test.broken_expand" }

func (brokenExpand) Validate() error { return nil }

func TestDispatchedHandlerRetriesTransientRunFailures(t *testing.T) {
	var (
		attempts  int
		deadlines int
	)
	handler := NewHandler(func(ctx context.Context, msg flakyExpand) error {
		attempts++
		if _, ok := ctx.Deadline(); ok {
			deadlines++
		}
		if attempts == 1 {
			return errors.New("git describe: exit status 128")
		}
		return nil
	}, WithTimeout[flakyExpand](time.Second))

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(1))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), flakyExpand{Path: "README.md"}); err != nil {
		t.Fatalf("dispatch: expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected initial attempt plus one retry, got %d", attempts)
	}
	if deadlines != attempts {
		t.Fatalf("expected every attempt to run under the handler deadline, got %d of %d", deadlines, attempts)
	}
}

func TestDispatchedHandlerFailsOnceRetriesRunOut(t *testing.T) {
	var outcomes []Outcome
	handler := NewHandler(func(ctx context.Context, msg brokenExpand) error {
		return errors.New("rule file missing")
	},
		WithTimeout[brokenExpand](time.Second),
		WithObserver(func(_ context.Context, _ brokenExpand, exec Execution) {
			outcomes = append(outcomes, exec.Outcome)
		}),
	)

	sub := dispatcher.SubscribeCommand(handler, runner.WithMaxRetries(2))
	t.Cleanup(sub.Unsubscribe)

	if err := dispatcher.Dispatch(context.Background(), brokenExpand{Path: "docs/a.md"}); err == nil {
		t.Fatal("expected dispatcher to return error after exhausting retries")
	}
	if len(outcomes) != 3 {
		t.Fatalf("expected three observed attempts, got %d", len(outcomes))
	}
	for _, outcome := range outcomes {
		if outcome != OutcomeFailed {
			t.Fatalf("expected failed outcomes, got %v", outcomes)
		}
	}
}
