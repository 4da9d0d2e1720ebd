package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// Outcome classifies a finished execution.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	// OutcomeInterrupted means the context was cancelled or its deadline
	// passed, usually while a built-in was waiting on a child process.
	OutcomeInterrupted Outcome = "interrupted"
)

// Execution describes one handler run as seen by an Observer.
type Execution struct {
	Command   string
	Operation string
	Fields    map[string]any
	Started   time.Time
	Duration  time.Duration
	// Err is the tagged error returned to the caller.
	Err     error
	Outcome Outcome
}

// Observer is called once per execution after the handler function returns.
type Observer[T command.Message] func(ctx context.Context, msg T, exec Execution)

// LogObserver logs every execution to logger. Successful runs are logged at
// info level, interrupted runs as warnings and failures as errors.
func LogObserver[T command.Message](logger interfaces.Logger) Observer[T] {
	logger = logging.Ensure(logger)
	return func(_ context.Context, _ T, exec Execution) {
		entry := logging.WithFields(logger, exec.Fields)
		args := []any{"duration_ms", exec.Duration.Milliseconds()}
		switch exec.Outcome {
		case OutcomeSucceeded:
			entry.Info("command.execute.succeeded", args...)
		case OutcomeInterrupted:
			entry.Warn("command.execute.interrupted", append(args, "error", exec.Err)...)
		default:
			entry.Error("command.execute.failed", append(args, "error", exec.Err, "code", ErrorCode(exec.Err))...)
		}
	}
}
