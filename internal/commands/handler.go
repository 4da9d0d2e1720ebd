package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// DefaultCommandTimeout bounds a single run. Built-ins that shell out usually
// finish well within it.
const DefaultCommandTimeout = 30 * time.Second

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler wraps a document operation with message validation, a run
// deadline, structured logging and go-errors tagging. It satisfies
// go-command's Commander interface.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	fields    func(T) map[string]any
	observer  Observer[T]
	now       func() time.Time
}

// NewHandler creates a handler around fn. It panics when fn is nil.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Execute validates msg, runs the wrapped function under the handler
// deadline and reports the outcome to the observer.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return tag(err, kindInvalidMessage)
	}

	ctx, cancel := h.bound(ctx)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return tag(err, classifyRunError(err))
	}

	exec := Execution{
		Command:   command.GetMessageType(msg),
		Operation: h.operation,
		Fields:    h.logFields(msg),
	}
	logger := logging.WithFields(h.logger, exec.Fields)
	logger.Debug("command.execute.start")

	exec.Started = h.now()
	err := h.exec(ctx, msg)
	if err == nil {
		// A function that ignores its context still loses the run.
		err = ctx.Err()
	}
	exec.Duration = h.now().Sub(exec.Started)

	exec.Outcome = OutcomeSucceeded
	if err != nil {
		kind := classifyRunError(err)
		exec.Outcome = OutcomeFailed
		if kind != kindRunFailed {
			exec.Outcome = OutcomeInterrupted
		}
		err = tag(err, kind)
	}
	exec.Err = err

	switch {
	case h.observer != nil:
		h.observer(ctx, msg, exec)
	case err != nil:
		logger.Error("command.execute.failed", "error", err)
	default:
		logger.Debug("command.execute.succeeded")
	}
	return err
}

func (h *Handler[T]) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Handler[T]) logFields(msg T) map[string]any {
	fields := map[string]any{"command": command.GetMessageType(msg)}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	if h.fields != nil {
		for key, value := range h.fields(msg) {
			fields[key] = value
		}
	}
	return fields
}

// WithTimeout overrides DefaultCommandTimeout. Zero or negative values
// disable the deadline.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = logging.Ensure(logger)
	}
}

// WithOperation names the document operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithMessageFields adds message specific fields to every log entry.
func WithMessageFields[T command.Message](fn func(T) map[string]any) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.fields = fn
	}
}

// WithObserver installs observer. It replaces the handler's own outcome
// logging.
func WithObserver[T command.Message](observer Observer[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.observer = observer
	}
}

func WithClock[T command.Message](now func() time.Time) HandlerOption[T] {
	return func(h *Handler[T]) {
		if now != nil {
			h.now = now
		}
	}
}
