package documentscmd

import (
	"context"
	"errors"

	"github.com/goliatone/go-mdexpand/internal/commands"
	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	expandOperation = "documents.expand"
	cleanOperation  = "documents.clean"
	checkOperation  = "documents.check"
)

// ErrServiceRequired is returned when handlers are built without a document service.
var ErrServiceRequired = errors.New("documents command: service is nil")

var (
	_ command.Commander[ExpandFilesCommand] = (*ExpandFilesHandler)(nil)
	_ command.Commander[CleanFilesCommand]  = (*CleanFilesHandler)(nil)
	_ command.Commander[CheckFilesCommand]  = (*CheckFilesHandler)(nil)
)

// ResultSink receives the outcome of every successful run. It is how callers
// such as the CLI reporter get at results, since command handlers only
// return errors.
type ResultSink func(ctx context.Context, operation string, result *interfaces.DocumentResult)

type serviceCall func(ctx context.Context, req interfaces.DocumentRequest) (*interfaces.DocumentResult, error)

func runRequest(ctx context.Context, logger interfaces.Logger, operation string, call serviceCall, sink ResultSink, sel FileSelection) error {
	result, err := call(ctx, sel.Request())
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}

	changed, written, errored := 0, 0, 0
	for _, file := range result.Files {
		if file.Changed {
			changed++
		}
		if file.Written {
			written++
		}
		if file.HasErrors() {
			errored++
		}
	}
	logging.WithFields(logger, map[string]any{
		"run_id":        result.RunID,
		"file_count":    len(result.Files),
		"changed_count": changed,
		"written_count": written,
		"error_count":   errored,
	}).Info("documents.command." + operation + ".completed")

	if sink != nil {
		sink(ctx, operation, result)
	}
	return nil
}

// ExpandFilesHandler runs DocumentService.Expand through the shared command handler.
type ExpandFilesHandler struct {
	inner *commands.Handler[ExpandFilesCommand]
}

// NewExpandFilesHandler creates a handler bound to service.
func NewExpandFilesHandler(service interfaces.DocumentService, logger interfaces.Logger, sink ResultSink, opts ...commands.HandlerOption[ExpandFilesCommand]) *ExpandFilesHandler {
	baseLogger := logging.Ensure(logger)
	exec := func(ctx context.Context, msg ExpandFilesCommand) error {
		return runRequest(ctx, baseLogger, "expand", service.Expand, sink, msg.FileSelection)
	}

	handlerOpts := []commands.HandlerOption[ExpandFilesCommand]{
		commands.WithLogger[ExpandFilesCommand](baseLogger),
		commands.WithOperation[ExpandFilesCommand](expandOperation),
		commands.WithMessageFields(func(msg ExpandFilesCommand) map[string]any {
			return msg.fields()
		}),
		commands.WithObserver(commands.LogObserver[ExpandFilesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ExpandFilesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ExpandFilesCommand].
func (h *ExpandFilesHandler) Execute(ctx context.Context, msg ExpandFilesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CleanFilesHandler runs DocumentService.Clean through the shared command handler.
type CleanFilesHandler struct {
	inner *commands.Handler[CleanFilesCommand]
}

// NewCleanFilesHandler creates a handler bound to service.
func NewCleanFilesHandler(service interfaces.DocumentService, logger interfaces.Logger, sink ResultSink, opts ...commands.HandlerOption[CleanFilesCommand]) *CleanFilesHandler {
	baseLogger := logging.Ensure(logger)
	exec := func(ctx context.Context, msg CleanFilesCommand) error {
		return runRequest(ctx, baseLogger, "clean", service.Clean, sink, msg.FileSelection)
	}

	handlerOpts := []commands.HandlerOption[CleanFilesCommand]{
		commands.WithLogger[CleanFilesCommand](baseLogger),
		commands.WithOperation[CleanFilesCommand](cleanOperation),
		commands.WithMessageFields(func(msg CleanFilesCommand) map[string]any {
			return msg.fields()
		}),
		commands.WithObserver(commands.LogObserver[CleanFilesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CleanFilesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CleanFilesCommand].
func (h *CleanFilesHandler) Execute(ctx context.Context, msg CleanFilesCommand) error {
	return h.inner.Execute(ctx, msg)
}

// CheckFilesHandler runs DocumentService.Check through the shared command handler.
type CheckFilesHandler struct {
	inner *commands.Handler[CheckFilesCommand]
}

// NewCheckFilesHandler creates a handler bound to service.
func NewCheckFilesHandler(service interfaces.DocumentService, logger interfaces.Logger, sink ResultSink, opts ...commands.HandlerOption[CheckFilesCommand]) *CheckFilesHandler {
	baseLogger := logging.Ensure(logger)
	exec := func(ctx context.Context, msg CheckFilesCommand) error {
		return runRequest(ctx, baseLogger, "check", service.Check, sink, msg.FileSelection)
	}

	handlerOpts := []commands.HandlerOption[CheckFilesCommand]{
		commands.WithLogger[CheckFilesCommand](baseLogger),
		commands.WithOperation[CheckFilesCommand](checkOperation),
		commands.WithMessageFields(func(msg CheckFilesCommand) map[string]any {
			return msg.fields()
		}),
		commands.WithObserver(commands.LogObserver[CheckFilesCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &CheckFilesHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[CheckFilesCommand].
func (h *CheckFilesHandler) Execute(ctx context.Context, msg CheckFilesCommand) error {
	return h.inner.Execute(ctx, msg)
}
