package documentscmd

import (
	"github.com/goliatone/go-mdexpand/internal/commands"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterDocumentCommands.
type HandlerSet struct {
	Expand *ExpandFilesHandler
	Clean  *CleanFilesHandler
	Check  *CheckFilesHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	sink       ResultSink
	expandOpts []commands.HandlerOption[ExpandFilesCommand]
	cleanOpts  []commands.HandlerOption[CleanFilesCommand]
	checkOpts  []commands.HandlerOption[CheckFilesCommand]
}

// WithResultSink forwards every run result to sink.
func WithResultSink(sink ResultSink) Option {
	return func(cfg *options) {
		cfg.sink = sink
	}
}

// WithExpandHandlerOptions forwards options to the expand handler.
func WithExpandHandlerOptions(opts ...commands.HandlerOption[ExpandFilesCommand]) Option {
	return func(cfg *options) {
		cfg.expandOpts = append(cfg.expandOpts, opts...)
	}
}

// WithCleanHandlerOptions forwards options to the clean handler.
func WithCleanHandlerOptions(opts ...commands.HandlerOption[CleanFilesCommand]) Option {
	return func(cfg *options) {
		cfg.cleanOpts = append(cfg.cleanOpts, opts...)
	}
}

// WithCheckHandlerOptions forwards options to the check handler.
func WithCheckHandlerOptions(opts ...commands.HandlerOption[CheckFilesCommand]) Option {
	return func(cfg *options) {
		cfg.checkOpts = append(cfg.checkOpts, opts...)
	}
}

// RegisterDocumentCommands builds the document handlers and registers them
// with reg when it is not nil.
func RegisterDocumentCommands(reg CommandRegistry, service interfaces.DocumentService, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "documents")
	set := &HandlerSet{
		Expand: NewExpandFilesHandler(service, logger, cfg.sink, cfg.expandOpts...),
		Clean:  NewCleanFilesHandler(service, logger, cfg.sink, cfg.cleanOpts...),
		Check:  NewCheckFilesHandler(service, logger, cfg.sink, cfg.checkOpts...),
	}

	if reg != nil {
		for _, handler := range []any{set.Expand, set.Clean, set.Check} {
			if err := reg.RegisterCommand(handler); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}
