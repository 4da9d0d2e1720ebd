package mdexpand

import (
	"errors"
	"fmt"

	documentscmd "github.com/goliatone/go-mdexpand/internal/commands/documents"
	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
)

type (
	ExpandFilesCommand = documentscmd.ExpandFilesCommand
	CleanFilesCommand  = documentscmd.CleanFilesCommand
	CheckFilesCommand  = documentscmd.CheckFilesCommand
	FileSelection      = documentscmd.FileSelection
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures where handlers are registered.
type RegistrationOptions struct {
	Registry   CommandRegistry
	Dispatcher CommandDispatcher
}

// RegistrationResult captures the handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterCommands builds the module's command handlers and registers them
// with the registry and dispatcher given in opts. Registration errors are
// joined; handlers that did register stay registered.
func RegisterCommands(m *Module, opts RegistrationOptions) (*RegistrationResult, error) {
	if m == nil {
		return &RegistrationResult{}, nil
	}
	set, err := m.Commands()
	if err != nil {
		return nil, err
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0, 3),
		Subscriptions: make([]CommandSubscription, 0, 3),
	}

	var errs error
	for _, handler := range []any{set.Expand, set.Clean, set.Check} {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}
		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}
	return result, errs
}

// ErrUnsupportedHandler is returned by the go-command dispatcher adapter for
// handlers it does not know how to subscribe.
var ErrUnsupportedHandler = errors.New("mdexpand: unsupported command handler")

// GoCommandDispatcher subscribes mdexpand handlers to the global go-command
// dispatcher so messages can be sent with dispatcher.Dispatch.
type GoCommandDispatcher struct{}

var _ CommandDispatcher = GoCommandDispatcher{}

// RegisterCommand implements CommandDispatcher.
func (GoCommandDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case command.Commander[ExpandFilesCommand]:
		return dispatcher.SubscribeCommand(h), nil
	case command.Commander[CleanFilesCommand]:
		return dispatcher.SubscribeCommand(h), nil
	case command.Commander[CheckFilesCommand]:
		return dispatcher.SubscribeCommand(h), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedHandler, handler)
	}
}
