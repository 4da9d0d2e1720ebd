package mdexpand

import (
	"io"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-mdexpand/internal/builtin"
	"github.com/goliatone/go-mdexpand/internal/commands"
	documentscmd "github.com/goliatone/go-mdexpand/internal/commands/documents"
	"github.com/goliatone/go-mdexpand/internal/di"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

type (
	DocumentService = interfaces.DocumentService
	DocumentRequest = interfaces.DocumentRequest
	DocumentResult  = interfaces.DocumentResult
	FileResult      = interfaces.FileResult
	ReportEntry     = interfaces.ReportEntry
	SyntaxOptions   = interfaces.SyntaxOptions
	Logger          = interfaces.Logger
	LoggerProvider  = interfaces.LoggerProvider
	RuleMetrics     = interfaces.RuleMetrics

	// Runner executes external commands for the command built-ins.
	Runner = builtin.Runner

	// CommandHandlers groups the expand, clean and check command handlers.
	CommandHandlers = documentscmd.HandlerSet
	// ResultSink receives document results from command handlers.
	ResultSink = documentscmd.ResultSink
)

// Option customises module construction.
type Option = di.Option

// WithLoggerProvider overrides the provider selected from Config.Logging.
func WithLoggerProvider(provider LoggerProvider) Option { return di.WithLoggerProvider(provider) }

// WithLogWriter sets where the console logger writes.
func WithLogWriter(w io.Writer) Option { return di.WithLogWriter(w) }

// WithFS sets the filesystem documents and rule files are read from.
func WithFS(fs afero.Fs) Option { return di.WithFS(fs) }

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) Option { return di.WithBaseDir(dir) }

// WithWriter sets where printed documents go.
func WithWriter(w io.Writer) Option { return di.WithWriter(w) }

// WithRunner replaces the process runner used by command built-ins.
func WithRunner(run Runner) Option { return di.WithRunner(run) }

// WithClock overrides the clock used for dates and meta comments.
func WithClock(now func() time.Time) Option { return di.WithClock(now) }

// WithMetrics wires a rule metrics recorder.
func WithMetrics(metrics RuleMetrics) Option { return di.WithMetrics(metrics) }

// WithBuiltins registers custom built-ins so rule files can reference them
// by name.
func WithBuiltins(defs ...Builtin) Option { return di.WithBuiltins(defs...) }

// WithRules layers set over the rules named in Config.Rules.
func WithRules(set Set) Option { return di.WithRuleSet(set) }

// Module is the top level runtime facade.
type Module struct {
	container *di.Container

	commandsOnce sync.Once
	handlers     *CommandHandlers
	commandsErr  error
	sink         ResultSink
}

// New constructs a module from cfg.
func New(cfg Config, opts ...Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying wiring for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Documents returns the file level service bound to the configured rules.
func (m *Module) Documents() DocumentService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.DocumentService()
}

// Rules returns the merged rule set.
func (m *Module) Rules() Set {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.RuleSet()
}

// Builtins lists the registered built-in rules.
func (m *Module) Builtins() []Builtin {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Registry().List()
}

// RuleSetNames lists the named rule sets that Config.Rules may reference.
func (m *Module) RuleSetNames() []string {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Registry().SetNames()
}

// OnResult installs sink on the command handlers. It must be called before
// the first call to Commands.
func (m *Module) OnResult(sink ResultSink) {
	m.sink = sink
}

// Commands returns the command handlers, building them on first use. The
// handler timeout follows Config.CommandTimeout.
func (m *Module) Commands() (*CommandHandlers, error) {
	m.commandsOnce.Do(func() {
		m.handlers, m.commandsErr = documentscmd.RegisterDocumentCommands(nil, m.Documents(), m.container.LoggerProvider(), m.commandOptions()...)
	})
	return m.handlers, m.commandsErr
}

func (m *Module) commandOptions() []documentscmd.Option {
	opts := []documentscmd.Option{documentscmd.WithResultSink(m.sink)}
	if timeout := m.container.Config.CommandTimeout; timeout > 0 {
		opts = append(opts,
			documentscmd.WithExpandHandlerOptions(commands.WithTimeout[documentscmd.ExpandFilesCommand](timeout)),
			documentscmd.WithCleanHandlerOptions(commands.WithTimeout[documentscmd.CleanFilesCommand](timeout)),
			documentscmd.WithCheckHandlerOptions(commands.WithTimeout[documentscmd.CheckFilesCommand](timeout)),
		)
	}
	return opts
}
