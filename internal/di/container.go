// Package di wires the mdexpand runtime from configuration: logging, the
// rule registry and rule set, the engine and the document service.
package di

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-mdexpand/internal/builtin"
	"github.com/goliatone/go-mdexpand/internal/documents"
	"github.com/goliatone/go-mdexpand/internal/engine"
	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/internal/logging/console"
	"github.com/goliatone/go-mdexpand/internal/logging/gologger"
	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/rules"
	"github.com/goliatone/go-mdexpand/internal/runtimeconfig"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// ErrRuleSourceNotFound is returned when a configured rule entry is neither a
// registered set nor a readable file.
var ErrRuleSourceNotFound = errors.New("mdexpand: rule file or set not found")

// Container owns the wired services for one configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider
	logWriter      io.Writer
	fs             afero.Fs
	baseDir        string
	writer         io.Writer
	runner         builtin.Runner
	clock          func() time.Time
	metrics        interfaces.RuleMetrics
	extraRules     rules.Set
	builtins       []rules.Builtin

	parser    *markdown.Parser
	registry  *rules.Registry
	ruleSet   rules.Set
	engine    *engine.Engine
	documents *documents.Service
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider selected from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogWriter sets where the console provider writes. Defaults to stderr.
func WithLogWriter(w io.Writer) Option {
	return func(c *Container) {
		if w != nil {
			c.logWriter = w
		}
	}
}

// WithFS sets the filesystem documents and rule files are read from.
func WithFS(fs afero.Fs) Option {
	return func(c *Container) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithBaseDir resolves relative document and rule paths against dir.
func WithBaseDir(dir string) Option {
	return func(c *Container) {
		c.baseDir = strings.TrimSpace(dir)
	}
}

// WithWriter sets where printed documents go.
func WithWriter(w io.Writer) Option {
	return func(c *Container) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithRunner replaces the process runner used by the command built-ins.
func WithRunner(run builtin.Runner) Option {
	return func(c *Container) {
		if run != nil {
			c.runner = run
		}
	}
}

// WithClock overrides the clock used for dates and meta comments.
func WithClock(now func() time.Time) Option {
	return func(c *Container) {
		if now != nil {
			c.clock = now
		}
	}
}

// WithMetrics wires a rule metrics recorder.
func WithMetrics(metrics interfaces.RuleMetrics) Option {
	return func(c *Container) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithRegistry replaces the built-in registry. Missing built-ins and the
// readme set are still added to it.
func WithRegistry(registry *rules.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithBuiltins registers custom built-ins ahead of the bundled ones. A
// custom built-in shadows a bundled one of the same name.
func WithBuiltins(defs ...rules.Builtin) Option {
	return func(c *Container) {
		c.builtins = append(c.builtins, defs...)
	}
}

// WithRuleSet layers set over the rules loaded from Config.Rules.
func WithRuleSet(set rules.Set) Option {
	return func(c *Container) {
		c.extraRules = rules.Merge(c.extraRules, set)
	}
}

// NewContainer validates cfg and wires every service.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		logWriter: os.Stderr,
		fs:        afero.NewOsFs(),
		writer:    os.Stdout,
		runner:    builtin.ExecRunner,
		clock:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureRules(); err != nil {
		return nil, err
	}
	c.configureServices()

	logging.WithFields(logging.ModuleLogger(c.loggerProvider, ""), map[string]any{
		"rule_count": len(c.ruleSet),
		"builtins":   len(c.registry.List()),
	}).Debug("container.configured")

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		level, _ := console.ParseLevel(c.Config.Logging.Level)
		c.loggerProvider = console.NewProvider(console.Options{
			Writer:   c.logWriter,
			TimeFunc: c.clock,
			MinLevel: &level,
			OmitTime: true,
		})
	}
	return nil
}

func (c *Container) configureRules() error {
	if c.registry == nil {
		c.registry = rules.NewRegistry()
	}

	for _, def := range c.builtins {
		if err := c.registry.Register(def); err != nil {
			return err
		}
	}

	definitions := builtin.Definitions(
		builtin.WithFS(c.fs),
		builtin.WithDir(c.baseDir),
		builtin.WithClock(c.clock),
		builtin.WithRunner(c.runner),
		builtin.WithLogger(logging.BuiltinLogger(c.loggerProvider)),
	)
	for _, def := range definitions {
		if _, exists := c.registry.Get(def.Name); exists {
			continue
		}
		if err := c.registry.Register(def); err != nil {
			return err
		}
	}
	if _, exists := c.registry.Set(builtin.SetReadme); !exists {
		registry := c.registry
		if err := registry.RegisterSet(builtin.SetReadme, func() rules.Set { return builtin.ReadmeSet(registry) }); err != nil {
			return err
		}
	}

	loaded, err := LoadRuleSet(c.fs, c.baseDir, c.registry, c.Config.Rules)
	if err != nil {
		return err
	}
	c.ruleSet = rules.Merge(loaded, c.extraRules)

	logging.WithFields(logging.RulesLogger(c.loggerProvider), map[string]any{
		"sources":    strings.Join(c.Config.Rules, ","),
		"rule_count": len(c.ruleSet),
	}).Debug("rules.loaded")
	return nil
}

func (c *Container) configureServices() {
	c.parser = markdown.NewParser(markdown.ParseOptions{Extensions: c.Config.Extensions})

	engineLogger := logging.EngineLogger(c.loggerProvider)
	metrics := c.metrics
	if metrics == nil {
		metrics = engine.LoggingMetrics(engineLogger)
	}

	c.engine = engine.New(
		engine.WithLogger(engineLogger),
		engine.WithMetrics(metrics),
		engine.WithClock(c.clock),
		engine.WithParser(c.parser),
	)

	c.documents = documents.NewService(c.engine, c.ruleSet,
		documents.WithFS(c.fs),
		documents.WithBaseDir(c.baseDir),
		documents.WithLogger(logging.DocumentsLogger(c.loggerProvider)),
		documents.WithWriter(c.writer),
		documents.WithParser(c.parser),
	)
}

// LoadRuleSet resolves each source as a registered set name first and as a
// YAML or JSON rule file otherwise. Later sources win per keyword.
func LoadRuleSet(fs afero.Fs, baseDir string, registry *rules.Registry, sources []string) (rules.Set, error) {
	sets := make([]rules.Set, 0, len(sources))
	for _, source := range sources {
		source = strings.TrimSpace(source)
		if source == "" {
			continue
		}
		if set, ok := registry.Set(source); ok {
			sets = append(sets, set)
			continue
		}

		path := source
		if baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrRuleSourceNotFound, source)
			}
			return nil, fmt.Errorf("read rule file %s: %w", source, err)
		}
		set, err := rules.Decode(data, registry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		sets = append(sets, set)
	}
	return rules.Merge(sets...), nil
}

// LoggerProvider returns the configured provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// Registry returns the built-in and rule set catalogue.
func (c *Container) Registry() *rules.Registry {
	return c.registry
}

// RuleSet returns the merged rule set bound to the document service.
func (c *Container) RuleSet() rules.Set {
	return c.ruleSet
}

// Engine returns the shared engine.
func (c *Container) Engine() *engine.Engine {
	return c.engine
}

// Parser returns the configured Markdown parser.
func (c *Container) Parser() *markdown.Parser {
	return c.parser
}

// DocumentService returns the file level service.
func (c *Container) DocumentService() interfaces.DocumentService {
	return c.documents
}
