// Package builtin ships the rules that rule files can reference by name.
package builtin

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/spf13/afero"

	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/internal/rules"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

const (
	NameTOC         = "table-of-contents"
	NameCLIHelp     = "cli-help"
	NameCommand     = rules.CommandBuiltin
	NameJSONField   = "json-field"
	NameDate        = "date"
	NameFrontMatter = "front-matter"

	SetReadme = "readme"
)

// ErrMissingParam is returned when a built-in is invoked without a required
// parameter.
var ErrMissingParam = errors.New("builtin: missing parameter")

// Runner executes name with args in dir and returns its combined output.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs commands through os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

type env struct {
	fs     afero.Fs
	dir    string
	now    func() time.Time
	run    Runner
	logger interfaces.Logger
}

// Option customises the environment shared by the built-ins.
type Option func(*env)

// WithFS sets the filesystem used by file reading built-ins.
func WithFS(fs afero.Fs) Option {
	return func(e *env) {
		if fs != nil {
			e.fs = fs
		}
	}
}

// WithDir sets the directory commands run in and relative files resolve
// against.
func WithDir(dir string) Option {
	return func(e *env) {
		e.dir = dir
	}
}

// WithClock overrides the clock used by the date built-in.
func WithClock(now func() time.Time) Option {
	return func(e *env) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunner overrides how external commands are executed.
func WithRunner(run Runner) Option {
	return func(e *env) {
		if run != nil {
			e.run = run
		}
	}
}

// WithLogger attaches a logger used for command diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *env) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Definitions returns the built-in catalogue bound to opts.
func Definitions(opts ...Option) []rules.Builtin {
	e := &env{
		fs:     afero.NewOsFs(),
		now:    time.Now,
		run:    ExecRunner,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return []rules.Builtin{
		tocDefinition(),
		cliHelpDefinition(e),
		commandDefinition(e),
		jsonFieldDefinition(e),
		dateDefinition(e),
		frontMatterDefinition(),
	}
}

// Register adds the built-ins and the built-in rule sets to registry.
func Register(registry *rules.Registry, opts ...Option) error {
	for _, definition := range Definitions(opts...) {
		if err := registry.Register(definition); err != nil {
			return err
		}
	}
	return registry.RegisterSet(SetReadme, func() rules.Set {
		return ReadmeSet(registry)
	})
}

// ReadmeSet is the rule set for a typical project README: a title taken
// from front matter, a table of contents and the generation date.
func ReadmeSet(registry *rules.Registry) rules.Set {
	set := rules.Set{}
	if b, ok := registry.Get(NameFrontMatter); ok {
		set["title"] = rules.Meta(rules.Metadata{
			Content:  b.Func(rules.Params{"field": "title", "format": "# %s"}),
			Order:    rules.IntPtr(1),
			Required: true,
		})
	}
	if b, ok := registry.Get(NameTOC); ok {
		set[NameTOC] = rules.Meta(rules.Metadata{
			Content:          b.Func(nil),
			ApplicationOrder: b.ApplicationOrder,
			Order:            rules.IntPtr(2),
		})
	}
	if b, ok := registry.Get(NameDate); ok {
		set[NameDate] = b.Rule(nil)
	}
	return set
}
