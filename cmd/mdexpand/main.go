// Command mdexpand expands, cleans and checks the comment markers of
// Markdown files.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/spf13/afero"

	"github.com/goliatone/go-mdexpand"
	"github.com/goliatone/go-mdexpand/internal/reporter"
)

// errReport marks a run whose report holds errors. The report has already
// been printed, so nothing else is written for it.
var errReport = errors.New("report holds errors")

type cli struct {
	Config    string `name:"config" short:"c" help:"Config file. Defaults to mdexpand.yaml in the working directory." type:"path"`
	Verbose   bool   `short:"v" help:"Show info entries and info level logs."`
	LogFormat string `name:"log-format" help:"Log format: console, json or pretty. json and pretty log through go-logger."`

	Expand expandCmd `cmd:"" default:"withargs" help:"Expand marker comments (default)."`
	Clean  cleanCmd  `cmd:"" help:"Remove generated content, keeping the markers."`
	Check  checkCmd  `cmd:"" help:"Validate markers without writing."`
	Rules  rulesCmd  `cmd:"" help:"List built-in rules and rule sets."`
}

type selectionFlags struct {
	Files         []string `arg:"" optional:"" help:"Files or doublestar patterns. Defaults to README.md."`
	Rules         []string `short:"r" sep:"," help:"Rule files or built-in rule set names. Later entries win."`
	Prefix        string   `help:"Keyword prefix of marker comments."`
	ClosingPrefix string   `name:"closing-prefix" help:"Prefix of closing marker comments."`
	Meta          bool     `help:"Add the generated content warning on expand, require it on check."`
}

func (f selectionFlags) overrides() mdexpand.Config {
	return mdexpand.Config{
		Files:       f.Files,
		Rules:       f.Rules,
		MetaComment: f.Meta,
		Syntax: mdexpand.SyntaxConfig{
			KeywordPrefix: f.Prefix,
			ClosingPrefix: f.ClosingPrefix,
		},
	}
}

type outputFlags struct {
	Output string `short:"o" help:"Write results into this directory instead of in place."`
	Name   string `short:"n" help:"Rename the output file. Needs a single input file."`
	Print  bool   `help:"Print results to stdout instead of writing files."`
}

func (f outputFlags) apply(cfg *mdexpand.Config) {
	cfg.Output = f.Output
	cfg.Name = f.Name
	cfg.Print = f.Print
}

type expandCmd struct {
	selectionFlags `embed:""`
	outputFlags    `embed:""`

	Check bool `help:"Only check the files."`
}

func (c *expandCmd) Run(a *app) error {
	overrides := c.overrides()
	c.apply(&overrides)
	overrides.Check = c.Check
	return a.process(operationExpand, overrides)
}

type cleanCmd struct {
	selectionFlags `embed:""`
	outputFlags    `embed:""`
}

func (c *cleanCmd) Run(a *app) error {
	overrides := c.overrides()
	c.apply(&overrides)
	return a.process(operationClean, overrides)
}

type checkCmd struct {
	selectionFlags `embed:""`
}

func (c *checkCmd) Run(a *app) error {
	return a.process(operationCheck, c.overrides())
}

type rulesCmd struct {
	Rules []string `short:"r" sep:"," help:"Rule files or rule set names to load before listing."`
}

func (c *rulesCmd) Run(a *app) error {
	cfg, err := a.loadConfig(mdexpand.Config{Rules: c.Rules})
	if err != nil {
		return err
	}
	module, err := a.module(cfg)
	if err != nil {
		return err
	}

	builtins := module.Builtins()
	sort.Slice(builtins, func(i, j int) bool { return builtins[i].Name < builtins[j].Name })
	entries := make([]reporter.CatalogueEntry, 0, len(builtins))
	for _, b := range builtins {
		entries = append(entries, reporter.CatalogueEntry{Name: b.Name, Description: b.Description})
	}
	return reporter.New(a.stdout).RenderCatalogue(entries, module.RuleSetNames())
}

const (
	operationExpand = "expand"
	operationClean  = "clean"
	operationCheck  = "check"
)

// app carries the process environment into the kong commands.
type app struct {
	ctx     context.Context
	cli     *cli
	fs      afero.Fs
	dir     string
	environ func() []string
	stdout  io.Writer
	stderr  io.Writer
}

func (a *app) loadConfig(overrides mdexpand.Config) (mdexpand.Config, error) {
	if a.cli.Verbose {
		overrides.Logging.Level = "info"
	}
	if format := strings.ToLower(strings.TrimSpace(a.cli.LogFormat)); format != "" {
		overrides.Logging.Format = format
		if format != "console" {
			overrides.Logging.Provider = "gologger"
		}
	}

	cfg, _, err := mdexpand.LoadConfig(mdexpand.LoadOptions{
		Fs:        a.fs,
		File:      a.cli.Config,
		Dir:       a.dir,
		Environ:   a.environ,
		Overrides: &overrides,
	})
	return cfg, err
}

func (a *app) module(cfg mdexpand.Config) (*mdexpand.Module, error) {
	return mdexpand.New(cfg,
		mdexpand.WithFS(a.fs),
		mdexpand.WithBaseDir(a.dir),
		mdexpand.WithWriter(a.stdout),
		mdexpand.WithLogWriter(a.stderr),
	)
}

func (a *app) process(operation string, overrides mdexpand.Config) error {
	cfg, err := a.loadConfig(overrides)
	if err != nil {
		return err
	}
	if operation == operationExpand && cfg.Check {
		operation = operationCheck
	}

	module, err := a.module(cfg)
	if err != nil {
		return err
	}

	// Printed documents own stdout.
	out := a.stdout
	if cfg.Print {
		out = a.stderr
	}
	report := reporter.New(out, reporter.WithVerbose(a.cli.Verbose))

	failed := false
	module.OnResult(func(_ context.Context, op string, result *mdexpand.DocumentResult) {
		if result.HasErrors() {
			failed = true
		}
		if err := report.Render(op, result); err != nil {
			fmt.Fprintf(a.stderr, "mdexpand: render report: %v\n", err)
		}
	})

	handlers, err := module.Commands()
	if err != nil {
		return err
	}

	selection := mdexpand.FileSelection{
		Files:       cfg.Files,
		MetaComment: cfg.MetaComment,
		Syntax: mdexpand.SyntaxOptions{
			KeywordPrefix:  cfg.Syntax.KeywordPrefix,
			ClosingPrefix:  cfg.Syntax.ClosingPrefix,
			MetaIdentifier: cfg.Syntax.MetaIdentifier,
		},
	}
	if operation != operationCheck {
		selection.Output = cfg.Output
		selection.Name = cfg.Name
		selection.Print = cfg.Print
	}

	switch operation {
	case operationClean:
		err = handlers.Clean.Execute(a.ctx, mdexpand.CleanFilesCommand{FileSelection: selection})
	case operationCheck:
		err = handlers.Check.Execute(a.ctx, mdexpand.CheckFilesCommand{FileSelection: selection})
	default:
		err = handlers.Expand.Execute(a.ctx, mdexpand.ExpandFilesCommand{FileSelection: selection})
	}
	if err != nil {
		return err
	}
	if failed {
		return errReport
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "mdexpand: %v\n", err)
		os.Exit(1)
	}

	code := run(ctx, os.Args[1:], &app{
		fs:      afero.NewOsFs(),
		dir:     dir,
		environ: os.Environ,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	})
	stop()
	os.Exit(code)
}

// run parses args and executes the selected command. It returns the process
// exit code: 0 on success, 1 when a run fails or reports errors, 2 on usage
// errors.
func run(ctx context.Context, args []string, a *app) int {
	var c cli
	exitCode := -1
	parser, err := kong.New(&c,
		kong.Name("mdexpand"),
		kong.Description("Expand generated content between comment markers in Markdown files."),
		kong.Writers(a.stdout, a.stderr),
		kong.Exit(func(code int) { exitCode = code }),
	)
	if err != nil {
		fmt.Fprintf(a.stderr, "mdexpand: %v\n", err)
		return 2
	}

	kctx, err := parser.Parse(args)
	if exitCode >= 0 {
		return exitCode
	}
	if err != nil {
		fmt.Fprintf(a.stderr, "mdexpand: %v\n", err)
		return 2
	}

	a.ctx = ctx
	a.cli = &c
	if err := kctx.Run(a); err != nil {
		if !errors.Is(err, errReport) {
			fmt.Fprintf(a.stderr, "mdexpand: %v\n", err)
		}
		return 1
	}
	return 0
}
