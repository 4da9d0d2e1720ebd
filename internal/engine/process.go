package engine

import (
	"context"

	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/report"
	"github.com/goliatone/go-mdexpand/internal/rules"
)

// Process cleans doc and expands it again, so running it repeatedly over its
// own output is stable. The rule set is validated before the tree is
// touched.
func (e *Engine) Process(ctx context.Context, doc *markdown.Document, opts Options) (*report.Report, error) {
	set, err := rules.Normalize(opts.Rules)
	if err != nil {
		return nil, err
	}
	ctx = contextOrBackground(ctx)

	rep, err := e.Clean(ctx, doc, opts)
	if err != nil {
		return rep, err
	}
	expanded, err := e.expand(ctx, doc, set, opts)
	rep.Append(expanded)
	return rep, err
}

// ProcessString parses source, cleans and expands it, and returns the
// resulting Markdown.
func (e *Engine) ProcessString(ctx context.Context, source string, opts Options) (string, *report.Report, error) {
	return e.onString(ctx, source, opts, e.Process)
}

// ExpandString parses source and expands it without cleaning first.
func (e *Engine) ExpandString(ctx context.Context, source string, opts Options) (string, *report.Report, error) {
	return e.onString(ctx, source, opts, e.Expand)
}

// CleanString parses source and returns it with every expansion collapsed.
func (e *Engine) CleanString(ctx context.Context, source string, opts Options) (string, *report.Report, error) {
	return e.onString(ctx, source, opts, e.Clean)
}

// CheckString validates source. The document is never modified.
func (e *Engine) CheckString(ctx context.Context, source string, opts Options) (*report.Report, error) {
	doc, err := e.parser.ParseString(source)
	if err != nil {
		return nil, err
	}
	return e.Check(ctx, doc, opts)
}

type pass func(context.Context, *markdown.Document, Options) (*report.Report, error)

func (e *Engine) onString(ctx context.Context, source string, opts Options, run pass) (string, *report.Report, error) {
	doc, err := e.parser.ParseString(source)
	if err != nil {
		return "", nil, err
	}
	rep, err := run(ctx, doc, opts)
	if err != nil {
		return "", rep, err
	}
	return doc.Markdown(), rep, nil
}
