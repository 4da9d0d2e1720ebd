// Package mdexpand expands placeholder HTML comments in Markdown documents
// with generated content, strips that content again, and validates that a
// document carries the placeholders a rule set expects.
package mdexpand

import (
	"context"

	"github.com/goliatone/go-mdexpand/internal/engine"
	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/marker"
	"github.com/goliatone/go-mdexpand/internal/report"
	"github.com/goliatone/go-mdexpand/internal/rules"
)

type (
	// Rule is a text, function, compound or metadata rule.
	Rule        = rules.Rule
	Set         = rules.Set
	Params      = rules.Params
	Metadata    = rules.Metadata
	ContentFunc = rules.ContentFunc
	Builtin     = rules.Builtin

	Document = markdown.Document
	Syntax   = marker.Syntax

	// Options configures a single string pass.
	Options  = engine.Options
	Report   = report.Report
	Message  = report.Message
	Severity = report.Severity
)

const (
	SeverityError = report.SeverityError
	SeverityWarn  = report.SeverityWarn
	SeverityInfo  = report.SeverityInfo
)

var (
	ErrInvalidRule    = rules.ErrInvalidRule
	ErrContentFailed  = rules.ErrContentFailed
	ErrUnknownBuiltin = rules.ErrUnknownBuiltin
)

// Text returns a rule that always yields s.
func Text(s string) Rule { return rules.Text(s) }

// Func returns a rule backed by fn.
func Func(fn ContentFunc) Rule { return rules.Func(fn) }

// Compound joins the output of parts.
func Compound(parts ...Rule) Rule { return rules.Compound(parts...) }

// Meta wraps a rule with ordering and presence metadata.
func Meta(m Metadata) Rule { return rules.Meta(m) }

// Order is a helper for Metadata.Order.
func Order(v int) *int { return rules.IntPtr(v) }

var defaultEngine = engine.New()

// ProcessString cleans source and then expands it, so repeated runs
// converge on the same output.
func ProcessString(ctx context.Context, source string, opts Options) (string, *Report, error) {
	return defaultEngine.ProcessString(ctx, source, opts)
}

// ExpandString inserts rule output after every placeholder in source.
func ExpandString(ctx context.Context, source string, opts Options) (string, *Report, error) {
	return defaultEngine.ExpandString(ctx, source, opts)
}

// CleanString removes generated content between placeholder pairs.
func CleanString(ctx context.Context, source string, opts Options) (string, *Report, error) {
	return defaultEngine.CleanString(ctx, source, opts)
}

// CheckString validates source against opts.Rules without modifying it.
func CheckString(ctx context.Context, source string, opts Options) (*Report, error) {
	return defaultEngine.CheckString(ctx, source, opts)
}
