// Package rules models expansion rules: the user facing union of text,
// function, compound and metadata rules, its normalized form, and the
// resolution of rule content for a marker.
package rules

import (
	"context"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

// ContentFunc produces the Markdown inserted after an open marker. doc is
// the document being processed and must be treated as read-only.
type ContentFunc func(ctx context.Context, params Params, doc *markdown.Document) (string, error)

type variant uint8

const (
	variantInvalid variant = iota
	variantText
	variantFunc
	variantCompound
	variantMeta
)

var variantNames = [...]string{"invalid", "text", "func", "compound", "meta"}

// Rule is one of four shapes: literal text, a content function, an ordered
// compound of rules, or a metadata wrapper around one of the other three.
// The zero Rule is invalid.
type Rule struct {
	variant variant
	text    string
	fn      ContentFunc
	parts   []Rule
	meta    *Metadata
}

// Metadata decorates rule content with scheduling and validation hints.
type Metadata struct {
	Content Rule
	// ApplicationOrder sequences invocation during expansion, lowest first.
	ApplicationOrder int
	// Order, when set, is the expected relative position of the marker in
	// the document.
	Order    *int
	Required bool
}

// Text returns a rule that always yields s.
func Text(s string) Rule {
	return Rule{variant: variantText, text: s}
}

// Func returns a rule backed by fn.
func Func(fn ContentFunc) Rule {
	return Rule{variant: variantFunc, fn: fn}
}

// Static adapts a context free function.
func Static(fn func() string) Rule {
	if fn == nil {
		return Func(nil)
	}
	return Func(func(context.Context, Params, *markdown.Document) (string, error) {
		return fn(), nil
	})
}

// Compound returns a rule whose output joins the output of parts.
func Compound(parts ...Rule) Rule {
	return Rule{variant: variantCompound, parts: parts}
}

// Meta wraps content with metadata.
func Meta(m Metadata) Rule {
	return Rule{variant: variantMeta, meta: &m}
}

// Kind names the rule shape.
func (r Rule) Kind() string {
	return variantNames[r.variant]
}

// IsZero reports whether r was never initialised.
func (r Rule) IsZero() bool {
	return r.variant == variantInvalid
}

// Set maps keywords to rules.
type Set map[string]Rule

// IntPtr is a helper for Metadata.Order literals.
func IntPtr(v int) *int {
	return &v
}
