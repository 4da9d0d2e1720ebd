package rules

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

const (
	// MaxDepth bounds compound nesting.
	MaxDepth = 32
	// MaxRecords bounds the number of rule values in one set.
	MaxRecords = 4096
)

var keywordPattern = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_.-]*$`)

// Normalized is the canonical rule form used by the engines. Exactly one of
// Content and Parts is set.
type Normalized struct {
	ApplicationOrder int
	Order            *int
	Required         bool
	Content          ContentFunc
	Parts            []Normalized
}

// IsCompound reports whether the rule joins sub-rules.
func (n Normalized) IsCompound() bool {
	return n.Content == nil && n.Parts != nil
}

// NormalizedSet maps keywords to normalized rules.
type NormalizedSet map[string]Normalized

// Lookup returns the rule for keyword.
func (s NormalizedSet) Lookup(keyword string) (Normalized, bool) {
	rule, ok := s[keyword]
	return rule, ok
}

// Keywords lists keywords in lexical order.
func (s NormalizedSet) Keywords() []string {
	return slices.Sorted(maps.Keys(s))
}

// Normalize validates set and reduces every rule to its canonical form.
// Any structural problem fails the whole set.
func Normalize(set Set) (NormalizedSet, error) {
	n := &normalizer{}
	out := make(NormalizedSet, len(set))
	for _, keyword := range slices.Sorted(maps.Keys(set)) {
		if !keywordPattern.MatchString(keyword) {
			return nil, fmt.Errorf("%w: keyword %q is not a valid identifier", ErrInvalidRule, keyword)
		}
		rule, err := n.rule(set[keyword], keyword, 0, true)
		if err != nil {
			return nil, err
		}
		out[keyword] = rule
	}
	return out, nil
}

// NormalizeRule normalizes a single rule outside of a set.
func NormalizeRule(rule Rule) (Normalized, error) {
	return (&normalizer{}).rule(rule, "rule", 0, true)
}

type normalizer struct {
	records int
}

func (n *normalizer) rule(r Rule, path string, depth int, allowMeta bool) (Normalized, error) {
	if depth > MaxDepth {
		return Normalized{}, invalid(path, "nesting deeper than %d", MaxDepth)
	}
	n.records++
	if n.records > MaxRecords {
		return Normalized{}, invalid(path, "more than %d rule records", MaxRecords)
	}

	switch r.variant {
	case variantText:
		text := r.text
		return Normalized{Content: func(_ context.Context, _ Params, _ *markdown.Document) (string, error) {
			return text, nil
		}}, nil
	case variantFunc:
		if r.fn == nil {
			return Normalized{}, invalid(path, "nil content function")
		}
		return Normalized{Content: r.fn}, nil
	case variantCompound:
		parts := make([]Normalized, 0, len(r.parts))
		for i, part := range r.parts {
			normalized, err := n.rule(part, path+"["+strconv.Itoa(i)+"]", depth+1, true)
			if err != nil {
				return Normalized{}, err
			}
			parts = append(parts, normalized)
		}
		return Normalized{Parts: parts}, nil
	case variantMeta:
		if !allowMeta {
			return Normalized{}, invalid(path, "metadata cannot wrap metadata")
		}
		if r.meta == nil || r.meta.Content.IsZero() {
			return Normalized{}, invalid(path, "metadata without content")
		}
		content, err := n.rule(r.meta.Content, path+".content", depth+1, false)
		if err != nil {
			return Normalized{}, err
		}
		content.ApplicationOrder = r.meta.ApplicationOrder
		content.Required = r.meta.Required
		if r.meta.Order != nil {
			order := *r.meta.Order
			content.Order = &order
		}
		return content, nil
	default:
		return Normalized{}, invalid(path, "rule must be text, a function, a compound list or metadata")
	}
}

func invalid(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRule, path, fmt.Sprintf(format, args...))
}
