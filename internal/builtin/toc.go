package builtin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/rules"
)

var errNoHeadings = errors.New("builtin: no headings for table of contents")

func tocDefinition() rules.Builtin {
	return rules.Builtin{
		Name:        NameTOC,
		Description: "Nested list of links to the document headings",
		Defaults: rules.Params{
			"depth":   3,
			"heading": "Table of contents",
		},
		// Runs after the other rules so generated headings are listed.
		ApplicationOrder: 1,
		Content: func(_ context.Context, params rules.Params, doc *markdown.Document) (string, error) {
			return tableOfContents(doc.Headings(), params.String("heading", ""), params.Int("depth", 3))
		},
	}
}

func tableOfContents(headings []markdown.Heading, title string, depth int) (string, error) {
	var entries []markdown.Heading
	skippedTitle := false
	for _, h := range headings {
		if h.Level == 1 && !skippedTitle {
			skippedTitle = true
			continue
		}
		if title != "" && strings.EqualFold(h.Text, title) {
			continue
		}
		entries = append(entries, h)
	}
	if len(entries) == 0 {
		return "", errNoHeadings
	}

	base := entries[0].Level
	for _, h := range entries {
		base = min(base, h.Level)
	}

	seen := map[string]int{}
	lines := make([]string, 0, len(entries))
	for _, h := range entries {
		indent := h.Level - base
		if indent >= depth {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s- [%s](#%s)", strings.Repeat("  ", indent), h.Text, anchor(h.Text, seen)))
	}

	list := strings.Join(lines, "\n")
	if title == "" {
		return list, nil
	}
	return "## " + title + "\n\n" + list, nil
}

// anchor returns a unique fragment for text, suffixing repeats with -1, -2.
func anchor(text string, seen map[string]int) string {
	base, err := slug.Normalize(text)
	if err != nil || base == "" {
		base = strings.ToLower(strings.Join(strings.Fields(text), "-"))
	}
	n := seen[base]
	seen[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}
