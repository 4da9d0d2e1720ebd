package engine

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/marker"
	"github.com/goliatone/go-mdexpand/internal/report"
	"github.com/goliatone/go-mdexpand/internal/rules"
)

// MetaDateLayout formats the date stamped into the meta comment.
const MetaDateLayout = "2006-01-02"

type pending struct {
	marker marker.Descriptor
	rule   rules.Normalized
}

// Expand inserts rule output after every open marker that has a rule, each
// followed by a matching closing marker. Invalid rule sets fail before the
// tree is touched; rule failures are reported and leave their marker
// unexpanded.
func (e *Engine) Expand(ctx context.Context, doc *markdown.Document, opts Options) (*report.Report, error) {
	set, err := rules.Normalize(opts.Rules)
	if err != nil {
		return nil, err
	}
	return e.expand(contextOrBackground(ctx), doc, set, opts)
}

func (e *Engine) expand(ctx context.Context, doc *markdown.Document, set rules.NormalizedSet, opts Options) (*report.Report, error) {
	logger := e.baseLogger(ctx, doc, "engine.expand")
	syntax := opts.Syntax.WithDefaults()
	rep := report.New()

	marker.Split(doc.Root, syntax)

	var queue []pending
	for _, d := range marker.Walk(doc.Root, syntax) {
		if !d.Is(marker.TypeOpen) {
			continue
		}
		if rule, ok := set.Lookup(d.Keyword); ok {
			queue = append(queue, pending{marker: d, rule: rule})
		}
	}
	slices.SortStableFunc(queue, func(a, b pending) int {
		return a.rule.ApplicationOrder - b.rule.ApplicationOrder
	})

	expanded := 0
	for _, item := range queue {
		d := item.marker
		out, err := e.resolve(ctx, d.Keyword, item.rule, d.Params, doc, rules.ModeExpand)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return rep, ctxErr
			}
			logger.Warn("engine.expand.rule_failed", "keyword", d.Keyword, "line", d.Line, "error", err)
			rep.Errorf(report.StageExpand, report.CodeContentFailed, d.Keyword, d.Node,
				"Failed to expand %q comment: %v", d.Keyword, err)
			continue
		}

		var nodes []*markdown.Node
		if strings.TrimSpace(out) == "" {
			rep.Errorf(report.StageExpand, report.CodeEmptyContent, d.Keyword, d.Node,
				"Rule for %q comment returned no content", d.Keyword)
		} else {
			nodes = doc.ParseFragment(out)
		}
		nodes = append(nodes, markdown.NewHTML(syntax.CloseComment(d.Keyword)))

		if err := d.Parent.InsertAfter(d.Node, nodes...); err != nil {
			rep.Errorf(report.StageExpand, report.CodeContentFailed, d.Keyword, d.Node,
				"Failed to expand %q comment: %v", d.Keyword, err)
			continue
		}
		expanded++
		rep.Infof(report.StageExpand, report.CodeExpanded, d.Keyword, d.Node,
			"Successfully expanded %q comment", d.Keyword)
	}

	if opts.AddMetaComment {
		doc.Root.Prepend(markdown.NewHTML(e.MetaComment(syntax)))
	}

	logger.Debug("engine.expand.completed", "markers", len(queue), "expanded", expanded)
	return rep, nil
}

// MetaComment renders the warning comment stamped with the engine clock.
func (e *Engine) MetaComment(syntax marker.Syntax) string {
	syntax = syntax.WithDefaults()
	return fmt.Sprintf("<!--%s Warning: Content inside HTML comment blocks was generated by mdexpand and may be overwritten. (%s) %s-->",
		syntax.MetaIdentifier, e.now().Format(MetaDateLayout), syntax.MetaIdentifier)
}
