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

type checked struct {
	marker.Descriptor
	rule  rules.Normalized
	bound bool
}

// Check validates doc against the rule set without modifying it. Error
// level checks run before warnings so the report reads in severity order.
func (e *Engine) Check(ctx context.Context, doc *markdown.Document, opts Options) (*report.Report, error) {
	set, err := rules.Normalize(opts.Rules)
	if err != nil {
		return nil, err
	}
	ctx = contextOrBackground(ctx)
	logger := e.baseLogger(ctx, doc, "engine.check")
	syntax := opts.Syntax.WithDefaults()
	rep := report.New()

	var markers []checked
	opened := map[string]bool{}
	for _, d := range marker.Walk(doc.Root, syntax) {
		c := checked{Descriptor: d}
		if d.Is(marker.TypeOpen) {
			opened[d.Keyword] = true
			c.rule, c.bound = set.Lookup(d.Keyword)
		}
		markers = append(markers, c)
	}
	keywords := set.Keywords()

	for _, keyword := range keywords {
		if rule := set[keyword]; rule.Required && !opened[keyword] {
			rep.Errorf(report.StageCheck, report.CodeMissingRequired, keyword, nil,
				"Missing required comment: %s", keyword)
		}
	}
	checkOrder(rep, markers)
	checkMeta(rep, markers, opts.AddMetaComment)
	if err := e.checkContent(ctx, rep, markers, doc); err != nil {
		return rep, err
	}

	for _, keyword := range keywords {
		if rule := set[keyword]; !rule.Required && !opened[keyword] {
			rep.Infof(report.StageCheck, report.CodeMissingOptional, keyword, nil,
				"Missing optional comment: %s", keyword)
		}
	}
	for _, m := range markers {
		if m.Is(marker.TypeOpen) && !m.bound {
			rep.Warnf(report.StageCheck, report.CodeMissingRule, m.Keyword, m.Node,
				"Missing rule for comment: %s", m.Keyword)
		}
	}
	if syntax.KeywordPrefix != "" {
		for _, m := range markers {
			if !m.Is(marker.TypeNative) {
				continue
			}
			if _, ok := set.Lookup(m.Content); ok {
				rep.Warnf(report.StageCheck, report.CodeMissingPrefix, m.Content, m.Node,
					"Comment matches a rule but is missing its prefix %q: %s", syntax.KeywordPrefix, m.Content)
			}
		}
	}

	logger.Debug("engine.check.completed",
		"markers", len(markers),
		"errors", rep.Count(report.SeverityError),
		"warnings", rep.Count(report.SeverityWarn),
	)
	return rep, nil
}

func checkOrder(rep *report.Report, markers []checked) {
	var found []checked
	for _, m := range markers {
		if m.Is(marker.TypeOpen) && m.bound && m.rule.Order != nil {
			found = append(found, m)
		}
	}
	expected := slices.Clone(found)
	slices.SortStableFunc(expected, func(a, b checked) int {
		return *a.rule.Order - *b.rule.Order
	})

	foundLabels, expectedLabels := orderLabels(found), orderLabels(expected)
	if slices.Equal(foundLabels, expectedLabels) {
		return
	}

	table := [][]string{{"Found", "Expected"}}
	for i := range foundLabels {
		table = append(table, []string{foundLabels[i], expectedLabels[i]})
	}
	rep.Add(report.Message{
		Severity: report.SeverityError,
		Stage:    report.StageCheck,
		Code:     report.CodeOrder,
		Text:     "Comments out of order",
		Table:    table,
	})
}

func orderLabels(markers []checked) []string {
	labels := make([]string, len(markers))
	for i, m := range markers {
		labels[i] = fmt.Sprintf("%d. %s", i+1, m.Keyword)
	}
	return labels
}

func checkMeta(rep *report.Report, markers []checked, want bool) {
	var metas []checked
	for _, m := range markers {
		if m.Is(marker.TypeMeta) {
			metas = append(metas, m)
		}
	}

	switch {
	case len(metas) > 1:
		rep.Errorf(report.StageCheck, report.CodeMeta, "", metas[1].Node, "Multiple meta comments")
	case want && len(metas) == 0:
		rep.Errorf(report.StageCheck, report.CodeMeta, "", nil, "Missing meta comment")
	case !want && len(metas) == 1:
		rep.Errorf(report.StageCheck, report.CodeMeta, "", metas[0].Node, "Unexpected meta comment")
	}
}

// checkContent calls every bound rule once, failing compound rules on their
// first failing part.
func (e *Engine) checkContent(ctx context.Context, rep *report.Report, markers []checked, doc *markdown.Document) error {
	for _, m := range markers {
		if !m.Is(marker.TypeOpen) || !m.bound {
			continue
		}
		out, err := e.resolve(ctx, m.Keyword, m.rule, m.Params, doc, rules.ModeCheck)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			rep.Errorf(report.StageCheck, report.CodeContentFailed, m.Keyword, m.Node,
				"Error getting comment content: %s: %v", m.Keyword, err)
		case strings.TrimSpace(out) == "":
			rep.Errorf(report.StageCheck, report.CodeEmptyContent, m.Keyword, m.Node,
				"Comment returned empty content: %s", m.Keyword)
		}
	}
	return nil
}
