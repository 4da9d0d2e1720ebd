package engine

import (
	"context"
	"slices"

	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/marker"
	"github.com/goliatone/go-mdexpand/internal/report"
)

// Clean collapses every expanded region back to its open marker and drops
// meta comments. Only the most recent open marker is tracked, so pairs of
// different keywords that interleave are reported rather than cleaned.
func (e *Engine) Clean(ctx context.Context, doc *markdown.Document, opts Options) (*report.Report, error) {
	ctx = contextOrBackground(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := e.baseLogger(ctx, doc, "engine.clean")
	syntax := opts.Syntax.WithDefaults()
	rep := report.New()

	marker.Split(doc.Root, syntax)

	var (
		last    *marker.Descriptor
		cleaned int
		metas   int
	)
	descriptors := marker.Walk(doc.Root, syntax)
	for i := range descriptors {
		d := descriptors[i]
		switch d.Type {
		case marker.TypeMeta:
			if d.Parent.Remove(d.Node) {
				metas++
			}
		case marker.TypeOpen:
			last = &descriptors[i]
		case marker.TypeClose:
			switch {
			case last == nil:
				rep.Errorf(report.StageClean, report.CodeMismatch, d.Keyword, d.Node,
					"Found closing marker %q without opening marker", d.Keyword)
			case last.Parent != d.Parent:
				rep.Errorf(report.StageClean, report.CodeMismatch, d.Keyword, d.Node,
					"Opening marker %q doesn't share a parent with closing marker %q", last.Keyword, d.Keyword)
			case last.Keyword != d.Keyword:
				rep.Errorf(report.StageClean, report.CodeMismatch, d.Keyword, d.Node,
					"Opening marker %q doesn't share a keyword with closing marker %q", last.Keyword, d.Keyword)
			default:
				if !collapse(d.Parent, last.Node, d.Node) {
					rep.Errorf(report.StageClean, report.CodeMismatch, d.Keyword, d.Node,
						"Closing marker %q precedes its opening marker", d.Keyword)
					continue
				}
				cleaned++
				last = nil
			}
		}
	}

	logger.Debug("engine.clean.completed", "cleaned", cleaned, "meta_removed", metas)
	return rep, nil
}

// collapse removes the nodes strictly between open and end, then end.
func collapse(parent, open, end *markdown.Node) bool {
	from, to := parent.IndexOf(open), parent.IndexOf(end)
	if from < 0 || to <= from {
		return false
	}
	for _, node := range slices.Clone(parent.Children[from+1 : to+1]) {
		parent.Remove(node)
	}
	return true
}
