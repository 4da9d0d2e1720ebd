package rules

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

// Mode selects how compound failures are handled.
type Mode uint8

const (
	// ModeExpand drops failing compound parts so the remaining parts still
	// render.
	ModeExpand Mode = iota
	// ModeCheck aborts on the first failing part.
	ModeCheck
)

func (m Mode) String() string {
	if m == ModeCheck {
		return "check"
	}
	return "expand"
}

// PartSeparator joins the output of compound parts.
const PartSeparator = "\n\n"

// Resolve produces the content of rule for a marker carrying params.
// Compound rules hand params[i] to part i when params is an array and an
// empty object otherwise.
func Resolve(ctx context.Context, rule Normalized, params any, doc *markdown.Document, mode Mode) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch {
	case rule.Content != nil:
		return call(ctx, rule.Content, ParamsFrom(params), doc)
	case rule.Parts != nil:
		outputs := make([]string, 0, len(rule.Parts))
		for i, part := range rule.Parts {
			out, err := Resolve(ctx, part, partParams(params, i), doc, mode)
			if err != nil {
				if mode == ModeCheck {
					return "", fmt.Errorf("part %d: %w", i, err)
				}
				continue
			}
			if strings.TrimSpace(out) != "" {
				outputs = append(outputs, out)
			}
		}
		return strings.Join(outputs, PartSeparator), nil
	default:
		return "", fmt.Errorf("%w: rule has no content", ErrContentFailed)
	}
}

func partParams(params any, i int) any {
	list, ok := params.([]any)
	if !ok || i >= len(list) || list[i] == nil {
		return map[string]any{}
	}
	return list[i]
}

func call(ctx context.Context, fn ContentFunc, params Params, doc *markdown.Document) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("%w: panic: %v", ErrContentFailed, r)
		}
	}()

	out, err = fn(ctx, params, doc)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentFailed, err)
	}
	return out, nil
}
