package rules

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

func TestNormalizeShapes(t *testing.T) {
	set := Set{
		"text":  Text("hello"),
		"fn":    Static(func() string { return "from func" }),
		"multi": Compound(Text("a"), Static(func() string { return "b" })),
		"meta": Meta(Metadata{
			Content:          Compound(Text("x"), Text("y")),
			ApplicationOrder: 2,
			Order:            IntPtr(3),
			Required:         true,
		}),
	}

	normalized, err := Normalize(set)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if got := normalized.Keywords(); strings.Join(got, ",") != "fn,meta,multi,text" {
		t.Fatalf("unexpected keywords %v", got)
	}

	text := normalized["text"]
	if text.Content == nil || text.ApplicationOrder != 0 || text.Order != nil || text.Required {
		t.Fatalf("expected defaults for text rule, got %+v", text)
	}

	meta := normalized["meta"]
	if !meta.IsCompound() || len(meta.Parts) != 2 {
		t.Fatalf("expected compound content for meta rule, got %+v", meta)
	}
	if meta.ApplicationOrder != 2 || meta.Order == nil || *meta.Order != 3 || !meta.Required {
		t.Fatalf("expected metadata to be kept, got %+v", meta)
	}
}

func TestNormalizeRejectsInvalidShapes(t *testing.T) {
	cases := map[string]Set{
		"zero rule":     {"a": {}},
		"nil func":      {"a": Func(nil)},
		"meta in meta":  {"a": Meta(Metadata{Content: Meta(Metadata{Content: Text("x")})})},
		"empty meta":    {"a": Meta(Metadata{})},
		"bad keyword":   {"has space": Text("x")},
		"empty keyword": {"": Text("x")},
		"zero in parts": {"a": Compound(Text("x"), Rule{})},
		"too deep":      {"a": nest(MaxDepth + 2)},
	}
	for name, set := range cases {
		if _, err := Normalize(set); !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("%s: expected ErrInvalidRule, got %v", name, err)
		}
	}
}

func TestNormalizeRecordBound(t *testing.T) {
	parts := make([]Rule, MaxRecords)
	for i := range parts {
		parts[i] = Text("x")
	}
	_, err := Normalize(Set{"wide": Compound(parts...)})
	if !errors.Is(err, ErrInvalidRule) || !strings.Contains(err.Error(), "records") {
		t.Fatalf("expected record bound error, got %v", err)
	}
}

func TestNormalizeErrorNamesPath(t *testing.T) {
	_, err := Normalize(Set{"banner": Compound(Text("a"), Compound(Func(nil)))})
	if err == nil || !strings.Contains(err.Error(), "banner[1][0]") {
		t.Fatalf("expected error path banner[1][0], got %v", err)
	}
}

func nest(depth int) Rule {
	rule := Text("leaf")
	for range depth {
		rule = Compound(rule)
	}
	return rule
}

func TestResolveLeafAndCompound(t *testing.T) {
	ctx := context.Background()
	echo := Func(func(_ context.Context, params Params, _ *markdown.Document) (string, error) {
		return params.String("v", "none"), nil
	})

	rule, err := NormalizeRule(Compound(echo, echo, echo))
	if err != nil {
		t.Fatalf("NormalizeRule: %v", err)
	}

	got, err := Resolve(ctx, rule, []any{map[string]any{"v": "one"}, nil}, nil, ModeExpand)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "one\n\nnone\n\nnone" {
		t.Fatalf("unexpected compound output %q", got)
	}

	got, err = Resolve(ctx, rule, map[string]any{"v": "ignored"}, nil, ModeExpand)
	if err != nil || got != "none\n\nnone\n\nnone" {
		t.Fatalf("object params should not reach compound parts, got %q, %v", got, err)
	}

	leaf, _ := NormalizeRule(echo)
	got, err = Resolve(ctx, leaf, []any{"not", "an", "object"}, nil, ModeExpand)
	if err != nil || got != "none" {
		t.Fatalf("non-object params should become empty, got %q, %v", got, err)
	}
}

func TestResolveCompoundFailureDependsOnMode(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	rule, err := NormalizeRule(Compound(
		Text("kept"),
		Func(func(context.Context, Params, *markdown.Document) (string, error) { return "", boom }),
		Text("also kept"),
	))
	if err != nil {
		t.Fatalf("NormalizeRule: %v", err)
	}

	got, err := Resolve(ctx, rule, nil, nil, ModeExpand)
	if err != nil || got != "kept\n\nalso kept" {
		t.Fatalf("expand mode should swallow part failures, got %q, %v", got, err)
	}

	_, err = Resolve(ctx, rule, nil, nil, ModeCheck)
	if !errors.Is(err, boom) || !errors.Is(err, ErrContentFailed) {
		t.Fatalf("check mode should propagate part failures, got %v", err)
	}
}

func TestResolveLeafFailureIsDefinitive(t *testing.T) {
	rule, _ := NormalizeRule(Func(func(context.Context, Params, *markdown.Document) (string, error) {
		panic("unexpected")
	}))
	if _, err := Resolve(context.Background(), rule, nil, nil, ModeExpand); !errors.Is(err, ErrContentFailed) {
		t.Fatalf("expected ErrContentFailed, got %v", err)
	}
	if _, err := Resolve(context.Background(), Normalized{}, nil, nil, ModeExpand); !errors.Is(err, ErrContentFailed) {
		t.Fatalf("expected ErrContentFailed for empty rule, got %v", err)
	}
}

func TestResolveHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rule, _ := NormalizeRule(Text("x"))
	if _, err := Resolve(ctx, rule, nil, nil, ModeExpand); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
