package rules

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	registry := NewRegistry()
	echo := func(_ context.Context, params Params, _ *markdown.Document) (string, error) {
		return params.String("greeting", "?") + " " + params.String("name", "?"), nil
	}
	if err := registry.Register(Builtin{
		Name:     "greet",
		Content:  echo,
		Defaults: Params{"greeting": "hello", "name": "world"},
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := registry.Register(Builtin{
		Name:             "Command",
		Content:          func(_ context.Context, params Params, _ *markdown.Document) (string, error) { return "ran " + params.String("run", ""), nil },
		ApplicationOrder: 5,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return registry
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	registry := testRegistry(t)
	err := registry.Register(Builtin{Name: " GREET ", Content: func(context.Context, Params, *markdown.Document) (string, error) { return "", nil }})
	if !errors.Is(err, ErrDuplicateBuiltin) {
		t.Fatalf("expected ErrDuplicateBuiltin, got %v", err)
	}
	if err := registry.Register(Builtin{Name: "empty"}); !errors.Is(err, ErrInvalidRule) {
		t.Fatalf("expected ErrInvalidRule for builtin without content, got %v", err)
	}

	list := registry.List()
	if len(list) != 2 || list[0].Name != "command" || list[1].Name != "greet" {
		t.Fatalf("unexpected builtins %+v", list)
	}
}

func TestRegistrySets(t *testing.T) {
	registry := NewRegistry()
	if err := registry.RegisterSet("readme", func() Set { return Set{"title": Text("T")} }); err != nil {
		t.Fatalf("RegisterSet: %v", err)
	}
	set, ok := registry.Set("README")
	if !ok || len(set) != 1 {
		t.Fatalf("expected readme set, got %v %v", set, ok)
	}
	if names := registry.SetNames(); len(names) != 1 || names[0] != "readme" {
		t.Fatalf("unexpected set names %v", names)
	}
}

func TestBuiltinParamsLayering(t *testing.T) {
	registry := testRegistry(t)
	greet, _ := registry.Get("greet")

	rule, err := NormalizeRule(greet.Func(Params{"greeting": "hi"}))
	if err != nil {
		t.Fatalf("NormalizeRule: %v", err)
	}
	got, err := Resolve(context.Background(), rule, map[string]any{"name": "gopher"}, nil, ModeExpand)
	if err != nil || got != "hi gopher" {
		t.Fatalf("unexpected output %q, %v", got, err)
	}

	got, _ = Resolve(context.Background(), rule, nil, nil, ModeExpand)
	if got != "hi world" {
		t.Fatalf("marker params leaked between calls: %q", got)
	}
}

func TestDecodeRuleFile(t *testing.T) {
	data := []byte(`
version: "1.2.3"
greeting:
  builtin: greet
  with:
    name: docs
  order: 2
  required: true
tag:
  command: git describe --tags
banner:
  - one
  - content: two
footer:
  content: [a, b]
  applicationOrder: 3
`)
	set, err := Decode(data, testRegistry(t))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	normalized, err := Normalize(set)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	ctx := context.Background()
	resolve := func(keyword string) string {
		t.Helper()
		out, err := Resolve(ctx, normalized[keyword], nil, nil, ModeExpand)
		if err != nil {
			t.Fatalf("Resolve %s: %v", keyword, err)
		}
		return out
	}

	if got := resolve("version"); got != "1.2.3" {
		t.Fatalf("unexpected version %q", got)
	}
	if got := resolve("greeting"); got != "hello docs" {
		t.Fatalf("unexpected greeting %q", got)
	}
	greeting := normalized["greeting"]
	if greeting.Order == nil || *greeting.Order != 2 || !greeting.Required {
		t.Fatalf("expected greeting metadata, got %+v", greeting)
	}
	if got := resolve("tag"); got != "ran git describe --tags" {
		t.Fatalf("unexpected tag %q", got)
	}
	if normalized["tag"].ApplicationOrder != 5 {
		t.Fatalf("expected command builtin application order, got %d", normalized["tag"].ApplicationOrder)
	}
	if got := resolve("banner"); got != "one\n\ntwo" {
		t.Fatalf("unexpected banner %q", got)
	}
	if normalized["footer"].ApplicationOrder != 3 || resolve("footer") != "a\n\nb" {
		t.Fatalf("unexpected footer %+v", normalized["footer"])
	}
}

func TestDecodeErrors(t *testing.T) {
	registry := testRegistry(t)
	cases := map[string]string{
		"not a mapping":   "- a\n- b\n",
		"schema":          "x:\n  builtin: greet\n  command: ls\n",
		"unknown builtin": "x:\n  builtin: missing\n",
		"broken yaml":     "x: [a, b\n",
	}
	for name, data := range cases {
		_, err := Decode([]byte(data), registry)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if name == "unknown builtin" && !errors.Is(err, ErrUnknownBuiltin) {
			t.Fatalf("%s: expected ErrUnknownBuiltin, got %v", name, err)
		}
		if name != "unknown builtin" && !errors.Is(err, ErrInvalidRule) {
			t.Fatalf("%s: expected ErrInvalidRule, got %v", name, err)
		}
	}

	set, err := Decode(nil, registry)
	if err != nil || len(set) != 0 {
		t.Fatalf("expected empty file to decode to an empty set, got %v, %v", set, err)
	}
}

func TestMergeLaterWins(t *testing.T) {
	merged := Merge(Set{"a": Text("1"), "b": Text("1")}, Set{"b": Text("2")})
	normalized, err := Normalize(merged)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	out, _ := Resolve(context.Background(), normalized["b"], nil, nil, ModeExpand)
	if len(merged) != 2 || out != "2" {
		t.Fatalf("unexpected merge result %v %q", merged, out)
	}
}
