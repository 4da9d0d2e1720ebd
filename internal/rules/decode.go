package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/goliatone/go-mdexpand/internal/validation"
)

// CommandBuiltin is the built-in used for the `command:` rule shorthand.
const CommandBuiltin = "command"

// Decode reads a YAML or JSON rule file. Each top level key is a keyword
// mapped to a string, a list (compound rule) or an object holding one of
// `content`, `builtin` or `command` plus optional `applicationOrder`,
// `order`, `required` and, for built-ins, `with` params.
func Decode(data []byte, registry *Registry) (Set, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Set{}, nil
	}
	raw, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode rule file: %w", ErrInvalidRule, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var document any
	if err := dec.Decode(&document); err != nil {
		return nil, fmt.Errorf("%w: decode rule file: %w", ErrInvalidRule, err)
	}
	if document == nil {
		return Set{}, nil
	}
	entries, ok := document.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: rule file must map keywords to rules", ErrInvalidRule)
	}
	if err := validation.ValidateRuleFile(entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
	}

	d := decoder{registry: registry}
	set := make(Set, len(entries))
	for _, keyword := range slices.Sorted(maps.Keys(entries)) {
		rule, err := d.rule(entries[keyword], keyword, 0)
		if err != nil {
			return nil, err
		}
		set[keyword] = rule
	}
	return set, nil
}

// Merge combines sets; later sets win per keyword.
func Merge(sets ...Set) Set {
	out := Set{}
	for _, set := range sets {
		maps.Copy(out, set)
	}
	return out
}

type decoder struct {
	registry *Registry
}

func (d decoder) rule(value any, path string, depth int) (Rule, error) {
	if depth > MaxDepth {
		return Rule{}, invalid(path, "nesting deeper than %d", MaxDepth)
	}

	switch v := value.(type) {
	case string:
		return Text(v), nil
	case []any:
		parts := make([]Rule, 0, len(v))
		for i, item := range v {
			part, err := d.rule(item, fmt.Sprintf("%s[%d]", path, i), depth+1)
			if err != nil {
				return Rule{}, err
			}
			parts = append(parts, part)
		}
		return Compound(parts...), nil
	case map[string]any:
		return d.object(v, path, depth)
	default:
		return Rule{}, invalid(path, "unsupported rule value %T", value)
	}
}

func (d decoder) object(obj map[string]any, path string, depth int) (Rule, error) {
	var (
		content          Rule
		applicationOrder int
	)

	switch {
	case obj["builtin"] != nil:
		name, _ := obj["builtin"].(string)
		b, err := d.builtin(name, path)
		if err != nil {
			return Rule{}, err
		}
		with, _ := plainValue(obj["with"]).(map[string]any)
		content = b.Func(Params(with))
		applicationOrder = b.ApplicationOrder
	case obj["command"] != nil:
		b, err := d.builtin(CommandBuiltin, path)
		if err != nil {
			return Rule{}, err
		}
		content = b.Func(Params{"run": obj["command"]})
		applicationOrder = b.ApplicationOrder
	case obj["content"] != nil:
		inner, err := d.rule(obj["content"], path+".content", depth+1)
		if err != nil {
			return Rule{}, err
		}
		content = inner
	default:
		return Rule{}, invalid(path, "object needs content, builtin or command")
	}

	meta := Metadata{Content: content, ApplicationOrder: applicationOrder}
	hasMeta := applicationOrder != 0
	if v, ok := intValue(obj["applicationOrder"]); ok {
		meta.ApplicationOrder = v
		hasMeta = true
	}
	if v, ok := intValue(obj["order"]); ok {
		meta.Order = IntPtr(v)
		hasMeta = true
	}
	if v, ok := obj["required"].(bool); ok {
		meta.Required = v
		hasMeta = true
	}
	if !hasMeta {
		return content, nil
	}
	return Meta(meta), nil
}

func (d decoder) builtin(name, path string) (Builtin, error) {
	if d.registry == nil {
		return Builtin{}, fmt.Errorf("%w: %s: %q (no registry)", ErrUnknownBuiltin, path, name)
	}
	b, ok := d.registry.Get(name)
	if !ok {
		return Builtin{}, fmt.Errorf("%w: %s: %q", ErrUnknownBuiltin, path, name)
	}
	return b, nil
}

func intValue(v any) (int, bool) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}

// plainValue converts json.Number leaves to float64 so that params from
// rule files match params parsed from markers.
func plainValue(v any) any {
	switch typed := v.(type) {
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return typed.String()
		}
		return f
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, item := range typed {
			out[k] = plainValue(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}
