package rules

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"dario.cat/mergo"
)

// Params are the arguments attached to an open marker.
type Params map[string]any

// ParamsFrom coerces a parsed argument value. Anything other than an object
// yields empty Params.
func ParamsFrom(value any) Params {
	switch v := value.(type) {
	case Params:
		if v == nil {
			return Params{}
		}
		return v
	case map[string]any:
		if v == nil {
			return Params{}
		}
		return Params(v)
	default:
		return Params{}
	}
}

// Has reports whether key is present.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns key as a string, formatting scalars.
func (p Params) String(key, fallback string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return fallback
	}
	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

// Int returns key as an int. Non numeric values yield fallback.
func (p Params) Int(key string, fallback int) int {
	switch v := p[key].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

// Bool returns key as a bool.
func (p Params) Bool(key string, fallback bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// Strings returns key as a string slice. A single string is split on
// whitespace.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return strings.Fields(v)
	}
	return nil
}

// Clone deep copies p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return map[string]any(Params(typed).Clone())
	case Params:
		return typed.Clone()
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// MergeParams layers params from lowest to highest precedence. Nested
// objects are merged key by key; inputs are never modified.
func MergeParams(layers ...Params) (Params, error) {
	out := Params{}
	for _, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		if err := mergo.Merge(&out, layer.Clone(), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge params: %w", err)
		}
	}
	return out, nil
}

// Keys returns the parameter names.
func (p Params) Keys() []string {
	return slices.Sorted(maps.Keys(p))
}
