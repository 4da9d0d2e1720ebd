package rules

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-mdexpand/internal/markdown"
)

// Builtin is a named content function that rule files can reference.
type Builtin struct {
	Name        string
	Description string
	Content     ContentFunc
	// Defaults are merged under the params given in rule files and markers.
	Defaults Params
	// ApplicationOrder is used when the rule file does not set one.
	ApplicationOrder int
}

// Func binds the built-in to with. Params are layered as Defaults, then
// with, then the marker params.
func (b Builtin) Func(with Params) Rule {
	content := b.Content
	defaults := b.Defaults
	bound := with.Clone()
	return Func(func(ctx context.Context, params Params, doc *markdown.Document) (string, error) {
		merged, err := MergeParams(defaults, bound, params)
		if err != nil {
			return "", err
		}
		return content(ctx, merged, doc)
	})
}

// Rule is Func wrapped with the built-in's application order.
func (b Builtin) Rule(with Params) Rule {
	if b.ApplicationOrder == 0 {
		return b.Func(with)
	}
	return Meta(Metadata{Content: b.Func(with), ApplicationOrder: b.ApplicationOrder})
}

// Registry is a thread-safe catalogue of built-ins and named rule sets.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]Builtin
	sets     map[string]func() Set
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builtins: make(map[string]Builtin),
		sets:     make(map[string]func() Set),
	}
}

// Register stores a built-in if the name is not taken.
func (r *Registry) Register(b Builtin) error {
	name := normalizeName(b.Name)
	if name == "" || b.Content == nil {
		return fmt.Errorf("%w: builtin %q needs a name and content", ErrInvalidRule, b.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builtins[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBuiltin, name)
	}
	b.Name = name
	r.builtins[name] = b
	return nil
}

// Get returns the built-in registered under name.
func (r *Registry) Get(name string) (Builtin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.builtins[normalizeName(name)]
	return b, ok
}

// List returns all built-ins in name order.
func (r *Registry) List() []Builtin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Builtin, 0, len(r.builtins))
	for _, b := range r.builtins {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// RegisterSet stores a named rule set factory, e.g. "readme".
func (r *Registry) RegisterSet(name string, factory func() Set) error {
	key := normalizeName(name)
	if key == "" || factory == nil {
		return fmt.Errorf("%w: set %q needs a name and factory", ErrInvalidRule, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sets[key]; exists {
		return fmt.Errorf("%w: set %s", ErrDuplicateBuiltin, key)
	}
	r.sets[key] = factory
	return nil
}

// Set builds the named rule set.
func (r *Registry) Set(name string) (Set, bool) {
	r.mu.RLock()
	factory, ok := r.sets[normalizeName(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// SetNames lists registered rule set names.
func (r *Registry) SetNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sets))
	for name := range r.sets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
