package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownFormat is returned by Resolve for a format tag with no
// registered factory.
var ErrUnknownFormat = errors.New("catalog: unknown table format")

// Factory builds a Provider for a table at the given location. Options carry
// format- and store-specific settings (credentials, endpoints).
type Factory func(ctx context.Context, location string, options map[string]string) (Provider, error)

// Registry maps format tags (e.g. "DELTA", "PARQUET") to provider factories.
// The zero value is ready to use. Methods are goroutine-safe.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register binds a factory to a format tag. Registering a tag twice replaces
// the earlier binding.
func (r *Registry) Register(tag string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.factories == nil {
		r.factories = make(map[string]Factory)
	}
	r.factories[tag] = f
}

// Lookup returns the factory bound to tag.
func (r *Registry) Lookup(tag string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[tag]
	return f, ok
}

// Tags returns the registered format tags, sorted.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.factories))
	for tag := range r.factories {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Resolve builds a provider for a table reference by dispatching on tag.
func (r *Registry) Resolve(ctx context.Context, tag, location string, options map[string]string) (Provider, error) {
	f, ok := r.Lookup(tag)
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownFormat, tag, r.Tags())
	}
	return f(ctx, location, options)
}
