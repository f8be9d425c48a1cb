package providers

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory creates the descriptor of a provider.
type Factory func(cfg ProviderConfig) (Descriptor, error)

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// RegisterFactory registers a factory under name. Names are case-insensitive.
func (r *Registry) RegisterFactory(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[normalize(name)] = factory
}

// Get builds the descriptor of a registered provider.
func (r *Registry) Get(name string, cfg ProviderConfig) (Descriptor, error) {
	r.mu.RLock()
	factory, ok := r.factories[normalize(name)]
	r.mu.RUnlock()
	if !ok {
		return Descriptor{}, fmt.Errorf("provider not registered: %s", name)
	}

	d, err := factory(cfg)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to create provider %s: %w", name, err)
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, fmt.Errorf("provider %s: %w", name, err)
	}
	return d, nil
}

// Resolve builds descriptors for names, keeping their order and dropping duplicates.
func (r *Registry) Resolve(names []string, overrides map[string]ProviderConfig) ([]Descriptor, error) {
	out := make([]Descriptor, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		key := normalize(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		d, err := r.Get(key, overrides[key])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// AvailableProviders returns the registered names, sorted.
func (r *Registry) AvailableProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
