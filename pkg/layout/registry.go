package layout

import (
	"fmt"
	"sort"
	"sync"
)

// Registry stores component descriptors by type name, providing discovery
// and duplication safeguards. A new registry starts with every built-in
// component; hosts register custom components on top.
type Registry struct {
	mu         sync.RWMutex
	components map[ComponentType]Descriptor
}

// NewRegistry creates a registry pre-populated with the built-in components.
func NewRegistry() *Registry {
	r := &Registry{components: make(map[ComponentType]Descriptor)}
	for _, d := range Builtins() {
		r.components[d.Type] = d
	}
	return r
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared built-ins registry used when no custom
// registry is configured.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

var validCategories = map[Category]bool{
	CategoryContainer:   true,
	CategoryContent:     true,
	CategoryStyling:     true,
	CategorySizing:      true,
	CategoryTransform:   true,
	CategoryFlowControl: true,
	CategorySpecial:     true,
	CategoryConditional: true,
}

// Register adds a custom component descriptor. Duplicate type names and
// unknown categories return an error.
func (r *Registry) Register(d Descriptor) error {
	if d.Type == "" {
		return fmt.Errorf("layout: component type is required")
	}
	if !validCategories[d.Category] {
		return fmt.Errorf("layout: component %q has unknown category %q", d.Type, d.Category)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[d.Type]; exists {
		return fmt.Errorf("layout: component %q already registered", d.Type)
	}

	r.components[d.Type] = d
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Get retrieves a descriptor by component type.
func (r *Registry) Get(t ComponentType) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.components[t]
	if !ok {
		return Descriptor{}, fmt.Errorf("layout: component %q not found", t)
	}
	return d, nil
}

// Has reports whether a component type is registered.
func (r *Registry) Has(t ComponentType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.components[t]
	return ok
}

// List returns the registered component types, sorted.
func (r *Registry) List() []ComponentType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]ComponentType, 0, len(r.components))
	for t := range r.components {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
