package processors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// BuilderFunc creates a DocumentProcessor from generic config.
// Config is a map of processor-specific settings parsed from user config.
type BuilderFunc func(cfg map[string]any) (driven.DocumentProcessor, error)

// Registry maps processor names to their builders.
// It allows dynamic construction of processors from configuration.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates a new processor registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a processor builder to the registry.
// Name should be unique and match the processor's Name() return value.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a processor by name with the given config.
func (r *Registry) Build(name string, cfg map[string]any) (driven.DocumentProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q", domain.ErrUnsupportedType, name)
	}
	p, err := builder(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: processor %s: %w", domain.ErrConfiguration, name, err)
	}
	return p, nil
}

// BuildAll builds processors from settings in order.
func (r *Registry) BuildAll(settings []domain.ProcessorSettings) ([]driven.DocumentProcessor, error) {
	out := make([]driven.DocumentProcessor, 0, len(settings))
	for _, s := range settings {
		p, err := r.Build(s.Name, s.Config)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Has returns true if a processor with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns all registered processor names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
