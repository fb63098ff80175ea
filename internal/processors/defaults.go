package processors

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// RegisterDefaults registers all built-in config processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("quality", buildQuality)
	r.Register("properties", buildProperties)
	r.Register("uri_prefix", buildURIPrefix)
}

// NewDefaultRegistry returns a registry with the built-in processors registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// QualityProcessor sets a fixed quality on every document.
type QualityProcessor struct {
	quality int
}

// NewQuality creates a quality processor.
func NewQuality(quality int) *QualityProcessor {
	return &QualityProcessor{quality: quality}
}

// Name returns the processor name.
func (p *QualityProcessor) Name() string { return "quality" }

// Process sets the document quality.
func (p *QualityProcessor) Process(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	doc.Metadata.Quality = p.quality
	return doc, nil
}

// PropertiesProcessor sets fixed metadata properties on every document.
type PropertiesProcessor struct {
	properties map[string]string
}

// NewProperties creates a properties processor.
func NewProperties(props map[string]string) *PropertiesProcessor {
	cp := make(map[string]string, len(props))
	for k, v := range props {
		cp[k] = v
	}
	return &PropertiesProcessor{properties: cp}
}

// Name returns the processor name.
func (p *PropertiesProcessor) Name() string { return "properties" }

// Process copies the properties onto the document, overwriting existing keys.
func (p *PropertiesProcessor) Process(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc.Metadata.Properties == nil {
		doc.Metadata.Properties = make(map[string]string, len(p.properties))
	}
	for k, v := range p.properties {
		doc.Metadata.Properties[k] = v
	}
	return doc, nil
}

// URIPrefixProcessor prepends a path prefix to every document URI.
type URIPrefixProcessor struct {
	prefix string
}

// NewURIPrefix creates a processor that prefixes URIs with prefix.
// The prefix is normalised to begin with "/" and have no trailing "/".
func NewURIPrefix(prefix string) *URIPrefixProcessor {
	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	return &URIPrefixProcessor{prefix: prefix}
}

// Name returns the processor name.
func (p *URIPrefixProcessor) Name() string { return "uri_prefix" }

// Process rewrites the document URI.
func (p *URIPrefixProcessor) Process(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	if p.prefix != "" {
		doc.URI = path.Join(p.prefix, doc.URI)
	}
	return doc, nil
}

// buildQuality creates a quality processor from generic config.
// Supported config keys:
//   - value (int): Quality score (default: 0)
func buildQuality(cfg map[string]any) (driven.DocumentProcessor, error) {
	return NewQuality(getIntFromConfig(cfg, "value")), nil
}

// buildProperties creates a properties processor from generic config.
// Every key in the config becomes a property; values are formatted as strings.
func buildProperties(cfg map[string]any) (driven.DocumentProcessor, error) {
	props := make(map[string]string, len(cfg))
	for k, v := range cfg {
		switch v.(type) {
		case map[string]any, []any:
			return nil, fmt.Errorf("property %q must be a scalar", k)
		}
		props[k] = fmt.Sprint(v)
	}
	return NewProperties(props), nil
}

// buildURIPrefix creates a URI prefix processor from generic config.
// Supported config keys:
//   - prefix (string): Path prepended to every URI (required)
func buildURIPrefix(cfg map[string]any) (driven.DocumentProcessor, error) {
	prefix, _ := cfg["prefix"].(string)
	if strings.Trim(prefix, "/ ") == "" {
		return nil, fmt.Errorf("prefix is required")
	}
	return NewURIPrefix(prefix), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
