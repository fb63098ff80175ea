package filesystem

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure DefaultFormatGetter implements the interface.
var _ driven.FormatGetter = (*DefaultFormatGetter)(nil)

// DefaultBinaryExtensions are classified as binary unless overridden.
var DefaultBinaryExtensions = []string{
	"btr", "docx", "eot", "gif", "gz", "ico", "jar", "jpeg", "jpg", "mp3", "mp4",
	"otf", "pdf", "png", "pptx", "swf", "tif", "tiff", "ttf", "woff", "woff2",
	"xlsx", "zip",
}

// DefaultFormatGetter infers formats from extensions.
// Extensions in the binary set map to BINARY, explicit overrides win over the
// binary set, and everything else gets the default format (TEXT).
type DefaultFormatGetter struct {
	mu            sync.RWMutex
	binary        map[string]bool
	overrides     map[string]domain.Format
	defaultFormat domain.Format
}

// FormatOption configures the format getter.
type FormatOption func(*DefaultFormatGetter)

// WithFormatOverride maps an extension to a fixed format.
func WithFormatOverride(ext string, format domain.Format) FormatOption {
	return func(g *DefaultFormatGetter) {
		g.overrides[normalizeExt(ext)] = format
	}
}

// WithDefaultFormat sets the format for extensions with no mapping.
func WithDefaultFormat(format domain.Format) FormatOption {
	return func(g *DefaultFormatGetter) {
		g.defaultFormat = format
	}
}

// NewFormatGetter creates a format getter seeded with DefaultBinaryExtensions.
func NewFormatGetter(opts ...FormatOption) *DefaultFormatGetter {
	g := &DefaultFormatGetter{
		binary:        make(map[string]bool, len(DefaultBinaryExtensions)),
		overrides:     make(map[string]domain.Format),
		defaultFormat: domain.FormatText,
	}
	for _, ext := range DefaultBinaryExtensions {
		g.binary[ext] = true
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddBinaryExtensions adds extensions to the binary set.
// The built-in extensions are kept.
func (g *DefaultFormatGetter) AddBinaryExtensions(extensions ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, ext := range extensions {
		if ext = normalizeExt(ext); ext != "" {
			g.binary[ext] = true
		}
	}
}

// BinaryExtensions returns the binary set, sorted.
func (g *DefaultFormatGetter) BinaryExtensions() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.binary))
	for ext := range g.binary {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Format returns the format for the file at path.
func (g *DefaultFormatGetter) Format(path string) domain.Format {
	ext := normalizeExt(filepath.Ext(path))

	g.mu.RLock()
	defer g.mu.RUnlock()
	if f, ok := g.overrides[ext]; ok {
		return f
	}
	if g.binary[ext] {
		return domain.FormatBinary
	}
	return g.defaultFormat
}
