package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure filters implement the interface.
var (
	_ driven.FileFilter = HiddenFileFilter{}
	_ driven.FileFilter = (*GlobFilter)(nil)
)

// HiddenFileFilter rejects files and directories whose name starts with ".".
type HiddenFileFilter struct{}

// Accept implements driven.FileFilter.
func (HiddenFileFilter) Accept(p string, info fs.FileInfo) bool {
	name := path.Base(p)
	if info != nil {
		name = info.Name()
	}
	return !isHidden(name)
}

// isHidden returns true if any path component starts with "." (excluding "." and "..").
func isHidden(p string) bool {
	for _, part := range strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// GlobFilter rejects entries whose root-relative path matches any exclude pattern.
// Patterns use doublestar syntax, so "**/*.tmp" and "build/**" work as expected.
type GlobFilter struct {
	patterns []string
}

// NewGlobFilter validates the patterns and returns the filter.
func NewGlobFilter(patterns ...string) (*GlobFilter, error) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &GlobFilter{patterns: append([]string(nil), patterns...)}, nil
}

// Accept implements driven.FileFilter.
func (f *GlobFilter) Accept(p string, _ fs.FileInfo) bool {
	p = strings.TrimPrefix(p, "/")
	for _, pattern := range f.patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return false
		}
	}
	return true
}

// normalizeExt lower-cases an extension and strips its leading dot.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
