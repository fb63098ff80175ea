package driven

import "io/fs"

// FileFilter decides whether a file or directory takes part in discovery.
type FileFilter interface {
	// Accept returns false to exclude the entry.
	// path is slash-separated and relative to the walked root; info describes
	// the entry. Rejecting a directory skips everything beneath it.
	Accept(path string, info fs.FileInfo) bool
}

// FileFilterFunc adapts a function to FileFilter.
type FileFilterFunc func(path string, info fs.FileInfo) bool

// Accept implements FileFilter.
func (f FileFilterFunc) Accept(path string, info fs.FileInfo) bool {
	return f(path, info)
}
