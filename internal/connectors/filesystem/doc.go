// Package filesystem discovers document files on an afero filesystem.
//
// The Reader walks each root depth-first in lexical order, applies the
// registered FileFilters, infers each document's format from its extension
// and runs the document through a processor chain. ModulesFinder classifies
// a modules directory by role, and Watcher reports debounced changes under a
// set of roots.
package filesystem
