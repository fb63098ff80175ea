// Package domain defines the core entities of the document loader.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: content plus metadata destined for the store
//   - Content: payload representations (bytes, text, file, stream)
//   - Metadata: collections, permissions, quality and properties
//   - Partition: splitting a document list into write batches
//   - LoaderSettings: loader configuration
//   - Modules: classification of a modules directory
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
