package domain

import "errors"

// Domain errors represent loader failures by kind.
// Callers match them with errors.Is; implementations wrap them with context.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown writer or processor type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Loader Errors.

	// ErrConfiguration indicates the loader was configured with invalid settings.
	// It is raised before any document is written.
	ErrConfiguration = errors.New("configuration error")

	// ErrUnresolvedPlaceholder indicates a ${...} placeholder in a property value
	// has no matching property and no default.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder")

	// ErrDiscovery indicates a filesystem failure while reading document files.
	// The whole discovery is aborted.
	ErrDiscovery = errors.New("discovery failed")

	// ErrLoadInProgress indicates a load was started while another is running
	// on the same loader.
	ErrLoadInProgress = errors.New("load in progress")

	// Writer Errors.

	// ErrWrite indicates the writer failed to persist a batch.
	ErrWrite = errors.New("write failed")

	// ErrWriterState indicates writer lifecycle calls were made out of order.
	ErrWriterState = errors.New("invalid writer state")

	// ErrWriterClosed indicates the writer has been closed.
	ErrWriterClosed = errors.New("writer closed")

	// ErrUnsupportedContent indicates a document content representation has
	// no adapter to the store's write protocol.
	ErrUnsupportedContent = errors.New("unsupported content")
)
