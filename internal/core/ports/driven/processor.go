package driven

import (
	"context"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

// DocumentProcessor transforms a document during discovery.
// Processors are chained in a fixed order (permissions, collections, token
// replacement, then custom processors) and must not keep state across documents.
type DocumentProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process mutates or replaces the document.
	// Returning a nil document drops it from the load.
	Process(ctx context.Context, doc *domain.Document) (*domain.Document, error)
}

// ProcessorChain applies DocumentProcessors in order.
type ProcessorChain interface {
	// Process runs the document through every processor.
	// A nil result means a processor dropped the document.
	Process(ctx context.Context, doc *domain.Document) (*domain.Document, error)
}
