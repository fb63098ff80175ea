package processors

import (
	"context"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure CollectionsProcessor implements the interface.
var _ driven.DocumentProcessor = (*CollectionsProcessor)(nil)

// CollectionsProcessor adds fixed collections to every document.
type CollectionsProcessor struct {
	collections []string
}

// NewCollections creates a processor that adds the given collections.
func NewCollections(collections ...string) *CollectionsProcessor {
	return &CollectionsProcessor{collections: append([]string(nil), collections...)}
}

// Name returns the processor name.
func (p *CollectionsProcessor) Name() string { return "collections" }

// Process adds the collections not already present on the document.
func (p *CollectionsProcessor) Process(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	doc.Metadata.AddCollections(p.collections...)
	return doc, nil
}
