package driven

import (
	"context"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

// DocumentFileReader discovers files beneath root paths and turns them into documents.
type DocumentFileReader interface {
	// ReadDocumentFiles walks every root and returns the processed documents
	// in traversal order. Any read failure aborts the whole call.
	ReadDocumentFiles(ctx context.Context, paths ...string) ([]*domain.Document, error)
}

// ModulesFinder classifies the contents of a modules directory by role.
type ModulesFinder interface {
	FindModules(baseDir string) (*domain.Modules, error)
}
