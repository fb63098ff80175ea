package driving

import (
	"context"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

// FileLoader loads files from the filesystem into the document store.
type FileLoader interface {
	// LoadFiles discovers documents beneath the given roots, writes them in
	// batches and returns the documents that were submitted.
	LoadFiles(ctx context.Context, paths ...string) ([]*domain.Document, error)

	// Status returns the state of the current or most recent load.
	Status() LoadStatus
}

// AssetLoader loads the assets of a modules directory.
type AssetLoader interface {
	// LoadAssets finds the modules under baseDir and loads its assets.
	LoadAssets(ctx context.Context, baseDir string) ([]*domain.Document, error)
}

// LoadStatus represents the state of a load operation.
type LoadStatus struct {
	// LoadID identifies the load run.
	LoadID string

	// Running indicates if a load is currently in progress.
	Running bool

	// DocumentsRead is the count of documents produced by discovery.
	DocumentsRead int

	// BatchesWritten is the number of batches handed to the writer.
	BatchesWritten int

	// DocumentsWritten is the number of documents handed to the writer.
	DocumentsWritten int
}
