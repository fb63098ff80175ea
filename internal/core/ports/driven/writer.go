package driven

import (
	"context"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

// BatchWriter persists batches of documents to the target store.
// Implementations may buffer or parallelise internally; WaitForCompletion is
// the only point at which every submitted batch is guaranteed to have resolved.
type BatchWriter interface {
	// Initialize establishes whatever session state the writer needs.
	// It is called once per load, before any Write.
	Initialize(ctx context.Context) error

	// Write submits a non-empty batch. It may return before the batch is durable.
	Write(ctx context.Context, batch []*domain.Document) error

	// WaitForCompletion blocks until every submitted batch has been accepted
	// or has failed.
	WaitForCompletion(ctx context.Context) error
}
