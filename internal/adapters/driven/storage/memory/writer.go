package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docloader/internal/adapters/driven/storeformat"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.BatchWriter = (*Writer)(nil)

// Writer is an in-memory implementation of driven.BatchWriter.
// It keeps the latest record per URI and the URIs of every batch in write order.
type Writer struct {
	mu          sync.RWMutex
	adapter     storeformat.Adapter
	initialized bool
	sessions    int
	completions int
	records     map[string]storeformat.Record
	batches     [][]string
}

// Option configures the memory writer.
type Option func(*Writer)

// WithAdapter sets the record adapter.
func WithAdapter(a storeformat.Adapter) Option {
	return func(w *Writer) { w.adapter = a }
}

// NewWriter creates a new in-memory writer.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		adapter: storeformat.NewAdapter(),
		records: make(map[string]storeformat.Record),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Initialize starts a session. It may be called once per load.
func (w *Writer) Initialize(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.initialized = true
	w.sessions++
	return nil
}

// Write converts and stores a batch. The batch is all-or-nothing.
func (w *Writer) Write(_ context.Context, batch []*domain.Document) error {
	records, err := w.adapter.AdaptBatch(batch)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.initialized {
		return fmt.Errorf("%w: write before initialize", domain.ErrWriterState)
	}
	uris := make([]string, len(records))
	for i, r := range records {
		w.records[r.URI] = r
		uris[i] = r.URI
	}
	w.batches = append(w.batches, uris)
	return nil
}

// WaitForCompletion returns immediately; writes are synchronous.
func (w *Writer) WaitForCompletion(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.completions++
	return nil
}

// Get retrieves a record by URI.
func (w *Writer) Get(uri string) (storeformat.Record, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	r, ok := w.records[uri]
	if !ok {
		return storeformat.Record{}, domain.ErrNotFound
	}
	return r, nil
}

// Count returns the number of stored records.
func (w *Writer) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.records)
}

// URIs returns the stored URIs, sorted.
func (w *Writer) URIs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	uris := make([]string, 0, len(w.records))
	for uri := range w.records {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Batches returns the URIs of every written batch in write order.
func (w *Writer) Batches() [][]string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([][]string, len(w.batches))
	for i, b := range w.batches {
		out[i] = append([]string(nil), b...)
	}
	return out
}

// Sessions returns how many times Initialize was called.
func (w *Writer) Sessions() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sessions
}

// Completions returns how many times WaitForCompletion was called.
func (w *Writer) Completions() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.completions
}
