// Package bleve provides a full-text index implementation of driven.BatchWriter.
package bleve

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/custodia-labs/docloader/internal/adapters/driven/storeformat"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure Writer implements the interface.
var _ driven.BatchWriter = (*Writer)(nil)

// indexedDocument is the shape stored in the index.
type indexedDocument struct {
	URI         string            `json:"uri"`
	Format      string            `json:"format"`
	Content     string            `json:"content"`
	Quality     int               `json:"quality"`
	Collections []string          `json:"collections"`
	Roles       []string          `json:"roles"`
	Properties  map[string]string `json:"properties"`
}

// Writer indexes document batches into a bleve index.
// Binary documents are indexed by metadata only.
type Writer struct {
	path    string
	adapter storeformat.Adapter

	mu    sync.Mutex
	index bleve.Index
}

// Option configures the bleve writer.
type Option func(*Writer)

// WithAdapter sets the record adapter.
func WithAdapter(a storeformat.Adapter) Option {
	return func(w *Writer) { w.adapter = a }
}

// NewWriter creates a writer for the index at path.
// An empty path keeps the index in memory.
func NewWriter(path string, opts ...Option) *Writer {
	w := &Writer{
		path:    path,
		adapter: storeformat.NewAdapter(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Initialize opens or creates the index. Calling it again on an open writer is a no-op.
func (w *Writer) Initialize(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.index != nil {
		return nil
	}

	var (
		idx bleve.Index
		err error
	)
	if w.path == "" {
		idx, err = bleve.NewMemOnly(createDocumentMapping())
	} else {
		idx, err = openOrCreateIndex(w.path, createDocumentMapping())
	}
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	w.index = idx
	return nil
}

// Write indexes every document of the batch in one bleve batch.
func (w *Writer) Write(ctx context.Context, batch []*domain.Document) error {
	idx, err := w.idx()
	if err != nil {
		return err
	}

	records, err := w.adapter.AdaptBatch(batch)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}

	b := idx.NewBatch()
	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := indexedDocument{
			URI:         r.URI,
			Format:      r.Format,
			Quality:     r.Quality,
			Collections: r.Collections,
			Roles:       r.Roles(),
			Properties:  r.Properties,
		}
		if r.Format != storeformat.CodeBinary {
			doc.Content = string(r.Content)
		}
		if err := b.Index(r.URI, doc); err != nil {
			return fmt.Errorf("%w: index %s: %w", domain.ErrWrite, r.URI, err)
		}
	}

	if err := idx.Batch(b); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	return nil
}

// WaitForCompletion returns once the index is readable; batches are applied synchronously.
func (w *Writer) WaitForCompletion(_ context.Context) error {
	idx, err := w.idx()
	if err != nil {
		return err
	}
	if _, err := idx.DocCount(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, err)
	}
	return nil
}

// Count returns the number of indexed documents.
func (w *Writer) Count() (uint64, error) {
	idx, err := w.idx()
	if err != nil {
		return 0, err
	}
	return idx.DocCount()
}

// Search runs a query string search and returns the matching URIs by score.
func (w *Writer) Search(ctx context.Context, q string, limit int) ([]string, error) {
	idx, err := w.idx()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(q), limit, 0, false)
	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	uris := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		uris = append(uris, hit.ID)
	}
	return uris, nil
}

// Close closes the index.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.index == nil {
		return nil
	}
	err := w.index.Close()
	w.index = nil
	return err
}

func (w *Writer) idx() (bleve.Index, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.index == nil {
		return nil, fmt.Errorf("%w: bleve writer not initialized", domain.ErrWriterState)
	}
	return w.index, nil
}

func openOrCreateIndex(path string, indexMapping mapping.IndexMapping) (bleve.Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		return bleve.New(path, indexMapping)
	}
	return idx, err
}

func createDocumentMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	numericFieldMapping := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()

	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("uri", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("format", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("collections", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("roles", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("quality", numericFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
