// Package storage provides a factory for the store writers.
package storage

import (
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/docloader/internal/adapters/driven/storage/async"
	"github.com/custodia-labs/docloader/internal/adapters/driven/storage/bleve"
	"github.com/custodia-labs/docloader/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docloader/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Types lists the writer types the factory can build.
func Types() []string {
	return []string{domain.WriterTypeMemory, domain.WriterTypeSQLite, domain.WriterTypeBleve}
}

// NewWriter creates the writer described by settings.
// A positive Workers count wraps the writer in an asynchronous writer.
func NewWriter(settings domain.WriterSettings) (driven.BatchWriter, error) {
	w, err := newBaseWriter(settings)
	if err != nil {
		return nil, err
	}

	if settings.Workers <= 0 {
		return w, nil
	}

	opts := []async.Option{
		async.WithWorkers(settings.Workers),
		async.WithMaxRetries(settings.MaxRetries),
	}
	if settings.Rate > 0 {
		opts = append(opts, async.WithRate(settings.Rate))
	}
	return async.NewWriter(w, opts...), nil
}

func newBaseWriter(settings domain.WriterSettings) (driven.BatchWriter, error) {
	switch strings.ToLower(strings.TrimSpace(settings.Type)) {
	case "", domain.WriterTypeMemory:
		return memory.NewWriter(), nil
	case domain.WriterTypeSQLite:
		if settings.Path == "" {
			return nil, fmt.Errorf("%w: sqlite writer requires a path", domain.ErrConfiguration)
		}
		return sqlite.NewWriter(settings.Path), nil
	case domain.WriterTypeBleve:
		// An empty path gives an in-memory index.
		return bleve.NewWriter(settings.Path), nil
	default:
		return nil, fmt.Errorf("%w: writer %q", domain.ErrUnsupportedType, settings.Type)
	}
}

// Close releases the writer if it holds resources.
func Close(w driven.BatchWriter) error {
	if c, ok := w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
