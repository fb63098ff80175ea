package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.DocumentFileReader = (*Reader)(nil)

// Reader turns the files beneath one or more roots into documents.
type Reader struct {
	fs      afero.Fs
	filters []driven.FileFilter
	formats driven.FormatGetter
	chain   driven.ProcessorChain
}

// ReaderOption configures the reader.
type ReaderOption func(*Reader)

// WithFs sets the filesystem to read from. Defaults to the OS filesystem.
func WithFs(fsys afero.Fs) ReaderOption {
	return func(r *Reader) {
		if fsys != nil {
			r.fs = fsys
		}
	}
}

// WithFilters replaces the default filters. Filters run in the given order.
func WithFilters(filters ...driven.FileFilter) ReaderOption {
	return func(r *Reader) {
		r.filters = append([]driven.FileFilter(nil), filters...)
	}
}

// WithFormatGetter sets the format getter.
func WithFormatGetter(g driven.FormatGetter) ReaderOption {
	return func(r *Reader) {
		if g != nil {
			r.formats = g
		}
	}
}

// WithChain sets the processor chain every document passes through.
func WithChain(chain driven.ProcessorChain) ReaderOption {
	return func(r *Reader) {
		r.chain = chain
	}
}

// NewReader creates a reader. By default it reads the OS filesystem, skips
// hidden files and directories, and uses a DefaultFormatGetter.
func NewReader(opts ...ReaderOption) *Reader {
	r := &Reader{
		fs:      afero.NewOsFs(),
		filters: []driven.FileFilter{HiddenFileFilter{}},
		formats: NewFormatGetter(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadDocumentFiles walks every root and returns the processed documents in
// traversal order. Roots are walked in the order given.
func (r *Reader) ReadDocumentFiles(ctx context.Context, paths ...string) ([]*domain.Document, error) {
	var docs []*domain.Document
	for _, root := range paths {
		found, err := r.readRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		docs = append(docs, found...)
	}
	return docs, nil
}

func (r *Reader) readRoot(ctx context.Context, root string) ([]*domain.Document, error) {
	info, err := r.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrDiscovery, root, err)
	}

	if !info.IsDir() {
		doc, err := r.readDocument(ctx, root, "/"+filepath.Base(root))
		if err != nil {
			return nil, err
		}
		if doc == nil {
			return nil, nil
		}
		return []*domain.Document{doc}, nil
	}

	logger.Debug("reading documents from %s", root)

	var docs []*domain.Document
	err = afero.Walk(r.fs, root, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("%w: walk %s: %w", domain.ErrDiscovery, p, walkErr)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrDiscovery, err)
		}
		rel = filepath.ToSlash(rel)

		if !r.accept(rel, info) {
			logger.Trace("filtered %s", rel)
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		doc, err := r.readDocument(ctx, p, "/"+rel)
		if err != nil {
			return err
		}
		if doc != nil {
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *Reader) accept(rel string, info fs.FileInfo) bool {
	for _, f := range r.filters {
		if !f.Accept(rel, info) {
			return false
		}
	}
	return true
}

// readDocument reads one file and runs it through the chain.
// A nil document means the chain dropped it.
func (r *Reader) readDocument(ctx context.Context, path, uri string) (*domain.Document, error) {
	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrDiscovery, path, err)
	}

	doc := domain.NewDocument(uri, path, domain.BytesContent(data))
	doc.Format = r.formats.Format(path)

	if r.chain == nil {
		return doc, nil
	}
	processed, err := r.chain.Process(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("process %s: %w", uri, err)
	}
	if processed == nil {
		logger.Debug("dropped %s", uri)
	}
	return processed, nil
}
