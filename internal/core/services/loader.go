package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/custodia-labs/docloader/internal/connectors/filesystem"
	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
	"github.com/custodia-labs/docloader/internal/logger"
	"github.com/custodia-labs/docloader/internal/processors"
)

// Ensure FileLoader implements the interface.
var _ driving.FileLoader = (*FileLoader)(nil)

// FileLoader discovers documents and writes them in batches through a BatchWriter.
//
// The default reader applies processors in a fixed order: permissions,
// collections, token replacement, then custom processors in registration order.
// Overlapping LoadFiles calls on the same loader are rejected.
type FileLoader struct {
	writer driven.BatchWriter
	reader driven.DocumentFileReader

	batchSize         int
	waitForCompletion bool
	logFileURIs       bool

	// Default reader configuration.
	fs               afero.Fs
	permissions      string
	collections      []string
	tokenReplacer    driven.TokenReplacer
	binaryExtensions []string
	filters          []driven.FileFilter
	includeHidden    bool
	processors       []driven.DocumentProcessor

	running atomic.Bool

	mu     sync.RWMutex
	status driving.LoadStatus
}

// LoaderOption configures the file loader.
type LoaderOption func(*FileLoader)

// WithBatchSize sets the number of documents per write.
// Zero or less writes everything in a single batch.
func WithBatchSize(size int) LoaderOption {
	return func(l *FileLoader) { l.batchSize = size }
}

// WithWaitForCompletion controls whether LoadFiles waits for the writer. Defaults to true.
func WithWaitForCompletion(wait bool) LoaderOption {
	return func(l *FileLoader) { l.waitForCompletion = wait }
}

// WithLogFileURIs controls whether each URI is logged before its batch is written. Defaults to true.
func WithLogFileURIs(log bool) LoaderOption {
	return func(l *FileLoader) { l.logFileURIs = log }
}

// WithPermissions sets the "role,capability,..." permissions applied to every document.
func WithPermissions(spec string) LoaderOption {
	return func(l *FileLoader) { l.permissions = spec }
}

// WithCollections sets the collections applied to every document.
func WithCollections(collections ...string) LoaderOption {
	return func(l *FileLoader) { l.collections = append(l.collections, collections...) }
}

// WithTokenReplacer enables token replacement in text documents.
func WithTokenReplacer(r driven.TokenReplacer) LoaderOption {
	return func(l *FileLoader) { l.tokenReplacer = r }
}

// WithAdditionalBinaryExtensions classifies more extensions as binary.
func WithAdditionalBinaryExtensions(extensions ...string) LoaderOption {
	return func(l *FileLoader) { l.binaryExtensions = append(l.binaryExtensions, extensions...) }
}

// WithFileFilters adds filters applied after the hidden-file filter.
func WithFileFilters(filters ...driven.FileFilter) LoaderOption {
	return func(l *FileLoader) { l.filters = append(l.filters, filters...) }
}

// WithIncludeHidden disables the hidden-file filter.
func WithIncludeHidden(include bool) LoaderOption {
	return func(l *FileLoader) { l.includeHidden = include }
}

// WithProcessors appends custom processors after the built-in ones.
func WithProcessors(ps ...driven.DocumentProcessor) LoaderOption {
	return func(l *FileLoader) { l.processors = append(l.processors, ps...) }
}

// WithReader replaces the default reader. Reader-specific options
// (filters, binary extensions, processors, fs) are then ignored.
func WithReader(r driven.DocumentFileReader) LoaderOption {
	return func(l *FileLoader) { l.reader = r }
}

// WithFs sets the filesystem used by the default reader.
func WithFs(fsys afero.Fs) LoaderOption {
	return func(l *FileLoader) { l.fs = fsys }
}

// NewFileLoader creates a loader writing through w.
// Invalid configuration is reported here, before anything is written.
func NewFileLoader(w driven.BatchWriter, opts ...LoaderOption) (*FileLoader, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: writer is required", domain.ErrConfiguration)
	}

	l := &FileLoader{
		writer:            w,
		waitForCompletion: true,
		logFileURIs:       true,
	}
	for _, opt := range opts {
		opt(l)
	}

	chain, err := l.buildChain()
	if err != nil {
		return nil, err
	}

	if l.reader == nil {
		formats := filesystem.NewFormatGetter()
		formats.AddBinaryExtensions(l.binaryExtensions...)

		var filters []driven.FileFilter
		if !l.includeHidden {
			filters = append(filters, filesystem.HiddenFileFilter{})
		}
		filters = append(filters, l.filters...)

		l.reader = filesystem.NewReader(
			filesystem.WithFs(l.fs),
			filesystem.WithFilters(filters...),
			filesystem.WithFormatGetter(formats),
			filesystem.WithChain(chain),
		)
	}

	return l, nil
}

// buildChain assembles the built-in processors followed by the custom ones.
func (l *FileLoader) buildChain() (*processors.Chain, error) {
	chain := processors.NewChain()

	if l.permissions != "" {
		p, err := processors.NewPermissions(l.permissions)
		if err != nil {
			return nil, err
		}
		chain.Add(p)
	}
	if len(l.collections) > 0 {
		chain.Add(processors.NewCollections(l.collections...))
	}
	if l.tokenReplacer != nil {
		chain.Add(processors.NewTokenReplacer(l.tokenReplacer))
	}
	for _, p := range l.processors {
		chain.Add(p)
	}

	logger.Trace("processor chain (%d): %v", chain.Len(), chain.Names())
	return chain, nil
}

// LoadFiles discovers documents beneath paths and writes them in batches.
// It returns the documents handed to the writer.
func (l *FileLoader) LoadFiles(ctx context.Context, paths ...string) ([]*domain.Document, error) {
	if !l.running.CompareAndSwap(false, true) {
		return nil, domain.ErrLoadInProgress
	}
	defer l.running.Store(false)

	loadID := uuid.New().String()
	l.setStatus(driving.LoadStatus{LoadID: loadID, Running: true})
	defer l.finish()

	session := newWriterSession(l.writer)
	if err := session.initialize(ctx); err != nil {
		return nil, err
	}

	docs, err := l.reader.ReadDocumentFiles(ctx, paths...)
	if err != nil {
		return nil, err
	}
	l.updateStatus(func(s *driving.LoadStatus) { s.DocumentsRead = len(docs) })

	if len(docs) == 0 {
		logger.Info("No files found in %v", paths)
		return docs, nil
	}

	for _, batch := range domain.Partition(docs, l.batchSize) {
		logger.Info("Writing %d files", len(batch))
		if l.logFileURIs {
			for _, uri := range domain.URIs(batch) {
				logger.Info("Writing: %s", uri)
			}
		}
		if err := session.write(ctx, batch); err != nil {
			return nil, err
		}
		l.updateStatus(func(s *driving.LoadStatus) {
			s.BatchesWritten = session.batches
			s.DocumentsWritten = session.documents
		})
	}

	if l.waitForCompletion {
		logger.Debug("waiting for writer to complete load %s", loadID)
		if err := session.waitForCompletion(ctx); err != nil {
			return nil, err
		}
	}

	logger.Info("Loaded %d files in %d batches", session.documents, session.batches)
	return docs, nil
}

// Status returns the state of the current or most recent load.
func (l *FileLoader) Status() driving.LoadStatus {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

func (l *FileLoader) setStatus(s driving.LoadStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = s
}

func (l *FileLoader) updateStatus(fn func(*driving.LoadStatus)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.status)
}

func (l *FileLoader) finish() {
	l.updateStatus(func(s *driving.LoadStatus) { s.Running = false })
}
