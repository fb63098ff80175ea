// Package async provides a concurrent decorator for driven.BatchWriter.
//
// Write enqueues the batch and returns; a pool of workers submits batches to
// the wrapped writer under an optional rate limit, retrying failures with
// exponential backoff. WaitForCompletion is the only point at which every
// submitted batch is known to have been written or to have failed.
package async

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/logger"
)

// Ensure Writer implements the interface.
var _ driven.BatchWriter = (*Writer)(nil)

// DefaultWorkers is the worker count used when none is configured.
const DefaultWorkers = 4

type job struct {
	ctx   context.Context
	seq   int
	batch []*domain.Document
}

// Writer dispatches batches to a delegate writer from a worker pool.
type Writer struct {
	delegate   driven.BatchWriter
	workers    int
	limiter    *rate.Limiter
	maxRetries uint64
	newBackOff func() backoff.BackOff

	mu      sync.Mutex
	sendMu  sync.RWMutex
	jobs    chan job
	done    sync.WaitGroup
	pending sync.WaitGroup
	started bool
	closed  bool
	seq     int
	errs    *multierror.Error
}

// Option configures the async writer.
type Option func(*Writer)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.workers = n
		}
	}
}

// WithRate limits batch submissions per second. Zero or less disables the limit.
func WithRate(perSecond float64) Option {
	return func(w *Writer) {
		if perSecond > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMaxRetries sets how many times a failed batch is retried.
func WithMaxRetries(n int) Option {
	return func(w *Writer) {
		if n >= 0 {
			w.maxRetries = uint64(n)
		}
	}
}

// WithBackOff sets the backoff policy factory used for each batch.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(w *Writer) {
		if fn != nil {
			w.newBackOff = fn
		}
	}
}

// NewWriter wraps delegate in a worker pool.
func NewWriter(delegate driven.BatchWriter, opts ...Option) *Writer {
	w := &Writer{
		delegate:   delegate,
		workers:    DefaultWorkers,
		maxRetries: 3,
		newBackOff: defaultBackOff,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// Initialize initialises the delegate, clears failures from a previous
// load and starts the workers on first use.
func (w *Writer) Initialize(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return domain.ErrWriterClosed
	}
	if err := w.delegate.Initialize(ctx); err != nil {
		return err
	}

	w.errs = nil
	if !w.started {
		w.jobs = make(chan job, w.workers*2)
		for i := 0; i < w.workers; i++ {
			w.done.Add(1)
			go w.work(i)
		}
		w.started = true
		logger.Debug("async writer started with %d workers", w.workers)
	}
	return nil
}

// Write enqueues a batch and returns. Once any batch has failed, Write
// returns that failure instead of enqueueing. Stream content is read into
// memory first so a retried batch carries the same payload.
func (w *Writer) Write(ctx context.Context, batch []*domain.Document) error {
	w.sendMu.RLock()
	defer w.sendMu.RUnlock()

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.ErrWriterClosed
	}
	if !w.started {
		w.mu.Unlock()
		return fmt.Errorf("%w: write before initialize", domain.ErrWriterState)
	}
	if err := w.errs.ErrorOrNil(); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("%w: earlier batch failed: %w", domain.ErrWrite, err)
	}
	w.mu.Unlock()

	batch, err := materialize(batch)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.seq++
	j := job{ctx: ctx, seq: w.seq, batch: batch}
	w.pending.Add(1)
	w.mu.Unlock()

	select {
	case w.jobs <- j:
		return nil
	case <-ctx.Done():
		w.pending.Done()
		return ctx.Err()
	}
}

// materialize returns batch with every stream replaced by its bytes.
// Documents without stream content are shared, not copied.
func materialize(batch []*domain.Document) ([]*domain.Document, error) {
	out, copied := batch, false
	for i, doc := range batch {
		s, ok := doc.Content.(domain.StreamContent)
		if !ok || s.Reader == nil {
			continue
		}
		data, err := io.ReadAll(s.Reader)
		if err != nil {
			return nil, fmt.Errorf("%w: read stream for %s: %w", domain.ErrWrite, doc.URI, err)
		}
		if !copied {
			out, copied = append([]*domain.Document(nil), batch...), true
		}
		cp := *doc
		cp.Content = domain.BytesContent(data)
		out[i] = &cp
	}
	return out, nil
}

// WaitForCompletion blocks until every enqueued batch has resolved, then
// waits for the delegate. Failed batches are reported together.
func (w *Writer) WaitForCompletion(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		w.pending.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-ctx.Done():
		return ctx.Err()
	}

	w.mu.Lock()
	failed := w.errs.ErrorOrNil()
	w.mu.Unlock()
	if failed != nil {
		return fmt.Errorf("%w: %w", domain.ErrWrite, failed)
	}

	return w.delegate.WaitForCompletion(ctx)
}

// Close stops the workers after the queue drains and closes the delegate
// if it supports closing.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	w.mu.Unlock()

	if started {
		w.sendMu.Lock()
		close(w.jobs)
		w.sendMu.Unlock()
	}

	w.done.Wait()
	if c, ok := w.delegate.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (w *Writer) work(id int) {
	defer w.done.Done()
	for j := range w.jobs {
		if err := w.submit(j); err != nil {
			logger.Warn("batch %d failed: %v", j.seq, err)
			w.mu.Lock()
			w.errs = multierror.Append(w.errs, fmt.Errorf("batch %d: %w", j.seq, err))
			w.mu.Unlock()
		} else {
			logger.Trace("worker %d wrote batch %d (%d documents)", id, j.seq, len(j.batch))
		}
		w.pending.Done()
	}
}

// submit writes one batch, retrying transient failures.
func (w *Writer) submit(j job) error {
	if w.limiter != nil {
		if err := w.limiter.Wait(j.ctx); err != nil {
			return err
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		err := w.delegate.Write(j.ctx, j.batch)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return backoff.Permanent(err)
		}
		logger.Debug("batch %d attempt %d failed: %v", j.seq, attempt, err)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(w.newBackOff(), w.maxRetries), j.ctx)
	return backoff.Retry(op, policy)
}

// retryable reports whether a delegate failure may succeed on retry.
func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrUnsupportedContent),
		errors.Is(err, domain.ErrWriterState),
		errors.Is(err, domain.ErrWriterClosed),
		errors.Is(err, domain.ErrConfiguration),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
