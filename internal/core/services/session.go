package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// sessionState is the lifecycle state of a writer session.
type sessionState int

const (
	stateUninitialized sessionState = iota
	stateInitialized
	stateWriting
	stateCompleted
)

func (s sessionState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateInitialized:
		return "initialized"
	case stateWriting:
		return "writing"
	case stateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// writerSession drives one BatchWriter through a single load:
// Uninitialized → Initialized → Writing* → Completed.
// It is not safe for concurrent use.
type writerSession struct {
	writer driven.BatchWriter
	state  sessionState

	batches   int
	documents int
}

func newWriterSession(w driven.BatchWriter) *writerSession {
	return &writerSession{writer: w}
}

func (s *writerSession) initialize(ctx context.Context) error {
	if s.state != stateUninitialized {
		return s.invalid("initialize")
	}
	if err := s.writer.Initialize(ctx); err != nil {
		return asWriteError("initialize writer", err)
	}
	s.state = stateInitialized
	return nil
}

func (s *writerSession) write(ctx context.Context, batch []*domain.Document) error {
	if s.state != stateInitialized && s.state != stateWriting {
		return s.invalid("write")
	}
	if len(batch) == 0 {
		return fmt.Errorf("%w: empty batch", domain.ErrInvalidInput)
	}
	s.state = stateWriting
	if err := s.writer.Write(ctx, batch); err != nil {
		return asWriteError(fmt.Sprintf("write batch %d", s.batches+1), err)
	}
	s.batches++
	s.documents += len(batch)
	return nil
}

func (s *writerSession) waitForCompletion(ctx context.Context) error {
	if s.state != stateInitialized && s.state != stateWriting {
		return s.invalid("wait for completion")
	}
	if err := s.writer.WaitForCompletion(ctx); err != nil {
		return asWriteError("wait for completion", err)
	}
	s.state = stateCompleted
	return nil
}

func (s *writerSession) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s when %s", domain.ErrWriterState, op, s.state)
}

// asWriteError wraps err in ErrWrite unless it already is one.
func asWriteError(op string, err error) error {
	if errors.Is(err, domain.ErrWrite) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrWrite, op, err)
}
