// Package processors provides document processor implementations.
package processors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure Chain implements the interface.
var _ driven.ProcessorChain = (*Chain)(nil)

// Chain runs DocumentProcessors in order.
// Each processor receives the output of the previous one.
type Chain struct {
	processors []driven.DocumentProcessor
}

// NewChain creates a chain with the given processors.
// Processors are executed in the order provided; nil entries are skipped.
func NewChain(processors ...driven.DocumentProcessor) *Chain {
	c := &Chain{}
	for _, p := range processors {
		c.Add(p)
	}
	return c
}

// Process runs the document through all processors in order.
// A nil result from any processor stops the chain and drops the document.
func (c *Chain) Process(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}

	for _, p := range c.processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := p.Process(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", p.Name(), err)
		}
		if next == nil {
			return nil, nil
		}
		doc = next
	}

	return doc, nil
}

// Add appends a processor to the chain.
func (c *Chain) Add(p driven.DocumentProcessor) {
	if p == nil {
		return
	}
	c.processors = append(c.processors, p)
}

// Len returns the number of processors in the chain.
func (c *Chain) Len() int {
	return len(c.processors)
}

// Names returns processor names in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.processors))
	for i, p := range c.processors {
		names[i] = p.Name()
	}
	return names
}
