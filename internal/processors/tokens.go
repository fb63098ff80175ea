package processors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/logger"
)

// Ensure TokenReplacerProcessor implements the interface.
var _ driven.DocumentProcessor = (*TokenReplacerProcessor)(nil)

// TokenReplacerProcessor rewrites property tokens in text documents.
// Binary documents and content without a text form pass through unchanged.
type TokenReplacerProcessor struct {
	replacer driven.TokenReplacer
}

// NewTokenReplacer wraps a TokenReplacer as a processor.
func NewTokenReplacer(replacer driven.TokenReplacer) *TokenReplacerProcessor {
	return &TokenReplacerProcessor{replacer: replacer}
}

// Name returns the processor name.
func (p *TokenReplacerProcessor) Name() string { return "tokens" }

// Process replaces tokens in the document text.
func (p *TokenReplacerProcessor) Process(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	text, ok := doc.Text()
	if !ok {
		logger.Trace("skipping token replacement for %s (%s)", doc.URI, doc.Format)
		return doc, nil
	}

	replaced, err := p.replacer.ReplaceTokens(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("replace tokens in %s: %w", doc.URI, err)
	}
	if replaced != text {
		doc.SetText(replaced)
	}
	return doc, nil
}
