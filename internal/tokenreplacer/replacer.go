// Package tokenreplacer substitutes property tokens in document text.
package tokenreplacer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/logger"
	"github.com/custodia-labs/docloader/internal/properties"
)

// MLPrefix is the conventional token prefix for properties referenced in
// module text, e.g. "@ml.app-name".
const MLPrefix = "@ml."

// Ensure DefaultTokenReplacer implements the interface.
var _ driven.TokenReplacer = (*DefaultTokenReplacer)(nil)

// DefaultTokenReplacer replaces literal occurrences of property keys, with an
// optional prefix, by their resolved values.
//
// The property table is merged from the registered sources on first use and
// cached until Invalidate is called. Tokens are applied longest first, ties
// broken lexically, so a key that is a substring of another key never
// clobbers the longer token.
type DefaultTokenReplacer struct {
	mu       sync.Mutex
	sources  []driven.PropertiesSource
	prefix   string
	resolver *PlaceholderResolver

	props  map[string]string
	tokens []token
}

type token struct {
	literal string
	key     string
}

// Option configures the token replacer.
type Option func(*DefaultTokenReplacer)

// WithPrefix sets the prefix prepended to every key when matching.
func WithPrefix(prefix string) Option {
	return func(r *DefaultTokenReplacer) {
		r.prefix = prefix
	}
}

// WithSources registers properties sources in order.
func WithSources(sources ...driven.PropertiesSource) Option {
	return func(r *DefaultTokenReplacer) {
		r.sources = append(r.sources, sources...)
	}
}

// WithIgnoreUnresolvable leaves unresolved ${...} placeholders in values
// untouched instead of failing.
func WithIgnoreUnresolvable(ignore bool) Option {
	return func(r *DefaultTokenReplacer) {
		r.resolver.ignoreUnresolvable = ignore
	}
}

// WithValueSeparator changes the default-value separator used in placeholders.
// An empty separator disables defaults.
func WithValueSeparator(sep string) Option {
	return func(r *DefaultTokenReplacer) {
		r.resolver.separator = sep
	}
}

// New creates a token replacer with the given options.
func New(opts ...Option) *DefaultTokenReplacer {
	r := &DefaultTokenReplacer{
		resolver: NewPlaceholderResolver(false),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddPropertiesSource registers another source. It only takes effect for a
// table that has not been resolved yet; call Invalidate otherwise.
func (r *DefaultTokenReplacer) AddPropertiesSource(source driven.PropertiesSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, source)
}

// Invalidate drops the cached property table.
func (r *DefaultTokenReplacer) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props = nil
	r.tokens = nil
}

// Properties returns a copy of the resolved property table.
func (r *DefaultTokenReplacer) Properties(ctx context.Context) (map[string]string, error) {
	props, _, err := r.table(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out, nil
}

// ReplaceTokens rewrites every token occurrence in text.
// Text without tokens is returned unchanged.
func (r *DefaultTokenReplacer) ReplaceTokens(ctx context.Context, text string) (string, error) {
	props, tokens, err := r.table(ctx)
	if err != nil {
		return "", err
	}

	for _, tok := range tokens {
		logger.Trace("Checking for key in text: %s", tok.literal)
		if !strings.Contains(text, tok.literal) {
			continue
		}
		value, err := r.resolver.Resolve(props[tok.key], props)
		if err != nil {
			return "", fmt.Errorf("resolving property %s: %w", tok.key, err)
		}
		logger.Debug("Replacing %s with %s", tok.literal, value)
		text = strings.ReplaceAll(text, tok.literal, value)
	}
	return text, nil
}

// table resolves the property table and token order once.
func (r *DefaultTokenReplacer) table(ctx context.Context) (map[string]string, []token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.props != nil {
		return r.props, r.tokens, nil
	}

	props, err := properties.Merge(ctx, r.sources...)
	if err != nil {
		return nil, nil, err
	}

	keys := properties.Keys(props)
	logger.Debug("Resolved %d properties: %v", len(keys), keys)
	tokens := make([]token, 0, len(keys))
	for _, key := range keys {
		literal := r.prefix + key
		if literal == "" {
			continue
		}
		tokens = append(tokens, token{literal: literal, key: key})
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i].literal) != len(tokens[j].literal) {
			return len(tokens[i].literal) > len(tokens[j].literal)
		}
		return tokens[i].literal < tokens[j].literal
	})

	r.props = props
	r.tokens = tokens
	return r.props, r.tokens, nil
}
