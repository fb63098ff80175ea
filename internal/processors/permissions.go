package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure PermissionsProcessor implements the interface.
var _ driven.DocumentProcessor = (*PermissionsProcessor)(nil)

// PermissionsProcessor grants a fixed set of role capabilities to every document.
type PermissionsProcessor struct {
	grants []grant
}

type grant struct {
	role       string
	capability domain.Capability
}

// NewPermissions parses a comma-delimited "role,capability,role,capability"
// specification. Whitespace around tokens is ignored.
// An odd token count, an empty role or an unknown capability is a configuration error.
func NewPermissions(spec string) (*PermissionsProcessor, error) {
	p := &PermissionsProcessor{}
	if strings.TrimSpace(spec) == "" {
		return p, nil
	}

	tokens := strings.Split(spec, ",")
	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("%w: permissions %q must be role,capability pairs", domain.ErrConfiguration, spec)
	}

	for i := 0; i < len(tokens); i += 2 {
		role := strings.TrimSpace(tokens[i])
		if role == "" {
			return nil, fmt.Errorf("%w: permissions %q: empty role at position %d", domain.ErrConfiguration, spec, i)
		}
		capability, err := domain.ParseCapability(tokens[i+1])
		if err != nil {
			return nil, fmt.Errorf("%w: permissions %q: %w", domain.ErrConfiguration, spec, err)
		}
		p.grants = append(p.grants, grant{role: role, capability: capability})
	}

	return p, nil
}

// Name returns the processor name.
func (p *PermissionsProcessor) Name() string { return "permissions" }

// Process adds every configured grant to the document permissions.
func (p *PermissionsProcessor) Process(_ context.Context, doc *domain.Document) (*domain.Document, error) {
	if doc.Metadata.Permissions == nil {
		doc.Metadata.Permissions = make(domain.Permissions)
	}
	for _, g := range p.grants {
		doc.Metadata.Permissions.Add(g.role, g.capability)
	}
	return doc, nil
}
