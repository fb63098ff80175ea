// Package storeformat translates documents into the store's write representation.
// Every function is a pure lookup or conversion with no loader state.
package storeformat

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

// Format codes understood by the store.
const (
	CodeBinary = "binary"
	CodeJSON   = "json"
	CodeText   = "text"
	CodeXML    = "xml"
	CodeNone   = "none"
)

var formatCodes = map[domain.Format]string{
	domain.FormatBinary:  CodeBinary,
	domain.FormatJSON:    CodeJSON,
	domain.FormatText:    CodeText,
	domain.FormatXML:     CodeXML,
	domain.FormatUnknown: CodeNone,
}

var capabilityCodes = map[domain.Capability]string{
	domain.CapabilityRead:    "read",
	domain.CapabilityInsert:  "insert",
	domain.CapabilityUpdate:  "update",
	domain.CapabilityExecute: "execute",
}

// Record is a document in the store's write representation.
type Record struct {
	URI         string
	Format      string
	Content     []byte
	Quality     int
	Collections []string
	Permissions map[string][]string
	Properties  map[string]string
}

// FormatCode maps a format to its store code. Unmapped formats map to "none".
func FormatCode(f domain.Format) string {
	if code, ok := formatCodes[f]; ok {
		return code
	}
	return CodeNone
}

// CapabilityCode maps a capability to its store code.
func CapabilityCode(c domain.Capability) (string, error) {
	code, ok := capabilityCodes[c]
	if !ok {
		return "", fmt.Errorf("%w: capability %q", domain.ErrInvalidInput, c)
	}
	return code, nil
}

// PermissionCodes maps every role's capabilities to store codes.
func PermissionCodes(p domain.Permissions) (map[string][]string, error) {
	out := make(map[string][]string, len(p))
	for role, caps := range p {
		codes := make([]string, 0, len(caps))
		for _, c := range caps {
			code, err := CapabilityCode(c)
			if err != nil {
				return nil, fmt.Errorf("role %s: %w", role, err)
			}
			codes = append(codes, code)
		}
		out[role] = codes
	}
	return out, nil
}

// Adapter converts documents into records, reading file content from Fs.
type Adapter struct {
	Fs afero.Fs
}

// NewAdapter creates an adapter reading file content from the OS filesystem.
func NewAdapter() Adapter {
	return Adapter{Fs: afero.NewOsFs()}
}

// ContentBytes returns the bytes of a content handle.
// Handles with no byte representation return ErrUnsupportedContent.
func (a Adapter) ContentBytes(c domain.Content) ([]byte, error) {
	switch v := c.(type) {
	case domain.BytesContent:
		return []byte(v), nil
	case domain.TextContent:
		return []byte(v), nil
	case domain.FileContent:
		fsys := a.Fs
		if fsys == nil {
			fsys = afero.NewOsFs()
		}
		data, err := afero.ReadFile(fsys, string(v))
		if err != nil {
			return nil, fmt.Errorf("read content %s: %w", string(v), err)
		}
		return data, nil
	case domain.StreamContent:
		if v.Reader == nil {
			return nil, fmt.Errorf("%w: nil stream", domain.ErrUnsupportedContent)
		}
		data, err := io.ReadAll(v.Reader)
		if err != nil {
			return nil, fmt.Errorf("read content stream: %w", err)
		}
		return data, nil
	case nil:
		return nil, fmt.Errorf("%w: no content", domain.ErrUnsupportedContent)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedContent, c.Kind())
	}
}

// Adapt converts a document into a record.
func (a Adapter) Adapt(doc *domain.Document) (Record, error) {
	content, err := a.ContentBytes(doc.Content)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", doc.URI, err)
	}
	perms, err := PermissionCodes(doc.Metadata.Permissions)
	if err != nil {
		return Record{}, fmt.Errorf("%s: %w", doc.URI, err)
	}

	props := make(map[string]string, len(doc.Metadata.Properties))
	for k, v := range doc.Metadata.Properties {
		props[k] = v
	}

	return Record{
		URI:         doc.URI,
		Format:      FormatCode(doc.Format),
		Content:     content,
		Quality:     doc.Metadata.Quality,
		Collections: append([]string(nil), doc.Metadata.Collections...),
		Permissions: perms,
		Properties:  props,
	}, nil
}

// AdaptBatch converts every document in order. The first failure aborts.
func (a Adapter) AdaptBatch(batch []*domain.Document) ([]Record, error) {
	records := make([]Record, 0, len(batch))
	for _, doc := range batch {
		r, err := a.Adapt(doc)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Roles returns the record's roles, sorted.
func (r Record) Roles() []string {
	roles := make([]string, 0, len(r.Permissions))
	for role := range r.Permissions {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
