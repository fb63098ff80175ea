package domain

import (
	"fmt"
	"strings"
)

// Document is one unit of content plus metadata destined for the target store.
// It is created by a DocumentFileReader, mutated in place by each processor in
// chain order, and handed to a BatchWriter once the chain has run.
type Document struct {
	// URI is the store-unique identity. It always begins with "/".
	URI string

	// Path is the filesystem path the document was read from.
	Path string

	// Content is the payload representation.
	Content Content

	// Format is inferred from the file extension unless overridden.
	Format Format

	// Metadata holds collections, permissions, quality and properties.
	Metadata Metadata
}

// NewDocument creates a document with empty metadata and TEXT format.
func NewDocument(uri, path string, content Content) *Document {
	return &Document{
		URI:      uri,
		Path:     path,
		Content:  content,
		Format:   FormatText,
		Metadata: NewMetadata(),
	}
}

// Text returns the content as a string when the document is text-representable.
// Binary documents and non-text content handles report false.
func (d *Document) Text() (string, bool) {
	if d.Format == FormatBinary {
		return "", false
	}
	switch c := d.Content.(type) {
	case TextContent:
		return string(c), true
	case BytesContent:
		return string(c), true
	default:
		return "", false
	}
}

// SetText replaces the content with the given text.
func (d *Document) SetText(text string) {
	d.Content = TextContent(text)
}

// Format is the document format understood by the store.
type Format int

// Supported document formats.
const (
	FormatUnknown Format = iota
	FormatBinary
	FormatJSON
	FormatText
	FormatXML
)

// String returns the lower-case name of the format.
func (f Format) String() string {
	switch f {
	case FormatBinary:
		return "binary"
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	case FormatXML:
		return "xml"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "binary":
		return FormatBinary, nil
	case "json":
		return FormatJSON, nil
	case "text":
		return FormatText, nil
	case "xml":
		return FormatXML, nil
	case "unknown":
		return FormatUnknown, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, s)
	}
}

// Capability is a permission capability granted to a role.
type Capability string

// Supported capabilities.
const (
	CapabilityRead    Capability = "read"
	CapabilityInsert  Capability = "insert"
	CapabilityUpdate  Capability = "update"
	CapabilityExecute Capability = "execute"
)

// ParseCapability converts a capability name (case-insensitive) into a Capability.
func ParseCapability(s string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CapabilityRead, CapabilityInsert, CapabilityUpdate, CapabilityExecute:
		return c, nil
	default:
		return "", fmt.Errorf("%w: unknown capability %q", ErrInvalidInput, s)
	}
}

// Permissions maps a role to its set of capabilities.
// Capabilities keep insertion order and never repeat.
type Permissions map[string][]Capability

// Add grants the capability to the role.
func (p Permissions) Add(role string, capability Capability) {
	for _, c := range p[role] {
		if c == capability {
			return
		}
	}
	p[role] = append(p[role], capability)
}

// Has reports whether the role holds the capability.
func (p Permissions) Has(role string, capability Capability) bool {
	for _, c := range p[role] {
		if c == capability {
			return true
		}
	}
	return false
}

// Metadata is the store metadata attached to a document.
type Metadata struct {
	// Collections is an insertion-ordered set of collection tags.
	Collections []string

	// Permissions maps roles to capabilities.
	Permissions Permissions

	// Quality is the store quality score.
	Quality int

	// Properties contains arbitrary key-value pairs.
	Properties map[string]string
}

// NewMetadata returns metadata with initialised maps.
func NewMetadata() Metadata {
	return Metadata{
		Permissions: make(Permissions),
		Properties:  make(map[string]string),
	}
}

// AddCollections appends collections not already present.
func (m *Metadata) AddCollections(collections ...string) {
	for _, c := range collections {
		if c == "" || m.HasCollection(c) {
			continue
		}
		m.Collections = append(m.Collections, c)
	}
}

// HasCollection reports whether the collection is present.
func (m *Metadata) HasCollection(collection string) bool {
	for _, c := range m.Collections {
		if c == collection {
			return true
		}
	}
	return false
}
