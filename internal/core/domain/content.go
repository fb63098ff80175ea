package domain

import "io"

// Content is a document payload representation.
// Writers translate known representations into their wire form; anything
// else is rejected with ErrUnsupportedContent.
type Content interface {
	// Kind names the representation for logging and error messages.
	Kind() string
}

// BytesContent is an in-memory byte payload.
type BytesContent []byte

// Kind implements Content.
func (BytesContent) Kind() string { return "bytes" }

// TextContent is a text payload, typically produced by token replacement.
type TextContent string

// Kind implements Content.
func (TextContent) Kind() string { return "text" }

// FileContent refers to a file that is read when the document is written.
type FileContent string

// Kind implements Content.
func (FileContent) Kind() string { return "file" }

// StreamContent wraps a reader that is consumed when the document is written.
type StreamContent struct {
	io.Reader
}

// Kind implements Content.
func (StreamContent) Kind() string { return "stream" }
