// Package mcp provides an MCP (Model Context Protocol) server adapter for docloader.
// It lets AI assistants load files into the document store and follow loads.
package mcp

import "errors"

// ErrMissingLoader is returned when the file loader is not provided.
var ErrMissingLoader = errors.New("mcp: file loader is required")

// errModulesUnavailable is returned by module tools when no finder or asset
// loader is configured.
var errModulesUnavailable = errors.New("mcp: modules support is not configured")
