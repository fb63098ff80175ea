package mcp

import (
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
)

// Ports aggregates the interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Loader loads files into the store.
	Loader driving.FileLoader

	// Assets loads the assets of a modules directory.
	Assets driving.AssetLoader

	// Modules classifies modules directories.
	Modules driven.ModulesFinder
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Loader == nil {
		return ErrMissingLoader
	}
	// Assets and Modules are optional
	return nil
}
