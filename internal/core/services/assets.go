package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
	"github.com/custodia-labs/docloader/internal/logger"
)

// Ensure AssetLoader implements the interface.
var _ driving.AssetLoader = (*AssetLoader)(nil)

// AssetLoader loads the assets of a modules directory through a FileLoader.
type AssetLoader struct {
	finder driven.ModulesFinder
	loader driving.FileLoader
	dir    func(baseDir string) string
}

// NewAssetLoader creates an asset loader. assetsDir maps a modules base
// directory to its assets directory.
func NewAssetLoader(finder driven.ModulesFinder, loader driving.FileLoader, assetsDir func(baseDir string) string) *AssetLoader {
	if assetsDir == nil {
		assetsDir = func(baseDir string) string { return filepath.Join(baseDir, "ext") }
	}
	return &AssetLoader{finder: finder, loader: loader, dir: assetsDir}
}

// LoadAssets classifies baseDir and loads its assets directory.
// A modules directory without assets loads nothing.
func (a *AssetLoader) LoadAssets(ctx context.Context, baseDir string) ([]*domain.Document, error) {
	modules, err := a.finder.FindModules(baseDir)
	if err != nil {
		return nil, fmt.Errorf("find modules in %s: %w", baseDir, err)
	}

	logger.Section("Modules")
	logger.Info("services: %d, assets: %d, options: %d, transforms: %d, namespaces: %d",
		len(modules.Services), len(modules.Assets), len(modules.Options),
		len(modules.Transforms), len(modules.Namespaces))

	if len(modules.Assets) == 0 {
		return nil, nil
	}
	return a.loader.LoadFiles(ctx, a.dir(baseDir))
}
