package filesystem

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure ModulesFinder implements the interface.
var _ driven.ModulesFinder = (*ModulesFinder)(nil)

// RestPropertiesFile is the REST server properties file looked up in the base directory.
const RestPropertiesFile = "rest-properties.json"

// ModulesFinder classifies a modules directory by role.
// Each role lives in its own subdirectory of the base directory.
type ModulesFinder struct {
	fs             afero.Fs
	servicesPath   string
	assetsPath     string
	optionsPath    string
	transformsPath string
	namespacesPath string
}

// ModulesOption configures the modules finder.
type ModulesOption func(*ModulesFinder)

// WithModulesFs sets the filesystem. Defaults to the OS filesystem.
func WithModulesFs(fsys afero.Fs) ModulesOption {
	return func(f *ModulesFinder) {
		if fsys != nil {
			f.fs = fsys
		}
	}
}

// WithServicesPath sets the services subdirectory.
func WithServicesPath(p string) ModulesOption {
	return func(f *ModulesFinder) { f.servicesPath = p }
}

// WithAssetsPath sets the assets subdirectory.
func WithAssetsPath(p string) ModulesOption {
	return func(f *ModulesFinder) { f.assetsPath = p }
}

// WithOptionsPath sets the query options subdirectory.
func WithOptionsPath(p string) ModulesOption {
	return func(f *ModulesFinder) { f.optionsPath = p }
}

// WithTransformsPath sets the transforms subdirectory.
func WithTransformsPath(p string) ModulesOption {
	return func(f *ModulesFinder) { f.transformsPath = p }
}

// WithNamespacesPath sets the namespaces subdirectory.
func WithNamespacesPath(p string) ModulesOption {
	return func(f *ModulesFinder) { f.namespacesPath = p }
}

// NewModulesFinder creates a finder with the conventional layout:
// services, ext, options, transforms and namespaces.
func NewModulesFinder(opts ...ModulesOption) *ModulesFinder {
	f := &ModulesFinder{
		fs:             afero.NewOsFs(),
		servicesPath:   "services",
		assetsPath:     "ext",
		optionsPath:    "options",
		transformsPath: "transforms",
		namespacesPath: "namespaces",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AssetsDir returns the assets directory beneath baseDir.
func (f *ModulesFinder) AssetsDir(baseDir string) string {
	return filepath.Join(baseDir, f.assetsPath)
}

// FindModules classifies the files beneath baseDir.
// Missing subdirectories yield empty lists.
func (f *ModulesFinder) FindModules(baseDir string) (*domain.Modules, error) {
	m := &domain.Modules{}
	var err error

	if m.Services, err = f.list(filepath.Join(baseDir, f.servicesPath), isServiceFile); err != nil {
		return nil, err
	}
	if m.Assets, err = f.assets(f.AssetsDir(baseDir), ""); err != nil {
		return nil, err
	}
	if m.Options, err = f.list(filepath.Join(baseDir, f.optionsPath), hasExt("xml", "json")); err != nil {
		return nil, err
	}
	if m.Transforms, err = f.list(filepath.Join(baseDir, f.transformsPath), isTransformFile); err != nil {
		return nil, err
	}
	if m.Namespaces, err = f.list(filepath.Join(baseDir, f.namespacesPath), func(string) bool { return true }); err != nil {
		return nil, err
	}

	props := filepath.Join(baseDir, RestPropertiesFile)
	if ok, _ := afero.Exists(f.fs, props); ok {
		m.PropertiesFile = props
	}

	return m, nil
}

// list returns the regular files directly inside dir accepted by keep.
func (f *ModulesFinder) list(dir string, keep func(name string) bool) ([]string, error) {
	entries, err := f.readDir(dir)
	if err != nil || entries == nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out, nil
}

// assets collects non-hidden files recursively with their path relative to the assets root.
func (f *ModulesFinder) assets(dir, rel string) ([]domain.Asset, error) {
	entries, err := f.readDir(dir)
	if err != nil || entries == nil {
		return nil, err
	}
	var out []domain.Asset
	for _, e := range entries {
		if isHidden(e.Name()) {
			continue
		}
		p := filepath.Join(dir, e.Name())
		uri := path.Join("/", rel, e.Name())
		if e.IsDir() {
			nested, err := f.assets(p, path.Join(rel, e.Name()))
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
			continue
		}
		out = append(out, domain.Asset{Path: p, URI: uri})
	}
	return out, nil
}

// readDir lists dir sorted by name; a missing directory yields nil.
func (f *ModulesFinder) readDir(dir string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(f.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: list %s: %w", domain.ErrDiscovery, dir, err)
	}
	return entries, nil
}

func hasExt(exts ...string) func(string) bool {
	return func(name string) bool {
		ext := normalizeExt(path.Ext(name))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

var (
	isXQueryFile     = hasExt("xqy", "xq", "xqm", "xquery")
	isJavascriptFile = hasExt("sjs", "js")
	isXSLFile        = hasExt("xsl", "xslt")
)

func isServiceFile(name string) bool {
	return isXQueryFile(name) || isJavascriptFile(name)
}

func isTransformFile(name string) bool {
	return isXSLFile(name) || isXQueryFile(name) || isJavascriptFile(name)
}
