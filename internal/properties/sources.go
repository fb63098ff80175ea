package properties

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driven"
)

// Ensure sources implement the interface.
var (
	_ driven.PropertiesSource = MapSource{}
	_ driven.PropertiesSource = (*EnvSource)(nil)
	_ driven.PropertiesSource = (*DotEnvSource)(nil)
	_ driven.PropertiesSource = (*YAMLSource)(nil)
)

// MapSource is a fixed in-memory table.
type MapSource map[string]string

// Name returns the source name.
func (MapSource) Name() string { return "map" }

// Properties returns a copy of the table.
func (m MapSource) Properties(_ context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// EnvSource exposes process environment variables.
// When Prefix is set only variables starting with it are kept, with the
// prefix stripped from the key.
type EnvSource struct {
	Prefix string

	// environ is replaceable in tests.
	environ func() []string
}

// NewEnvSource creates an environment source for the given prefix.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{Prefix: prefix, environ: os.Environ}
}

// Name returns the source name.
func (s *EnvSource) Name() string { return "env:" + s.Prefix }

// Properties returns the matching environment variables.
func (s *EnvSource) Properties(_ context.Context) (map[string]string, error) {
	environ := s.environ
	if environ == nil {
		environ = os.Environ
	}
	out := make(map[string]string)
	for _, kv := range environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, s.Prefix) {
			continue
		}
		key = strings.TrimPrefix(key, s.Prefix)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out, nil
}

// DotEnvSource reads KEY=VALUE files (.env and simple .properties files).
type DotEnvSource struct {
	Path string
}

// NewDotEnvSource creates a source for the file at path.
func NewDotEnvSource(path string) *DotEnvSource {
	return &DotEnvSource{Path: path}
}

// Name returns the source name.
func (s *DotEnvSource) Name() string { return s.Path }

// Properties parses the file.
func (s *DotEnvSource) Properties(_ context.Context) (map[string]string, error) {
	props, err := godotenv.Read(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	return props, nil
}

// YAMLSource reads a YAML document; nested mappings are flattened into
// dot-notation keys.
type YAMLSource struct {
	Path string
}

// NewYAMLSource creates a source for the file at path.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{Path: path}
}

// Name returns the source name.
func (s *YAMLSource) Name() string { return s.Path }

// Properties parses and flattens the file.
func (s *YAMLSource) Properties(_ context.Context) (map[string]string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Path, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.Path, err)
	}
	return Flatten(raw), nil
}

// Flatten converts nested maps into dot-notation keys with string values.
// E.g., {"a": {"b": 1}} becomes {"a.b": "1"}.
func Flatten(m map[string]any) map[string]string {
	out := make(map[string]string)
	flattenInto(out, m, "")
	return out
}

func flattenInto(out map[string]string, m map[string]any, prefix string) {
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		switch v := value.(type) {
		case map[string]any:
			flattenInto(out, v, fullKey)
		case nil:
			out[fullKey] = ""
		case []any:
			parts := make([]string, len(v))
			for i, item := range v {
				parts[i] = fmt.Sprint(item)
			}
			out[fullKey] = strings.Join(parts, ",")
		default:
			out[fullKey] = fmt.Sprint(v)
		}
	}
}

// FileSource picks a source for path by its extension.
// TOML files are handled by the config store and are not accepted here.
func FileSource(path string) (driven.PropertiesSource, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLSource(path), nil
	case ".env", ".properties", "":
		return NewDotEnvSource(path), nil
	default:
		return nil, fmt.Errorf("%w: unsupported properties file %s", domain.ErrUnsupportedType, path)
	}
}
