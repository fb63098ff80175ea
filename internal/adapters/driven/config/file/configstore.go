package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/properties"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DefaultFileName is the config file looked up in the config directory.
const DefaultFileName = "config.toml"

// DefaultPath returns ~/.docloader/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".docloader", DefaultFileName), nil
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
// Nested tables are reachable with dot-notation keys.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	raw      map[string]any
	data     map[string]any
}

// NewConfigStore creates a TOML config store for the file at path.
// If path is empty, defaults to ~/.docloader/config.toml. A missing file
// gives an empty store.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	s := &ConfigStore{
		filePath: path,
		raw:      make(map[string]any),
		data:     make(map[string]any),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}

	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}

	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	// TOML arrays are parsed as []any
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Section returns the nested table stored under key, or nil.
// An empty key returns the whole document. The result is a copy.
func (s *ConfigStore) Section(key string) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table := s.raw
	if key != "" {
		for _, part := range strings.Split(key, ".") {
			next, ok := table[part].(map[string]any)
			if !ok {
				return nil
			}
			table = next
		}
	}
	return copyTable(table)
}

// Set stores a configuration value and persists immediately.
// Dotted keys create nested tables.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setNested(s.raw, strings.Split(key, "."), value)
	s.data = flattenMap(s.raw, "")
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(s.raw)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}

	// Write with restricted permissions
	return os.WriteFile(s.filePath, data, 0600)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file yet, start empty
			s.raw = make(map[string]any)
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	s.raw = loaded
	s.data = flattenMap(loaded, "")
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// Properties exposes the table under section as a properties source.
// An empty section exposes the whole file.
func (s *ConfigStore) Properties(section string) *Properties {
	return &Properties{store: s, section: section}
}

// flattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

func setNested(m map[string]any, parts []string, value any) {
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func copyTable(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = copyTable(nested)
		}
		out[k] = v
	}
	return out
}

// Ensure Properties implements the interface.
var _ driven.PropertiesSource = (*Properties)(nil)

// Properties is a PropertiesSource backed by a ConfigStore table.
// Values are stringified and nested keys flattened with dots.
type Properties struct {
	store   *ConfigStore
	section string
}

// Name returns the source name.
func (p *Properties) Name() string {
	if p.section == "" {
		return p.store.Path()
	}
	return p.store.Path() + "#" + p.section
}

// Properties returns the table as strings.
func (p *Properties) Properties(_ context.Context) (map[string]string, error) {
	table := p.store.Section(p.section)
	if table == nil {
		return map[string]string{}, nil
	}
	return properties.Flatten(table), nil
}
