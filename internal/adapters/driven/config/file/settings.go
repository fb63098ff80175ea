package file

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/mapstructure"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/processors"
)

// LoaderSection is the config table holding loader settings.
const LoaderSection = "loader"

// PropertiesSection is the config table exposed as token properties.
const PropertiesSection = "properties"

// PropertiesFileExtensions lists the supported properties file types.
var PropertiesFileExtensions = []string{".toml", ".yaml", ".yml", ".env", ".properties"}

// LoadLoaderSettings decodes and validates the [loader] table of store,
// starting from the defaults.
func LoadLoaderSettings(store *ConfigStore) (domain.LoaderSettings, error) {
	settings, err := DecodeLoaderSettings(store.Section(LoaderSection))
	if err != nil {
		return settings, err
	}
	if err := ValidateLoaderSettings(settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// DecodeLoaderSettings decodes a config table over DefaultLoaderSettings.
// Comma-separated strings are accepted where lists are expected. Unknown
// keys are rejected.
func DecodeLoaderSettings(section map[string]any) (domain.LoaderSettings, error) {
	settings := domain.DefaultLoaderSettings()
	if len(section) == 0 {
		return settings, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return settings, err
	}

	if err := decoder.Decode(section); err != nil {
		return settings, fmt.Errorf("%w: [%s]: %w", domain.ErrConfiguration, LoaderSection, err)
	}
	return settings, nil
}

// ValidateLoaderSettings checks settings for values the loader cannot use.
func ValidateLoaderSettings(s domain.LoaderSettings) error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Permissions, validation.By(validPermissions)),
		validation.Field(&s.Exclude, validation.Each(validation.By(validGlob))),
		validation.Field(&s.PropertiesFiles, validation.Each(validation.By(validPropertiesFile))),
		validation.Field(&s.Processors, validation.Each(validation.By(validProcessor))),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrConfiguration, err)
	}

	w := s.Writer
	err = validation.ValidateStruct(&w,
		validation.Field(&w.Type, validation.In(
			domain.WriterTypeMemory, domain.WriterTypeSQLite, domain.WriterTypeBleve)),
		validation.Field(&w.Path, validation.When(w.Type == domain.WriterTypeSQLite, validation.Required)),
		validation.Field(&w.Workers, validation.Min(0)),
		validation.Field(&w.Rate, validation.Min(0.0)),
		validation.Field(&w.MaxRetries, validation.Min(0)),
	)
	if err != nil {
		return fmt.Errorf("%w: writer: %w", domain.ErrConfiguration, err)
	}
	return nil
}

func validPermissions(value any) error {
	spec, _ := value.(string)
	_, err := processors.NewPermissions(spec)
	return err
}

func validGlob(value any) error {
	pattern, _ := value.(string)
	if !doublestar.ValidatePattern(pattern) {
		return fmt.Errorf("invalid glob %q", pattern)
	}
	return nil
}

func validPropertiesFile(value any) error {
	path, _ := value.(string)
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range PropertiesFileExtensions {
		if ext == supported {
			return nil
		}
	}
	return fmt.Errorf("unsupported properties file %q", path)
}

func validProcessor(value any) error {
	p, _ := value.(domain.ProcessorSettings)
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("processor name is required")
	}
	return nil
}
