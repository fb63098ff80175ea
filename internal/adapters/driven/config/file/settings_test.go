package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/processors"
)

func TestDecodeLoaderSettings_Defaults(t *testing.T) {
	settings, err := DecodeLoaderSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLoaderSettings(), settings)
}

func TestDecodeLoaderSettings_FromTOML(t *testing.T) {
	store, err := NewConfigStore(writeConfig(t, `
[loader]
batch_size = 25
wait_for_completion = false
permissions = "reader,read,writer,update"
collections = "a,b"
additional_binary_extensions = ["bin", "dat"]
exclude = ["**/node_modules/**"]
properties_files = ["env/local.yaml"]

[[loader.processors]]
name = "quality"
config = { value = 5 }

[loader.writer]
type = "sqlite"
path = "docs.db"
workers = 2
rate = 10
`))
	require.NoError(t, err)

	settings, err := LoadLoaderSettings(store)
	require.NoError(t, err)

	assert.Equal(t, 25, settings.BatchSize)
	assert.False(t, settings.WaitForCompletion)
	assert.True(t, settings.LogFileURIs, "unset keys keep their defaults")
	assert.Equal(t, "reader,read,writer,update", settings.Permissions)
	assert.Equal(t, []string{"a", "b"}, settings.Collections)
	assert.Equal(t, []string{"bin", "dat"}, settings.AdditionalBinaryExtensions)
	assert.Equal(t, []string{"**/node_modules/**"}, settings.Exclude)
	require.Len(t, settings.Processors, 1)
	assert.Equal(t, "quality", settings.Processors[0].Name)
	assert.EqualValues(t, 5, settings.Processors[0].Config["value"])
	assert.Equal(t, domain.WriterSettings{
		Type: "sqlite", Path: "docs.db", Workers: 2, Rate: 10, MaxRetries: 3,
	}, settings.Writer)
}

func TestDecodeLoaderSettings_UnknownKey(t *testing.T) {
	_, err := DecodeLoaderSettings(map[string]any{"batch_sise": 3})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestValidateLoaderSettings(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(s *domain.LoaderSettings)
		wantErr bool
	}{
		{"defaults", func(*domain.LoaderSettings) {}, false},
		{"valid permissions", func(s *domain.LoaderSettings) { s.Permissions = "a,read,b,execute" }, false},
		{"odd permissions", func(s *domain.LoaderSettings) { s.Permissions = "a,read,b" }, true},
		{"unknown capability", func(s *domain.LoaderSettings) { s.Permissions = "a,delete" }, true},
		{"empty role", func(s *domain.LoaderSettings) { s.Permissions = " ,read" }, true},
		{"bad glob", func(s *domain.LoaderSettings) { s.Exclude = []string{"[a-"} }, true},
		{"yaml properties", func(s *domain.LoaderSettings) { s.PropertiesFiles = []string{"p.yml"} }, false},
		{"json properties", func(s *domain.LoaderSettings) { s.PropertiesFiles = []string{"p.json"} }, true},
		{"unnamed processor", func(s *domain.LoaderSettings) {
			s.Processors = []domain.ProcessorSettings{{Name: ""}}
		}, true},
		{"unknown writer", func(s *domain.LoaderSettings) { s.Writer.Type = "marklogic" }, true},
		{"sqlite without path", func(s *domain.LoaderSettings) { s.Writer.Type = domain.WriterTypeSQLite }, true},
		{"sqlite with path", func(s *domain.LoaderSettings) {
			s.Writer.Type = domain.WriterTypeSQLite
			s.Writer.Path = "x.db"
		}, false},
		{"bleve without path", func(s *domain.LoaderSettings) { s.Writer.Type = domain.WriterTypeBleve }, false},
		{"negative workers", func(s *domain.LoaderSettings) { s.Writer.Workers = -1 }, true},
		{"negative rate", func(s *domain.LoaderSettings) { s.Writer.Rate = -0.5 }, true},
		{"negative retries", func(s *domain.LoaderSettings) { s.Writer.MaxRetries = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := domain.DefaultLoaderSettings()
			tt.modify(&s)

			err := ValidateLoaderSettings(s)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrConfiguration)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateLoaderSettings_PermissionsMatchProcessor(t *testing.T) {
	specs := []string{"", "  ", "a,read", " a , READ ", "a,read,b", "a,delete", ",read", "a,read,,update"}

	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			s := domain.DefaultLoaderSettings()
			s.Permissions = spec

			_, procErr := processors.NewPermissions(spec)
			err := ValidateLoaderSettings(s)
			assert.Equal(t, procErr == nil, err == nil)
		})
	}
}
