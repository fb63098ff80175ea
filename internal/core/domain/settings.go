package domain

// Writer types supported by the writer factory.
const (
	WriterTypeMemory = "memory"
	WriterTypeSQLite = "sqlite"
	WriterTypeBleve  = "bleve"
)

// LoaderSettings holds loader configuration read from the config file and
// overridden by command-line flags.
type LoaderSettings struct {
	// BatchSize is the number of documents per write; zero or less means one batch.
	BatchSize int `mapstructure:"batch_size"`

	// WaitForCompletion blocks the load until the writer confirms all batches.
	WaitForCompletion bool `mapstructure:"wait_for_completion"`

	// LogFileURIs logs every URI before its batch is written.
	LogFileURIs bool `mapstructure:"log_file_uris"`

	// Permissions is a "role,capability,role,capability" specification.
	Permissions string `mapstructure:"permissions"`

	// Collections are applied to every document.
	Collections []string `mapstructure:"collections"`

	// AdditionalBinaryExtensions are classified as binary on top of the defaults.
	AdditionalBinaryExtensions []string `mapstructure:"additional_binary_extensions"`

	// Exclude holds glob patterns of root-relative paths to skip.
	Exclude []string `mapstructure:"exclude"`

	// IncludeHidden disables the default hidden-file filter.
	IncludeHidden bool `mapstructure:"include_hidden"`

	// PropertyPrefix is prepended to property keys when matching tokens.
	PropertyPrefix string `mapstructure:"property_prefix"`

	// PropertiesFiles are read in order to build the token table.
	// Supported extensions: .toml, .yaml, .yml, .env, .properties.
	PropertiesFiles []string `mapstructure:"properties_files"`

	// IgnoreUnresolvable leaves unresolved ${...} placeholders untouched.
	IgnoreUnresolvable bool `mapstructure:"ignore_unresolvable"`

	// Processors are config-built processors appended after the built-ins.
	Processors []ProcessorSettings `mapstructure:"processors"`

	// Writer selects and configures the store writer.
	Writer WriterSettings `mapstructure:"writer"`
}

// ProcessorSettings configures one registry-built processor.
type ProcessorSettings struct {
	Name   string         `mapstructure:"name"`
	Config map[string]any `mapstructure:"config"`
}

// WriterSettings configures the store writer.
type WriterSettings struct {
	// Type is one of memory, sqlite or bleve.
	Type string `mapstructure:"type"`

	// Path is the database file or index directory.
	Path string `mapstructure:"path"`

	// Workers enables asynchronous writing with this many workers when positive.
	Workers int `mapstructure:"workers"`

	// Rate limits batch submissions per second when positive.
	Rate float64 `mapstructure:"rate"`

	// MaxRetries is the number of retries per failed batch in async mode.
	MaxRetries int `mapstructure:"max_retries"`
}

// DefaultLoaderSettings returns the settings used when nothing is configured.
func DefaultLoaderSettings() LoaderSettings {
	return LoaderSettings{
		WaitForCompletion: true,
		LogFileURIs:       true,
		Writer: WriterSettings{
			Type:       WriterTypeMemory,
			MaxRetries: 3,
		},
	}
}
