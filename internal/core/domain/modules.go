package domain

// Modules is the classification of a modules directory by role.
type Modules struct {
	// Services are REST extension modules.
	Services []string

	// Assets are library modules loaded as documents.
	Assets []Asset

	// Options are query options files.
	Options []string

	// Transforms are REST transform modules.
	Transforms []string

	// Namespaces are namespace definition files.
	Namespaces []string

	// PropertiesFile is the REST server properties file, empty when absent.
	PropertiesFile string
}

// Asset is a module file together with its path relative to the assets directory.
type Asset struct {
	// Path is the filesystem path.
	Path string

	// URI is the path relative to the assets directory, beginning with "/".
	URI string
}
