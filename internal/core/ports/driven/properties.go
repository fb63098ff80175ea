package driven

import "context"

// PropertiesSource exposes a key/value table merged into the token table.
type PropertiesSource interface {
	// Name identifies the source in logs and errors.
	Name() string

	// Properties returns the source's table; it may be empty.
	Properties(ctx context.Context) (map[string]string, error)
}

// TokenReplacer rewrites property tokens in text.
type TokenReplacer interface {
	ReplaceTokens(ctx context.Context, text string) (string, error)
}
