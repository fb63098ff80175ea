package tokenreplacer

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

// Default placeholder syntax: ${key} and ${key:default}.
const (
	DefaultPlaceholderPrefix = "${"
	DefaultPlaceholderSuffix = "}"
	DefaultValueSeparator    = ":"
)

// PlaceholderResolver expands ${key} placeholders in property values against
// a property table. Placeholders may be nested (${a.${env}}), may carry a
// default after the value separator (${port:8000}), and resolved values are
// themselves expanded. Circular references are always an error.
type PlaceholderResolver struct {
	prefix             string
	suffix             string
	separator          string
	ignoreUnresolvable bool
}

// NewPlaceholderResolver creates a resolver with the default syntax.
func NewPlaceholderResolver(ignoreUnresolvable bool) *PlaceholderResolver {
	return &PlaceholderResolver{
		prefix:             DefaultPlaceholderPrefix,
		suffix:             DefaultPlaceholderSuffix,
		separator:          DefaultValueSeparator,
		ignoreUnresolvable: ignoreUnresolvable,
	}
}

// Resolve expands every placeholder in value.
func (r *PlaceholderResolver) Resolve(value string, props map[string]string) (string, error) {
	return r.resolve(value, props, make(map[string]bool))
}

func (r *PlaceholderResolver) resolve(value string, props map[string]string, visiting map[string]bool) (string, error) {
	start := strings.Index(value, r.prefix)
	for start != -1 {
		end := r.findEnd(value, start+len(r.prefix))
		if end == -1 {
			break
		}

		placeholder := value[start+len(r.prefix) : end]
		if visiting[placeholder] {
			return "", fmt.Errorf("%w: circular placeholder reference %q", domain.ErrConfiguration, placeholder)
		}
		visiting[placeholder] = true

		key, err := r.resolve(placeholder, props, visiting)
		if err != nil {
			return "", err
		}

		resolved, ok := r.lookup(key, props)
		if ok {
			resolved, err = r.resolve(resolved, props, visiting)
			if err != nil {
				return "", err
			}
		}
		delete(visiting, placeholder)

		switch {
		case ok:
			value = value[:start] + resolved + value[end+len(r.suffix):]
			start = indexFrom(value, r.prefix, start+len(resolved))
		case r.ignoreUnresolvable:
			start = indexFrom(value, r.prefix, end+len(r.suffix))
		default:
			return "", fmt.Errorf("%w: %w: could not resolve placeholder %q in value %q",
				domain.ErrConfiguration, domain.ErrUnresolvedPlaceholder, placeholder, value)
		}
	}
	return value, nil
}

// lookup finds key, falling back to the default after the value separator.
func (r *PlaceholderResolver) lookup(key string, props map[string]string) (string, bool) {
	if v, ok := props[key]; ok {
		return v, true
	}
	if r.separator == "" {
		return "", false
	}
	actual, def, found := strings.Cut(key, r.separator)
	if !found {
		return "", false
	}
	if v, ok := props[actual]; ok {
		return v, true
	}
	return def, true
}

// findEnd returns the index of the suffix closing the placeholder whose body
// starts at from, skipping nested placeholders. It returns -1 if unclosed.
func (r *PlaceholderResolver) findEnd(s string, from int) int {
	depth := 0
	for i := from; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], r.suffix):
			if depth == 0 {
				return i
			}
			depth--
			i += len(r.suffix)
		case strings.HasPrefix(s[i:], r.prefix):
			depth++
			i += len(r.prefix)
		default:
			i++
		}
	}
	return -1
}

func indexFrom(s, substr string, from int) int {
	if from > len(s) {
		return -1
	}
	i := strings.Index(s[from:], substr)
	if i == -1 {
		return -1
	}
	return from + i
}
