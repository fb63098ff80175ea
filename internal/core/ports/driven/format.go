package driven

import "github.com/custodia-labs/docloader/internal/core/domain"

// FormatGetter infers a document format from a file path.
type FormatGetter interface {
	Format(path string) domain.Format
}
