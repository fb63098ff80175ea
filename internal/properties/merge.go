// Package properties builds the resolved property table used for token
// replacement from an ordered list of PropertiesSources.
package properties

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/docloader/internal/core/ports/driven"
	"github.com/custodia-labs/docloader/internal/logger"
)

// Merge builds a single table from the sources in registration order.
// Later sources override earlier ones on key collision. A nil table from a
// source is treated as empty; an error from any source aborts the merge.
func Merge(ctx context.Context, sources ...driven.PropertiesSource) (map[string]string, error) {
	merged := make(map[string]string)
	for _, source := range sources {
		if source == nil {
			continue
		}
		props, err := source.Properties(ctx)
		if err != nil {
			return nil, fmt.Errorf("properties source %s: %w", source.Name(), err)
		}
		logger.Debug("Merging %d properties from %s", len(props), source.Name())
		for k, v := range props {
			merged[k] = v
		}
	}
	return merged, nil
}

// Keys returns the keys of props sorted lexically.
func Keys(props map[string]string) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
