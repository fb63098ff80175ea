package properties

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Properties(_ context.Context) (map[string]string, error) {
	return nil, errors.New("boom")
}

type nilSource struct{}

func (nilSource) Name() string { return "nil" }

func (nilSource) Properties(_ context.Context) (map[string]string, error) {
	return nil, nil
}

func TestMerge_LaterSourcesWin(t *testing.T) {
	first := MapSource{"host": "localhost", "port": "8000"}
	second := MapSource{"port": "8010", "name": "app"}

	merged, err := Merge(context.Background(), first, second)

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"host": "localhost",
		"port": "8010",
		"name": "app",
	}, merged)
}

func TestMerge_NoSources(t *testing.T) {
	merged, err := Merge(context.Background())
	require.NoError(t, err)
	assert.Empty(t, merged)
}

func TestMerge_SkipsNilSourcesAndTables(t *testing.T) {
	merged, err := Merge(context.Background(), nil, nilSource{}, MapSource{"a": "1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1"}, merged)
}

func TestMerge_SourceError(t *testing.T) {
	_, err := Merge(context.Background(), MapSource{"a": "1"}, failingSource{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
}

func TestMerge_DoesNotAliasSource(t *testing.T) {
	src := MapSource{"a": "1"}
	merged, err := Merge(context.Background(), src)
	require.NoError(t, err)

	merged["a"] = "changed"
	assert.Equal(t, "1", src["a"])
}

func TestKeys_Sorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Keys(map[string]string{"c": "", "a": "", "b": ""}))
}
