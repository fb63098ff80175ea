package tokenreplacer

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/logger"
	"github.com/custodia-labs/docloader/internal/properties"
)

// countingSource counts how often its table is requested.
type countingSource struct {
	props map[string]string
	calls int
	err   error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Properties(_ context.Context) (map[string]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.props, nil
}

func TestReplaceTokens_WithPrefix(t *testing.T) {
	r := New(
		WithPrefix(MLPrefix),
		WithSources(properties.MapSource{"app-name": "demo", "port": "8010"}),
	)

	got, err := r.ReplaceTokens(context.Background(), `<app name="@ml.app-name" port="@ml.port"/> app-name`)

	require.NoError(t, err)
	assert.Equal(t, `<app name="demo" port="8010"/> app-name`, got)
}

func TestReplaceTokens_WithoutPrefix(t *testing.T) {
	r := New(WithSources(properties.MapSource{"%%NAME%%": "x"}))

	got, err := r.ReplaceTokens(context.Background(), "a %%NAME%% b %%NAME%%")

	require.NoError(t, err)
	assert.Equal(t, "a x b x", got)
}

func TestReplaceTokens_IdentityOnNonMatchingText(t *testing.T) {
	r := New(WithPrefix("@ml."), WithSources(properties.MapSource{"a": "1", "b": "2"}))
	text := "nothing to see here: @mlx a b"

	got, err := r.ReplaceTokens(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, text, got)
}

func TestReplaceTokens_Idempotent(t *testing.T) {
	r := New(WithPrefix("@ml."), WithSources(properties.MapSource{"host": "db", "port": "8000"}))
	ctx := context.Background()

	once, err := r.ReplaceTokens(ctx, "@ml.host:@ml.port")
	require.NoError(t, err)
	twice, err := r.ReplaceTokens(ctx, once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestReplaceTokens_LongestTokenFirst(t *testing.T) {
	r := New(WithPrefix("@ml."), WithSources(properties.MapSource{
		"name":        "short",
		"name-suffix": "long",
	}))

	got, err := r.ReplaceTokens(context.Background(), "@ml.name-suffix / @ml.name")

	require.NoError(t, err)
	assert.Equal(t, "long / short", got)
}

func TestReplaceTokens_NestedPlaceholdersInValues(t *testing.T) {
	r := New(WithPrefix("@ml."), WithSources(properties.MapSource{
		"host": "localhost",
		"url":  "http://${host}:${port:8000}",
	}))

	got, err := r.ReplaceTokens(context.Background(), "url=@ml.url")

	require.NoError(t, err)
	assert.Equal(t, "url=http://localhost:8000", got)
}

func TestReplaceTokens_UnresolvedPlaceholderIsError(t *testing.T) {
	r := New(WithPrefix("@ml."), WithSources(properties.MapSource{"url": "${missing}"}))

	_, err := r.ReplaceTokens(context.Background(), "@ml.url")

	assert.ErrorIs(t, err, domain.ErrUnresolvedPlaceholder)
}

func TestReplaceTokens_UnresolvedPlaceholderOnlyWhenTokenPresent(t *testing.T) {
	r := New(WithPrefix("@ml."), WithSources(properties.MapSource{"url": "${missing}"}))

	got, err := r.ReplaceTokens(context.Background(), "no tokens")

	require.NoError(t, err)
	assert.Equal(t, "no tokens", got)
}

func TestReplaceTokens_IgnoreUnresolvable(t *testing.T) {
	r := New(
		WithPrefix("@ml."),
		WithIgnoreUnresolvable(true),
		WithSources(properties.MapSource{"url": "${missing}"}),
	)

	got, err := r.ReplaceTokens(context.Background(), "@ml.url")

	require.NoError(t, err)
	assert.Equal(t, "${missing}", got)
}

func TestReplaceTokens_CustomValueSeparator(t *testing.T) {
	r := New(
		WithValueSeparator("?:"),
		WithSources(properties.MapSource{"TOKEN": "${port?:8080}"}),
	)

	got, err := r.ReplaceTokens(context.Background(), "TOKEN")

	require.NoError(t, err)
	assert.Equal(t, "8080", got)
}

func TestReplaceTokens_LaterSourceWins(t *testing.T) {
	r := New(WithPrefix("@ml."), WithSources(
		properties.MapSource{"env": "dev"},
		properties.MapSource{"env": "prod"},
	))

	got, err := r.ReplaceTokens(context.Background(), "@ml.env")

	require.NoError(t, err)
	assert.Equal(t, "prod", got)
}

func TestReplaceTokens_TableCachedUntilInvalidated(t *testing.T) {
	src := &countingSource{props: map[string]string{"k": "v1"}}
	r := New(WithSources(src))
	ctx := context.Background()

	got, err := r.ReplaceTokens(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	src.props = map[string]string{"k": "v2"}
	got, err = r.ReplaceTokens(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got, "cached table must not change")
	assert.Equal(t, 1, src.calls)

	r.Invalidate()
	got, err = r.ReplaceTokens(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
	assert.Equal(t, 2, src.calls)
}

func TestReplaceTokens_AddPropertiesSource(t *testing.T) {
	r := New()
	r.AddPropertiesSource(properties.MapSource{"X": "y"})

	got, err := r.ReplaceTokens(context.Background(), "aXb")

	require.NoError(t, err)
	assert.Equal(t, "ayb", got)
}

func TestReplaceTokens_SourceError(t *testing.T) {
	boom := errors.New("boom")
	r := New(WithSources(&countingSource{err: boom}))

	_, err := r.ReplaceTokens(context.Background(), "text")

	assert.ErrorIs(t, err, boom)
}

func TestReplaceTokens_EmptyKeyIgnored(t *testing.T) {
	r := New(WithSources(properties.MapSource{"": "x"}))

	got, err := r.ReplaceTokens(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, "abc", got)
}

func TestProperties_ReturnsCopy(t *testing.T) {
	r := New(WithSources(properties.MapSource{"a": "1"}))

	props, err := r.Properties(context.Background())
	require.NoError(t, err)
	props["a"] = "changed"

	again, err := r.Properties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1", again["a"])
}

func TestReplaceTokens_LogsResolvedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetLevel(logger.LevelDebug)
	t.Cleanup(func() {
		logger.SetLevel(logger.LevelWarn)
		logger.SetOutput(os.Stderr)
	})

	r := New(WithPrefix(MLPrefix), WithSources(properties.MapSource{"port": "1", "app": "x"}))
	_, err := r.ReplaceTokens(context.Background(), "none")

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[DEBUG] Resolved 2 properties: [app port]\n")
}
