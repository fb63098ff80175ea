package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

// noBytes has no byte representation.
type noBytes struct{}

func (noBytes) Kind() string { return "none" }

// setupTestWriter creates an initialised writer in a temporary directory.
func setupTestWriter(t *testing.T) *Writer {
	t.Helper()
	w := NewWriter(filepath.Join(t.TempDir(), "data", "docs.db"))
	require.NoError(t, w.Initialize(context.Background()))
	t.Cleanup(func() { assert.NoError(t, w.Close()) })
	return w
}

func testDoc(uri, content string) *domain.Document {
	doc := domain.NewDocument(uri, "", domain.TextContent(content))
	doc.Metadata.AddCollections("x", "y")
	doc.Metadata.Permissions.Add("reader", domain.CapabilityRead)
	doc.Metadata.Properties["team"] = "docs"
	doc.Metadata.Quality = 2
	return doc
}

func TestWriter_WriteAndGet(t *testing.T) {
	ctx := context.Background()
	w := setupTestWriter(t)

	require.NoError(t, w.Write(ctx, []*domain.Document{testDoc("/a.xml", "<a/>"), testDoc("/b.json", "{}")}))
	require.NoError(t, w.Write(ctx, []*domain.Document{testDoc("/c.txt", "c")}))
	require.NoError(t, w.WaitForCompletion(ctx))

	n, err := w.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	batches, err := w.BatchCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, batches)

	r, err := w.Get(ctx, "/a.xml")
	require.NoError(t, err)
	assert.Equal(t, "text", r.Format)
	assert.Equal(t, []byte("<a/>"), r.Content)
	assert.Equal(t, 2, r.Quality)
	assert.Equal(t, []string{"x", "y"}, r.Collections)
	assert.Equal(t, map[string][]string{"reader": {"read"}}, r.Permissions)
	assert.Equal(t, map[string]string{"team": "docs"}, r.Properties)
}

func TestWriter_Upsert(t *testing.T) {
	ctx := context.Background()
	w := setupTestWriter(t)

	require.NoError(t, w.Write(ctx, []*domain.Document{testDoc("/a", "one")}))
	require.NoError(t, w.Write(ctx, []*domain.Document{testDoc("/a", "two")}))

	r, err := w.Get(ctx, "/a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), r.Content)

	n, err := w.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestWriter_GetNotFound(t *testing.T) {
	_, err := setupTestWriter(t).Get(context.Background(), "/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestWriter_UnsupportedContentWritesNothing(t *testing.T) {
	ctx := context.Background()
	w := setupTestWriter(t)

	err := w.Write(ctx, []*domain.Document{
		testDoc("/ok", "ok"),
		domain.NewDocument("/bad", "", noBytes{}),
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedContent)
	assert.ErrorIs(t, err, domain.ErrWrite)
	n, err := w.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWriter_NotInitialized(t *testing.T) {
	w := NewWriter(filepath.Join(t.TempDir(), "docs.db"))

	err := w.Write(context.Background(), []*domain.Document{testDoc("/a", "a")})
	assert.ErrorIs(t, err, domain.ErrWriterState)

	assert.ErrorIs(t, w.WaitForCompletion(context.Background()), domain.ErrWriterState)
	assert.NoError(t, w.Close())
}

func TestWriter_InitializeIsIdempotentAndReopens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "docs.db")

	w := NewWriter(path)
	require.NoError(t, w.Initialize(ctx))
	require.NoError(t, w.Initialize(ctx))
	require.NoError(t, w.Write(ctx, []*domain.Document{testDoc("/a", "a")}))
	require.NoError(t, w.Close())

	reopened := NewWriter(path)
	require.NoError(t, reopened.Initialize(ctx))
	defer reopened.Close()
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, path, reopened.Path())
}

func TestWriter_EmptyPath(t *testing.T) {
	err := NewWriter("").Initialize(context.Background())
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}
