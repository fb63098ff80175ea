package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
)

func TestLoadCmd_Use(t *testing.T) {
	assert.Equal(t, "load <path>...", loadCmd.Use)
	assert.NotNil(t, loadCmd.Flags().Lookup("batch-size"))
	assert.NotNil(t, watchCmd.Flags().Lookup("batch-size"))
}

func TestLoadCmd_RequiresPath(t *testing.T) {
	_, err := execute(t, "load")
	assert.Error(t, err)
}

func TestLoadCmd_LoadsDirectory(t *testing.T) {
	mem := useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.xml":          "<a/>",
		"b.json":         `{"b":1}`,
		"sub/c.txt":      "c",
		".hidden":        "secret",
		".git/HEAD":      "ref",
		"img/logo.png":   "\x89PNG",
		"node/skip.js":   "x",
		"node/deep/x.js": "x",
	})
	cfg := writeConfig(t, `
[loader]
collections = ["docs"]
permissions = "reader,read"
`)

	out, err := execute(t, "load", dir, "--config", cfg, "--batch-size", "2", "-x", "node/**")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 4 documents.")
	assert.Equal(t, []string{"/a.xml", "/b.json", "/img/logo.png", "/sub/c.txt"}, mem.URIs())
	assert.Len(t, mem.Batches(), 2)

	rec, err := mem.Get("/a.xml")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs"}, rec.Collections)
	assert.Equal(t, map[string][]string{"reader": {"read"}}, rec.Permissions)

	logo, err := mem.Get("/img/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "binary", logo.Format)
}

func TestLoadCmd_FlagsOverrideConfig(t *testing.T) {
	mem := useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a", ".env": "x"})
	cfg := writeConfig(t, `
[loader]
collections = ["from-config"]
`)

	_, err := execute(t, "load", dir, "--config", cfg, "--collections", "x,y", "--include-hidden")

	require.NoError(t, err)
	assert.Equal(t, []string{"/.env", "/a.txt"}, mem.URIs())
	rec, err := mem.Get("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, rec.Collections)
}

func TestLoadCmd_ReplacesTokens(t *testing.T) {
	mem := useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"app.xml":    "<host>@ml.host:@ml.port</host><name>@ml.app-name</name>",
		"local.yaml": "port: 8042\napp-name: ${host}-app\n",
	})
	props := filepath.Join(dir, "local.yaml")
	cfg := writeConfig(t, `
[properties]
host = "example.org"
port = 8000
`)

	_, err := execute(t, "load", filepath.Join(dir, "app.xml"),
		"--config", cfg, "--property-prefix", "@ml.", "--properties", props)

	require.NoError(t, err)
	rec, err := mem.Get("/app.xml")
	require.NoError(t, err)
	assert.Equal(t, "<host>example.org:8042</host><name>example.org-app</name>", string(rec.Content))
}

func TestLoadCmd_EnvironmentProperties(t *testing.T) {
	mem := useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "user=@ml.user"})
	t.Setenv("DOCLOADER_PROP_user", "admin")

	_, err := execute(t, "load", dir, "--config", writeConfig(t, ""), "--property-prefix", "@ml.")

	require.NoError(t, err)
	rec, err := mem.Get("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "user=admin", string(rec.Content))
}

func TestLoadCmd_ConfigProcessors(t *testing.T) {
	mem := useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})
	cfg := writeConfig(t, `
[[loader.processors]]
name = "uri_prefix"
config = { prefix = "site" }

[[loader.processors]]
name = "quality"
config = { value = 3 }
`)

	_, err := execute(t, "load", dir, "--config", cfg)

	require.NoError(t, err)
	rec, err := mem.Get("/site/a.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, rec.Quality)
}

func TestLoadCmd_DryRunListsURIs(t *testing.T) {
	useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a", "b/c.txt": "c"})

	out, err := execute(t, "load", dir, "--config", writeConfig(t, ""), "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "/a.txt\n")
	assert.Contains(t, out, "/b/c.txt\n")
}

func TestLoadCmd_ConfigurationErrors(t *testing.T) {
	useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})

	tests := []struct {
		name string
		args []string
	}{
		{"odd permissions", []string{"--permissions", "reader,read,writer"}},
		{"unknown writer", []string{"--writer", "marklogic"}},
		{"sqlite without path", []string{"--writer", "sqlite"}},
		{"missing properties file", []string{"--properties", filepath.Join(dir, "none.yaml")}},
		{"unsupported properties file", []string{"--properties", filepath.Join(dir, "a.txt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"load", dir, "--config", writeConfig(t, "")}, tt.args...)
			_, err := execute(t, args...)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestLoadCmd_UnknownProcessor(t *testing.T) {
	useMemoryWriter(t)
	dir := t.TempDir()
	cfg := writeConfig(t, `
[[loader.processors]]
name = "chunker"
`)

	_, err := execute(t, "load", dir, "--config", cfg)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestLoadCmd_SQLiteWriter(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a", "b.txt": "b"})
	db := filepath.Join(t.TempDir(), "store", "docs.db")

	out, err := execute(t, "load", dir, "--config", writeConfig(t, ""),
		"--writer", "sqlite", "--writer-path", db, "--workers", "2")

	require.NoError(t, err)
	assert.Contains(t, out, "Loaded 2 documents.")
	_, err = os.Stat(db)
	assert.NoError(t, err)
}

func TestLoadCmd_MissingPath(t *testing.T) {
	useMemoryWriter(t)

	_, err := execute(t, "load", filepath.Join(t.TempDir(), "nope"), "--config", writeConfig(t, ""))
	assert.ErrorIs(t, err, domain.ErrDiscovery)
}

func TestLoadCmd_ProgressView(t *testing.T) {
	mem := useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})

	originalTerminal, originalView := stdoutIsTerminal, runProgressView
	t.Cleanup(func() { stdoutIsTerminal, runProgressView = originalTerminal, originalView })

	var viewed []string
	stdoutIsTerminal = func() bool { return true }
	runProgressView = func(ctx context.Context, loader driving.FileLoader, paths []string) ([]*domain.Document, error) {
		viewed = paths
		return loader.LoadFiles(ctx, paths...)
	}

	out, err := execute(t, "load", dir, "--config", writeConfig(t, ""), "--progress")

	require.NoError(t, err)
	assert.Equal(t, []string{dir}, viewed)
	assert.NotContains(t, out, "Loading ")
	assert.Contains(t, out, "Loaded 1 documents.")
	assert.Equal(t, 1, mem.Count())
}

func TestLoadCmd_ProgressFallsBackWithoutTerminal(t *testing.T) {
	useMemoryWriter(t)
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "a"})

	originalTerminal := stdoutIsTerminal
	t.Cleanup(func() { stdoutIsTerminal = originalTerminal })
	stdoutIsTerminal = func() bool { return false }

	out, err := execute(t, "load", dir, "--config", writeConfig(t, ""), "--progress")

	require.NoError(t, err)
	assert.Contains(t, out, "Loading "+dir)
}
