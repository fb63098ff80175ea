package properties

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docloader/internal/core/domain"
)

func TestEnvSource_PrefixStripped(t *testing.T) {
	src := &EnvSource{
		Prefix: "ML_",
		environ: func() []string {
			return []string{"ML_HOST=db", "ML_=skip", "OTHER=x", "ML_PORT=8000", "broken"}
		},
	}

	props, err := src.Properties(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"HOST": "db", "PORT": "8000"}, props)
	assert.Equal(t, "env:ML_", src.Name())
}

func TestEnvSource_ProcessEnvironment(t *testing.T) {
	t.Setenv("DOCLOADER_TEST_KEY", "value")

	props, err := NewEnvSource("DOCLOADER_TEST_").Properties(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "value", props["KEY"])
}

func TestDotEnvSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradle.properties")
	require.NoError(t, os.WriteFile(path, []byte("mlAppName=my-app\nmlRestPort=8003\n# comment\n"), 0600))

	props, err := NewDotEnvSource(path).Properties(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "my-app", props["mlAppName"])
	assert.Equal(t, "8003", props["mlRestPort"])
}

func TestDotEnvSource_MissingFile(t *testing.T) {
	_, err := NewDotEnvSource(filepath.Join(t.TempDir(), "missing.env")).Properties(context.Background())
	assert.Error(t, err)
}

func TestYAMLSource_Flattens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "props.yaml")
	content := "app:\n  name: demo\n  port: 8010\nroles: [a, b]\nempty:\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	props, err := NewYAMLSource(path).Properties(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "demo", props["app.name"])
	assert.Equal(t, "8010", props["app.port"])
	assert.Equal(t, "a,b", props["roles"])
	assert.Equal(t, "", props["empty"])
}

func TestYAMLSource_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: [unclosed"), 0600))

	_, err := NewYAMLSource(path).Properties(context.Background())
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	src, err := FileSource("a.yml")
	require.NoError(t, err)
	assert.IsType(t, &YAMLSource{}, src)

	src, err = FileSource("gradle.properties")
	require.NoError(t, err)
	assert.IsType(t, &DotEnvSource{}, src)

	src, err = FileSource(".env")
	require.NoError(t, err)
	assert.IsType(t, &DotEnvSource{}, src)

	_, err = FileSource("a.json")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
