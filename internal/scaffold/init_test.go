package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCreatesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)

	wrote, err := Write(path)
	require.NoError(t, err)
	assert.True(t, wrote)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "targets:")
	assert.Contains(t, string(content), "name: esm")
}

func TestWriteRefusesToOverwriteExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte("custom content"), 0o644))

	wrote, err := Write(path)
	require.NoError(t, err)
	assert.False(t, wrote)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "custom content", string(content))
}

func TestWriteDefaultsToDefaultFileName(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(cwd)

	wrote, err := Write("")
	require.NoError(t, err)
	assert.True(t, wrote)

	_, statErr := os.Stat(filepath.Join(dir, DefaultFileName))
	assert.NoError(t, statErr)
}
