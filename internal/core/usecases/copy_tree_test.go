package usecases

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyTreeCopiesNestedFiles(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(src, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.js"), []byte("export const a = 1;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "nested", "b.js"), []byte("export const b = 2;"), 0o644))

	require.NoError(t, copyTree(src, dst, 4))

	a, err := os.ReadFile(filepath.Join(dst, "a.js"))
	require.NoError(t, err)
	assert.Equal(t, "export const a = 1;", string(a))

	b, err := os.ReadFile(filepath.Join(dst, "nested", "b.js"))
	require.NoError(t, err)
	assert.Equal(t, "export const b = 2;", string(b))
}

func TestCopyTreePreservesRelativeSymlinks(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "real.js"), []byte("export {};"), 0o644))
	require.NoError(t, os.Symlink("real.js", filepath.Join(src, "alias.js")))

	require.NoError(t, copyTree(src, dst, 4))

	target, err := os.Readlink(filepath.Join(dst, "alias.js"))
	require.NoError(t, err)
	want, err := filepath.Rel(dst, filepath.Join(src, "real.js"))
	require.NoError(t, err)
	assert.Equal(t, want, target)

	content, err := os.ReadFile(filepath.Join(dst, "alias.js"))
	require.NoError(t, err)
	assert.Equal(t, "export {};", string(content))
}

func TestCopyFileCloneOrBytesFallsBackToByteCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.js")
	dst := filepath.Join(dir, "out", "dst.js")
	require.NoError(t, os.WriteFile(src, []byte("content"), 0o644))

	require.NoError(t, copyFileCloneOrBytes(src, dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "content", string(got))
}

func TestCopyTreeUsesDefaultConcurrencyWhenUnset(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "f.js"), []byte("x"), 0o644))

	require.NoError(t, copyTree(src, dst, 0))

	_, err := os.Stat(filepath.Join(dst, "f.js"))
	assert.NoError(t, err)
}
