package tsconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warp/internal/core/domain"
	platerrors "warp/internal/platform/errors"
)

func writeJSON(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParseResolvesOutDirAndRootFiles(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "tsconfig.json"), `{
		"compilerOptions": {"module": "esnext", "outDir": "dist", "rootDir": "src"},
		"include": ["**/*.ts"]
	}`)
	writeJSON(t, filepath.Join(dir, "src", "a.ts"), "export const a = 1;")
	writeJSON(t, filepath.Join(dir, "src", "b.ts"), "export const b = 2;")

	p := New(dir)
	pt, err := p.Parse(domain.Target{Name: "esm", Condition: "esm", TSConfigPath: "tsconfig.json"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dist"), pt.OutDir)
	assert.Equal(t, filepath.Join(dir, "src"), pt.RootDir)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "src", "a.ts"),
		filepath.Join(dir, "src", "b.ts"),
	}, pt.RootFiles)
	assert.Equal(t, "esnext", pt.Options["module"])
}

func TestParseExcludePatternIsHonored(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "tsconfig.json"), `{
		"compilerOptions": {"outDir": "dist", "rootDir": "src"},
		"include": ["**/*.ts"],
		"exclude": ["**/*.test.ts"]
	}`)
	writeJSON(t, filepath.Join(dir, "src", "a.ts"), "export const a = 1;")
	writeJSON(t, filepath.Join(dir, "src", "a.test.ts"), "export const b = 2;")

	p := New(dir)
	pt, err := p.Parse(domain.Target{Name: "esm", TSConfigPath: "tsconfig.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "src", "a.ts")}, pt.RootFiles)
}

func TestParseFilesListUsedVerbatimOverInclude(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "tsconfig.json"), `{
		"compilerOptions": {"outDir": "dist", "rootDir": "src"},
		"files": ["a.ts"],
		"include": ["**/*.ts"]
	}`)
	writeJSON(t, filepath.Join(dir, "src", "a.ts"), "export const a = 1;")
	writeJSON(t, filepath.Join(dir, "src", "b.ts"), "export const b = 2;")

	p := New(dir)
	pt, err := p.Parse(domain.Target{Name: "esm", TSConfigPath: "tsconfig.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "src", "a.ts")}, pt.RootFiles)
}

func TestParseMergesExtendsChain(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "base.json"), `{
		"compilerOptions": {"module": "esnext", "strict": true}
	}`)
	writeJSON(t, filepath.Join(dir, "tsconfig.json"), `{
		"extends": "./base.json",
		"compilerOptions": {"outDir": "dist", "rootDir": "src"},
		"include": ["**/*.ts"]
	}`)
	writeJSON(t, filepath.Join(dir, "src", "a.ts"), "export const a = 1;")

	p := New(dir)
	pt, err := p.Parse(domain.Target{Name: "esm", TSConfigPath: "tsconfig.json"})
	require.NoError(t, err)
	assert.Equal(t, "esnext", pt.Options["module"])
	assert.Equal(t, true, pt.Options["strict"])
}

func TestParseDetectsCircularExtends(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "a.json"), `{"extends": "./b.json"}`)
	writeJSON(t, filepath.Join(dir, "b.json"), `{"extends": "./a.json"}`)

	p := New(dir)
	_, err := p.Parse(domain.Target{Name: "esm", TSConfigPath: "a.json"})
	require.Error(t, err)
	assert.True(t, platerrors.IsKind(err, platerrors.TSConfigError))
}

func TestParseErrorsOnMissingOutDir(t *testing.T) {
	dir := t.TempDir()
	writeJSON(t, filepath.Join(dir, "tsconfig.json"), `{"compilerOptions": {"module": "esnext"}}`)

	p := New(dir)
	_, err := p.Parse(domain.Target{Name: "esm", TSConfigPath: "tsconfig.json"})
	require.Error(t, err)
	assert.True(t, platerrors.IsKind(err, platerrors.TSConfigError))
}

func TestParseErrorsOnMissingTSConfigPath(t *testing.T) {
	p := New(t.TempDir())
	_, err := p.Parse(domain.Target{Name: "esm"})
	require.Error(t, err)
	assert.True(t, platerrors.IsKind(err, platerrors.TSConfigError))
}

func TestParseErrorsOnNonexistentConfigFile(t *testing.T) {
	p := New(t.TempDir())
	_, err := p.Parse(domain.Target{Name: "esm", TSConfigPath: "missing.json"})
	require.Error(t, err)
}
