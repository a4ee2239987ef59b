package usecases

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warp/internal/adapters/erasure"
	"warp/internal/core/domain"
	"warp/internal/core/ports"
	"warp/internal/testutil"
)

// writeSource creates dir/name with content and returns its absolute path.
func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func parsedTarget(name, condition, rootDir, outDir string, opts domain.CompilerOptions, rootFiles []string) domain.ParsedTarget {
	return domain.ParsedTarget{
		Target:    domain.Target{Name: name, Condition: condition},
		Options:   opts,
		OutDir:    outDir,
		RootDir:   rootDir,
		RootFiles: rootFiles,
	}
}

func TestOrchestratorBuildSingleTarget(t *testing.T) {
	root := t.TempDir()
	outDir := t.TempDir()
	srcFile := writeSource(t, root, "index.ts", "export const greet = (name: string) => name;")

	pt := parsedTarget("esm", "import", root, outDir,
		domain.CompilerOptions{"module": "esnext"}, []string{srcFile})

	parser := testutil.NewFakeConfigParser().Add(pt)
	notifier := testutil.NewRecordingNotifier()

	o := &Orchestrator{
		ConfigParser: parser,
		Compiler:     erasure.New(),
		Notifier:     notifier,
	}

	results, err := o.Build(context.Background(), []domain.Target{pt.Target})
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.True(t, got.Success)
	assert.Equal(t, "esm", got.TargetName)

	out, readErr := os.ReadFile(filepath.Join(outDir, "index.js"))
	require.NoError(t, readErr)
	assert.NotContains(t, string(out), ": string")

	assert.Contains(t, notifier.Types(), ports.EventBuildStarted)
	assert.Contains(t, notifier.Types(), ports.EventBuildCompleted)
	assert.Contains(t, notifier.Types(), ports.EventTargetCompiled)
}

func TestOrchestratorDedupsIdenticalCompileSignatures(t *testing.T) {
	root := t.TempDir()
	outA := t.TempDir()
	outB := t.TempDir()
	srcFile := writeSource(t, root, "index.ts", "export const x = 1;")

	opts := domain.CompilerOptions{"module": "esnext"}
	ptA := parsedTarget("a", "a", root, outA, opts, []string{srcFile})
	ptB := parsedTarget("b", "b", root, outB, opts, []string{srcFile})

	parser := testutil.NewFakeConfigParser().Add(ptA).Add(ptB)
	o := &Orchestrator{ConfigParser: parser, Compiler: erasure.New()}

	results, err := o.Build(context.Background(), []domain.Target{ptA.Target, ptB.Target})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := make(map[string]domain.CompileResult)
	for _, r := range results {
		byName[r.TargetName] = r
	}
	assert.False(t, byName["a"].Deduped)
	assert.True(t, byName["b"].Deduped)

	out, readErr := os.ReadFile(filepath.Join(outB, "index.js"))
	require.NoError(t, readErr)
	assert.Contains(t, string(out), "export const x = 1;")
}

func TestOrchestratorReportsDiagnosticsWithoutAbortingTheBuild(t *testing.T) {
	root := t.TempDir()
	outDir := t.TempDir()
	srcFile := writeSource(t, root, "index.ts", "const n: number = \"oops\";")

	pt := parsedTarget("esm", "import", root, outDir,
		domain.CompilerOptions{"module": "esnext"}, []string{srcFile})

	o := &Orchestrator{
		ConfigParser: testutil.NewFakeConfigParser().Add(pt),
		Compiler:     erasure.New(),
	}

	results, err := o.Build(context.Background(), []domain.Target{pt.Target})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Diagnostics)
}

func TestOrchestratorPropagatesConfigParserFailure(t *testing.T) {
	o := &Orchestrator{
		ConfigParser: testutil.NewFakeConfigParser().Fail("esm", assert.AnError),
		Compiler:     erasure.New(),
	}

	_, err := o.Build(context.Background(), []domain.Target{{Name: "esm", Condition: "esm"}})
	require.Error(t, err)
}

func TestOrchestratorWithOptionsFiltersTargets(t *testing.T) {
	root := t.TempDir()
	outA := t.TempDir()
	outB := t.TempDir()
	srcA := writeSource(t, root, "a.ts", "export const a = 1;")
	srcB := writeSource(t, root, "b.ts", "export const b = 2;")

	ptA := parsedTarget("a", "a", root, outA, domain.CompilerOptions{"module": "esnext"}, []string{srcA})
	ptB := parsedTarget("b", "b", root, outB, domain.CompilerOptions{"module": "commonjs"}, []string{srcB})

	o := (&Orchestrator{
		ConfigParser: testutil.NewFakeConfigParser().Add(ptA).Add(ptB),
		Compiler:     erasure.New(),
	}).WithOptions(BuildOptions{OnlyTargets: []string{"b"}})

	results, err := o.Build(context.Background(), []domain.Target{ptA.Target, ptB.Target})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].TargetName)
}

func TestOrchestratorBuildEmptySelectionReturnsNoResults(t *testing.T) {
	o := &Orchestrator{
		ConfigParser: testutil.NewFakeConfigParser(),
		Compiler:     erasure.New(),
	}
	results, err := o.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}
