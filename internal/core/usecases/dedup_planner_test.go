package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warp/internal/core/domain"
)

func target(name string, opts domain.CompilerOptions, files []string) domain.ParsedTarget {
	return domain.ParsedTarget{
		Target:    domain.Target{Name: name, Condition: name},
		Options:   opts,
		OutDir:    "/dist/" + name,
		RootDir:   "/src",
		RootFiles: files,
	}
}

func TestPlanGroupsIdenticalCompileSignatures(t *testing.T) {
	files := []string{"/src/a.ts", "/src/b.ts"}
	esm := target("esm", domain.CompilerOptions{"module": "esnext"}, files)
	esmAlias := target("esm-alias", domain.CompilerOptions{"module": "esnext"}, files)
	cjs := target("cjs", domain.CompilerOptions{"module": "commonjs"}, files)

	groups := Plan([]domain.ParsedTarget{esm, esmAlias, cjs}, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "esm", groups[0].Primary.Name)
	require.Len(t, groups[0].Copies, 1)
	assert.Equal(t, "esm-alias", groups[0].Copies[0].Name)
	assert.Equal(t, "cjs", groups[1].Primary.Name)
	assert.Empty(t, groups[1].Copies)
}

func TestPlanPreservesFirstSeenOrder(t *testing.T) {
	files := []string{"/src/a.ts"}
	cjs := target("cjs", domain.CompilerOptions{"module": "commonjs"}, files)
	esm := target("esm", domain.CompilerOptions{"module": "esnext"}, files)

	groups := Plan([]domain.ParsedTarget{cjs, esm}, nil)

	require.Len(t, groups, 2)
	assert.Equal(t, "cjs", groups[0].Primary.Name)
	assert.Equal(t, "esm", groups[1].Primary.Name)
}

func TestPlanRespectsOverlaySuffix(t *testing.T) {
	files := []string{"/src/a.ts"}
	opts := domain.CompilerOptions{"module": "esnext"}
	node := target("node", opts, files)
	node.PolyfillSuffix = "-browser"
	browser := target("browser", opts, files)
	browser.PolyfillSuffix = "-browser"

	overlays := map[string]domain.Overlay{
		"browser": {"/src/a.ts": "/src/a-browser.ts"},
	}

	groups := Plan([]domain.ParsedTarget{node, browser}, overlays)

	// node's overlay found no replacement, so its effective suffix
	// collapses to "" and it ends up in its own group; browser's did, so
	// it gets its own distinct compile signature too.
	require.Len(t, groups, 2)
}

func TestSourceIdentityGroupsIgnoreCompilerOptions(t *testing.T) {
	files := []string{"/src/a.ts"}
	esm := target("esm", domain.CompilerOptions{"module": "esnext"}, files)
	cjs := target("cjs", domain.CompilerOptions{"module": "commonjs"}, files)

	groups := SourceIdentityGroups([]domain.ParsedTarget{esm, cjs}, nil)

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 2)
	assert.Equal(t, "esm", groups[0].TypeCheckPrimary().Name)
}

func TestBuildSourceIdentityIndex(t *testing.T) {
	files := []string{"/src/a.ts"}
	esm := target("esm", domain.CompilerOptions{"module": "esnext"}, files)
	cjs := target("cjs", domain.CompilerOptions{"module": "commonjs"}, files)

	groups := SourceIdentityGroups([]domain.ParsedTarget{esm, cjs}, nil)
	idx := buildSourceIdentityIndex(groups)

	assert.True(t, idx.isPrimary["esm"])
	assert.False(t, idx.isPrimary["cjs"])
	assert.Equal(t, "esm", idx.declSource["esm"])
	assert.Equal(t, "esm", idx.declSource["cjs"])
}
