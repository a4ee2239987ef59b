package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlatformAware(t *testing.T) {
	assert.True(t, IsPlatformAware("nodenext"))
	assert.True(t, IsPlatformAware("NodeNext"))
	assert.True(t, IsPlatformAware(" node16 "))
	assert.False(t, IsPlatformAware("commonjs"))
	assert.False(t, IsPlatformAware(""))
}

func TestResolveModuleKind(t *testing.T) {
	t.Run("explicit override always wins", func(t *testing.T) {
		assert.Equal(t, ModuleKindCJS, ResolveModuleKind("commonjs", "esnext"))
		assert.Equal(t, ModuleKindESM, ResolveModuleKind("module", "commonjs"))
	})

	t.Run("non-platform-aware configured option is read directly", func(t *testing.T) {
		assert.Equal(t, ModuleKindCJS, ResolveModuleKind("", "commonjs"))
		assert.Equal(t, ModuleKindCJS, ResolveModuleKind("", "umd"))
		assert.Equal(t, ModuleKindESM, ResolveModuleKind("", "esnext"))
	})

	t.Run("platform-aware configured option falls back to ESM", func(t *testing.T) {
		assert.Equal(t, ModuleKindESM, ResolveModuleKind("", "nodenext"))
	})

	t.Run("no override and no configured option defaults to ESM", func(t *testing.T) {
		assert.Equal(t, ModuleKindESM, ResolveModuleKind("", ""))
	})
}

func TestOutputExtensionFor(t *testing.T) {
	assert.Equal(t, ".js", OutputExtensionFor(".ts"))
	assert.Equal(t, ".js", OutputExtensionFor(".tsx"))
	assert.Equal(t, ".mjs", OutputExtensionFor(".mts"))
}

func TestDeclarationExtensionFor(t *testing.T) {
	assert.Equal(t, ".d.ts", DeclarationExtensionFor(".ts"))
	assert.Equal(t, ".d.mts", DeclarationExtensionFor(".mts"))
}
