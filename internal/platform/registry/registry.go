// Package registry resolves the small set of backend-specific decisions
// the compile engine and manifest rewriter both need but that don't belong
// in domain: which module kind a target actually emits under, and which
// output extension a source extension maps to.
package registry

import "strings"

// ModuleKind is the resolved emit format for one target, independent of
// whatever string the per-target compiler config happened to spell it as.
type ModuleKind string

const (
	// ModuleKindESM is the native-module (ECMAScript module) emit format.
	ModuleKindESM ModuleKind = "module"
	// ModuleKindCJS is the legacy CommonJS emit format.
	ModuleKindCJS ModuleKind = "commonjs"
)

// platformAwareMarkers are the compiler option spellings that mean "decide
// the module kind by consulting the package manifest" rather than naming
// one directly — "node16"/"nodenext" in the real TypeScript compiler. A
// fast-path transpile can't consult a manifest per file, so this kind must
// always be pinned to ESM or CJS before Transpile runs.
var platformAwareMarkers = []string{"nodenext", "node16", "node", "auto", "preserve"}

// IsPlatformAware reports whether a configured module option defers to
// package-manifest resolution rather than naming ESM/CJS directly.
func IsPlatformAware(configuredModule string) bool {
	lower := strings.ToLower(strings.TrimSpace(configuredModule))
	for _, m := range platformAwareMarkers {
		if lower == m {
			return true
		}
	}
	return false
}

// cjsMarkers are module option spellings that mean CommonJS outright.
var cjsMarkers = []string{"commonjs", "cjs", "umd"}

// ResolveModuleKind pins the effective module kind for a fast-path
// transpile's module-format disambiguation:
//   - an explicit moduleType override always wins;
//   - otherwise a non-platform-aware configured module option is read
//     directly (commonjs/umd -> CJS, anything else -> ESM);
//   - a platform-aware configured option falls back to ESM, the same
//     default manifest.ResolveModuleType uses for the shim when no
//     explicit signal exists.
func ResolveModuleKind(moduleTypeOverride, configuredModule string) ModuleKind {
	switch strings.ToLower(strings.TrimSpace(moduleTypeOverride)) {
	case "commonjs", "cjs":
		return ModuleKindCJS
	case "module", "esm":
		return ModuleKindESM
	}

	lower := strings.ToLower(strings.TrimSpace(configuredModule))
	if IsPlatformAware(lower) {
		return ModuleKindESM
	}
	for _, m := range cjsMarkers {
		if lower == m {
			return ModuleKindCJS
		}
	}
	return ModuleKindESM
}

// Output extension pairs: native-module source/declaration extensions map
// to native-module JS ones; the generic source extension always maps to
// plain JS regardless of resolved module kind — the mapping is fixed,
// not kind-dependent, matching how the underlying compiler names emit
// files after the source extension alone.
const (
	extGeneric    = ".ts"
	extGenericX   = ".tsx"
	extNative     = ".mts"
	extJS         = ".js"
	extNativeJS   = ".mjs"
	extDeclGen    = ".d.ts"
	extDeclNative = ".d.mts"
)

// OutputExtensionFor maps a source extension to its emitted JS-like
// extension.
func OutputExtensionFor(sourceExt string) string {
	switch sourceExt {
	case extNative:
		return extNativeJS
	default:
		return extJS
	}
}

// DeclarationExtensionFor maps a source extension to its emitted
// declaration extension.
func DeclarationExtensionFor(sourceExt string) string {
	switch sourceExt {
	case extNative:
		return extDeclNative
	default:
		return extDeclGen
	}
}
