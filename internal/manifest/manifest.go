// Package manifest implements the external exports-map rewriter: given
// the plan and the compile results, it computes a condition-keyed
// exports object per configured subpath, merges it into the package
// manifest's existing "exports" field by key, and writes a per-target
// output-directory shim manifest declaring the module type.
//
// Both writes go through atomicWrite (temp file + rename) so a reader
// never observes a half-written manifest.
package manifest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"warp/internal/core/domain"
	platerrors "warp/internal/platform/errors"
	"warp/internal/platform/registry"
	"warp/internal/platform/validator"
)

const manifestFileName = "package.json"

// Rewriter rewrites the package manifest at PackageDir/package.json and
// writes per-target module-type shims into each target's output directory.
type Rewriter struct {
	PackageDir string
}

// New creates a Rewriter rooted at packageDir (the directory holding the
// package manifest the "exports" field is merged into).
func New(packageDir string) *Rewriter {
	return &Rewriter{PackageDir: packageDir}
}

// RewriteExports computes the exports object for exports (subpath -> source
// file or pass-through path) over targets in declaration order, skipping
// any target whose compile did not succeed, verifies every referenced
// artifact exists on disk, and merges the result into the package
// manifest's "exports" field, preserving pre-existing unmanaged entries.
// The write is skipped when the manifest content would not change.
func (r *Rewriter) RewriteExports(exports map[string]string, targets []domain.ParsedTarget, results map[string]domain.CompileResult) error {
	computed, err := ComputeExports(r.PackageDir, exports, targets, results)
	if err != nil {
		return err
	}
	if err := r.verifyArtifacts(computed); err != nil {
		return err
	}

	path := filepath.Join(r.PackageDir, manifestFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return platerrors.Wrapped(platerrors.ValidationErr, "reading package manifest", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return platerrors.Wrapped(platerrors.ConfigInvalid, "parsing package manifest", err)
	}
	if doc == nil {
		doc = make(map[string]interface{})
	}

	doc["exports"] = mergeExports(doc["exports"], computed)

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return platerrors.Wrapped(platerrors.ValidationErr, "encoding package manifest", err)
	}
	out = append(out, '\n')

	if bytes.Equal(out, raw) {
		return nil // unchanged content: rewriting is a no-op
	}

	if err := atomicWrite(path, out, 0o644); err != nil {
		return platerrors.Wrapped(platerrors.ValidationErr, "writing package manifest", err)
	}
	return nil
}

// verifyArtifacts walks the computed exports object and stats every
// referenced artifact path; a missing file means the compile results and
// the manifest would disagree, surfaced as DIST_MISSING.
func (r *Rewriter) verifyArtifacts(computed *OrderedMap) error {
	for _, subpath := range computed.Keys() {
		v, _ := computed.Get(subpath)
		entry, ok := v.(*OrderedMap)
		if !ok {
			continue // pass-through entry, never points at an emitted artifact
		}
		for _, condition := range entry.Keys() {
			cv, _ := entry.Get(condition)
			cond, ok := cv.(*OrderedMap)
			if !ok {
				continue
			}
			for _, field := range cond.Keys() {
				pv, _ := cond.Get(field)
				rel, ok := pv.(string)
				if !ok {
					continue
				}
				abs := filepath.Join(r.PackageDir, filepath.FromSlash(strings.TrimPrefix(rel, "./")))
				if _, err := os.Stat(abs); err != nil {
					return platerrors.Wrapped(platerrors.DistMissing,
						"exports entry "+subpath+" ("+condition+"."+field+") references "+rel, err)
				}
			}
		}
	}
	return nil
}

// RewriteShims writes a {"type": "module"|"commonjs"} shim manifest into
// every target's output directory, one per target regardless of whether
// that target's entries made it into the exports map.
func (r *Rewriter) RewriteShims(targets []domain.ParsedTarget) error {
	for _, t := range targets {
		path := filepath.Join(t.OutDir, manifestFileName)
		shim := NewOrderedMap()
		shim.Set("type", ResolveModuleType(t))

		out, err := json.MarshalIndent(shim, "", "  ")
		if err != nil {
			return platerrors.Wrapped(platerrors.ConfigInvalid, "encoding module shim", err)
		}
		out = append(out, '\n')

		if err := atomicWrite(path, out, 0o644); err != nil {
			return platerrors.Wrapped(platerrors.ConfigInvalid, "writing module shim for "+t.Name, err)
		}
	}
	return nil
}

// ComputeExports builds the subpath -> exports-entry object. Pass-through
// entries (source paths not ending in a source extension, per
// validator.IsSourceExtension) are copied verbatim; source entries become
// a condition-keyed {types, default} object with one condition per target
// that compiled successfully, in target declaration order. Subpath keys
// are sorted for deterministic output — there is no ordering requirement
// on them, only on the conditions within an entry. All emitted paths are
// "./"-prefixed relative to packageDir, the form the exports map requires.
func ComputeExports(packageDir string, exports map[string]string, targets []domain.ParsedTarget, results map[string]domain.CompileResult) (*OrderedMap, error) {
	subpaths := make([]string, 0, len(exports))
	for k := range exports {
		subpaths = append(subpaths, k)
	}
	sort.Strings(subpaths)

	out := NewOrderedMap()
	for _, subpath := range subpaths {
		src := exports[subpath]
		if !validator.IsSourceExtension(src) {
			out.Set(subpath, src)
			continue
		}

		entry := NewOrderedMap()
		for _, t := range targets {
			if res, ok := results[t.Name]; ok && !res.Success {
				continue
			}
			defaultPath, typesPath := emittedPaths(packageDir, t, src)
			condition := NewOrderedMap()
			condition.Set("types", typesPath)
			condition.Set("default", defaultPath)
			entry.Set(t.Condition, condition)
		}
		out.Set(subpath, entry)
	}
	return out, nil
}

// emittedPaths derives the default (.js/.mjs) and types (.d.ts/.d.mts)
// output paths for src under target t, mirroring the underlying
// compiler's emit convention: the source's path relative to root_dir is
// reproduced under out_dir with the extension remapped. Results are
// "./"-prefixed relative to packageDir so they drop straight into the
// exports map.
func emittedPaths(packageDir string, t domain.ParsedTarget, src string) (defaultPath, typesPath string) {
	absSrc := filepath.Join(packageDir, filepath.FromSlash(strings.TrimPrefix(src, "./")))
	rel, err := filepath.Rel(t.RootDir, absSrc)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(absSrc)
	}
	ext := filepath.Ext(rel)
	base := strings.TrimSuffix(rel, ext)

	defaultPath = packageRelative(packageDir, filepath.Join(t.OutDir, base+registry.OutputExtensionFor(ext)))
	typesPath = packageRelative(packageDir, filepath.Join(t.OutDir, base+registry.DeclarationExtensionFor(ext)))
	return defaultPath, typesPath
}

// packageRelative renders abs as a "./"-prefixed slash path relative to
// packageDir, the only path form the exports map accepts.
func packageRelative(packageDir, abs string) string {
	rel, err := filepath.Rel(packageDir, abs)
	if err != nil {
		rel = abs
	}
	return "./" + filepath.ToSlash(rel)
}

// mergeExports merges computed into existing (the manifest's current
// "exports" field, of any shape) by key: entries computed manages are
// overwritten, everything else is preserved.
func mergeExports(existing interface{}, computed *OrderedMap) *OrderedMap {
	managed := make(map[string]bool, computed.Len())
	for _, k := range computed.Keys() {
		managed[k] = true
	}

	result := NewOrderedMap()
	if existingMap, ok := existing.(map[string]interface{}); ok {
		keys := make([]string, 0, len(existingMap))
		for k := range existingMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if managed[k] {
				continue
			}
			result.Set(k, existingMap[k])
		}
	}
	for _, k := range computed.Keys() {
		v, _ := computed.Get(k)
		result.Set(k, v)
	}
	return result
}

// ResolveModuleType returns t's module shim type: the configured
// ModuleType override if set, otherwise inferred from the compiler
// options' "module" setting via the same registry.ResolveModuleKind the
// fast-path transpile engine pins its module option with, so the shim
// and the actual emit never disagree.
func ResolveModuleType(t domain.ParsedTarget) string {
	configured, _ := t.Options["module"].(string)
	return string(registry.ResolveModuleKind(t.ModuleType, configured))
}

// atomicWrite writes data to path via a temp file in the same directory
// followed by a rename, so a concurrent reader never observes a partial
// write.
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".warp-manifest-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
