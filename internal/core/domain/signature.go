package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// optionKeysExcludedFromSignature are per-target bookkeeping options, not
// semantic ones: two targets that differ only in these must still be able
// to share a compile signature.
var optionKeysExcludedFromSignature = map[string]bool{
	"outDir":         true,
	"out_dir":        true,
	"configFilePath": true,
	"tsconfig":       true,
}

// CanonicalizeOptions produces a deterministic, sorted-key serialization of
// a CompilerOptions map, stripping the keys that are per-target bookkeeping
// rather than semantic. The serialization is stable across process runs
// of the same binary, which is required for signatures computed in
// different runs (e.g. in `watch` mode) to compare equal.
func CanonicalizeOptions(opts CompilerOptions) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		if optionKeysExcludedFromSignature[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		fmt.Fprintf(&b, "%s=%v", k, opts[k])
	}
	return b.String()
}

// sortedFileListHash hashes a sorted copy of the given file list so that
// signatures are order-invariant in the root file list.
func sortedFileListHash(files []string) string {
	sorted := make([]string, len(files))
	copy(sorted, files)
	sort.Strings(sorted)

	h := sha256.New()
	for _, f := range sorted {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CompileSignature computes the compile signature: two targets with
// identical compile signatures must produce byte-identical output
// modulo out_dir. It combines the canonicalized options (minus
// out_dir/config-path bookkeeping), the sorted file-list hash, and the
// effective polyfill suffix.
func CompileSignature(opts CompilerOptions, files []string, effectiveSuffix string) string {
	h := sha256.New()
	h.Write([]byte(CanonicalizeOptions(opts)))
	h.Write([]byte("0"))
	h.Write([]byte(sortedFileListHash(files)))
	if effectiveSuffix != "" {
		h.Write([]byte("0polyfill:"))
		h.Write([]byte(effectiveSuffix))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SourceIdentity computes the source identity: two targets with
// identical source identities produce identical type-check diagnostics
// and identical declaration files. It depends only on the file
// list and the effective suffix — never on module-format or other options —
// so that type-check/declaration work dedups across differently-formatted
// emits.
func SourceIdentity(files []string, effectiveSuffix string) string {
	h := sha256.New()
	h.Write([]byte(sortedFileListHash(files)))
	if effectiveSuffix != "" {
		h.Write([]byte("0polyfill:"))
		h.Write([]byte(effectiveSuffix))
	}
	return hex.EncodeToString(h.Sum(nil))
}
