// Package polyfill implements per-target source substitution discovery:
// scanning each directory containing root files once to find
// sibling "<stem><suffix>.<ext>" replacement files.
package polyfill

import (
	"os"
	"path/filepath"
	"strings"

	"warp/internal/core/domain"
)

// Extension priority: a native-module-flavored replacement is preferred
// over a generic one when both exist.
const (
	extGeneric = ".ts"
	extNative  = ".mts"
)

// Discover scans the directories containing rootFiles once each and builds
// the overlay map for the given suffix. Unreadable directories are skipped
// silently — a file simply gets no overlay entry; this component never
// returns an error.
func Discover(rootFiles []string, suffix string) domain.Overlay {
	overlay := make(domain.Overlay)
	if suffix == "" {
		return overlay
	}

	dirListings := make(map[string]map[string]bool) // dir -> basenames present

	listDir := func(dir string) map[string]bool {
		if cached, ok := dirListings[dir]; ok {
			return cached
		}
		entries, err := os.ReadDir(dir)
		names := make(map[string]bool)
		if err == nil {
			for _, e := range entries {
				if !e.IsDir() {
					names[e.Name()] = true
				}
			}
		}
		dirListings[dir] = names
		return names
	}

	for _, rf := range rootFiles {
		base := filepath.Base(rf)
		ext := filepath.Ext(base)
		if ext != extGeneric && ext != extNative {
			continue
		}
		stem := strings.TrimSuffix(base, ext)

		// A root file that is itself a replacement (produced by another
		// root file's overlay entry) never gets an overlay entry of its own.
		if strings.HasSuffix(stem, suffix) {
			continue
		}

		dir := filepath.Dir(rf)
		names := listDir(dir)

		nativeCandidate := stem + suffix + extNative
		genericCandidate := stem + suffix + extGeneric

		switch {
		case names[nativeCandidate]:
			overlay[rf] = filepath.Join(dir, nativeCandidate)
		case names[genericCandidate]:
			overlay[rf] = filepath.Join(dir, genericCandidate)
		}
	}

	return overlay
}

// replacementSet returns the set of paths that are values in the overlay —
// the actual replacement files discovered for some original root file.
func replacementSet(overlay domain.Overlay) map[string]bool {
	set := make(map[string]bool, len(overlay))
	for _, replacement := range overlay {
		set[replacement] = true
	}
	return set
}

// FilterRootFiles removes files from the root input list that are
// themselves overlay replacements. A file is
// filtered only when discovery actually paired it to some other root file
// as its replacement — membership is checked against overlay's values, not
// against a raw suffix match on every file's name. This is why a file named
// "not-a-browser.ts" with suffix "-browser" survives filtering unless
// "not-a.ts" exists alongside it and discovery paired the two: naming alone
// never removes a root file.
func FilterRootFiles(files []string, overlay domain.Overlay) []string {
	if len(overlay) == 0 {
		return files
	}
	replacements := replacementSet(overlay)

	out := make([]string, 0, len(files))
	for _, f := range files {
		if replacements[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
