// Package validator holds the pure predicate functions that check a loaded
// configuration against the schema before the core ever runs: "exports"
// subpath keys, target names/conditions, and out_dir collisions.
package validator

import (
	"regexp"
	"strings"
)

// nameRegex matches a non-empty identifier with no path separators or
// whitespace — the shape required for a target's name and condition.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// IsValidName reports whether name is a legal target name or condition:
// non-empty, starting with a letter or digit, and otherwise made only of
// letters, digits, '.', '_' and '-' (so no slashes and no whitespace).
func IsValidName(name string) bool {
	return nameRegex.MatchString(name)
}

// IsSubpathKey reports whether key is a legal "exports" map key: "." or
// "./..." with no wildcards and no trailing slash.
func IsSubpathKey(key string) bool {
	if key == "." {
		return true
	}
	if !strings.HasPrefix(key, "./") {
		return false
	}
	if len(key) == len("./") {
		return false
	}
	if strings.Contains(key, "*") {
		return false
	}
	if strings.HasSuffix(key, "/") {
		return false
	}
	return true
}

// NormalizeSubpath trims surrounding whitespace from a subpath key; it does
// not alter case, since subpaths are case-sensitive on case-sensitive
// filesystems.
func NormalizeSubpath(key string) string {
	return strings.TrimSpace(key)
}

// IsSourceExtension reports whether path ends in one of the source
// language's extensions, as opposed to a pass-through export target that
// gets copied verbatim.
func IsSourceExtension(path string) bool {
	return strings.HasSuffix(path, ".ts") || strings.HasSuffix(path, ".mts") ||
		strings.HasSuffix(path, ".tsx")
}

// IsEmpty reports whether s is empty once surrounding whitespace is
// trimmed.
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// DuplicateStrings returns the first value seen more than once in values,
// in iteration order, or "" with ok=false when there is none. Used for
// the name/condition/out_dir uniqueness checks.
func DuplicateStrings(values []string) (string, bool) {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v, true
		}
		seen[v] = true
	}
	return "", false
}
