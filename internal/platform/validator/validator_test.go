package validator

import "testing"

func TestIsValidName(t *testing.T) {
	cases := map[string]bool{
		"esm":          true,
		"legacy-cjs":   true,
		"browser.v2":   true,
		"":             false,
		"has space":    false,
		"has/slash":    false,
		"-leading-dash": false,
	}
	for in, want := range cases {
		if got := IsValidName(in); got != want {
			t.Errorf("IsValidName(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsSubpathKey(t *testing.T) {
	cases := map[string]bool{
		".":         true,
		"./util":    true,
		"./a/b":     true,
		"./*":       false,
		"./a/":      false,
		"./":        false,
		"util":      false,
		"":          false,
	}
	for in, want := range cases {
		if got := IsSubpathKey(in); got != want {
			t.Errorf("IsSubpathKey(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestIsSourceExtension(t *testing.T) {
	if !IsSourceExtension("src/index.ts") {
		t.Error("expected .ts to be a source extension")
	}
	if !IsSourceExtension("src/index.mts") {
		t.Error("expected .mts to be a source extension")
	}
	if IsSourceExtension("README.md") {
		t.Error("expected .md to not be a source extension")
	}
}

func TestDuplicateStrings(t *testing.T) {
	if dup, ok := DuplicateStrings([]string{"a", "b", "a"}); !ok || dup != "a" {
		t.Errorf("expected duplicate \"a\", got %q, %v", dup, ok)
	}
	if _, ok := DuplicateStrings([]string{"a", "b", "c"}); ok {
		t.Error("expected no duplicate")
	}
}
