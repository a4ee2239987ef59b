// Package compile implements the CompileHost file-I/O indirection and the
// CompileEngine that drives a single target's compile.
package compile

import (
	"os"

	"warp/internal/core/domain"
	"warp/internal/core/ports"
	"warp/internal/platform/cache"
)

// Host implements ports.CompileHost: it consults a SourceFileCache and,
// when an overlay entry exists for a path, substitutes the replacement
// file's content while presenting the original path's identity.
//
// A separate overlay-only cache keeps substituted content from polluting
// the regular cache — the same path can carry different content across
// targets with different overlays.
type Host struct {
	sourceCache  *cache.LRU
	overlayCache *cache.LRU
	overlay      domain.Overlay
	compiler     ports.Compiler
	readFile     func(string) ([]byte, error)
}

// NewHost builds a CompileHost backed by sourceCache, substituting via
// overlay when set. overlay may be nil/empty for a build with no polyfill.
func NewHost(sourceCache *cache.LRU, overlay domain.Overlay, compiler ports.Compiler) *Host {
	return &Host{
		sourceCache:  sourceCache,
		overlayCache: cache.New(sourceCache.Capacity()),
		overlay:      overlay,
		compiler:     compiler,
		readFile:     os.ReadFile,
	}
}

// GetSource implements ports.CompileHost.
func (h *Host) GetSource(path string, lv ports.LanguageVersion) (ports.SourceFile, error) {
	if replacement, ok := h.overlay.ReplacementFor(path); ok {
		return h.getFrom(h.overlayCache, path, replacement, lv)
	}
	return h.getFrom(h.sourceCache, path, path, lv)
}

// getFrom reads diskPath's content (via the cache keyed on path, not
// diskPath, so overlay substitution never pollutes the non-overlay cache
// entry for the same logical path) and parses it under identityPath.
func (h *Host) getFrom(c *cache.LRU, identityPath, diskPath string, lv ports.LanguageVersion) (ports.SourceFile, error) {
	key := cache.Key{Path: identityPath, LanguageVersion: int(lv)}
	if cached, ok := c.Get(key); ok {
		return cached.(ports.SourceFile), nil
	}

	raw, err := h.readFile(diskPath)
	if err != nil {
		return ports.SourceFile{}, err
	}

	sf := h.compiler.Parse(identityPath, string(raw), lv)
	c.Set(key, sf)
	return sf, nil
}
