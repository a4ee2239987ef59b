package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverlayReplacementFor(t *testing.T) {
	t.Run("returns the replacement when present", func(t *testing.T) {
		ov := Overlay{"/root/a.ts": "/root/a-browser.ts"}
		replacement, ok := ov.ReplacementFor("/root/a.ts")
		assert.True(t, ok)
		assert.Equal(t, "/root/a-browser.ts", replacement)
	})

	t.Run("reports false for an unmatched path", func(t *testing.T) {
		ov := Overlay{"/root/a.ts": "/root/a-browser.ts"}
		_, ok := ov.ReplacementFor("/root/b.ts")
		assert.False(t, ok)
	})

	t.Run("a nil overlay never matches", func(t *testing.T) {
		var ov Overlay
		_, ok := ov.ReplacementFor("/root/a.ts")
		assert.False(t, ok)
	})
}

func TestEffectiveSuffix(t *testing.T) {
	t.Run("returns the configured suffix when the overlay found replacements", func(t *testing.T) {
		ov := Overlay{"/root/a.ts": "/root/a-browser.ts"}
		assert.Equal(t, "-browser", EffectiveSuffix("-browser", ov))
	})

	t.Run("collapses to empty when the overlay found nothing, so an unmatched suffix still dedups", func(t *testing.T) {
		assert.Equal(t, "", EffectiveSuffix("-browser", Overlay{}))
		assert.Equal(t, "", EffectiveSuffix("-browser", nil))
	})
}
