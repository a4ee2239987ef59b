package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU_CapacityDefaults(t *testing.T) {
	c := New(0)
	assert.Equal(t, 1, c.Capacity())
}

func TestLRU_SetGet(t *testing.T) {
	c := New(2)
	c.Set(Key{Path: "/a.ts"}, "a")
	c.Set(Key{Path: "/b.ts"}, "b")

	v, ok := c.Get(Key{Path: "/a.ts"})
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New(2)
	c.Set(Key{Path: "/a.ts"}, "a")
	c.Set(Key{Path: "/b.ts"}, "b")

	// touch /a.ts so /b.ts becomes the LRU entry
	c.Get(Key{Path: "/a.ts"})

	c.Set(Key{Path: "/c.ts"}, "c")

	_, bOK := c.Get(Key{Path: "/b.ts"})
	assert.False(t, bOK, "expected /b.ts to be evicted")

	_, aOK := c.Get(Key{Path: "/a.ts"})
	assert.True(t, aOK)

	_, cOK := c.Get(Key{Path: "/c.ts"})
	assert.True(t, cOK)
}

func TestLRU_DistinctLanguageVersionsDoNotCollide(t *testing.T) {
	c := New(10)
	c.Set(Key{Path: "/a.ts", LanguageVersion: 1}, "v1")
	c.Set(Key{Path: "/a.ts", LanguageVersion: 2}, "v2")

	v1, _ := c.Get(Key{Path: "/a.ts", LanguageVersion: 1})
	v2, _ := c.Get(Key{Path: "/a.ts", LanguageVersion: 2})
	assert.Equal(t, "v1", v1)
	assert.Equal(t, "v2", v2)
}

func TestLRU_SetExistingKeyUpdatesValueWithoutEviction(t *testing.T) {
	c := New(1)
	c.Set(Key{Path: "/a.ts"}, "a")
	c.Set(Key{Path: "/a.ts"}, "a2")

	v, ok := c.Get(Key{Path: "/a.ts"})
	assert.True(t, ok)
	assert.Equal(t, "a2", v)
	assert.Equal(t, 1, c.Len())
}
