package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedError(t *testing.T) {
	t.Run("NewTyped formats without a cause", func(t *testing.T) {
		err := NewTyped(ConfigInvalid, "bad config")
		assert.EqualError(t, err, "bad config")
	})

	t.Run("NewTypedf formats its message", func(t *testing.T) {
		err := NewTypedf(TSConfigError, "target %q: missing outDir", "esm")
		assert.EqualError(t, err, `target "esm": missing outDir`)
	})

	t.Run("Wrapped includes the cause in Error()", func(t *testing.T) {
		cause := errors.New("permission denied")
		err := Wrapped(DistMissing, "reading manifest", cause)
		assert.EqualError(t, err, "reading manifest: permission denied")
	})

	t.Run("Wrapped unwraps to its cause", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrapped(CompileErr, "writing output", cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestKindOf(t *testing.T) {
	t.Run("finds the kind of a direct Typed error", func(t *testing.T) {
		err := NewTyped(ValidationErr, "duplicate target name")
		kind, ok := KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, ValidationErr, kind)
	})

	t.Run("reports false for an untyped error", func(t *testing.T) {
		_, ok := KindOf(errors.New("plain"))
		assert.False(t, ok)
	})

	t.Run("reports false for nil", func(t *testing.T) {
		_, ok := KindOf(nil)
		assert.False(t, ok)
	})
}

func TestIsKind(t *testing.T) {
	err := Wrapped(ConfigNotFound, "config file \"warp.config.yml\"", errors.New("no such file"))

	assert.True(t, IsKind(err, ConfigNotFound))
	assert.False(t, IsKind(err, ConfigInvalid))
	assert.False(t, IsKind(nil, ConfigNotFound))
}

func TestAsAndIsReexports(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrapped(CompileErr, "context", cause)

	assert.True(t, Is(err, cause))

	var typed *Typed
	assert.True(t, As(err, &typed))
	assert.Equal(t, CompileErr, typed.Kind)
}
