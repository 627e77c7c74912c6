package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(CodeInvalidInput, "reason is required")

	assert.EqualError(t, err, "invalid_input: reason is required")
	assert.True(t, HasCode(err, CodeInvalidInput))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
}

func TestWrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(cause, CodeUnavailable, "decision cache unreachable")

	assert.True(t, HasCode(err, CodeUnavailable))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHasCodeWalksTheChain(t *testing.T) {
	inner := New(CodeUnavailable, "capability store unreachable")
	outer := Wrap(inner, CodeInternal, "evaluate capability")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeUnavailable))
	assert.False(t, HasCode(outer, CodeConflict))

	// Wrapping through fmt keeps the chain reachable.
	wrapped := fmt.Errorf("request failed: %w", outer)
	assert.True(t, HasCode(wrapped, CodeUnavailable))
}

func TestCodeOf(t *testing.T) {
	t.Run("outermost code wins", func(t *testing.T) {
		inner := New(CodeNotFound, "target not found")
		outer := Wrap(inner, CodeInvalidInput, "bad report")
		assert.Equal(t, CodeInvalidInput, CodeOf(outer))
	})

	t.Run("uncoded errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(cause, CodeInternal, "wrapped")

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, cause, de.Unwrap())
}
