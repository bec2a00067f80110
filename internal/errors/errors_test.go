package errors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorClass(t *testing.T) {
	err := NewConfigError("max-id-length must be a positive integer, got %q", "x")

	assert.True(t, IsConfigError(err))
	assert.False(t, IsModelError(err))
	assert.Contains(t, err.Error(), `got "x"`)

	wrapped := Wrap(err, "loading options")
	assert.True(t, IsConfigError(wrapped), "class must survive wrapping")
}

func TestModelErrorClass(t *testing.T) {
	err := WrapModelError(New("fact f1 has no location"), "checking document")

	assert.True(t, IsModelError(err))
	assert.Contains(t, err.Error(), "checking document")
	assert.Nil(t, WrapModelError(nil, "unused"))
}

func TestHintsSurvive(t *testing.T) {
	err := WithHint(NewConfigError("bad value"), "use a positive integer")
	assert.Equal(t, []string{"use a positive integer"}, GetAllHints(err))
}

func TestIncompleteWrapsContext(t *testing.T) {
	err := Mark(Wrap(context.Canceled, "validation stopped"), ErrIncomplete)
	assert.True(t, Is(err, ErrIncomplete))
	assert.True(t, Is(err, context.Canceled))
}
