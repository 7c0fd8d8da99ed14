package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPollHandle(t *testing.T) {
	var h PollHandle
	assert.False(t, h.Active())
	assert.False(t, h.Owns(0))

	first := h.Acquire()
	assert.True(t, h.Owns(first))

	second := h.Acquire()
	assert.False(t, h.Owns(first))
	assert.True(t, h.Owns(second))

	h.Release()
	h.Release()
	assert.False(t, h.Active())
	assert.False(t, h.Owns(second))

	third := h.Acquire()
	assert.NotEqual(t, second, third)
	assert.True(t, h.Owns(third))
}
