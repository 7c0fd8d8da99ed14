package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newForm() Model {
	return New("Title", NewField("A", "a"), NewField("B", "b"), NewField("C", "c"))
}

func TestFormFocusWraps(t *testing.T) {
	m := newForm()
	m.Focus()
	assert.True(t, m.Active())
	assert.Equal(t, 0, m.Focused())

	m.Prev()
	assert.Equal(t, 2, m.Focused())
	assert.True(t, m.OnLast())
	m.Next()
	assert.Equal(t, 0, m.Focused())
	m.Next()
	assert.Equal(t, 1, m.Focused())
}

func TestFormValuesAndReset(t *testing.T) {
	m := newForm()
	m.Focus()
	m.SetValue(0, "  alice ")
	m.SetValue(2, "x")
	m.Next()

	assert.Equal(t, "alice", m.Value(0))
	assert.Equal(t, "x", m.Value(2))
	assert.Empty(t, m.Value(5))

	m.Reset()
	assert.Empty(t, m.Value(0))
	assert.Empty(t, m.Value(2))
	assert.Equal(t, 0, m.Focused())
}

func TestFormBlurIgnoresInput(t *testing.T) {
	m := newForm()
	m.Focus()
	m.Blur()
	assert.False(t, m.Active())
	m, cmd := m.Update(nil)
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "Title")
}
