package runform

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enter() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEnter} }

func TestRunFormCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 1},
		{"0", 1},
		{"-3", 1},
		{"abc", 1},
		{"5", 5},
	}
	for _, tt := range tests {
		m := New()
		m.form.SetValue(fieldCount, tt.in)
		assert.Equal(t, tt.want, m.Count(), tt.in)
	}
}

func TestRunFormSubmit(t *testing.T) {
	m := New()
	m.Open()
	m.form.SetValue(fieldURL, "https://x/p/1")
	m.form.SetValue(fieldComment, "nice")
	m.form.SetValue(fieldCount, "3")

	m, _ = m.Update(tea.KeyPressMsg{Code: 'b', Mod: tea.ModCtrl})
	assert.False(t, m.Headless())

	m, _ = m.Update(enter())
	m, _ = m.Update(enter())
	m, cmd := m.Update(enter())
	require.NotNil(t, cmd)
	assert.Equal(t, SubmitMsg{PostURL: "https://x/p/1", Comment: "nice", Count: 3}, cmd())
}

func TestRunFormClosedIgnoresKeys(t *testing.T) {
	m := New()
	_, cmd := m.Update(enter())
	assert.Nil(t, cmd)

	m.Open()
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, m.IsOpen())
}
