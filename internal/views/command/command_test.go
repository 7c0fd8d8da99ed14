package command

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	args, err := Parse("  select alice ")
	require.NoError(t, err)
	assert.Equal(t, []string{"select", "alice"}, args)

	args, err = Parse("run https://x/1 2 nice post")
	require.NoError(t, err)
	assert.Len(t, args, 5)

	_, err = Parse("dance now")
	assert.EqualError(t, err, `unknown command "dance", type help for the list`)

	_, err = Parse("live maybe")
	assert.EqualError(t, err, `unknown live subcommand "maybe"`)

	_, err = Parse("select")
	assert.EqualError(t, err, "usage: select <profile>")

	_, err = Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)
}

func values(cs []Candidate) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.Value)
	}
	return out
}

func TestCompleteTopLevel(t *testing.T) {
	c := NewCompleter()
	assert.Len(t, c.Complete(""), len(commands))
	assert.Equal(t, []string{"live", "login", "logs"}, values(c.Complete("l")))
}

func TestCompleteArguments(t *testing.T) {
	c := NewCompleter()
	c.SetProfiles([]Hint{{Value: "alice"}, {Value: "amy"}, {Value: "bob"}})
	c.SetArchives([]Hint{{Value: "/tmp/a.zip", Note: "2.0 KiB"}})

	assert.Equal(t, []string{"alice", "amy", "bob"}, values(c.Complete("select ")))
	assert.Equal(t, []string{"alice", "amy"}, values(c.Complete("select a")))
	assert.Equal(t, []string{"new", "delete"}, values(c.Complete("profile ")))
	assert.Equal(t, []string{"bob"}, values(c.Complete("profile delete b")))
	assert.Nil(t, c.Complete("profile new "))
	assert.Equal(t, []Candidate{{Value: "/tmp/a.zip", Desc: "2.0 KiB"}}, c.Complete("import "))
	assert.Nil(t, c.Complete("login "))
	assert.Nil(t, c.Complete("nope "))
}

func TestCompleteFlagsRefusedCommands(t *testing.T) {
	c := NewCompleter()
	byName := func() map[string]Candidate {
		out := map[string]Candidate{}
		for _, cand := range c.Complete("") {
			out[cand.Value] = cand
		}
		return out
	}

	got := byName()
	assert.True(t, got["run"].Warn)
	assert.Contains(t, got["run"].Desc, "select a profile first")
	assert.True(t, got["login"].Warn)
	assert.False(t, got["select"].Warn)

	c.SetSession(true, true)
	got = byName()
	assert.True(t, got["run"].Warn)
	assert.Contains(t, got["export"].Desc, "bot is running")
	assert.False(t, got["login"].Warn)

	c.SetSession(true, false)
	assert.False(t, byName()["run"].Warn)
}

func TestCompleteProfileNotes(t *testing.T) {
	c := NewCompleter()
	c.SetProfiles([]Hint{{Value: "alice", Note: "bound · running"}, {Value: "bob"}})
	assert.Equal(t, []Candidate{
		{Value: "alice", Desc: "bound · running"},
		{Value: "bob", Desc: "profile"},
	}, c.Complete("select "))
}

func TestModelExecute(t *testing.T) {
	m := New()
	m.SetWidth(80)
	m.Focus()
	m.input.SetValue("select alice")

	m, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ExecuteMsg{Args: []string{"select", "alice"}}, cmd())
	assert.Empty(t, m.input.Value())
	assert.Equal(t, []string{"select alice"}, m.History())
}

func TestModelRejectKeepsInput(t *testing.T) {
	m := New()
	m.SetWidth(80)
	m.Focus()
	m.input.SetValue("dance")

	m, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(RejectedMsg)
	require.True(t, ok)
	assert.Equal(t, "dance", msg.Input)
	assert.ErrorContains(t, msg.Err, "unknown command")
	assert.Equal(t, "dance", m.input.Value())
	assert.Empty(t, m.History())
}

func TestModelHistoryRecall(t *testing.T) {
	m := New()
	m.Focus()
	for _, line := range []string{"login", "logs clear", "logs clear"} {
		m.input.SetValue(line)
		m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	}
	require.Equal(t, []string{"login", "logs clear"}, m.History())

	prev := tea.KeyPressMsg{Code: 'p', Mod: tea.ModCtrl}
	next := tea.KeyPressMsg{Code: 'n', Mod: tea.ModCtrl}

	m, _ = m.Update(prev)
	assert.Equal(t, "logs clear", m.input.Value())
	m, _ = m.Update(prev)
	assert.Equal(t, "login", m.input.Value())
	m, _ = m.Update(prev)
	assert.Equal(t, "login", m.input.Value())
	m, _ = m.Update(next)
	m, _ = m.Update(next)
	assert.Empty(t, m.input.Value())
}

func TestModelMenuNavigation(t *testing.T) {
	m := New()
	m.Focus()
	m.input.SetValue("lo")
	m.updateCandidates()
	require.Equal(t, []string{"login", "logs"}, values(m.candidates))
	assert.Equal(t, 4, m.MenuHeight())

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 1, m.selected)
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "logs ", m.input.Value())
	assert.Equal(t, []string{"clear"}, values(m.candidates))
}

func TestModelEscapeBlurs(t *testing.T) {
	m := New()
	m.Focus()
	m.input.SetValue("sel")
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, m.Focused())
	assert.Empty(t, m.View())
	assert.Empty(t, m.input.Value())
}
