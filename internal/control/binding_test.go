package control

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olivoil/botdeck/internal/backend"
)

func TestBindingSwitchLeavesBeforeJoining(t *testing.T) {
	h := newHarness(t)
	h.api.profiles["bob"] = backend.Profile{}
	h.bind("alice")

	h.dispatch(SelectProfile{Name: "bob"})
	h.dispatch(SelectProfile{Name: ""})

	assert.Equal(t, []emitted{
		{Event: backend.EventJoin, Profile: "alice"},
		{Event: backend.EventLeave, Profile: "alice"},
		{Event: backend.EventJoin, Profile: "bob"},
		{Event: backend.EventLeave, Profile: "bob"},
	}, h.emit.events)
	assert.Empty(t, h.s.Profile())
	assert.False(t, h.s.Binding.Bound())
}

func TestBindingSwitchResetsLog(t *testing.T) {
	h := newHarness(t)
	h.api.profiles["bob"] = backend.Profile{}
	h.bind("alice")
	h.deliver(backend.LogEvent{Message: "alice did a thing", Level: "INFO"})
	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true}})

	h.dispatch(SelectProfile{Name: "bob"})
	assert.Equal(t, []string{"Switched to account: bob"}, h.messages())
	assert.Equal(t, LevelSystem, h.s.Log.Entries()[0].Level)
	assert.False(t, h.s.Status.Running())
	assert.Equal(t, 1, h.api.count("GET /status/bob"))
}

func TestBindingReselectIsNoop(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	h.deliver(backend.LogEvent{Message: "keep me", Level: "INFO"})

	h.dispatch(SelectProfile{Name: "alice"})
	assert.Len(t, h.emit.events, 1)
	assert.True(t, h.s.Log.Contains("keep me"))
	assert.Equal(t, 1, h.api.count("GET /status/alice"))
}

func TestBindingUnbindKeepsLog(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")

	h.dispatch(SelectProfile{Name: ""})
	assert.Equal(t, []string{"Switched to account: alice"}, h.messages())
}

func TestBindingClearsPendingDelete(t *testing.T) {
	h := newHarness(t)
	h.api.profiles["bob"] = backend.Profile{}
	h.bind("alice")
	h.dispatch(DeleteProfile{Name: "alice"})

	h.dispatch(SelectProfile{Name: "bob"})
	assert.Empty(t, h.s.Registry.PendingDelete())
}

func TestBindingRefusesUnlistedProfile(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	polls := h.api.count("GET /status/alice")

	h.dispatch(SelectProfile{Name: "ghost"})
	assert.Equal(t, "Unknown profile: ghost", h.s.Alert())
	assert.Equal(t, "alice", h.s.Profile())
	assert.Equal(t, []emitted{{Event: backend.EventJoin, Profile: "alice"}}, h.emit.events)
	assert.Zero(t, h.api.count("GET /status/ghost"))
	assert.Equal(t, polls, h.api.count("GET /status/alice"))
	assert.Equal(t, []string{"Switched to account: alice"}, h.messages())
}
