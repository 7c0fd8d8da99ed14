package control

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivoil/botdeck/internal/backend"
)

func TestReconcilerRedundantReportsAreSilent(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")

	running := StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true, CurrentTask: "liking"}}
	idle := StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: false}}

	h.deliver(running)
	n := h.s.Log.Len()
	h.deliver(running)
	h.deliver(running)
	assert.Equal(t, n, h.s.Log.Len())
	assert.True(t, h.s.Status.Running())

	h.deliver(idle)
	assert.False(t, h.s.Status.Running())
	assert.True(t, h.s.Log.Contains("Detected bot idle. UI reset."))
	n = h.s.Log.Len()
	h.deliver(idle)
	h.deliver(backend.FinishedEvent{Profile: "alice"})
	assert.Equal(t, n, h.s.Log.Len())
}

func TestReconcilerLastObservationWins(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")

	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true}})
	h.deliver(backend.FinishedEvent{Profile: "alice"})
	assert.False(t, h.s.Status.Running())

	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true, CurrentTask: "again"}})
	assert.True(t, h.s.Status.Running())
	assert.Equal(t, "again", h.s.Status.Task())

	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: false}})
	assert.False(t, h.s.Status.Running())
}

func TestReconcilerIdleToRunningEnablesLiveView(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")

	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true, CurrentTask: "commenting"}})
	assert.Equal(t, []string{
		"Switched to account: alice",
		"Bot is active: commenting",
		"Live View enabled. Press v to monitor progress.",
	}, h.messages())
	for _, e := range h.s.Log.Entries() {
		assert.Equal(t, LevelSystem, e.Level)
	}
}

func TestReconcilerTaskUpdateIsSilent(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true, CurrentTask: "one"}})
	n := h.s.Log.Len()

	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true, CurrentTask: "two"}})
	assert.Equal(t, "two", h.s.Status.Task())
	assert.Equal(t, n, h.s.Log.Len())
}

func TestReconcilerIgnoresFinishedForOtherProfile(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true}})
	before := h.s.Log.Entries()

	h.deliver(backend.FinishedEvent{Profile: "bob"})
	assert.True(t, h.s.Status.Running())
	assert.Equal(t, before, h.s.Log.Entries())
}

func TestReconcilerDropsStalePollResults(t *testing.T) {
	h := newHarness(t)
	h.api.profiles["bob"] = backend.Profile{}
	h.bind("alice")

	h.api.status["alice"] = backend.Status{Running: true}
	stale := h.collect(h.s.Status.Poll())
	require.Len(t, stale, 1)

	h.dispatch(SelectProfile{Name: "bob"})
	for _, msg := range stale {
		h.deliver(msg)
	}
	assert.False(t, h.s.Status.Running())
	assert.Equal(t, []string{"Switched to account: bob"}, h.messages())
}

func TestReconcilerPollFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true}})
	n := h.s.Log.Len()

	h.api.statusErr = &backend.TransportError{Op: "status", Err: errors.New("connection reset")}
	h.run(h.s.Status.Poll())
	assert.True(t, h.s.Status.Running())
	assert.Equal(t, n, h.s.Log.Len())
}

func TestReconcilerPollLoop(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	assert.Equal(t, 1, h.api.count("GET /status/alice"))
	assert.True(t, h.s.Status.Polling())

	tick := h.lastTick()
	assert.Equal(t, 5*time.Second, tick.After)
	require.IsType(t, StatusTickMsg{}, tick.Msg)

	h.deliver(tick.Msg)
	assert.Equal(t, 2, h.api.count("GET /status/alice"))
	assert.Equal(t, tick.Msg, h.lastTick().Msg)

	h.dispatch(SelectProfile{Name: ""})
	assert.False(t, h.s.Status.Polling())
	h.deliver(tick.Msg)
	assert.Equal(t, 2, h.api.count("GET /status/alice"))
}

func TestReconcilerRebindReplacesPollLoop(t *testing.T) {
	h := newHarness(t)
	h.api.profiles["bob"] = backend.Profile{}
	h.bind("alice")
	first := h.lastTick().Msg

	h.dispatch(SelectProfile{Name: "bob"})
	h.deliver(first)
	assert.Equal(t, 1, h.api.count("GET /status/bob"))
	assert.Equal(t, 1, h.api.count("GET /status/alice"))
}

func TestReconcilerStartValidation(t *testing.T) {
	h := newHarness(t)

	h.dispatch(StartRun{PostURL: "https://x/1", Comment: "hi"})
	assert.Equal(t, "Please select an account profile first.", h.s.Alert())
	h.s.DismissAlert()

	h.bind("alice")
	h.dispatch(StartRun{PostURL: " ", Comment: "hi"})
	assert.Equal(t, "Please enter a post URL and a comment.", h.s.Alert())
	assert.Zero(t, h.api.count("POST /run"))
	assert.Equal(t, []string{"Switched to account: alice"}, h.messages())
}

func TestReconcilerStartDefaultsCount(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	h.dispatch(StartRun{PostURL: "https://x/1", Comment: "hi", Count: 0})
	require.Len(t, h.api.runs, 1)
	assert.Equal(t, 1, h.api.runs[0].Count)
}

func TestReconcilerStartRefusedWhileRunning(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	h.deliver(StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true}})

	h.dispatch(StartRun{PostURL: "https://x/1", Comment: "hi"})
	assert.Equal(t, "Bot is already running.", h.s.Alert())
	assert.Zero(t, h.api.count("POST /run"))
}

func TestReconcilerStartPendingUntilResponse(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")

	msgs := h.collect(h.s.Dispatch(StartRun{PostURL: "https://x/1", Comment: "hi"}))
	assert.True(t, h.s.Status.Starting())
	assert.True(t, h.s.Status.Busy())
	assert.False(t, h.s.Status.Running())

	for _, msg := range msgs {
		h.deliver(msg)
	}
	assert.False(t, h.s.Status.Starting())
}

func TestReconcilerStartErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "remote",
			err:  &backend.RemoteError{Op: "run", Status: http.StatusBadRequest, Message: "Bot is already running for profile alice"},
			want: "Error: Bot is already running for profile alice",
		},
		{
			name: "transport",
			err:  &backend.TransportError{Op: "run", Err: errors.New("connection refused")},
			want: "Network Error: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.bind("alice")
			h.api.runErr = tt.err

			h.dispatch(StartRun{PostURL: "https://x/1", Comment: "hi"})
			entries := h.s.Log.Entries()
			last := entries[len(entries)-1]
			assert.Equal(t, tt.want, last.Message)
			assert.Equal(t, LevelError, last.Level)
			assert.False(t, h.s.Status.Busy())
			assert.Empty(t, h.s.Alert())
		})
	}
}

func TestReconcilerFinishedWhileStarting(t *testing.T) {
	h := newHarness(t)
	h.bind("alice")
	h.collect(h.s.Dispatch(StartRun{PostURL: "https://x/1", Comment: "hi"}))

	h.deliver(backend.FinishedEvent{Profile: "alice"})
	assert.False(t, h.s.Status.Busy())
	assert.True(t, h.s.Log.Contains("Process finished."))
}

func TestReconcilerLogin(t *testing.T) {
	h := newHarness(t)
	h.dispatch(StartLogin{})
	assert.Equal(t, "Please select an account profile first.", h.s.Alert())
	assert.Zero(t, h.api.count("POST /login"))
	h.s.DismissAlert()

	h.bind("alice")
	polls := h.api.count("GET /status/alice")
	h.dispatch(StartLogin{})
	assert.Equal(t, 1, h.api.count("POST /login"))
	assert.True(t, h.s.Log.Contains("Opening manual login for: alice"))
	assert.False(t, h.s.Status.LoggingIn())
	assert.Equal(t, polls+1, h.api.count("GET /status/alice"))

	h.api.loginErr = &backend.RemoteError{Op: "login", Status: http.StatusConflict, Message: "browser already open"}
	h.dispatch(StartLogin{})
	assert.True(t, h.s.Log.Contains("Error: browser already open"))
}
