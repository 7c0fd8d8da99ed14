package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olivoil/botdeck/internal/backend"
	"github.com/olivoil/botdeck/internal/control"
	"github.com/olivoil/botdeck/internal/logging"
	"github.com/olivoil/botdeck/internal/views/command"
	"github.com/olivoil/botdeck/internal/views/profiles"
)

type stubAPI struct{}

func (stubAPI) Profiles(context.Context) (map[string]backend.Profile, error) { return nil, nil }
func (stubAPI) CreateProfile(context.Context, backend.NewProfile) error       { return nil }
func (stubAPI) DeleteProfile(context.Context, string) error                   { return nil }
func (stubAPI) Status(context.Context, string) (backend.Status, error) {
	return backend.Status{}, nil
}
func (stubAPI) Run(context.Context, backend.RunRequest) error { return nil }
func (stubAPI) Login(context.Context, string) error          { return nil }
func (stubAPI) Screenshot(context.Context, string, int64) ([]byte, error) {
	return nil, nil
}
func (stubAPI) ExportSession(context.Context, string, string) (backend.Export, error) {
	return backend.Export{}, nil
}
func (stubAPI) ImportSession(context.Context, string, string) (string, error) { return "", nil }

func press(s string) tea.KeyPressMsg {
	r := []rune(s)
	return tea.KeyPressMsg{Code: r[0], Text: s}
}

type duplicateAPI struct{ stubAPI }

func (duplicateAPI) CreateProfile(context.Context, backend.NewProfile) error {
	return &backend.RemoteError{Op: "create profile", Status: 409, Message: "Profile already exists"}
}

func newTestModel(t *testing.T) model {
	t.Helper()
	return newTestModelWith(t, stubAPI{})
}

func newTestModelWith(t *testing.T, api control.API) model {
	t.Helper()
	var cfg backend.Config
	cfg.Server.URL = "http://127.0.0.1:5000"
	cfg.Transfer.ImportDir = t.TempDir()
	m := newModel(cfg, api, nil, "client-1", logging.Discard())
	return step(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

func step(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	out, _ := stepCmd(t, m, msg)
	return out
}

func stepCmd(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	for _, r := range s {
		m = step(t, m, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return m
}

func content(m model) string {
	return m.render()
}

func TestParseRun(t *testing.T) {
	assert.Equal(t, control.StartRun{PostURL: "https://x/p/1", Comment: "nice post", Count: 3, Headless: true},
		parseRun([]string{"https://x/p/1", "3", "nice", "post"}))
	assert.Equal(t, control.StartRun{PostURL: "https://x/p/1", Comment: "hello", Count: 1, Headless: true},
		parseRun([]string{"https://x/p/1", "hello"}))
	assert.Equal(t, control.StartRun{Count: 1, Headless: true}, parseRun(nil))
}

func TestRunWithoutProfileRaisesAlert(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, press("r"))

	assert.Equal(t, "Please select an account profile first.", m.session.Alert())
	assert.False(t, m.runForm.IsOpen())
	assert.Contains(t, content(m), "Please select an account profile first.")

	m = step(t, m, press("q"))
	assert.NotEmpty(t, m.session.Alert())

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Empty(t, m.session.Alert())
}

func TestSelectCommandBindsProfile(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, command.ExecuteMsg{Args: []string{"select", "alice"}})

	assert.Equal(t, "alice", m.session.Profile())
	assert.True(t, m.session.Log.Contains("Switched to account: alice"))
	assert.Contains(t, content(m), "alice")

	m = step(t, m, press("r"))
	assert.True(t, m.runForm.IsOpen())
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, control.ProfilesLoadedMsg{Profiles: map[string]backend.Profile{"alice": {Username: "a"}}})
	require.Equal(t, []string{"alice"}, m.profilesView.Names())

	m = step(t, m, press("d"))
	assert.Equal(t, "alice", m.session.Registry.PendingDelete())
	assert.Contains(t, content(m), `Delete profile "alice"?`)

	m = step(t, m, press("n"))
	assert.Empty(t, m.session.Registry.PendingDelete())
	assert.Equal(t, []string{"alice"}, m.profilesView.Names())
}

func TestEnterSelectsProfile(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, control.ProfilesLoadedMsg{Profiles: map[string]backend.Profile{"alice": {}, "bob": {}}})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "alice", m.session.Profile())
}

func TestHelpOverlay(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, press("?"))
	assert.Contains(t, content(m), "botdeck help")
	m = step(t, m, press("?"))
	assert.False(t, m.showHelp)
}

func TestNoticeGoesToLog(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, NoticeMsg{Level: control.LevelWarning, Text: "Not watching /tmp: denied"})
	assert.True(t, m.session.Log.Contains("Not watching /tmp: denied"))
}

func TestVersionCommand(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, press("/"))
	require.True(t, m.commandView.Focused())
	m = step(t, m, command.ExecuteMsg{Args: []string{"version"}})
	assert.True(t, m.session.Log.Contains(AppName+" "+AppVersion))
	assert.False(t, m.commandView.Focused())
}

func TestRejectedCommandGoesToLog(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, press("/"))
	m = typeText(t, m, "dance")

	m, cmd := stepCmd(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd)
	m = step(t, m, cmd())
	assert.True(t, m.session.Log.Contains(`unknown command "dance", type help for the list`))
	assert.True(t, m.commandView.Focused())
}

func TestCommandHintsFollowSession(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, control.ProfilesLoadedMsg{Profiles: map[string]backend.Profile{"alice": {Username: "alice_ig"}, "bob": {}}})
	m = step(t, m, command.ExecuteMsg{Args: []string{"select", "alice"}})
	m = step(t, m, control.StatusLoadedMsg{Profile: "alice", Status: backend.Status{Running: true}})

	hints := m.profileHints(m.session.Registry.Names())
	assert.Equal(t, []command.Hint{
		{Value: "alice", Note: "bound · running"},
		{Value: "bob"},
	}, hints)
}

func TestTabSwitchesToArchives(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	assert.Equal(t, viewArtifacts, m.mode)
	assert.Contains(t, content(m), "No session archives")
}

func TestCreateRejectedKeepsForm(t *testing.T) {
	m := newTestModelWith(t, duplicateAPI{})
	m = step(t, m, press("n"))
	require.True(t, m.profilesView.FormOpen())
	m = typeText(t, m, "alice")

	m, cmd := stepCmd(t, m, profiles.SubmitMsg{Name: "alice", Username: "a", Password: "p"})
	assert.True(t, m.profilesView.FormOpen())
	require.NotNil(t, cmd)

	m = step(t, m, cmd())
	assert.Equal(t, "Error saving profile: Profile already exists", m.session.Alert())
	assert.True(t, m.profilesView.FormOpen())

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Empty(t, m.session.Alert())
	assert.Contains(t, content(m), "alice")
}

func TestCreateSavedClosesForm(t *testing.T) {
	m := newTestModel(t)
	m = step(t, m, press("n"))
	m = typeText(t, m, "carol")

	m = step(t, m, control.ProfileSavedMsg{Name: "carol"})
	assert.False(t, m.profilesView.FormOpen())
	assert.NotContains(t, content(m), "carol")
}
