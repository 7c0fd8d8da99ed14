package control

import (
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/botdeck/internal/backend"
)

// Transfer exports and imports the persisted session artifact of the bound
// profile. Both are refused while that profile's bot is running.
type Transfer struct {
	s *Session

	selected  string
	exporting bool
	importing bool
}

// Select chooses the archive the next Import uploads.
func (t *Transfer) Select(path string) { t.selected = strings.TrimSpace(path) }

// Selected returns the chosen archive, or "".
func (t *Transfer) Selected() string { return t.selected }

// Exporting reports whether a download is in flight.
func (t *Transfer) Exporting() bool { return t.exporting }

// Importing reports whether an upload is in flight.
func (t *Transfer) Importing() bool { return t.importing }

func (t *Transfer) check() (string, error) {
	profile := t.s.profile
	if profile == "" {
		return "", invalid("Please select an account profile first.")
	}
	if t.s.Status.Busy() {
		return "", invalid("Cannot transfer session while the bot is running.")
	}
	return profile, nil
}

// Export downloads the bound profile's session into the download directory.
func (t *Transfer) Export() (tea.Cmd, error) {
	profile, err := t.check()
	if err != nil {
		return nil, err
	}
	if t.exporting {
		return nil, nil
	}

	t.exporting = true
	t.s.system("Exporting session for: " + profile)
	api, ctx, dir := t.s.api, t.s.ctx, t.s.downloadDir
	return func() tea.Msg {
		exp, err := api.ExportSession(ctx, profile, dir)
		return ExportDoneMsg{Profile: profile, Export: exp, Err: err}
	}, nil
}

func (t *Transfer) handleExport(msg ExportDoneMsg) {
	t.exporting = false
	if msg.Profile != t.s.profile {
		t.s.log.Info("export finished for unbound profile", "profile", msg.Profile, "path", msg.Export.Path, "error", msg.Err)
		return
	}
	if msg.Err != nil {
		t.s.logf(LevelError, Describe(msg.Err))
		return
	}
	t.s.logf(LevelSuccess, "Session exported to "+msg.Export.Path+" ("+backend.FormatBytes(msg.Export.Bytes)+")")
}

// Import uploads the archive at path, or the selected archive when path is
// empty, as the bound profile's session.
func (t *Transfer) Import(path string) (tea.Cmd, error) {
	profile, err := t.check()
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = t.selected
	}
	if path == "" {
		return nil, invalid("Please choose a session file to import.")
	}
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return nil, invalid("Please choose a ZIP file.")
	}
	if t.importing {
		return nil, nil
	}

	t.importing = true
	t.s.system("Importing session for: " + profile + " from " + filepath.Base(path))
	api, ctx := t.s.api, t.s.ctx
	return func() tea.Msg {
		message, err := api.ImportSession(ctx, profile, path)
		return ImportDoneMsg{Profile: profile, Path: path, Message: message, Err: err}
	}, nil
}

// handleImport resets the selection after every attempt so the same file can
// be submitted again.
func (t *Transfer) handleImport(msg ImportDoneMsg) {
	t.importing = false
	t.selected = ""
	if msg.Profile != t.s.profile {
		t.s.log.Info("import finished for unbound profile", "profile", msg.Profile, "path", msg.Path, "error", msg.Err)
		return
	}
	if msg.Err != nil {
		t.s.logf(LevelError, Describe(msg.Err))
		return
	}
	message := msg.Message
	if message == "" {
		message = "Session for " + msg.Profile + " imported successfully"
	}
	t.s.logf(LevelSuccess, message)
}
