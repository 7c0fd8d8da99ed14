package logview

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/viewport"

	"github.com/olivoil/botdeck/internal/control"
	"github.com/olivoil/botdeck/internal/ui"
)

// Model renders the operator log and follows its tail.
type Model struct {
	viewport viewport.Model
	rev      uint64
	synced   bool
	empty    bool
	width    int
	height   int
}

// New creates a new log view model.
func New() Model {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(24))
	return Model{
		viewport: vp,
		empty:    true,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	if w == m.width && h == m.height {
		return
	}
	m.width = w
	m.height = h
	m.viewport.SetWidth(w - 2)
	m.viewport.SetHeight(h)
	m.viewport.GotoBottom()
}

// Sync re-renders when the log changed since the last call. The newest entry
// is always scrolled into view.
func (m *Model) Sync(log *control.LogStream) {
	if m.synced && log.Revision() == m.rev {
		return
	}
	m.synced = true
	m.rev = log.Revision()
	entries := log.Entries()
	m.empty = len(entries) == 0
	m.viewport.SetContent(Format(entries))
	m.viewport.GotoBottom()
}

// Update handles scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the log view.
func (m Model) View() string {
	if m.empty {
		return ui.StyleDim.Render("Waiting for bot activity...")
	}
	return m.viewport.View()
}

// Format renders entries one per line as "[timestamp] message".
func Format(entries []control.Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(ui.StyleDim.Render("[" + e.Timestamp + "]"))
		b.WriteByte(' ')
		b.WriteString(ui.LevelStyle(string(e.Level)).Render(e.Message))
	}
	return b.String()
}
