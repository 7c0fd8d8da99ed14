package artifacts

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/viewport"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/botdeck/internal/backend"
	"github.com/olivoil/botdeck/internal/ui"
)

const (
	previewWidthFrac = 0.45
	minPreviewWidth  = 30
)

// ChooseMsg is sent when the operator picks an archive to import.
type ChooseMsg struct {
	Path string
}

// Model lists the session archives in the import directory.
type Model struct {
	table     table.Model
	preview   viewport.Model
	artifacts []backend.Artifact
	dir       string
	chosen    string
	width     int
	height    int
	focused   bool
}

// New creates a new artifacts view model for dir.
func New(dir string) Model {
	cols := []table.Column{
		{Title: " ", Width: 2},
		{Title: "archive", Width: 32},
		{Title: "size", Width: 10},
		{Title: "modified", Width: 10},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(false),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorBorder)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#ffffff")).
		Background(ui.ColorAccent).
		Bold(true)
	t.SetStyles(s)

	vp := viewport.New(viewport.WithWidth(40), viewport.WithHeight(10))

	return Model{
		table:   t,
		preview: vp,
		dir:     dir,
	}
}

// Dir returns the directory being listed.
func (m *Model) Dir() string { return m.dir }

// Load returns a command that lists the directory.
func (m *Model) Load() tea.Cmd {
	dir := m.dir
	return func() tea.Msg {
		list, err := backend.ListArtifacts(dir)
		return LoadedMsg{Artifacts: list, Err: err}
	}
}

// LoadedMsg carries a directory listing.
type LoadedMsg struct {
	Artifacts []backend.Artifact
	Err       error
}

// SetArtifacts updates the listing.
func (m *Model) SetArtifacts(list []backend.Artifact) {
	m.artifacts = list
	m.table.SetRows(m.rows())
	if c := m.table.Cursor(); c >= len(list) || c < 0 {
		m.table.SetCursor(max(len(list)-1, 0))
	}
	m.updatePreview()
}

// SetChosen marks the archive the next import will upload.
func (m *Model) SetChosen(path string) {
	if path == m.chosen {
		return
	}
	m.chosen = path
	m.table.SetRows(m.rows())
	m.updatePreview()
}

func (m *Model) rows() []table.Row {
	rows := make([]table.Row, len(m.artifacts))
	for i, a := range m.artifacts {
		marker := ""
		switch {
		case m.chosen != "" && a.Path == m.chosen:
			marker = "▸"
		case !a.Valid():
			marker = "✗"
		}
		rows[i] = table.Row{
			marker,
			a.Name,
			backend.FormatBytes(a.Size),
			ui.FormatTime(a.ModTime),
		}
	}
	return rows
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	previewW := int(float64(w) * previewWidthFrac)
	if previewW < minPreviewWidth {
		previewW = minPreviewWidth
	}
	tableW := w - previewW - 3

	m.table.SetWidth(tableW)
	m.table.SetHeight(h)
	m.preview.SetWidth(previewW)
	m.preview.SetHeight(h)

	nameW := tableW - 2 - 10 - 10 - 6
	if nameW < 12 {
		nameW = 12
	}
	cols := m.table.Columns()
	if len(cols) == 4 {
		cols[1].Width = nameW
		m.table.SetColumns(cols)
	}
}

// Selected returns the archive under the cursor, if any.
func (m *Model) Selected() *backend.Artifact {
	idx := m.table.Cursor()
	if idx >= 0 && idx < len(m.artifacts) {
		return &m.artifacts[idx]
	}
	return nil
}

// Focus sets focus on the table.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the table.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// Update handles navigation; enter chooses the archive under the cursor.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "enter" {
		if a := m.Selected(); a != nil {
			path := a.Path
			return m, func() tea.Msg { return ChooseMsg{Path: path} }
		}
		return m, nil
	}
	prev := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.updatePreview()
	}
	return m, cmd
}

// View renders the artifacts view.
func (m Model) View() string {
	tableView := m.table.View()
	if len(m.artifacts) == 0 {
		tableView = lipgloss.NewStyle().Width(m.width - m.previewWidth() - 3).Render(
			ui.StyleDim.Render("No session archives in " + m.dir))
	}
	previewStyle := ui.StylePreviewBorder.Width(m.previewWidth()).Height(m.height)
	previewView := previewStyle.Render(m.preview.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, tableView, previewView)
}

func (m *Model) previewWidth() int {
	pw := int(float64(m.width) * previewWidthFrac)
	if pw < minPreviewWidth {
		pw = minPreviewWidth
	}
	return pw
}

func (m *Model) updatePreview() {
	a := m.Selected()
	if a == nil {
		m.preview.SetContent(ui.StyleDim.Render("Drop .zip session archives into\n" + m.dir))
		return
	}

	var b strings.Builder
	b.WriteString(ui.StyleAccent.Render("Archive: ") + a.Name + "\n")
	b.WriteString(ui.StyleDim.Render("Path:    ") + a.Path + "\n")
	b.WriteString(ui.StyleDim.Render("Size:    ") + backend.FormatBytes(a.Size) + "\n")
	b.WriteString(ui.StyleDim.Render("Changed: ") + ui.FormatTime(a.ModTime) + "\n")
	if a.Valid() {
		b.WriteString(ui.StyleDim.Render("Files:   ") + fmt.Sprintf("%d", a.Entries) + "\n")
	} else {
		b.WriteString(ui.StyleError.Render("Unreadable: "+a.Err) + "\n")
	}

	b.WriteString("\n")
	if m.chosen != "" && a.Path == m.chosen {
		b.WriteString(ui.StyleSuccess.Render("Chosen for import") + "\n")
		b.WriteString(ui.StyleDim.Render("i import into the selected profile"))
	} else {
		b.WriteString(ui.StyleDim.Render("enter choose for import"))
	}

	m.preview.SetContent(b.String())
	m.preview.GotoTop()
}
