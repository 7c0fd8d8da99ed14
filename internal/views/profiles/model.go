package profiles

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/textinput"
	"charm.land/bubbles/v2/viewport"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/botdeck/internal/backend"
	"github.com/olivoil/botdeck/internal/ui"
	"github.com/olivoil/botdeck/internal/views/form"
)

const (
	previewWidthFrac = 0.45
	minPreviewWidth  = 30
)

// Form field indexes.
const (
	fieldName = iota
	fieldUsername
	fieldPassword
)

// SubmitMsg is sent when the create form is submitted.
type SubmitMsg struct {
	Name     string
	Username string
	Password string
}

// State is the bound profile's run state shown in the preview.
type State struct {
	Bound     string
	Running   bool
	Starting  bool
	LoggingIn bool
	Task      string
}

// Model is the profiles view: directory table, preview, and create form.
type Model struct {
	table    table.Model
	preview  viewport.Model
	form     form.Model
	profiles []backend.Profile
	state    State
	width    int
	height   int
	focused  bool
	formOpen bool
	reveal   bool
}

// New creates a new profiles view model.
func New() Model {
	cols := []table.Column{
		{Title: " ", Width: 2},
		{Title: "profile", Width: 18},
		{Title: "username", Width: 24},
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	vp := viewport.New(viewport.WithWidth(40), viewport.WithHeight(10))

	f := form.New("New profile",
		form.NewField("Profile name", "e.g. main"),
		form.NewField("Username", "account username"),
		form.NewField("Password", "account password"),
	)
	f.Input(fieldPassword).EchoMode = textinput.EchoPassword

	return Model{
		table:   t,
		preview: vp,
		form:    f,
		focused: true,
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ui.ColorBorder)
	s.Selected = s.Selected.
		Foreground(ui.ColorAccent).
		Bold(true)
	return s
}

// SetProfiles replaces the directory rows, keeping the cursor on the same
// profile when it still exists.
func (m *Model) SetProfiles(profiles []backend.Profile) {
	prev := m.SelectedName()
	m.profiles = profiles
	m.table.SetRows(m.rows())
	for i, p := range profiles {
		if p.Name == prev {
			m.table.SetCursor(i)
			break
		}
	}
	switch c := m.table.Cursor(); {
	case c >= len(profiles):
		m.table.SetCursor(max(len(profiles)-1, 0))
	case c < 0:
		m.table.SetCursor(0)
	}
	m.updatePreview()
}

// SetState updates the bound marker and the run state in the preview.
func (m *Model) SetState(s State) {
	if s == m.state {
		return
	}
	m.state = s
	m.table.SetRows(m.rows())
	m.updatePreview()
}

func (m *Model) rows() []table.Row {
	rows := make([]table.Row, len(m.profiles))
	for i, p := range m.profiles {
		marker := ""
		if p.Name == m.state.Bound {
			marker = "●"
		}
		rows[i] = table.Row{marker, p.Name, p.Username}
	}
	return rows
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h

	previewW := m.previewWidth()
	tableW := w - previewW - 3

	m.table.SetWidth(tableW)
	m.table.SetHeight(h)
	m.preview.SetWidth(previewW)
	m.preview.SetHeight(h)
	m.form.SetWidth(previewW)

	userW := tableW - 2 - 18 - 4
	if userW < 10 {
		userW = 10
	}
	cols := m.table.Columns()
	if len(cols) == 3 {
		cols[2].Width = userW
		m.table.SetColumns(cols)
	}
}

// SelectedName returns the profile under the cursor.
func (m *Model) SelectedName() string {
	idx := m.table.Cursor()
	if idx >= 0 && idx < len(m.profiles) {
		return m.profiles[idx].Name
	}
	return ""
}

// Names returns the listed profile names in display order.
func (m *Model) Names() []string {
	names := make([]string, len(m.profiles))
	for i, p := range m.profiles {
		names[i] = p.Name
	}
	return names
}

// Focus sets focus on the profiles table.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the profiles table.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// FormOpen reports whether the create form is capturing keys.
func (m *Model) FormOpen() bool { return m.formOpen }

// OpenForm shows the create form.
func (m *Model) OpenForm() tea.Cmd {
	m.formOpen = true
	m.table.Blur()
	return m.form.Focus()
}

// CloseForm hides the create form, keeping what was typed.
func (m *Model) CloseForm() {
	m.formOpen = false
	m.form.Blur()
	if m.focused {
		m.table.Focus()
	}
}

// ResetForm clears the create form after a successful submit.
func (m *Model) ResetForm() {
	m.form.Reset()
	m.setReveal(false)
}

func (m *Model) setReveal(on bool) {
	m.reveal = on
	if on {
		m.form.Input(fieldPassword).EchoMode = textinput.EchoNormal
	} else {
		m.form.Input(fieldPassword).EchoMode = textinput.EchoPassword
	}
}

// Update handles messages for the profiles view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.formOpen {
		return m.updateForm(msg)
	}
	prev := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.updatePreview()
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "esc":
			m.CloseForm()
			return m, nil
		case "tab", "down":
			return m, m.form.Next()
		case "shift+tab", "up":
			return m, m.form.Prev()
		case "ctrl+r":
			m.setReveal(!m.reveal)
			return m, nil
		case "enter":
			if !m.form.OnLast() {
				return m, m.form.Next()
			}
			submit := SubmitMsg{
				Name:     m.form.Value(fieldName),
				Username: m.form.Value(fieldUsername),
				Password: m.form.Value(fieldPassword),
			}
			return m, func() tea.Msg { return submit }
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// View renders the table and, beside it, the form or the preview.
func (m Model) View() string {
	tableView := m.table.View()
	if len(m.profiles) == 0 {
		tableView = lipgloss.NewStyle().Width(m.width-m.previewWidth()-3).Render(
			ui.StyleDim.Render("No profiles yet. Press n to create one."))
	}

	side := m.preview.View()
	if m.formOpen {
		side = m.form.View() + "\n\n" + ui.StyleDim.Render("enter next/save · tab move · ctrl+r show password · esc close")
	}
	previewView := ui.StylePreviewBorder.
		Width(m.previewWidth()).
		Height(m.height).
		Render(side)

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
	m.preview.SetContent(m.renderPreview())
	m.preview.GotoTop()
}

func (m *Model) renderPreview() string {
	name := m.SelectedName()
	if name == "" {
		return ui.StyleDim.Render("No profile selected")
	}
	var p backend.Profile
	for _, q := range m.profiles {
		if q.Name == name {
			p = q
			break
		}
	}

	var b strings.Builder
	b.WriteString(ui.StyleAccent.Render("Profile: ") + p.Name + "\n")
	b.WriteString(ui.StyleDim.Render("User:    ") + p.Username + "\n")

	if name != m.state.Bound {
		b.WriteString("\n" + ui.StyleDim.Render("enter to select"))
		return b.String()
	}

	b.WriteString(ui.StyleDim.Render("State:   ") + ui.RunBadge(m.state.Running, m.state.Starting) + "\n")
	if m.state.Running && m.state.Task != "" {
		b.WriteString(ui.StyleDim.Render("Task:    ") + m.state.Task + "\n")
	}
	if m.state.LoggingIn {
		b.WriteString(ui.StyleWarning.Render("Manual login in progress") + "\n")
	}
	b.WriteString("\n" + ui.StyleDim.Render("r run · l login · v live view · e export · i import · d delete"))
	return b.String()
}
