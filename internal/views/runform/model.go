// Package runform collects the parameters of a bot run.
package runform

import (
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/botdeck/internal/ui"
	"github.com/olivoil/botdeck/internal/views/form"
)

const (
	fieldURL = iota
	fieldComment
	fieldCount
)

// SubmitMsg is sent when the operator starts the run.
type SubmitMsg struct {
	PostURL  string
	Comment  string
	Count    int
	Headless bool
}

// Model is the run form.
type Model struct {
	form     form.Model
	headless bool
	open     bool
}

// New creates a run form. Runs default to headless.
func New() Model {
	f := form.New("Start bot",
		form.NewField("Post URL", "https://www.instagram.com/p/..."),
		form.NewField("Comment", "text to post"),
		form.NewField("Count", "1"),
	)
	f.Input(fieldCount).CharLimit = 4
	return Model{form: f, headless: true}
}

// Open shows the form.
func (m *Model) Open() tea.Cmd {
	m.open = true
	return m.form.Focus()
}

// Close hides the form, keeping its values.
func (m *Model) Close() {
	m.open = false
	m.form.Blur()
}

// IsOpen reports whether the form is capturing keys.
func (m *Model) IsOpen() bool { return m.open }

// Headless reports whether the run hides the browser.
func (m *Model) Headless() bool { return m.headless }

// SetWidth sizes the inputs.
func (m *Model) SetWidth(w int) { m.form.SetWidth(w) }

// Count parses the count field; anything that is not a positive number is 1.
func (m *Model) Count() int {
	n, err := strconv.Atoi(m.form.Value(fieldCount))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Update handles keys while the form is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.open {
		return m, nil
	}
	if k, ok := msg.(tea.KeyPressMsg); ok {
		switch k.String() {
		case "esc":
			m.Close()
			return m, nil
		case "tab", "down":
			return m, m.form.Next()
		case "shift+tab", "up":
			return m, m.form.Prev()
		case "ctrl+b":
			m.headless = !m.headless
			return m, nil
		case "enter":
			if !m.form.OnLast() {
				return m, m.form.Next()
			}
			submit := SubmitMsg{
				PostURL:  m.form.Value(fieldURL),
				Comment:  m.form.Value(fieldComment),
				Count:    m.Count(),
				Headless: m.headless,
			}
			return m, func() tea.Msg { return submit }
		}
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	mode := "headless"
	if !m.headless {
		mode = "visible browser"
	}
	return m.form.View() + "\n\n" +
		ui.StyleDim.Render("Mode: ") + mode + "\n\n" +
		ui.StyleDim.Render("enter next/start · tab move · ctrl+b toggle mode · esc close")
}
