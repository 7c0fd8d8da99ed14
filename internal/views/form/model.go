// Package form stacks labelled text inputs with a single focused field.
package form

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/botdeck/internal/ui"
)

// Field is one labelled input.
type Field struct {
	Label string
	Input textinput.Model
}

// NewField creates a field with a placeholder.
func NewField(label, placeholder string) Field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = 512
	return Field{Label: label, Input: ti}
}

// Model is a vertical stack of fields.
type Model struct {
	title  string
	fields []Field
	focus  int
	active bool
	width  int
}

// New creates a form.
func New(title string, fields ...Field) Model {
	return Model{title: title, fields: fields}
}

// Len returns the number of fields.
func (m Model) Len() int { return len(m.fields) }

// Focused returns the index of the focused field.
func (m Model) Focused() int { return m.focus }

// Active reports whether the form has keyboard focus.
func (m Model) Active() bool { return m.active }

// OnLast reports whether the focused field is the last one.
func (m Model) OnLast() bool { return m.focus == len(m.fields)-1 }

// Value returns the trimmed value of field i.
func (m Model) Value(i int) string {
	if i < 0 || i >= len(m.fields) {
		return ""
	}
	return strings.TrimSpace(m.fields[i].Input.Value())
}

// SetValue replaces the value of field i.
func (m *Model) SetValue(i int, v string) {
	if i < 0 || i >= len(m.fields) {
		return
	}
	m.fields[i].Input.SetValue(v)
}

// Input exposes field i for per-field settings such as echo mode.
func (m *Model) Input(i int) *textinput.Model {
	return &m.fields[i].Input
}

// SetWidth sizes every input.
func (m *Model) SetWidth(w int) {
	m.width = w
	for i := range m.fields {
		m.fields[i].Input.SetWidth(max(w-4, 10))
	}
}

// Focus activates the form on the current field.
func (m *Model) Focus() tea.Cmd {
	m.active = true
	return m.focusField(m.focus)
}

// Blur deactivates the form.
func (m *Model) Blur() {
	m.active = false
	for i := range m.fields {
		m.fields[i].Input.Blur()
	}
}

// Next moves focus down, wrapping around.
func (m *Model) Next() tea.Cmd {
	return m.focusField((m.focus + 1) % len(m.fields))
}

// Prev moves focus up, wrapping around.
func (m *Model) Prev() tea.Cmd {
	return m.focusField((m.focus - 1 + len(m.fields)) % len(m.fields))
}

// Reset clears every value and returns focus to the first field.
func (m *Model) Reset() {
	for i := range m.fields {
		m.fields[i].Input.Reset()
		m.fields[i].Input.Blur()
	}
	m.focus = 0
	if m.active {
		m.fields[0].Input.Focus()
	}
}

func (m *Model) focusField(i int) tea.Cmd {
	for j := range m.fields {
		m.fields[j].Input.Blur()
	}
	m.focus = i
	return m.fields[i].Input.Focus()
}

// Update feeds msg to the focused input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active || len(m.fields) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.fields[m.focus].Input, cmd = m.fields[m.focus].Input.Update(msg)
	return m, cmd
}

var styleLabel = lipgloss.NewStyle().Bold(true)

// View renders the title and the fields.
func (m Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(ui.StyleHeader.Render(m.title))
		b.WriteString("\n\n")
	}
	for i, f := range m.fields {
		label := styleLabel.Render(f.Label)
		if m.active && i == m.focus {
			label = ui.StyleAccent.Render("› ") + label
		} else {
			label = "  " + label
		}
		b.WriteString(label)
		b.WriteByte('\n')
		b.WriteString("  " + f.Input.View())
		if i < len(m.fields)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}
