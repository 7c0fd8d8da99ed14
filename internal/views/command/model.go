package command

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textinput"
	"charm.land/lipgloss/v2"

	"github.com/olivoil/botdeck/internal/ui"
)

const (
	menuRows    = 8
	historySize = 50
)

// ExecuteMsg asks the parent to run a parsed command line.
type ExecuteMsg struct {
	Args []string
}

// RejectedMsg reports a command line that failed to parse. The input stays in
// the prompt so it can be corrected.
type RejectedMsg struct {
	Input string
	Err   error
}

// Model is the command line and its completion menu.
type Model struct {
	input     textinput.Model
	completer *Completer
	focused   bool
	width     int

	candidates []Candidate
	selected   int // -1 = none

	history []string
	recall  int // == len(history) when not browsing
}

// New creates a new command model.
func New() Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type a command, help lists them"
	ti.CharLimit = 512

	return Model{
		input:     ti,
		completer: NewCompleter(),
		selected:  -1,
	}
}

// SetWidth updates the prompt width.
func (m *Model) SetWidth(w int) {
	m.width = w
	m.input.SetWidth(w - 4)
}

// SetProfiles updates the profiles offered as arguments.
func (m *Model) SetProfiles(hints []Hint) { m.completer.SetProfiles(hints) }

// SetArchives updates the archives offered to import.
func (m *Model) SetArchives(hints []Hint) { m.completer.SetArchives(hints) }

// SetSession flags commands the session would refuse.
func (m *Model) SetSession(bound, busy bool) { m.completer.SetSession(bound, busy) }

// Focus opens the prompt with every command listed.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	m.recall = len(m.history)
	m.updateCandidates()
	return m.input.Focus()
}

// Blur closes the prompt, keeping history.
func (m *Model) Blur() {
	m.focused = false
	m.candidates = nil
	m.selected = -1
	m.input.SetValue("")
	m.input.Blur()
}

// Focused returns whether the prompt is open.
func (m *Model) Focused() bool {
	return m.focused
}

// History returns past command lines, oldest first.
func (m *Model) History() []string { return m.history }

// Update handles key presses while the prompt is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	key := keyMsg.String()
	if len(m.candidates) > 0 {
		switch key {
		case "down":
			m.selected = (m.selected + 1) % len(m.candidates)
			return m, nil
		case "up":
			if m.selected <= 0 {
				m.selected = len(m.candidates)
			}
			m.selected--
			return m, nil
		case "tab":
			m.accept(max(m.selected, 0))
			return m, nil
		}
	}

	switch key {
	case "enter":
		if m.selected >= 0 && m.selected < len(m.candidates) {
			m.accept(m.selected)
			return m, nil
		}
		return m.submit()
	case "esc":
		m.Blur()
		return m, nil
	case "ctrl+p":
		m.browse(-1)
		return m, nil
	case "ctrl+n":
		m.browse(1)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.recall = len(m.history)
	m.updateCandidates()
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}
	args, err := Parse(input)
	if err != nil {
		m.candidates = nil
		m.selected = -1
		return m, func() tea.Msg { return RejectedMsg{Input: input, Err: err} }
	}
	m.remember(input)
	m.input.SetValue("")
	m.updateCandidates()
	return m, func() tea.Msg { return ExecuteMsg{Args: args} }
}

func (m *Model) remember(line string) {
	if n := len(m.history); n == 0 || m.history[n-1] != line {
		m.history = append(m.history, line)
		if len(m.history) > historySize {
			m.history = m.history[len(m.history)-historySize:]
		}
	}
	m.recall = len(m.history)
}

// browse steps through history; stepping past the newest entry clears the
// prompt.
func (m *Model) browse(step int) {
	next := m.recall + step
	if next < 0 || next > len(m.history) {
		return
	}
	m.recall = next
	if next == len(m.history) {
		m.input.SetValue("")
	} else {
		m.input.SetValue(m.history[next])
	}
	m.input.CursorEnd()
	m.candidates = nil
	m.selected = -1
}

func (m *Model) accept(idx int) {
	if idx < 0 || idx >= len(m.candidates) {
		return
	}
	c := m.candidates[idx]
	val := m.input.Value()
	parts := strings.Fields(val)
	if strings.HasSuffix(val, " ") || len(parts) == 0 {
		m.input.SetValue(val + c.Value + " ")
	} else {
		parts[len(parts)-1] = c.Value
		m.input.SetValue(strings.Join(parts, " ") + " ")
	}
	m.input.CursorEnd()
	m.updateCandidates()
}

func (m *Model) updateCandidates() {
	m.candidates = m.completer.Complete(m.input.Value())
	m.selected = -1
}

// MenuHeight returns the lines the completion menu takes above the prompt,
// border included.
func (m Model) MenuHeight() int {
	if !m.focused || len(m.candidates) == 0 {
		return 0
	}
	return min(len(m.candidates), menuRows) + 2
}

// View renders the completion menu above the prompt.
func (m Model) View() string {
	if !m.focused {
		return ""
	}
	if len(m.candidates) == 0 {
		return m.input.View()
	}
	return m.renderMenu() + "\n" + m.input.View()
}

func (m Model) renderMenu() string {
	shown := m.candidates
	if len(shown) > menuRows {
		shown = shown[:menuRows]
	}
	width := 0
	for _, c := range shown {
		width = max(width, lipgloss.Width(c.Value))
	}

	selected := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ui.T.Background)).Background(ui.ColorAccent)
	value := lipgloss.NewStyle().Foreground(ui.ColorWhite)

	rows := make([]string, len(shown))
	for i, c := range shown {
		name := fmt.Sprintf("%-*s", width, c.Value)
		desc := "  " + c.Desc
		switch {
		case i == m.selected:
			rows[i] = selected.Render(name + desc)
		case c.Warn:
			rows[i] = ui.StyleDim.Render(name) + ui.StyleWarning.Render(desc)
		default:
			rows[i] = value.Render(name) + ui.StyleDim.Render(desc)
		}
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorBorder).
		Padding(0, 1).
		Width(max(m.width-4, 40))
	return panel.Render(strings.Join(rows, "\n"))
}
