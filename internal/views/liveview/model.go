package liveview

import (
	"image"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/olivoil/botdeck/internal/control"
	"github.com/olivoil/botdeck/internal/ui"
)

// Source is the live view state the panel draws; *control.LiveView
// satisfies it.
type Source interface {
	IsOpen() bool
	Target() string
	State() control.FrameState
	Loading() bool
	Updated() time.Time
	Frame() image.Image
}

// Model renders the live view panel.
type Model struct {
	width   int
	height  int
	open    bool
	target  string
	state   control.FrameState
	loading bool
	updated time.Time

	// rendered frame, reused until the frame or the size changes
	frameAt  time.Time
	frameW   int
	frameH   int
	rendered string
}

// New creates a live view panel.
func New() Model {
	return Model{}
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Open reports whether the last synced live view was open.
func (m *Model) Open() bool { return m.open }

// Sync copies the live view state and re-renders the frame when it changed.
func (m *Model) Sync(lv Source) {
	m.open = lv.IsOpen()
	m.target = lv.Target()
	m.state = lv.State()
	m.loading = lv.Loading()
	m.updated = lv.Updated()

	if !m.open || m.state != control.FrameShown {
		m.rendered = ""
		m.frameAt = time.Time{}
		return
	}
	w, h := m.frameSize()
	if m.rendered != "" && m.frameAt.Equal(m.updated) && m.frameW == w && m.frameH == h {
		return
	}
	m.rendered = ui.RenderFrame(lv.Frame(), w, h)
	m.frameAt = m.updated
	m.frameW, m.frameH = w, h
}

func (m *Model) frameSize() (int, int) {
	return max(m.width-2, 1), max(m.height-3, 1)
}

// View renders the panel as of now.
func (m Model) View(now time.Time) string {
	if !m.open {
		return ""
	}

	var b strings.Builder
	b.WriteString(ui.StyleHeader.Render("Live View"))
	b.WriteString(ui.StyleDim.Render(" · " + m.target))
	switch {
	case m.loading:
		b.WriteString(ui.StyleDim.Render("  ⟳ fetching"))
	case !m.updated.IsZero():
		b.WriteString(ui.StyleDim.Render("  updated " + ui.FormatAge(m.updated, now)))
	}
	b.WriteString("\n\n")

	w, h := m.frameSize()
	switch m.state {
	case control.FrameShown:
		b.WriteString(m.rendered)
	case control.FrameOffline:
		b.WriteString(lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			ui.StyleOffline.Render("OFFLINE")))
	default:
		b.WriteString(lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center,
			ui.StyleDim.Render("Connecting to browser...")))
	}
	b.WriteString("\n" + ui.StyleDim.Render("esc close"))
	return b.String()
}
