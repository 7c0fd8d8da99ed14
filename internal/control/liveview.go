package control

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	tea "charm.land/bubbletea/v2"
	_ "golang.org/x/image/webp"
)

// FrameState is what the live view surface shows.
type FrameState int

const (
	// FrameNone: no fetch has completed since the view opened.
	FrameNone FrameState = iota
	// FrameShown: the last fetch decoded and its frame is displayed.
	FrameShown
	// FrameOffline: the last fetch failed; no frame is displayed.
	FrameOffline
)

func (s FrameState) String() string {
	switch s {
	case FrameShown:
		return "shown"
	case FrameOffline:
		return "offline"
	default:
		return "none"
	}
}

// LiveView pulls snapshots of the bot's screen while the viewer is open.
// A frame is only committed once it has been fully fetched and decoded.
type LiveView struct {
	s *Session

	handle  PollHandle
	target  string
	loading bool

	state   FrameState
	frame   image.Image
	updated time.Time
}

// Open shows the viewer for the bound profile, replacing any running loop.
func (v *LiveView) Open() (tea.Cmd, error) {
	profile := v.s.profile
	if profile == "" {
		return nil, invalid("Please select an account profile first to use Live View.")
	}
	gen := v.handle.Acquire()
	v.target = profile
	v.loading = false
	v.state = FrameNone
	v.frame = nil
	v.s.log.Debug("live view opened", "profile", profile, "gen", gen)
	return tea.Batch(v.fetch(gen), v.s.schedule(v.s.snapshotInterval, SnapshotTickMsg{Gen: gen})), nil
}

// Close stops polling and drops the frame. Closing a closed view does nothing.
func (v *LiveView) Close() {
	if !v.handle.Active() {
		return
	}
	v.handle.Release()
	v.s.log.Debug("live view closed", "profile", v.target)
	v.target = ""
	v.loading = false
	v.state = FrameNone
	v.frame = nil
}

// IsOpen reports whether the viewer is open.
func (v *LiveView) IsOpen() bool { return v.handle.Active() }

// Target returns the profile being watched.
func (v *LiveView) Target() string { return v.target }

// Loading reports whether a fetch is outstanding.
func (v *LiveView) Loading() bool { return v.loading }

// State returns what the surface shows.
func (v *LiveView) State() FrameState { return v.state }

// Frame returns the committed frame, or nil unless State is FrameShown.
func (v *LiveView) Frame() image.Image { return v.frame }

// Updated returns when the committed frame arrived.
func (v *LiveView) Updated() time.Time { return v.updated }

func (v *LiveView) handleTick(msg SnapshotTickMsg) tea.Cmd {
	if !v.handle.Owns(msg.Gen) {
		return nil
	}
	next := v.s.schedule(v.s.snapshotInterval, msg)
	if v.loading {
		return next
	}
	return tea.Batch(v.fetch(msg.Gen), next)
}

func (v *LiveView) fetch(gen uint64) tea.Cmd {
	if !v.handle.Owns(gen) {
		return nil
	}
	v.loading = true
	profile := v.target
	token := v.s.now().UnixMilli()
	api, ctx := v.s.api, v.s.ctx
	return func() tea.Msg {
		data, err := api.Screenshot(ctx, profile, token)
		if err != nil {
			return FrameLoadedMsg{Gen: gen, Profile: profile, Err: err}
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return FrameLoadedMsg{Gen: gen, Profile: profile, Err: fmt.Errorf("decode frame: %w", err)}
		}
		return FrameLoadedMsg{Gen: gen, Profile: profile, Image: img}
	}
}

func (v *LiveView) handleFrame(msg FrameLoadedMsg) {
	if !v.handle.Owns(msg.Gen) || msg.Profile != v.target {
		v.s.log.Debug("dropping frame", "profile", msg.Profile, "gen", msg.Gen)
		return
	}
	v.loading = false
	if msg.Err != nil || msg.Image == nil {
		v.s.log.Debug("frame unavailable", "profile", msg.Profile, "error", msg.Err)
		v.state = FrameOffline
		v.frame = nil
		return
	}
	v.state = FrameShown
	v.frame = msg.Image
	v.updated = v.s.now()
}
