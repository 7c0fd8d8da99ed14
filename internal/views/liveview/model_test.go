package liveview

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/olivoil/botdeck/internal/control"
)

type fakeSource struct {
	open    bool
	target  string
	state   control.FrameState
	loading bool
	updated time.Time
	frame   image.Image
}

func (f *fakeSource) IsOpen() bool              { return f.open }
func (f *fakeSource) Target() string            { return f.target }
func (f *fakeSource) State() control.FrameState { return f.state }
func (f *fakeSource) Loading() bool             { return f.loading }
func (f *fakeSource) Updated() time.Time        { return f.updated }
func (f *fakeSource) Frame() image.Image        { return f.frame }

var now = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func frame() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	return img
}

func TestLiveViewClosed(t *testing.T) {
	m := New()
	m.Sync(&fakeSource{})
	assert.False(t, m.Open())
	assert.Empty(t, m.View(now))
}

func TestLiveViewConnecting(t *testing.T) {
	m := New()
	m.SetSize(40, 12)
	m.Sync(&fakeSource{open: true, target: "alice", loading: true})
	out := m.View(now)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "fetching")
	assert.Contains(t, out, "Connecting to browser")
}

func TestLiveViewOffline(t *testing.T) {
	m := New()
	m.SetSize(40, 12)
	m.Sync(&fakeSource{open: true, target: "alice", state: control.FrameOffline})
	assert.Contains(t, m.View(now), "OFFLINE")
}

func TestLiveViewFrameCached(t *testing.T) {
	src := &fakeSource{open: true, target: "alice", state: control.FrameShown, updated: now.Add(-3 * time.Second), frame: frame()}
	m := New()
	m.SetSize(40, 12)
	m.Sync(src)
	out := m.View(now)
	assert.Contains(t, out, "▀")
	assert.Contains(t, out, "updated 3s ago")
	first := m.rendered

	src.frame = nil
	m.Sync(src)
	assert.Equal(t, first, m.rendered)

	src.updated = now
	src.frame = frame()
	m.SetSize(20, 6)
	m.Sync(src)
	assert.NotEqual(t, first, m.rendered)
	assert.Equal(t, 3, strings.Count(m.rendered, "\n")+1)
}

func TestLiveViewDropsFrameOnClose(t *testing.T) {
	src := &fakeSource{open: true, target: "alice", state: control.FrameShown, updated: now, frame: frame()}
	m := New()
	m.SetSize(40, 12)
	m.Sync(src)
	assert.NotEmpty(t, m.rendered)

	m.Sync(&fakeSource{})
	assert.Empty(t, m.rendered)
}
