package control

import (
	"time"

	tea "charm.land/bubbletea/v2"
)

// Scheduler delivers msg after d. The default is tea.Tick; tests record the
// request instead of sleeping.
type Scheduler func(d time.Duration, msg tea.Msg) tea.Cmd

// Tick is the production Scheduler.
func Tick(d time.Duration, msg tea.Msg) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

// PollHandle owns one recurring poll loop. Ticks carry the generation they
// were scheduled under; a tick whose generation is no longer current belongs
// to a cancelled loop and must be dropped, which ends that loop.
type PollHandle struct {
	gen    uint64
	active bool
}

// Acquire cancels any running loop and returns the generation of a new one.
func (h *PollHandle) Acquire() uint64 {
	h.gen++
	h.active = true
	return h.gen
}

// Release cancels the running loop, if any. Idempotent.
func (h *PollHandle) Release() {
	if !h.active {
		return
	}
	h.gen++
	h.active = false
}

// Owns reports whether gen is the live loop.
func (h *PollHandle) Owns(gen uint64) bool {
	return h.active && gen == h.gen
}

// Active reports whether a loop is running.
func (h *PollHandle) Active() bool { return h.active }
