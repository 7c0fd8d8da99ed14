package control

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/botdeck/internal/backend"
)

// Binding ties the session to at most one profile room on the push channel.
// It is the only writer of the bound profile.
type Binding struct {
	s *Session
}

// Bound reports whether a profile is bound.
func (b *Binding) Bound() bool { return b.s.profile != "" }

// Select rebinds to name; "" unbinds. Switching emits leave for the old room
// before join for the new one. Once the directory is loaded, a name it does
// not list is refused before anything is emitted.
func (b *Binding) Select(name string) (tea.Cmd, error) {
	name = strings.TrimSpace(name)
	prev := b.s.profile
	if name == prev {
		return nil, nil
	}
	if name != "" && b.s.Registry.Loaded() && !b.s.Registry.Has(name) {
		return nil, invalid("Unknown profile: " + name)
	}

	if prev != "" {
		b.s.emit.Emit(backend.EventLeave, backend.RoomMsg{Profile: prev})
	}
	b.s.profile = name
	b.s.Status.reset()
	b.s.LiveView.Close()
	b.s.Registry.CancelDelete()
	b.s.log.Info("profile bound", "profile", name, "previous", prev)

	if name == "" {
		b.s.Status.stopPolling()
		return nil, nil
	}

	b.s.emit.Emit(backend.EventJoin, backend.RoomMsg{Profile: name})
	b.s.Log.Clear()
	b.s.system("Switched to account: " + name)
	return b.s.Status.startPolling(), nil
}
