package control

import (
	"errors"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/botdeck/internal/backend"
)

// Registry is the client's copy of the profile directory.
type Registry struct {
	s *Session

	profiles      map[string]backend.Profile
	names         []string
	loaded        bool
	pendingDelete string
}

// Names returns the profile names in display order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the descriptor of name.
func (r *Registry) Get(name string) (backend.Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Has reports whether name is in the directory.
func (r *Registry) Has(name string) bool {
	_, ok := r.profiles[name]
	return ok
}

// Loaded reports whether a listing has succeeded at least once.
func (r *Registry) Loaded() bool { return r.loaded }

// List fetches the directory.
func (r *Registry) List() tea.Cmd {
	api, ctx := r.s.api, r.s.ctx
	return func() tea.Msg {
		profiles, err := api.Profiles(ctx)
		return ProfilesLoadedMsg{Profiles: profiles, Err: err}
	}
}

func (r *Registry) handleLoaded(msg ProfilesLoadedMsg) tea.Cmd {
	if msg.Err != nil {
		r.s.log.Warn("list profiles failed", "error", msg.Err)
		return nil
	}
	r.profiles = make(map[string]backend.Profile, len(msg.Profiles))
	r.names = r.names[:0]
	for name, p := range msg.Profiles {
		p.Name = name
		r.profiles[name] = p
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	r.loaded = true

	if bound := r.s.profile; bound != "" && !r.Has(bound) {
		r.s.log.Info("bound profile no longer listed", "profile", bound)
		cmd, _ := r.s.Binding.Select("")
		return cmd
	}
	return nil
}

// Create validates the fields and saves a new profile. Validation failures
// issue no request.
func (r *Registry) Create(name, username, password string) (tea.Cmd, error) {
	p := backend.NewProfile{
		Name:     strings.TrimSpace(name),
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}
	if p.Name == "" || p.Username == "" || p.Password == "" {
		return nil, invalid("Please fill all fields to save a profile.")
	}
	api, ctx := r.s.api, r.s.ctx
	return func() tea.Msg {
		return ProfileSavedMsg{Name: p.Name, Err: api.CreateProfile(ctx, p)}
	}, nil
}

func (r *Registry) handleSaved(msg ProfileSavedMsg) tea.Cmd {
	if msg.Err != nil {
		r.s.alert = "Error saving profile: " + errMessage(msg.Err)
		return nil
	}
	r.s.log.Info("profile saved", "profile", msg.Name)
	return r.List()
}

// RequestDelete arms the confirmation gate for name.
func (r *Registry) RequestDelete(name string) {
	r.pendingDelete = strings.TrimSpace(name)
}

// PendingDelete returns the profile awaiting confirmation, or "".
func (r *Registry) PendingDelete() string { return r.pendingDelete }

// CancelDelete disarms the confirmation gate.
func (r *Registry) CancelDelete() { r.pendingDelete = "" }

// ConfirmDelete issues the armed delete. Without a pending name it does
// nothing.
func (r *Registry) ConfirmDelete() tea.Cmd {
	name := r.pendingDelete
	r.pendingDelete = ""
	if name == "" {
		return nil
	}
	api, ctx := r.s.api, r.s.ctx
	return func() tea.Msg {
		return ProfileDeletedMsg{Name: name, Err: api.DeleteProfile(ctx, name)}
	}
}

// handleDeleted always re-lists: after a failure the true state is unknown.
func (r *Registry) handleDeleted(msg ProfileDeletedMsg) tea.Cmd {
	if msg.Err != nil {
		r.s.alert = "Error deleting profile: " + errMessage(msg.Err)
	} else {
		r.s.log.Info("profile deleted", "profile", msg.Name)
	}
	return r.List()
}

// errMessage strips the operation prefix from backend errors.
func errMessage(err error) string {
	var (
		re *backend.RemoteError
		te *backend.TransportError
	)
	switch {
	case errors.As(err, &re):
		return re.Message
	case errors.As(err, &te):
		return te.Err.Error()
	default:
		return err.Error()
	}
}
