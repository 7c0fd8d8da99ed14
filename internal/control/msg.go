package control

import (
	"image"

	"github.com/olivoil/botdeck/internal/backend"
)

// ProfilesLoadedMsg carries the result of a profile listing.
type ProfilesLoadedMsg struct {
	Profiles map[string]backend.Profile
	Err      error
}

// ProfileSavedMsg is sent when a create request completes.
type ProfileSavedMsg struct {
	Name string
	Err  error
}

// ProfileDeletedMsg is sent when a delete request completes.
type ProfileDeletedMsg struct {
	Name string
	Err  error
}

// StatusTickMsg triggers a periodic status poll.
type StatusTickMsg struct {
	Gen uint64
}

// StatusLoadedMsg carries a polled status for Profile.
type StatusLoadedMsg struct {
	Profile string
	Status  backend.Status
	Err     error
}

// RunStartedMsg is sent when a run request completes.
type RunStartedMsg struct {
	Profile string
	Err     error
}

// LoginStartedMsg is sent when a manual login request completes.
type LoginStartedMsg struct {
	Profile string
	Err     error
}

// SnapshotTickMsg triggers a live view frame fetch.
type SnapshotTickMsg struct {
	Gen uint64
}

// FrameLoadedMsg carries a fetched and decoded frame, or why there is none.
type FrameLoadedMsg struct {
	Gen     uint64
	Profile string
	Image   image.Image
	Err     error
}

// ExportDoneMsg is sent when a session download ends.
type ExportDoneMsg struct {
	Profile string
	Export  backend.Export
	Err     error
}

// ImportDoneMsg is sent when a session upload ends.
type ImportDoneMsg struct {
	Profile string
	Path    string
	Message string
	Err     error
}
