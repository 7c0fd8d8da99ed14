package control

// Command is an operator action fed to Session.Dispatch.
type Command interface {
	command()
}

// SelectProfile binds the client to a profile; an empty Name unbinds.
type SelectProfile struct{ Name string }

// RefreshProfiles re-lists the profile directory.
type RefreshProfiles struct{}

// CreateProfile saves a new profile.
type CreateProfile struct {
	Name     string
	Username string
	Password string
}

// DeleteProfile asks for confirmation before deleting Name.
type DeleteProfile struct{ Name string }

// ConfirmDelete issues the pending delete.
type ConfirmDelete struct{}

// CancelDelete drops the pending delete.
type CancelDelete struct{}

// StartRun starts the bot for the bound profile.
type StartRun struct {
	PostURL  string
	Comment  string
	Count    int
	Headless bool
}

// StartLogin opens a manual login setup for the bound profile.
type StartLogin struct{}

// OpenLiveView opens the live view for the bound profile.
type OpenLiveView struct{}

// CloseLiveView closes the live view.
type CloseLiveView struct{}

// ExportSession downloads the session artifact of the bound profile.
type ExportSession struct{}

// ChooseArchive selects the archive a later ImportSession uploads.
type ChooseArchive struct{ Path string }

// ImportSession uploads the archive at Path into the bound profile. An empty
// Path uploads the chosen archive.
type ImportSession struct{ Path string }

// ClearLogs wipes the operator log.
type ClearLogs struct{}

// DismissAlert closes the blocking alert.
type DismissAlert struct{}

func (SelectProfile) command()   {}
func (RefreshProfiles) command() {}
func (CreateProfile) command()   {}
func (DeleteProfile) command()   {}
func (ConfirmDelete) command()   {}
func (CancelDelete) command()    {}
func (StartRun) command()        {}
func (StartLogin) command()      {}
func (OpenLiveView) command()    {}
func (CloseLiveView) command()   {}
func (ExportSession) command()   {}
func (ChooseArchive) command()   {}
func (ImportSession) command()   {}
func (ClearLogs) command()       {}
func (DismissAlert) command()    {}
