// Package control keeps the operator's view of the bot consistent with the
// server. A Session binds one profile at a time to the push channel,
// reconciles push events with periodic status polls, drives the live view and
// the session transfer actions, and owns the operator log.
//
// Everything here runs on the Bubble Tea event loop: state changes only in
// Update and Dispatch, and network work is returned as tea.Cmd whose result
// comes back as a message.
package control

import (
	"context"
	"errors"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/olivoil/botdeck/internal/backend"
	"github.com/olivoil/botdeck/internal/logging"
)

const timestampLayout = "15:04:05"

// API is the bot server surface the session consumes.
type API interface {
	Profiles(ctx context.Context) (map[string]backend.Profile, error)
	CreateProfile(ctx context.Context, p backend.NewProfile) error
	DeleteProfile(ctx context.Context, name string) error
	Status(ctx context.Context, profile string) (backend.Status, error)
	Run(ctx context.Context, req backend.RunRequest) error
	Login(ctx context.Context, profile string) error
	Screenshot(ctx context.Context, profile string, token int64) ([]byte, error)
	ExportSession(ctx context.Context, profile, dir string) (backend.Export, error)
	ImportSession(ctx context.Context, profile, path string) (string, error)
}

// Emitter sends push channel events in call order without blocking.
type Emitter interface {
	Emit(event string, payload any)
}

// Options configures a Session.
type Options struct {
	API     API
	Emitter Emitter
	Logger  *slog.Logger

	StatusInterval   time.Duration
	SnapshotInterval time.Duration
	DownloadDir      string

	// ID identifies this client on the push channel; generated when empty.
	ID       string
	Now      func() time.Time
	Schedule Scheduler
}

// Session is the per-client context shared by the components. The bound
// profile is the only state they share and only Binding writes it.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	api      API
	emit     Emitter
	log      *slog.Logger
	now      func() time.Time
	schedule Scheduler

	statusInterval   time.Duration
	snapshotInterval time.Duration
	downloadDir      string

	profile   string
	alert     string
	connected bool

	Registry *Registry
	Binding  *Binding
	Status   *Reconciler
	Log      *LogStream
	LiveView *LiveView
	Transfer *Transfer
}

// NewSession builds a session from opts.
func NewSession(opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:               opts.ID,
		ctx:              ctx,
		cancel:           cancel,
		api:              opts.API,
		emit:             opts.Emitter,
		log:              opts.Logger,
		now:              opts.Now,
		schedule:         opts.Schedule,
		statusInterval:   opts.StatusInterval,
		snapshotInterval: opts.SnapshotInterval,
		downloadDir:      opts.DownloadDir,
		Log:              &LogStream{},
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.schedule == nil {
		s.schedule = Tick
	}
	if s.statusInterval <= 0 {
		s.statusInterval = backend.DefaultStatusInterval
	}
	if s.snapshotInterval <= 0 {
		s.snapshotInterval = backend.DefaultSnapshotInterval
	}
	if s.emit == nil {
		s.emit = nopEmitter{}
	}

	s.Registry = &Registry{s: s}
	s.Binding = &Binding{s: s}
	s.Status = &Reconciler{s: s}
	s.LiveView = &LiveView{s: s}
	s.Transfer = &Transfer{s: s}
	return s
}

// ID returns the client identifier.
func (s *Session) ID() string { return s.id }

// Profile returns the bound profile, or "" when unbound.
func (s *Session) Profile() string { return s.profile }

// Connected reports the last known push channel state.
func (s *Session) Connected() bool { return s.connected }

// Alert returns the pending blocking alert, if any.
func (s *Session) Alert() string { return s.alert }

// DismissAlert closes the pending alert.
func (s *Session) DismissAlert() { s.alert = "" }

// Init loads the profile directory.
func (s *Session) Init() tea.Cmd {
	return s.Registry.List()
}

// Close cancels in-flight requests.
func (s *Session) Close() {
	s.cancel()
}

// Dispatch applies an operator command.
func (s *Session) Dispatch(c Command) tea.Cmd {
	switch c := c.(type) {
	case SelectProfile:
		return s.report(s.Binding.Select(c.Name))
	case RefreshProfiles:
		return tea.Batch(s.Registry.List(), s.Status.Poll())
	case CreateProfile:
		return s.report(s.Registry.Create(c.Name, c.Username, c.Password))
	case DeleteProfile:
		s.Registry.RequestDelete(c.Name)
	case ConfirmDelete:
		return s.Registry.ConfirmDelete()
	case CancelDelete:
		s.Registry.CancelDelete()
	case StartRun:
		return s.report(s.Status.Start(c))
	case StartLogin:
		return s.report(s.Status.Login())
	case OpenLiveView:
		return s.report(s.LiveView.Open())
	case CloseLiveView:
		s.LiveView.Close()
	case ExportSession:
		return s.report(s.Transfer.Export())
	case ChooseArchive:
		s.Transfer.Select(c.Path)
	case ImportSession:
		return s.report(s.Transfer.Import(c.Path))
	case ClearLogs:
		s.Log.Clear()
		s.system("Logs cleared.")
	case DismissAlert:
		s.DismissAlert()
	}
	return nil
}

// Update routes a result, tick or push message to its component.
func (s *Session) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ProfilesLoadedMsg:
		return s.Registry.handleLoaded(msg)
	case ProfileSavedMsg:
		return s.Registry.handleSaved(msg)
	case ProfileDeletedMsg:
		return s.Registry.handleDeleted(msg)

	case StatusTickMsg:
		return s.Status.handleTick(msg)
	case StatusLoadedMsg:
		return s.Status.handleStatus(msg)
	case RunStartedMsg:
		return s.Status.handleRunStarted(msg)
	case LoginStartedMsg:
		return s.Status.handleLoginStarted(msg)

	case SnapshotTickMsg:
		return s.LiveView.handleTick(msg)
	case FrameLoadedMsg:
		s.LiveView.handleFrame(msg)

	case ExportDoneMsg:
		s.Transfer.handleExport(msg)
	case ImportDoneMsg:
		s.Transfer.handleImport(msg)

	case backend.LogEvent:
		s.handleLogEvent(msg)
	case backend.FinishedEvent:
		s.Status.handleFinished(msg)
	case backend.ConnectionEvent:
		s.connected = msg.Connected
	}
	return nil
}

func (s *Session) handleLogEvent(ev backend.LogEvent) {
	if ev.Profile != "" && ev.Profile != s.profile {
		s.log.Debug("dropping log event", "profile", ev.Profile, "bound", s.profile, "error", ErrStaleEvent)
		return
	}
	ts := ev.Timestamp
	if ts == "" {
		ts = s.timestamp()
	}
	s.Log.Append(ev.Message, ParseLevel(ev.Level), ts)
}

// report turns a synchronous validation failure into an alert.
func (s *Session) report(cmd tea.Cmd, err error) tea.Cmd {
	if err != nil {
		s.fail(err)
	}
	return cmd
}

func (s *Session) fail(err error) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		s.alert = ve.Message
		return
	}
	s.alert = Describe(err)
}

func (s *Session) system(msg string) {
	s.Log.Append(msg, LevelSystem, s.timestamp())
}

func (s *Session) logf(level Level, msg string) {
	s.Log.Append(msg, level, s.timestamp())
}

func (s *Session) timestamp() string {
	return s.now().Format(timestampLayout)
}

type nopEmitter struct{}

func (nopEmitter) Emit(string, any) {}
