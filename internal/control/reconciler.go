package control

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/olivoil/botdeck/internal/backend"
)

// Reconciler merges bot_finished pushes with periodic status polls into one
// run state for the bound profile. Only edges are visible: a report that
// matches what is displayed changes nothing.
type Reconciler struct {
	s *Session

	poll PollHandle

	running bool
	task    string
	// starting is set while a run request is in flight.
	starting bool
	// loggingIn is set while a manual login request is in flight.
	loggingIn bool
}

// Running reports whether the bound profile's bot is displayed as running.
func (r *Reconciler) Running() bool { return r.running }

// Task returns the current task reported by the last poll.
func (r *Reconciler) Task() string { return r.task }

// Starting reports whether a run request is in flight.
func (r *Reconciler) Starting() bool { return r.starting }

// Busy reports whether the bound profile is running or about to.
func (r *Reconciler) Busy() bool { return r.running || r.starting }

// Polling reports whether the status poll loop is active.
func (r *Reconciler) Polling() bool { return r.poll.Active() }

func (r *Reconciler) reset() {
	r.running = false
	r.task = ""
	r.starting = false
	r.loggingIn = false
}

// startPolling replaces any running poll loop, polls now, and schedules the
// next tick.
func (r *Reconciler) startPolling() tea.Cmd {
	gen := r.poll.Acquire()
	return tea.Batch(r.Poll(), r.s.schedule(r.s.statusInterval, StatusTickMsg{Gen: gen}))
}

func (r *Reconciler) stopPolling() {
	r.poll.Release()
}

// Poll fetches the authoritative status of the bound profile.
func (r *Reconciler) Poll() tea.Cmd {
	profile := r.s.profile
	if profile == "" {
		return nil
	}
	api, ctx := r.s.api, r.s.ctx
	return func() tea.Msg {
		st, err := api.Status(ctx, profile)
		return StatusLoadedMsg{Profile: profile, Status: st, Err: err}
	}
}

func (r *Reconciler) handleTick(msg StatusTickMsg) tea.Cmd {
	if !r.poll.Owns(msg.Gen) {
		return nil
	}
	return tea.Batch(r.Poll(), r.s.schedule(r.s.statusInterval, msg))
}

func (r *Reconciler) handleStatus(msg StatusLoadedMsg) tea.Cmd {
	if msg.Profile != r.s.profile {
		r.s.log.Debug("dropping status", "profile", msg.Profile, "bound", r.s.profile, "error", ErrStaleEvent)
		return nil
	}
	if msg.Err != nil {
		r.s.log.Warn("status poll failed", "profile", msg.Profile, "error", msg.Err)
		return nil
	}
	r.observe(msg.Status)
	return nil
}

func (r *Reconciler) observe(st backend.Status) {
	switch {
	case st.Running && !r.running:
		r.running = true
		r.starting = false
		r.task = st.CurrentTask
		if r.task != "" {
			r.s.system("Bot is active: " + r.task)
		} else {
			r.s.system("Bot is active")
		}
		r.s.system("Live View enabled. Press v to monitor progress.")
	case !st.Running && r.running:
		r.running = false
		r.task = ""
		r.s.system("Detected bot idle. UI reset.")
		r.s.LiveView.Close()
	case st.Running:
		r.task = st.CurrentTask
	}
}

func (r *Reconciler) handleFinished(ev backend.FinishedEvent) {
	if ev.Profile != r.s.profile {
		r.s.log.Debug("dropping bot_finished", "profile", ev.Profile, "bound", r.s.profile, "error", ErrStaleEvent)
		return
	}
	if !r.Busy() {
		return
	}
	r.running = false
	r.starting = false
	r.task = ""
	r.s.system("Process finished.")
	r.s.LiveView.Close()
}

// Start asks the server to run the bot for the bound profile. The run state
// only flips once a poll confirms it.
func (r *Reconciler) Start(c StartRun) (tea.Cmd, error) {
	profile := r.s.profile
	if profile == "" {
		return nil, invalid("Please select an account profile first.")
	}
	req := backend.RunRequest{
		PostURL:     strings.TrimSpace(c.PostURL),
		Comment:     strings.TrimSpace(c.Comment),
		Count:       c.Count,
		Headless:    c.Headless,
		ProfileName: profile,
	}
	if req.PostURL == "" || req.Comment == "" {
		return nil, invalid("Please enter a post URL and a comment.")
	}
	if r.Busy() {
		return nil, invalid("Bot is already running.")
	}
	if req.Count < 1 {
		req.Count = 1
	}

	r.starting = true
	r.s.system("Starting bot for: " + req.PostURL + " [Profile: " + profile + "]")
	api, ctx := r.s.api, r.s.ctx
	return func() tea.Msg {
		return RunStartedMsg{Profile: profile, Err: api.Run(ctx, req)}
	}, nil
}

func (r *Reconciler) handleRunStarted(msg RunStartedMsg) tea.Cmd {
	if msg.Profile != r.s.profile {
		return nil
	}
	r.starting = false
	if msg.Err != nil {
		r.s.logf(LevelError, Describe(msg.Err))
		if r.running {
			r.running = false
			r.task = ""
			r.s.LiveView.Close()
		}
		return nil
	}
	return r.Poll()
}

// LoggingIn reports whether a manual login request is in flight.
func (r *Reconciler) LoggingIn() bool { return r.loggingIn }

// Login opens a manual login browser for the bound profile.
func (r *Reconciler) Login() (tea.Cmd, error) {
	profile := r.s.profile
	if profile == "" {
		return nil, invalid("Please select an account profile first.")
	}
	if r.Busy() {
		return nil, invalid("Bot is already running.")
	}
	if r.loggingIn {
		return nil, nil
	}

	r.loggingIn = true
	r.s.system("Opening manual login for: " + profile)
	api, ctx := r.s.api, r.s.ctx
	return func() tea.Msg {
		return LoginStartedMsg{Profile: profile, Err: api.Login(ctx, profile)}
	}, nil
}

func (r *Reconciler) handleLoginStarted(msg LoginStartedMsg) tea.Cmd {
	if msg.Profile != r.s.profile {
		return nil
	}
	r.loggingIn = false
	if msg.Err != nil {
		r.s.logf(LevelError, Describe(msg.Err))
		return nil
	}
	return r.Poll()
}
