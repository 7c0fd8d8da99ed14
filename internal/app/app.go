package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/google/uuid"

	"github.com/olivoil/botdeck/internal/backend"
	"github.com/olivoil/botdeck/internal/control"
	"github.com/olivoil/botdeck/internal/logging"
	"github.com/olivoil/botdeck/internal/ui"
	"github.com/olivoil/botdeck/internal/views/artifacts"
	"github.com/olivoil/botdeck/internal/views/command"
	"github.com/olivoil/botdeck/internal/views/liveview"
	"github.com/olivoil/botdeck/internal/views/logview"
	"github.com/olivoil/botdeck/internal/views/profiles"
	"github.com/olivoil/botdeck/internal/views/runform"
)

// Options configures Run.
type Options struct {
	Config backend.Config
	Logger *slog.Logger
	// ThemePath is the colors file; missing files fall back to the built-in
	// theme.
	ThemePath string
}

type sendFunc func(tea.Msg)

func (f sendFunc) Send(msg tea.Msg) { f(msg) }

// Run starts the TUI application.
func Run(opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ui.Apply(ui.LoadTheme(opts.ThemePath))

	var p *tea.Program
	sender := sendFunc(func(msg tea.Msg) { p.Send(msg) })

	clientID := uuid.NewString()
	channel := backend.NewChannel(opts.Config, clientID, sender, logger)
	client := backend.NewClient(opts.Config, nil)
	m := newModel(opts.Config, client, channel, clientID, logger)
	p = tea.NewProgram(m)
	defer m.session.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	channel.Start(ctx)
	defer channel.Close()

	dir := opts.Config.Transfer.ImportDir
	w, err := backend.NewWatcher(dir, p, logger)
	if err != nil {
		logger.Warn("archive watcher unavailable", "dir", dir, "error", err)
		go p.Send(NoticeMsg{Level: control.LevelWarning, Text: fmt.Sprintf("Not watching %s: %v", dir, err)})
	} else {
		defer w.Close()
	}

	logger.Info("starting", "server", client.BaseURL(), "client", clientID)
	_, err = p.Run()
	return err
}

// viewMode identifies which table is shown.
type viewMode int

const (
	viewProfiles viewMode = iota
	viewArtifacts
)

// model is the root application model.
type model struct {
	width    int
	height   int
	mode     viewMode
	ready    bool
	showHelp bool
	keys     KeyMap

	cfg     backend.Config
	log     *slog.Logger
	session *control.Session
	now     func() time.Time

	profilesView  profiles.Model
	artifactsView artifacts.Model
	logView       logview.Model
	liveView      liveview.Model
	runForm       runform.Model
	commandView   command.Model
}

func newModel(cfg backend.Config, api control.API, emitter control.Emitter, id string, logger *slog.Logger) model {
	s := control.NewSession(control.Options{
		API:              api,
		Emitter:          emitter,
		Logger:           logger.With("component", "session"),
		StatusInterval:   cfg.Poll.StatusInterval,
		SnapshotInterval: cfg.Poll.SnapshotInterval,
		DownloadDir:      cfg.Transfer.DownloadDir,
		ID:               id,
	})
	return model{
		mode:          viewProfiles,
		keys:          DefaultKeyMap(),
		cfg:           cfg,
		log:           logger,
		session:       s,
		now:           time.Now,
		profilesView:  profiles.New(),
		artifactsView: artifacts.New(cfg.Transfer.ImportDir),
		logView:       logview.New(),
		liveView:      liveview.New(),
		runForm:       runform.New(),
		commandView:   command.New(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.session.Init(),
		m.artifactsView.Load(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	mm := next.(model)
	mm.sync()
	return mm, cmd
}

func (m model) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case profiles.SubmitMsg:
		cmd := m.session.Dispatch(control.CreateProfile{Name: msg.Name, Username: msg.Username, Password: msg.Password})
		return m, cmd

	case control.ProfileSavedMsg:
		// The form keeps its input until the server accepts it.
		cmd := m.session.Update(msg)
		if msg.Err == nil {
			m.profilesView.ResetForm()
			m.profilesView.CloseForm()
		}
		return m, cmd

	case runform.SubmitMsg:
		cmd := m.session.Dispatch(control.StartRun{PostURL: msg.PostURL, Comment: msg.Comment, Count: msg.Count, Headless: msg.Headless})
		if m.session.Alert() == "" {
			m.runForm.Close()
		}
		return m, cmd

	case artifacts.ChooseMsg:
		return m, m.session.Dispatch(control.ChooseArchive{Path: msg.Path})

	case artifacts.LoadedMsg:
		if msg.Err != nil {
			m.log.Warn("list archives", "dir", m.artifactsView.Dir(), "error", msg.Err)
			return m, nil
		}
		m.artifactsView.SetArtifacts(msg.Artifacts)
		m.commandView.SetArchives(archiveHints(msg.Artifacts))
		return m, nil

	case backend.ArtifactsChangedMsg:
		return m, m.artifactsView.Load()

	case command.ExecuteMsg:
		cmd := m.execute(msg.Args)
		return m, cmd

	case command.RejectedMsg:
		m.notice(control.LevelWarning, msg.Err.Error())
		return m, nil

	case NoticeMsg:
		m.notice(msg.Level, msg.Text)
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	cmd := m.session.Update(msg)
	next, viewCmd := m.updateActiveView(msg)
	return next, tea.Batch(cmd, viewCmd)
}

// sync pushes session state into the views and lays them out.
func (m *model) sync() {
	m.layout()

	reg := m.session.Registry
	names := reg.Names()
	list := make([]backend.Profile, 0, len(names))
	for _, n := range names {
		if p, ok := reg.Get(n); ok {
			list = append(list, p)
		}
	}
	m.profilesView.SetProfiles(list)

	st := m.session.Status
	m.profilesView.SetState(profiles.State{
		Bound:     m.session.Profile(),
		Running:   st.Running(),
		Starting:  st.Starting(),
		LoggingIn: st.LoggingIn(),
		Task:      st.Task(),
	})
	m.commandView.SetProfiles(m.profileHints(names))
	m.commandView.SetSession(m.session.Binding.Bound(), st.Busy())
	m.artifactsView.SetChosen(m.session.Transfer.Selected())
	m.logView.Sync(m.session.Log)
	m.liveView.Sync(m.session.LiveView)
}

// layout sizes the panes: header, main pane, log pane, footer.
func (m *model) layout() (mainHeight, logHeight int) {
	content := m.height - 3 - m.commandView.MenuHeight()
	if content < 8 {
		content = 8
	}
	mainHeight = content * 3 / 5
	if m.session.LiveView.IsOpen() {
		mainHeight = content * 3 / 4
	}
	logHeight = content - mainHeight - 1

	m.profilesView.SetSize(m.width, mainHeight)
	m.artifactsView.SetSize(m.width, mainHeight)
	m.liveView.SetSize(m.width, mainHeight)
	m.runForm.SetWidth(min(m.width-4, 80))
	m.commandView.SetWidth(m.width)
	m.logView.SetSize(m.width, logHeight)
	return mainHeight, logHeight
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	// Modal states take every key.
	switch {
	case m.session.Alert() != "":
		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Enter, m.keys.Back):
			return m, m.session.Dispatch(control.DismissAlert{})
		}
		return m, nil

	case m.session.Registry.PendingDelete() != "":
		switch {
		case key.Matches(msg, m.keys.Confirm):
			return m, m.session.Dispatch(control.ConfirmDelete{})
		case key.Matches(msg, m.keys.Decline):
			return m, m.session.Dispatch(control.CancelDelete{})
		}
		return m, nil

	case m.showHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.showHelp = false
		}
		return m, nil

	case m.commandView.Focused():
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		if !m.commandView.Focused() {
			m.focusCurrentView()
		}
		return m, cmd

	case m.profilesView.FormOpen():
		var cmd tea.Cmd
		m.profilesView, cmd = m.profilesView.Update(msg)
		return m, cmd

	case m.runForm.IsOpen():
		var cmd tea.Cmd
		m.runForm, cmd = m.runForm.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		if m.session.LiveView.IsOpen() {
			return m, m.session.Dispatch(control.CloseLiveView{})
		}
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		switch m.mode {
		case viewProfiles:
			m.mode = viewArtifacts
		case viewArtifacts:
			m.mode = viewProfiles
		}
		m.focusCurrentView()
		return m, nil

	case key.Matches(msg, m.keys.Enter) && m.mode == viewProfiles:
		name := m.profilesView.SelectedName()
		if name == "" {
			return m, nil
		}
		return m, m.session.Dispatch(control.SelectProfile{Name: name})

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.profilesView.Blur()
		m.artifactsView.Blur()
		cmd := m.commandView.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.New):
		m.mode = viewProfiles
		m.focusCurrentView()
		cmd := m.profilesView.OpenForm()
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		if name := m.profilesView.SelectedName(); name != "" && m.mode == viewProfiles {
			return m, m.session.Dispatch(control.DeleteProfile{Name: name})
		}
		return m, nil

	case key.Matches(msg, m.keys.Run):
		cmd := m.openRunForm()
		return m, cmd

	case key.Matches(msg, m.keys.Login):
		return m, m.session.Dispatch(control.StartLogin{})

	case key.Matches(msg, m.keys.Live):
		return m, m.toggleLiveView()

	case key.Matches(msg, m.keys.Export):
		return m, m.session.Dispatch(control.ExportSession{})

	case key.Matches(msg, m.keys.Import):
		return m, m.session.Dispatch(control.ImportSession{})

	case key.Matches(msg, m.keys.Clear):
		return m, m.session.Dispatch(control.ClearLogs{})

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.session.Dispatch(control.RefreshProfiles{}), m.artifactsView.Load())

	case key.Matches(msg, m.keys.LogUp, m.keys.LogDown):
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}

	return m.updateActiveView(msg)
}

func (m *model) openRunForm() tea.Cmd {
	if !m.session.Binding.Bound() {
		// Reports the missing profile through the alert.
		return m.session.Dispatch(control.StartRun{})
	}
	return m.runForm.Open()
}

func (m *model) toggleLiveView() tea.Cmd {
	if m.session.LiveView.IsOpen() {
		return m.session.Dispatch(control.CloseLiveView{})
	}
	return m.session.Dispatch(control.OpenLiveView{})
}

func (m *model) focusCurrentView() {
	switch m.mode {
	case viewProfiles:
		m.artifactsView.Blur()
		m.profilesView.Focus()
	case viewArtifacts:
		m.profilesView.Blur()
		m.artifactsView.Focus()
	}
}

// updateActiveView forwards non-key traffic, such as cursor blinks, to
// whatever has focus.
func (m model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.commandView.Focused():
		m.commandView, cmd = m.commandView.Update(msg)
	case m.profilesView.FormOpen():
		m.profilesView, cmd = m.profilesView.Update(msg)
	case m.runForm.IsOpen():
		m.runForm, cmd = m.runForm.Update(msg)
	case m.mode == viewProfiles:
		m.profilesView, cmd = m.profilesView.Update(msg)
	case m.mode == viewArtifacts:
		m.artifactsView, cmd = m.artifactsView.Update(msg)
	}
	return m, cmd
}

// execute runs a command line entry.
func (m *model) execute(args []string) tea.Cmd {
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	apply := func(c control.Command) tea.Cmd {
		m.commandView.Blur()
		m.focusCurrentView()
		return m.session.Dispatch(c)
	}

	switch args[0] {
	case "select":
		return apply(control.SelectProfile{Name: arg(1)})

	case "profile":
		switch arg(1) {
		case "new":
			m.commandView.Blur()
			m.mode = viewProfiles
			return m.profilesView.OpenForm()
		case "delete":
			name := arg(2)
			if name == "" {
				name = m.profilesView.SelectedName()
			}
			if name == "" {
				return m.reject("usage: profile delete <name>")
			}
			return apply(control.DeleteProfile{Name: name})
		}
		return m.reject("usage: profile new | profile delete [name]")

	case "run":
		if len(args) == 1 {
			m.commandView.Blur()
			return m.openRunForm()
		}
		return apply(parseRun(args[1:]))

	case "login":
		return apply(control.StartLogin{})

	case "live":
		switch arg(1) {
		case "on":
			return apply(control.OpenLiveView{})
		case "off":
			return apply(control.CloseLiveView{})
		}
		m.commandView.Blur()
		return m.toggleLiveView()

	case "export":
		return apply(control.ExportSession{})

	case "import":
		return apply(control.ImportSession{Path: strings.Join(args[1:], " ")})

	case "logs":
		if arg(1) == "clear" {
			return apply(control.ClearLogs{})
		}
		return m.reject("usage: logs clear")

	case "refresh":
		return tea.Batch(apply(control.RefreshProfiles{}), m.artifactsView.Load())

	case "help":
		m.commandView.Blur()
		m.focusCurrentView()
		m.showHelp = true

	case "version":
		m.commandView.Blur()
		m.focusCurrentView()
		m.notice(control.LevelSystem, fmt.Sprintf("%s %s", AppName, AppVersion))

	case "quit":
		return tea.Quit
	}
	return nil
}

// reject reports a command the parser accepted but execute cannot run.
func (m *model) reject(msg string) tea.Cmd {
	m.notice(control.LevelWarning, msg)
	return nil
}

// notice appends a client-side entry to the operator log.
func (m *model) notice(level control.Level, text string) {
	m.session.Log.Append(text, level, m.now().Format("15:04:05"))
}

func (m *model) profileHints(names []string) []command.Hint {
	st := m.session.Status
	hints := make([]command.Hint, len(names))
	for i, name := range names {
		h := command.Hint{Value: name}
		if p, ok := m.session.Registry.Get(name); ok {
			h.Note = p.Username
		}
		if name == m.session.Profile() {
			h.Note = "bound"
			switch {
			case st.Running():
				h.Note += " · running"
			case st.Starting():
				h.Note += " · starting"
			}
		}
		hints[i] = h
	}
	return hints
}

func archiveHints(list []backend.Artifact) []command.Hint {
	hints := make([]command.Hint, len(list))
	for i, a := range list {
		h := command.Hint{Value: a.Path, Note: backend.FormatBytes(a.Size)}
		if !a.Valid() {
			h.Note += " · unreadable"
			h.Warn = true
		}
		hints[i] = h
	}
	return hints
}

// parseRun reads "<url> [count] <comment...>".
func parseRun(args []string) control.StartRun {
	run := control.StartRun{Count: 1, Headless: true}
	if len(args) == 0 {
		return run
	}
	run.PostURL = args[0]
	rest := args[1:]
	if len(rest) > 0 {
		if n, err := strconv.Atoi(rest[0]); err == nil {
			run.Count = n
			rest = rest[1:]
		}
	}
	run.Comment = strings.Join(rest, " ")
	return run
}

func (m model) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.SetContent(m.render())
	return v
}

func (m model) render() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	mainHeight, logHeight := m.layout()
	contentHeight := mainHeight + logHeight + 1

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	switch {
	case m.session.Alert() != "":
		b.WriteString(m.renderDialog(contentHeight, m.session.Alert(), "enter to dismiss"))

	case m.session.Registry.PendingDelete() != "":
		text := fmt.Sprintf("Delete profile %q?\nIts saved login session is removed too.", m.session.Registry.PendingDelete())
		b.WriteString(m.renderDialog(contentHeight, text, "y delete · n cancel"))

	default:
		main := lipgloss.NewStyle().Height(mainHeight).MaxHeight(mainHeight)
		b.WriteString(main.Render(m.renderMain()))
		b.WriteByte('\n')
		b.WriteString(m.renderLogTitle())
		b.WriteByte('\n')
		b.WriteString(lipgloss.NewStyle().Height(logHeight).MaxHeight(logHeight).Render(m.logView.View()))
	}

	b.WriteByte('\n')
	if m.commandView.Focused() {
		b.WriteString(m.commandView.View())
	} else {
		b.WriteString(m.renderHelpLine())
	}
	return b.String()
}

func (m model) renderMain() string {
	if m.runForm.IsOpen() {
		return ui.StyleDialog.Render(m.runForm.View())
	}
	if m.liveView.Open() {
		return m.liveView.View(m.now())
	}
	switch m.mode {
	case viewArtifacts:
		return m.artifactsView.View()
	default:
		return m.profilesView.View()
	}
}

func (m model) renderDialog(height int, text, hint string) string {
	box := ui.StyleDialog.Render(text + "\n\n" + ui.StyleDim.Render(hint))
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, box)
}

func (m model) renderLogTitle() string {
	title := " Log "
	if t := m.session.Transfer; t.Exporting() || t.Importing() {
		title = " Log · transferring session "
	}
	fill := m.width - lipgloss.Width(title) - 3
	if fill < 0 {
		fill = 0
	}
	return ui.StyleDim.Render("───" + title + strings.Repeat("─", fill))
}

func (m model) renderHeader() string {
	title := ui.StyleHeader.Render(fmt.Sprintf(" %s ", AppName))

	profile := ui.StyleDim.Render("no profile")
	if p := m.session.Profile(); p != "" {
		profile = ui.StyleAccent.Render(p)
	}

	st := m.session.Status
	state := ui.RunBadge(st.Running(), st.Starting())
	if st.Running() && st.Task() != "" {
		state += " " + ui.StyleDim.Render(ui.Truncate(st.Task(), 40))
	}

	push := ui.StyleDim.Render("push: ") + ui.StyleInactive.Render("down")
	if m.session.Connected() {
		push = ui.StyleDim.Render("push: ") + ui.StyleActive.Render("up")
	}

	sep := ui.StyleDim.Render("   ")
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		title, sep, profile, sep, state, sep, push, sep, ui.StyleDim.Render(m.cfg.Server.URL),
	)

	bar := strings.Repeat("━", max(m.width, 0))
	return header + "\n" + ui.StyleDim.Render(bar)
}

func (m model) renderHelpLine() string {
	var parts []string
	switch {
	case m.profilesView.FormOpen(), m.runForm.IsOpen():
		parts = []string{"enter next", "tab move", "esc close"}
	case m.liveView.Open():
		parts = []string{"esc close live view", "r run", "l login", "/ command", "q quit"}
	case m.mode == viewArtifacts:
		parts = []string{"↑↓ navigate", "enter choose", "i import", "tab profiles", "/ command", "q quit"}
	default:
		parts = []string{"↑↓ navigate", "enter select", "n new", "r run", "v live", "tab archives", "? help", "q quit"}
	}
	return ui.StyleDim.Render(" " + strings.Join(parts, "  │  "))
}

func (m model) renderHelpOverlay() string {
	title := ui.StyleHeader.Render(fmt.Sprintf(" %s help ", AppName))
	help := `
  Navigation
    ↑/↓, j/k        Navigate list
    tab             Switch profiles ↔ session archives
    enter           Select profile / choose archive
    pgup/pgdn       Scroll the log
    esc             Close live view
    q, ctrl+c       Quit

  Profile
    n               New profile
    d               Delete profile
    r               Run the bot
    l               Manual login
    v               Toggle live view
    e               Export session archive
    i               Import the chosen archive
    x               Clear the log
    ctrl+l          Refresh profiles and status

  Command Line
    /               Open command line
    select <name>   Bind a profile
    run <url> [n] <comment>
    import [path]   Upload an archive
    live on|off     Live view
    ctrl+p/ctrl+n   Previous / next command

  ` + ui.StyleDim.Render("Press ? to close")
	return title + "\n" + help
}
