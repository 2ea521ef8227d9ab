// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/session"
	"github.com/jeranaias/microstep-tui/internal/state"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/ui/views"
)

// Shell notices.
const (
	msgSessionExpired = "Your session has expired. Please log in again."
	msgSignedOutElse  = "You were signed out from another window."
	msgSignedOut      = "Signed out. See you soon! 👋"
)

// Screen is the top-level route.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenMain
)

// String returns the screen name used in logs.
func (s Screen) String() string {
	switch s {
	case ScreenLogin:
		return "login"
	case ScreenRegister:
		return "register"
	case ScreenMain:
		return "main"
	default:
		return "unknown"
	}
}

// Authenticator is the auth client as the shell uses it.
// *api.AuthService satisfies it.
type Authenticator interface {
	views.AuthAPI
	CurrentUser() (model.Identity, error)
	IsAuthenticated() bool
	Logout() error
}

// Options configures the shell.
type Options struct {
	Tasks views.TaskAPI
	// Auth and Session are nil in single-user mode.
	Auth    Authenticator
	Session *session.Store
	Theme   *styles.Theme

	SingleUser          bool
	Now                 func() time.Time
	Timeout             time.Duration
	FocusCount          int
	DigestStyle         string
	CelebrationDuration time.Duration
}

// sessionEventMsg wraps an event from the session store.
type sessionEventMsg session.Event

// Model is the root Bubble Tea model. It owns the snapshot and routes
// between the unauthenticated forms and the four content views.
type Model struct {
	opts Options
	deps *views.Deps
	keys KeyMap

	screen Screen
	tab    components.Tab
	snap   state.Snapshot

	dashboard views.Dashboard
	tasks     views.Tasks
	nudges    views.Nudges
	stats     views.Stats
	login     views.AuthForm
	register  views.AuthForm

	toasts      *components.ToastManager
	celebration components.Celebration

	// startup holds the mount command decided in New, returned by Init.
	startup  tea.Cmd
	quitting bool
}

// New builds the shell and decides the starting screen without touching
// the network: single-user mode goes straight in with the fixed identity,
// otherwise a stored unexpired token is decoded for display.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	deps := &views.Deps{
		Tasks:       opts.Tasks,
		Theme:       opts.Theme,
		Now:         opts.Now,
		Timeout:     opts.Timeout,
		FocusCount:  opts.FocusCount,
		DigestStyle: opts.DigestStyle,
	}
	if opts.Auth != nil {
		deps.Auth = opts.Auth
	}

	toasts := components.NewToastManager()
	toasts.SetClock(opts.Now)

	celebration := components.NewCelebration()
	if opts.CelebrationDuration > 0 {
		celebration.Duration = opts.CelebrationDuration
	}

	m := Model{
		opts:        opts,
		deps:        deps,
		keys:        DefaultKeyMap(),
		screen:      ScreenLogin,
		dashboard:   views.NewDashboard(deps),
		tasks:       views.NewTasks(deps),
		nudges:      views.NewNudges(deps),
		stats:       views.NewStats(deps),
		login:       views.NewLogin(deps),
		register:    views.NewRegister(deps),
		toasts:      toasts,
		celebration: celebration,
	}

	switch {
	case opts.SingleUser:
		m.startup = m.enter(model.StaticIdentity())
	case opts.Auth != nil && opts.Auth.IsAuthenticated():
		id, err := opts.Auth.CurrentUser()
		if err != nil {
			_ = opts.Auth.Logout()
			break
		}
		m.startup = m.enter(id)
	case opts.Auth != nil && opts.Session != nil && opts.Session.HasToken():
		// Expired or undecodable.
		log.Printf("SESSION_DISCARDED | reason=invalid_or_expired")
		_ = opts.Auth.Logout()
	}
	return m
}

// Screen returns the current route.
func (m Model) Screen() Screen { return m.screen }

// Tab returns the active content view.
func (m Model) Tab() components.Tab { return m.tab }

// Snapshot returns the data the views render.
func (m Model) Snapshot() state.Snapshot { return m.snap }

// Toasts returns the visible toasts.
func (m Model) Toasts() []components.Toast { return m.toasts.Toasts() }

// Celebration returns the completion modal state.
func (m Model) Celebration() components.Celebration { return m.celebration }

// Init starts the toast ticker, the session listener and the first mount.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{components.ToastTickCmd(), m.startup}
	if m.opts.Session != nil {
		cmds = append(cmds, waitForSession(m.opts.Session))
	}
	if m.screen != ScreenMain {
		cmds = append(cmds, m.login.Init())
	}
	return tea.Batch(cmds...)
}

// waitForSession delivers the next session store event.
func waitForSession(s *session.Store) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-s.Events()
		if !ok {
			return nil
		}
		return sessionEventMsg(ev)
	}
}

// enter switches to the authenticated tree as id and mounts the dashboard.
func (m *Model) enter(id model.Identity) tea.Cmd {
	m.snap = state.New(id)
	m.screen = ScreenMain
	log.Printf("SESSION_ACTIVE | user=%s source=%s", id.UserID, id.Source)
	return m.switchTab(components.TabDashboard)
}

// leave clears the identity and shows the login form.
func (m *Model) leave(notice string) {
	m.snap = state.New(model.Identity{})
	m.screen = ScreenLogin
	m.login = views.NewLogin(m.deps)
	m.register = views.NewRegister(m.deps)
	m.celebration = m.celebration.Dismiss()
	if notice != "" {
		m.toasts.AddStatus(notice)
	}
}

// switchTab activates t and runs its load-on-mount.
func (m *Model) switchTab(t components.Tab) tea.Cmd {
	m.tab = t
	var cmd tea.Cmd
	switch t {
	case components.TabDashboard:
		m.dashboard, cmd = m.dashboard.Mount()
	case components.TabTasks:
		m.tasks, cmd = m.tasks.Mount()
	case components.TabNudges:
		m.nudges, m.snap, cmd = m.nudges.Mount(m.snap)
	case components.TabStats:
		m.stats, cmd = m.stats.Mount()
	}
	return cmd
}

// Update handles global messages and routes the rest.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.opts.Theme.SetSize(msg.Width, msg.Height)
		return m.broadcast(msg)

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case components.ToastMsg:
		m.toasts.Add(msg.Kind, msg.Message)
		return m, nil

	case views.CelebrateMsg:
		var cmd tea.Cmd
		m.celebration, cmd = m.celebration.Show(msg.Text, msg.Points)
		return m, cmd

	case components.CelebrationDismissMsg:
		m.celebration = m.celebration.Update(msg)
		return m, nil

	case sessionEventMsg:
		return m.handleSession(session.Event(msg))

	case views.LoggedInMsg:
		cmd := m.enter(msg.Identity)
		return m, cmd

	case views.SwitchAuthMsg:
		if msg.Register {
			m.screen = ScreenRegister
			m.register = views.NewRegister(m.deps)
			return m, m.register.Init()
		}
		m.screen = ScreenLogin
		m.login = views.NewLogin(m.deps)
		return m, m.login.Init()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.broadcast(msg)
}

func (m Model) handleSession(ev session.Event) (tea.Model, tea.Cmd) {
	next := waitForSession(m.opts.Session)

	switch ev.Kind {
	case session.EventLogout:
		if m.screen != ScreenMain || m.opts.SingleUser {
			return m, next
		}
		notice := msgSessionExpired
		if ev.External {
			notice = msgSignedOutElse
		}
		log.Printf("SESSION_ENDED | external=%t", ev.External)
		m.leave(notice)
		return m, tea.Batch(next, m.login.Init())

	case session.EventLogin:
		// Our own logins arrive as LoggedInMsg; only adopt a session
		// another process wrote.
		if !ev.External || m.screen == ScreenMain || m.opts.Auth == nil {
			return m, next
		}
		id, err := m.opts.Auth.CurrentUser()
		if err != nil {
			return m, next
		}
		cmd := m.enter(id)
		return m, tea.Batch(next, cmd)
	}
	return m, next
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	case ScreenRegister:
		var cmd tea.Cmd
		m.register, cmd = m.register.Update(msg)
		return m, cmd
	}

	if m.celebration.Visible {
		m.celebration = m.celebration.Dismiss()
		return m, nil
	}

	if !(m.tab == components.TabTasks && m.tasks.Capturing()) {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Logout):
			if m.opts.Auth == nil {
				return m, nil
			}
			if err := m.opts.Auth.Logout(); err != nil {
				return m, components.ErrorToastCmd("Could not sign out: " + err.Error())
			}
			m.leave(msgSignedOut)
			return m, m.login.Init()
		case key.Matches(msg, m.keys.NextTab):
			return m, m.switchTab(m.tab.Next())
		case key.Matches(msg, m.keys.PrevTab):
			return m, m.switchTab(m.tab.Prev())
		case key.Matches(msg, m.keys.Dashboard):
			return m, m.switchTab(components.TabDashboard)
		case key.Matches(msg, m.keys.Tasks):
			return m, m.switchTab(components.TabTasks)
		case key.Matches(msg, m.keys.Nudges):
			return m, m.switchTab(components.TabNudges)
		case key.Matches(msg, m.keys.Stats):
			return m, m.switchTab(components.TabStats)
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case components.TabDashboard:
		m.dashboard, m.snap, cmd = m.dashboard.Update(msg, m.snap)
	case components.TabTasks:
		m.tasks, m.snap, cmd = m.tasks.Update(msg, m.snap)
	case components.TabNudges:
		m.nudges, m.snap, cmd = m.nudges.Update(msg, m.snap)
	case components.TabStats:
		m.stats, m.snap, cmd = m.stats.Update(msg, m.snap)
	}
	return m, cmd
}

// broadcast hands a non-key message to every view. Results are tagged by
// the view that asked, so each folds only its own.
func (m Model) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 6)
	var cmd tea.Cmd

	m.dashboard, m.snap, cmd = m.dashboard.Update(msg, m.snap)
	cmds = append(cmds, cmd)
	m.tasks, m.snap, cmd = m.tasks.Update(msg, m.snap)
	cmds = append(cmds, cmd)
	m.nudges, m.snap, cmd = m.nudges.Update(msg, m.snap)
	cmds = append(cmds, cmd)
	m.stats, m.snap, cmd = m.stats.Update(msg, m.snap)
	cmds = append(cmds, cmd)
	m.login, cmd = m.login.Update(msg)
	cmds = append(cmds, cmd)
	m.register, cmd = m.register.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the current screen, the celebration and the toasts.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	theme := m.opts.Theme
	width := theme.Width
	now := m.opts.Now()

	var parts []string
	switch m.screen {
	case ScreenLogin:
		parts = append(parts, m.login.View())
	case ScreenRegister:
		parts = append(parts, m.register.View())
	default:
		nav := components.NavBar{
			UserName: m.snap.Identity.DisplayName(),
			Streak:   m.snap.Identity.Streak,
			Points:   m.snap.Points,
			Active:   m.tab,
			Width:    width,
		}
		parts = append(parts, nav.View(theme))
		if m.celebration.Visible {
			parts = append(parts, m.celebration.View(theme, width))
		}
		parts = append(parts, theme.Container.Render(m.activeView()))

		help := make([]string, 0, 3)
		for _, b := range m.keys.ShortHelp() {
			if b.Help().Key == "L" && m.opts.Auth == nil {
				continue
			}
			help = append(help, b.Help().Key+" "+b.Help().Desc)
		}
		parts = append(parts, theme.Help.Render("1-4 switch view • "+strings.Join(help, " • ")))
	}

	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		parts = append(parts, components.RenderToastStack(toasts, width, now))
	}
	return theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) activeView() string {
	switch m.tab {
	case components.TabTasks:
		return m.tasks.View(m.snap)
	case components.TabNudges:
		return m.nudges.View(m.snap)
	case components.TabStats:
		return m.stats.View(m.snap)
	default:
		return m.dashboard.View(m.snap)
	}
}
