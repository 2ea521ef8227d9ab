// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"net/http"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/api/apitest"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/session"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/ui/views"
)

type harness struct {
	srv   *apitest.Server
	store *session.Store
	user  model.User
	opts  Options
}

// newHarness wires a shell against a fake server. token builds the
// stored session from the created user; nil leaves the store empty.
func newHarness(t *testing.T, token func(*apitest.Server, model.User) string) *harness {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	user := srv.AddUser("Ada", "ada@example.com", "secret")
	tok := ""
	if token != nil {
		tok = token(srv, user)
	}
	store := session.NewMemoryStore(tok)
	client := api.New(srv.BaseURL(), store)

	theme := styles.NewTheme()
	theme.SetSize(160, 50)

	return &harness{
		srv:   srv,
		store: store,
		user:  user,
		opts: Options{
			Tasks:   api.NewTaskService(client),
			Auth:    api.NewAuthService(client),
			Session: store,
			Theme:   theme,
			Timeout: 5 * time.Second,
		},
	}
}

func validToken(srv *apitest.Server, u model.User) string {
	return srv.Token(u.UserID, time.Hour)
}

// run executes cmd and returns the messages it produces, flattening batches.
// Only use it on commands that return immediately.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle feeds the messages of cmd back into m, following up on fetch
// results but not on spinner ticks or celebrations, whose commands wait.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := run(cmd)
	for i := 0; len(queue) > 0; i++ {
		require.Less(t, i, 100, "messages did not settle")
		msg := queue[0]
		queue = queue[1:]

		next, cmd := m.Update(msg)
		m = next.(Model)
		switch msg.(type) {
		case spinner.TickMsg, views.CelebrateMsg:
			continue
		}
		queue = append(queue, run(cmd)...)
	}
	return m
}

func press(m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func toastTexts(m Model) []string {
	var out []string
	for _, t := range m.Toasts() {
		out = append(out, t.Message)
	}
	return out
}

func TestNew_SingleUser(t *testing.T) {
	srv := apitest.New(apitest.Open())
	t.Cleanup(srv.Close)
	client := api.New(srv.BaseURL(), nil)

	m := New(Options{Tasks: api.NewTaskService(client), SingleUser: true})
	require.Equal(t, ScreenMain, m.Screen())
	assert.Equal(t, model.SourceStatic, m.Snapshot().Identity.Source)
	assert.Equal(t, components.TabDashboard, m.Tab())

	m = settle(t, m, m.startup)
	assert.Contains(t, m.View(), "AI Motivation User")
	assert.NotContains(t, m.View(), "log out")
}

func TestNew_NoTokenShowsLogin(t *testing.T) {
	h := newHarness(t, nil)
	m := New(h.opts)
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Nil(t, m.startup)
	assert.Contains(t, m.View(), "Sign in")
}

func TestNew_ValidTokenGoesStraightIn(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	require.Equal(t, ScreenMain, m.Screen())
	id := m.Snapshot().Identity
	assert.Equal(t, h.user.UserID, id.UserID)
	assert.Equal(t, model.SourceToken, id.Source)
	assert.False(t, id.Verified())

	m = settle(t, m, m.startup)
	assert.Contains(t, m.View(), "Today's Focus")
	assert.Equal(t, 1, h.srv.Hits(http.MethodGet, "/tasks"))
}

func TestNew_ExpiredTokenIsCleared(t *testing.T) {
	h := newHarness(t, func(srv *apitest.Server, u model.User) string {
		return srv.Token(u.UserID, -time.Minute)
	})
	m := New(h.opts)
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.False(t, h.store.HasToken())
}

func TestNew_MalformedTokenIsCleared(t *testing.T) {
	h := newHarness(t, func(*apitest.Server, model.User) string { return "not-a-jwt" })
	m := New(h.opts)
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.False(t, h.store.HasToken())
}

func TestLoggedInMsgEntersDashboard(t *testing.T) {
	h := newHarness(t, nil)
	m := New(h.opts)

	id := model.Identity{User: h.user, Source: model.SourceServer}
	next, cmd := m.Update(views.LoggedInMsg{Identity: id})
	m = next.(Model)
	require.Equal(t, ScreenMain, m.Screen())
	assert.Equal(t, components.TabDashboard, m.Tab())
	assert.True(t, m.Snapshot().Identity.Verified())
	require.NotNil(t, cmd)
}

func TestSwitchAuth(t *testing.T) {
	h := newHarness(t, nil)
	m := New(h.opts)

	next, _ := m.Update(views.SwitchAuthMsg{Register: true})
	m = next.(Model)
	assert.Equal(t, ScreenRegister, m.Screen())

	next, _ = m.Update(views.SwitchAuthMsg{Register: false})
	m = next.(Model)
	assert.Equal(t, ScreenLogin, m.Screen())
}

func TestUnauthorizedReturnsToLogin(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)
	require.Equal(t, ScreenMain, m.Screen())

	h.srv.Respond(http.MethodGet, "/tasks", http.StatusUnauthorized, `{"message":"Invalid token"}`)
	m = settle(t, m, m.startup)
	assert.False(t, h.store.HasToken())

	next, _ := m.Update(waitForSession(h.store)())
	m = next.(Model)
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.Contains(t, toastTexts(m), msgSessionExpired)
	assert.Empty(t, m.Snapshot().Identity.UserID)
}

func TestExternalLoginIsAdopted(t *testing.T) {
	h := newHarness(t, nil)
	m := New(h.opts)
	require.NoError(t, h.store.Set(validToken(h.srv, h.user)))

	next, _ := m.Update(sessionEventMsg{Kind: session.EventLogin, External: true})
	m = next.(Model)
	assert.Equal(t, ScreenMain, m.Screen())
	assert.Equal(t, h.user.UserID, m.Snapshot().Identity.UserID)
}

func TestOwnLoginEventIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	m := New(h.opts)

	next, _ := m.Update(sessionEventMsg{Kind: session.EventLogin})
	m = next.(Model)
	assert.Equal(t, ScreenLogin, m.Screen())
}

func TestTabKeys(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)
	m = settle(t, m, m.startup)

	m, cmd := press(m, runes("2"))
	assert.Equal(t, components.TabTasks, m.Tab())
	m = settle(t, m, cmd)
	assert.Contains(t, m.View(), "Task Manager")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.TabNudges, m.Tab())

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, components.TabTasks, m.Tab())

	m, cmd = press(m, runes("4"))
	assert.Equal(t, components.TabStats, m.Tab())
	m = settle(t, m, cmd)
	assert.Contains(t, m.View(), "Your Progress")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, components.TabDashboard, m.Tab())
}

func TestTasksTabFailedLoadDropsDashboardTasks(t *testing.T) {
	h := newHarness(t, validToken)
	h.srv.SeedTasks(h.user.UserID, model.Task{TaskID: "t1", Title: "Write report", EstimatedDuration: 45})
	m := New(h.opts)
	m = settle(t, m, m.startup)
	require.Len(t, m.Snapshot().Tasks, 1)

	h.srv.Respond(http.MethodGet, "/tasks", http.StatusInternalServerError, "")
	m, cmd := press(m, runes("2"))
	m = settle(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "Pending Tasks (0)")
	assert.NotContains(t, view, "Write report")
	assert.Empty(t, m.Snapshot().Tasks)
	assert.Contains(t, toastTexts(m), "Failed to load tasks")
}

func TestQuit(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	m, cmd := press(m, runes("q"))
	assert.Equal(t, []tea.Msg{tea.QuitMsg{}}, run(cmd))
	assert.Empty(t, m.View())
}

func TestFilterSwallowsGlobalKeys(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	m, cmd := press(m, runes("2"))
	m = settle(t, m, cmd)
	m, _ = press(m, runes("/"))
	m, _ = press(m, runes("q"))
	assert.False(t, m.quitting)
	assert.NotEmpty(t, m.View())
	assert.Equal(t, components.TabTasks, m.Tab())

	m, _ = press(m, runes("1"))
	assert.Equal(t, components.TabTasks, m.Tab())
}

func TestForceQuitWorksOnLogin(t *testing.T) {
	h := newHarness(t, nil)
	m := New(h.opts)

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, []tea.Msg{tea.QuitMsg{}}, run(cmd))
}

func TestCelebrationDismissedByKey(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	next, cmd := m.Update(views.CelebrateMsg{Text: "Great job!", Points: 15})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.True(t, m.Celebration().Visible)
	assert.Contains(t, m.View(), "Task Completed!")

	m, cmd = press(m, runes("2"))
	assert.Nil(t, cmd)
	assert.False(t, m.Celebration().Visible)
	assert.Equal(t, components.TabDashboard, m.Tab())
}

func TestCelebrationDismissedByTimer(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	next, _ := m.Update(views.CelebrateMsg{Text: "Great job!"})
	m = next.(Model)
	next, _ = m.Update(components.CelebrationDismissMsg{Seq: 1})
	m = next.(Model)
	assert.False(t, m.Celebration().Visible)
}

func TestToastsRender(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	next, _ := m.Update(components.ToastMsg{Kind: components.ToastKindError, Message: "Failed to load tasks"})
	m = next.(Model)
	assert.Equal(t, []string{"Failed to load tasks"}, toastTexts(m))
	assert.Contains(t, m.View(), "Failed to load tasks")
}

func TestLogoutKey(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	m, _ = press(m, runes("L"))
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.False(t, h.store.HasToken())
	assert.Contains(t, toastTexts(m), msgSignedOut)

	// The store's own logout event arrives after the route already changed.
	next, _ := m.Update(waitForSession(h.store)())
	m = next.(Model)
	assert.Equal(t, ScreenLogin, m.Screen())
	assert.NotContains(t, toastTexts(m), msgSessionExpired)
}

func TestWindowSizeUpdatesTheme(t *testing.T) {
	h := newHarness(t, validToken)
	m := New(h.opts)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	_ = next.(Model)
	assert.Equal(t, 100, h.opts.Theme.Width)
}

func TestScreenString(t *testing.T) {
	assert.Equal(t, "login", ScreenLogin.String())
	assert.Equal(t, "register", ScreenRegister.String())
	assert.Equal(t, "main", ScreenMain.String())
}
