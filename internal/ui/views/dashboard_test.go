// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"net/http"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/state"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
)

// mountDashboard mounts the dashboard and feeds every fetch result back in.
func mountDashboard(t *testing.T, f *fixture) (Dashboard, state.Snapshot, []tea.Msg) {
	t.Helper()
	m, cmd := NewDashboard(f.deps).Mount()
	require.True(t, m.Loading())

	snap := f.snap
	var out []tea.Msg
	for _, msg := range collect(t, cmd) {
		var next tea.Cmd
		m, snap, next = m.Update(msg, snap)
		if _, isTick := msg.(spinner.TickMsg); !isTick && next != nil {
			out = append(out, collect(t, next)...)
		}
	}
	return m, snap, out
}

func TestDashboard_WaitsForBothFetches(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedTasks(f.user.UserID, model.Task{TaskID: "t1", Title: "Write report", Priority: model.PriorityHigh, EstimatedDuration: 45})

	m, cmd := NewDashboard(f.deps).Mount()
	msgs := collect(t, cmd)

	var results []tea.Msg
	for _, msg := range msgs {
		switch msg.(type) {
		case statsLoadedMsg, tasksLoadedMsg:
			results = append(results, msg)
		}
	}
	require.Len(t, results, 2)

	snap := f.snap
	m, snap, _ = m.Update(results[0], snap)
	assert.True(t, m.Loading())
	assert.Contains(t, m.View(snap), "Loading your dashboard")

	m, snap, _ = m.Update(results[1], snap)
	assert.False(t, m.Loading())

	view := m.View(snap)
	assert.Contains(t, view, "Good morning, Ada!")
	assert.Contains(t, view, "Today's Focus")
	assert.Contains(t, view, "Write report")
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/tasks"))
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/user/stats"))
}

func TestDashboard_FocusShowsFirstThreePending(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedTasks(f.user.UserID,
		model.Task{TaskID: "a", Title: "Alpha", EstimatedDuration: 10},
		model.Task{TaskID: "b", Title: "Bravo", EstimatedDuration: 10},
		model.Task{TaskID: "c", Title: "Charlie", EstimatedDuration: 10},
		model.Task{TaskID: "d", Title: "Delta", EstimatedDuration: 10},
	)

	m, snap, _ := mountDashboard(t, f)
	view := m.View(snap)
	assert.Contains(t, view, "Alpha")
	assert.Contains(t, view, "Charlie")
	assert.NotContains(t, view, "Delta")
}

func TestDashboard_EmptyFocus(t *testing.T) {
	f := newFixture(t)
	m, snap, _ := mountDashboard(t, f)

	assert.Contains(t, m.View(snap), "No tasks for today yet!")

	_, _, cmd := m.Update(keyType(tea.KeyEnter), snap)
	assert.Nil(t, cmd)
}

// One pending task; completing it removes it from the pending list and
// shows the server's celebration, without refetching the list.
func TestDashboard_CompleteScenario(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedTasks(f.user.UserID, model.Task{TaskID: "t1", Title: "Write report", Priority: model.PriorityHigh, EstimatedDuration: 45})
	f.srv.Respond(http.MethodPost, "/tasks/t1/complete", http.StatusOK, `{"points_earned":15,"celebration":"Nice!"}`)

	m, snap, _ := mountDashboard(t, f)
	require.Len(t, snap.PendingTasks(), 1)
	pointsBefore := snap.Points

	m, snap, cmd := m.Update(keyType(tea.KeyEnter), snap)
	require.NotNil(t, cmd)
	msgs := collect(t, cmd)
	require.Len(t, msgs, 1)

	m, snap, cmd = m.Update(msgs[0], snap)
	out := collect(t, cmd)

	assert.Empty(t, snap.PendingTasks())
	assert.Equal(t, pointsBefore+15, snap.Points)
	assert.Equal(t, []CelebrateMsg{{Text: "Nice!", Points: 15}}, celebrations(out))
	require.Len(t, toasts(out), 1)
	assert.Equal(t, components.ToastMsg{Kind: components.ToastKindSuccess, Message: "+15 points earned! 🎉"}, toasts(out)[0])
	assert.Equal(t, 1, f.srv.Hits(http.MethodGet, "/tasks"))
	assert.NotContains(t, m.View(snap), "Write report")
}

func TestDashboard_CompleteFailureKeepsState(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedTasks(f.user.UserID, model.Task{TaskID: "t1", Title: "Write report", EstimatedDuration: 45})
	f.srv.Respond(http.MethodPost, "/tasks/t1/complete", http.StatusInternalServerError, "")

	m, snap, _ := mountDashboard(t, f)
	before := snap

	m, snap, cmd := m.Update(keyType(tea.KeyEnter), snap)
	msgs := collect(t, cmd)
	require.Len(t, msgs, 1)

	_, snap, cmd = m.Update(msgs[0], snap)
	out := collect(t, cmd)

	assert.Equal(t, before, snap)
	assert.Equal(t, []components.ToastMsg{{Kind: components.ToastKindError, Message: "Failed to complete task"}}, toasts(out))
	assert.Empty(t, celebrations(out))
}

func TestDashboard_CompleteIgnoredWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedTasks(f.user.UserID, model.Task{TaskID: "t1", Title: "Write report", EstimatedDuration: 45})

	m, snap, _ := mountDashboard(t, f)
	m, snap, first := m.Update(keyType(tea.KeyEnter), snap)
	require.NotNil(t, first)

	_, _, second := m.Update(keyType(tea.KeyEnter), snap)
	assert.Nil(t, second)
}

func TestDashboard_LoadFailureShowsOneToast(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.MethodGet, "/user/stats", http.StatusInternalServerError, "")
	f.srv.Respond(http.MethodGet, "/tasks", http.StatusInternalServerError, "")
	f.snap = f.snap.WithStats(model.Stats{Streak: 4, TotalPoints: 40})

	m, snap, out := mountDashboard(t, f)

	assert.False(t, m.Loading())
	assert.Equal(t, []components.ToastMsg{{Kind: components.ToastKindError, Message: "Failed to load dashboard data"}}, toasts(out))
	assert.Equal(t, 4, snap.Stats.Streak)
	assert.Equal(t, 40, snap.Points)
}

func TestDashboard_LoadFailureUsesOwnText(t *testing.T) {
	f := newFixture(t)
	f.srv.Respond(http.MethodGet, "/tasks", http.StatusServiceUnavailable, `{"message":"Maintenance window"}`)

	_, _, out := mountDashboard(t, f)
	// The dashboard reports one combined failure with its own text.
	assert.Equal(t, []components.ToastMsg{{Kind: components.ToastKindError, Message: "Failed to load dashboard data"}}, toasts(out))
}

func TestDashboard_IgnoresOtherViewsResults(t *testing.T) {
	f := newFixture(t)
	m, snap, _ := mountDashboard(t, f)

	other := tasksLoadedMsg{view: components.TabTasks, tasks: []model.Task{{TaskID: "x", Title: "Elsewhere"}}}
	_, after, cmd := m.Update(other, snap)
	assert.Nil(t, cmd)
	assert.Equal(t, snap, after)
}

func TestDashboard_CursorMoves(t *testing.T) {
	f := newFixture(t)
	f.srv.SeedTasks(f.user.UserID,
		model.Task{TaskID: "a", Title: "Alpha", EstimatedDuration: 10},
		model.Task{TaskID: "b", Title: "Bravo", EstimatedDuration: 10},
	)
	m, snap, _ := mountDashboard(t, f)

	m, snap, _ = m.Update(keyRunes("j"), snap)
	assert.Equal(t, 1, m.cursor)
	m, snap, _ = m.Update(keyRunes("j"), snap)
	assert.Equal(t, 1, m.cursor)
	m, _, _ = m.Update(keyRunes("k"), snap)
	assert.Equal(t, 0, m.cursor)
}
