// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/microstep-tui/internal/progress"
	"github.com/jeranaias/microstep-tui/internal/state"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/util"
)

// Dashboard fallback messages.
const (
	msgDashboardLoadFailed = "Failed to load dashboard data"
	msgCompleteFailed      = "Failed to complete task"
)

// newSpinner returns the loading spinner shared by all views.
func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return sp
}

// Dashboard is the landing view: greeting, stat cards, today's focus and
// the progress ring.
type Dashboard struct {
	deps    *Deps
	keys    KeyMap
	spinner spinner.Model

	// pending counts fetches that have not settled yet.
	pending int
	failed  bool

	cursor     int
	completing string
}

// NewDashboard creates the dashboard view.
func NewDashboard(deps *Deps) Dashboard {
	return Dashboard{deps: deps, keys: DefaultKeyMap(), spinner: newSpinner()}
}

// Loading reports whether the initial fetches are still outstanding.
func (m Dashboard) Loading() bool {
	return m.pending > 0
}

// Mount starts the parallel stats and tasks fetch.
func (m Dashboard) Mount() (Dashboard, tea.Cmd) {
	m.pending = 2
	m.failed = false
	m.cursor = 0
	return m, tea.Batch(
		m.spinner.Tick,
		loadStatsCmd(m.deps, components.TabDashboard),
		loadTasksCmd(m.deps, components.TabDashboard),
	)
}

// Update folds dashboard messages into the snapshot.
func (m Dashboard) Update(msg tea.Msg, snap state.Snapshot) (Dashboard, state.Snapshot, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.view != components.TabDashboard {
			return m, snap, nil
		}
		if msg.err != nil {
			m.failed = true
		} else {
			snap = snap.WithStats(msg.stats)
		}
		return m.settle(snap)

	case tasksLoadedMsg:
		if msg.view != components.TabDashboard {
			return m, snap, nil
		}
		if msg.err != nil {
			m.failed = true
		} else {
			snap = snap.WithTasks(msg.tasks)
		}
		return m.settle(snap)

	case taskCompletedMsg:
		if msg.view != components.TabDashboard {
			return m, snap, nil
		}
		m.completing = ""
		if msg.err != nil {
			return m, snap, failToast(msg.err, msgCompleteFailed)
		}
		snap = snap.WithCompletion(msg.taskID, msg.reply, m.deps.now(), state.RemoveCompleted)
		m.cursor = clamp(m.cursor, len(snap.FocusTasks(m.deps.focusCount())))
		return m, snap, tea.Batch(
			celebrateCmd(msg.reply.Celebration, msg.reply.PointsEarned),
			components.SuccessToastCmd(fmt.Sprintf("+%d points earned! 🎉", msg.reply.PointsEarned)),
		)

	case spinner.TickMsg:
		if m.Loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, snap, cmd
		}
		return m, snap, nil

	case tea.KeyMsg:
		return m.handleKey(msg, snap)
	}
	return m, snap, nil
}

// settle records one finished fetch; the failure toast is shown once, after
// both have settled.
func (m Dashboard) settle(snap state.Snapshot) (Dashboard, state.Snapshot, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}
	if m.pending > 0 || !m.failed {
		return m, snap, nil
	}
	m.failed = false
	return m, snap, components.ErrorToastCmd(msgDashboardLoadFailed)
}

func (m Dashboard) handleKey(msg tea.KeyMsg, snap state.Snapshot) (Dashboard, state.Snapshot, tea.Cmd) {
	if m.Loading() {
		return m, snap, nil
	}
	focus := snap.FocusTasks(m.deps.focusCount())

	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor = clamp(m.cursor-1, len(focus))
	case key.Matches(msg, m.keys.Down):
		m.cursor = clamp(m.cursor+1, len(focus))
	case key.Matches(msg, m.keys.Refresh):
		var cmd tea.Cmd
		m, cmd = m.Mount()
		return m, snap, cmd
	case key.Matches(msg, m.keys.Complete):
		if len(focus) == 0 || m.completing != "" {
			return m, snap, nil
		}
		id := focus[clamp(m.cursor, len(focus))].TaskID
		m.completing = id
		return m, snap, completeTaskCmd(m.deps, components.TabDashboard, id)
	}
	return m, snap, nil
}

// View renders the dashboard over snap.
func (m Dashboard) View(snap state.Snapshot) string {
	theme := m.deps.Theme
	if m.Loading() {
		return components.Loading(theme, m.spinner.View(), "your dashboard")
	}
	width := m.deps.width()
	st := snap.Stats

	header := theme.Title.Render(fmt.Sprintf("%s, %s! 👋", progress.Greeting(m.deps.now()), snap.Identity.DisplayName())) +
		"\n" + theme.Subtitle.Render("Ready to tackle your micro-steps today?")

	cards := components.CardRow(theme, width,
		components.StatCard{Icon: "🔥", Label: "Day Streak", Value: fmt.Sprintf("%d", st.Streak), Accent: styles.Amber},
		components.StatCard{Icon: "⭐", Label: "Total Points", Value: util.Thousands(snap.Points), Accent: styles.Purple},
		components.StatCard{Icon: "🎯", Label: "Tasks Completed", Value: fmt.Sprintf("%d", st.CompletedTasks), Accent: styles.Emerald},
		components.StatCard{Icon: "📈", Label: "Completion Rate", Value: fmt.Sprintf("%d%%", progress.CompletionPercent(st.CompletionRate)), Accent: styles.Cyan},
	)

	return joinLines(
		header,
		cards,
		m.focusView(snap, width),
		theme.Section.Render("Today's Progress")+"\n"+components.ProgressRing(theme, st.CompletionRate, width),
		theme.Help.Render(helpLine(m.keys.Up, m.keys.Down, m.keys.Complete, m.keys.Refresh)),
	)
}

func (m Dashboard) focusView(snap state.Snapshot, width int) string {
	theme := m.deps.Theme
	var b strings.Builder
	b.WriteString(theme.Section.Render("Today's Focus"))
	b.WriteString("\n")

	focus := snap.FocusTasks(m.deps.focusCount())
	if len(focus) == 0 {
		b.WriteString(theme.Muted.Render("No tasks for today yet!"))
		b.WriteString("\n")
		b.WriteString(theme.Muted.Render("Add your first task to get started"))
		return b.String()
	}
	cursor := clamp(m.cursor, len(focus))
	for i, t := range focus {
		b.WriteString(components.TaskLine(theme, t, i == cursor, width))
		if i < len(focus)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
