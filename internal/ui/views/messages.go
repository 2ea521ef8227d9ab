// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
)

// =============================================================================
// MESSAGES
// =============================================================================

// Fetch results carry the tab that asked for them. The shell broadcasts
// non-key messages to every view and each view only folds its own.

type tasksLoadedMsg struct {
	view  components.Tab
	tasks []model.Task
	err   error
}

type statsLoadedMsg struct {
	view  components.Tab
	stats model.Stats
	err   error
}

type taskCompletedMsg struct {
	view   components.Tab
	taskID string
	reply  model.Completion
	err    error
}

type taskCreatedMsg struct {
	task model.Task
	err  error
}

type nudgeMsg struct {
	mood model.Mood
	text string
	err  error
}

type digestMsg struct {
	view components.Tab
	text string
	err  error
}

// CelebrateMsg asks the shell to open the celebration modal.
type CelebrateMsg struct {
	Text   string
	Points int
}

// =============================================================================
// COMMAND CREATORS
// =============================================================================

func loadTasksCmd(d *Deps, view components.Tab) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.callContext()
		defer cancel()
		tasks, err := d.Tasks.GetTasks(ctx)
		return tasksLoadedMsg{view: view, tasks: tasks, err: err}
	}
}

func loadStatsCmd(d *Deps, view components.Tab) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.callContext()
		defer cancel()
		stats, err := d.Tasks.GetUserStats(ctx)
		return statsLoadedMsg{view: view, stats: stats, err: err}
	}
}

func completeTaskCmd(d *Deps, view components.Tab, taskID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.callContext()
		defer cancel()
		reply, err := d.Tasks.CompleteTask(ctx, taskID)
		return taskCompletedMsg{view: view, taskID: taskID, reply: reply, err: err}
	}
}

func createTaskCmd(d *Deps, req model.NewTask) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.callContext()
		defer cancel()
		task, err := d.Tasks.CreateTask(ctx, req)
		return taskCreatedMsg{task: task, err: err}
	}
}

func nudgeCmd(d *Deps, mood model.Mood) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.callContext()
		defer cancel()
		reply, err := d.Tasks.GetNudge(ctx, mood)
		return nudgeMsg{mood: mood, text: reply.Nudge, err: err}
	}
}

func digestCmd(d *Deps, view components.Tab) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.callContext()
		defer cancel()
		reply, err := d.Tasks.GetDailyDigest(ctx)
		return digestMsg{view: view, text: reply.Digest, err: err}
	}
}

func celebrateCmd(text string, points int) tea.Cmd {
	return func() tea.Msg { return CelebrateMsg{Text: text, Points: points} }
}

// failToast is the error toast for a failed call: the server's message when
// it sent one, the view's fallback otherwise.
func failToast(err error, fallback string) tea.Cmd {
	return components.ErrorToastCmd(api.MessageOr(err, fallback))
}

// sentence upper-cases the first letter of s.
func sentence(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// clamp keeps a cursor inside [0, n).
func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}

func joinLines(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
