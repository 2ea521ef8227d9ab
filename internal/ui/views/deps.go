// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"time"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
)

// TaskAPI is the subset of the task client the views call.
// *api.TaskService satisfies it.
type TaskAPI interface {
	GetTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, req model.NewTask) (model.Task, error)
	CompleteTask(ctx context.Context, taskID string) (model.Completion, error)
	GetNudge(ctx context.Context, mood model.Mood) (model.NudgeReply, error)
	GetDailyDigest(ctx context.Context) (model.Digest, error)
	GetUserStats(ctx context.Context) (model.Stats, error)
}

// AuthAPI is the subset of the auth client the login and register forms call.
// *api.AuthService satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, creds model.Credentials) (model.AuthReply, error)
	Register(ctx context.Context, reg model.Registration) (model.AuthReply, error)
}

// Deps carries what every view needs. It is shared by pointer so a resize
// reaches all views at once.
type Deps struct {
	Tasks TaskAPI
	Auth  AuthAPI
	Theme *styles.Theme

	// Now is the clock used for greetings, completion stamps and nudge
	// history. Defaults to time.Now.
	Now func() time.Time

	// Timeout bounds each API call made from a command. Zero leaves only
	// the HTTP client's own timeout.
	Timeout time.Duration

	// FocusCount is how many pending tasks the dashboard shows.
	FocusCount int

	// DigestStyle is the configured ui.theme ("auto", "dark" or "light").
	DigestStyle string
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) focusCount() int {
	if d.FocusCount > 0 {
		return d.FocusCount
	}
	return 3
}

func (d *Deps) width() int {
	if d.Theme == nil || d.Theme.Width <= 0 {
		return 80
	}
	return d.Theme.Width
}

// callContext returns the context for one API call made from a tea.Cmd.
// Calls are never cancelled by the UI once issued.
func (d *Deps) callContext() (context.Context, context.CancelFunc) {
	if d.Timeout > 0 {
		return context.WithTimeout(context.Background(), d.Timeout)
	}
	return context.WithCancel(context.Background())
}
