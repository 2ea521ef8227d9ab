// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/api/apitest"
	"github.com/jeranaias/microstep-tui/internal/config"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/shell"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
)

// shellOptions builds the shell options shared by the TUI and the demo.
func (a *App) shellOptions() shell.Options {
	opts := shell.Options{
		Tasks:               a.tasks,
		Session:             a.store,
		Theme:               styles.NewTheme(),
		SingleUser:          a.cfg.SingleUser(),
		Now:                 a.Now,
		Timeout:             a.cfg.Timeout(),
		FocusCount:          a.cfg.UI.FocusCount,
		DigestStyle:         a.cfg.UI.Theme,
		CelebrationDuration: a.cfg.CelebrationDuration(),
	}
	if a.auth != nil {
		opts.Auth = a.auth
	}
	return opts
}

// runTUI opens the interactive dashboard.
func (a *App) runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.store != nil && a.cfg.Session.Watch && a.store.Path() != "" {
		go func() {
			if err := a.store.Watch(ctx); err != nil {
				log.Printf("SESSION_WATCH_FAILED | path=%s error=%v", a.store.Path(), err)
			}
		}()
	}

	log.Printf("TUI_START | mode=%s", a.cfg.Mode)
	err := a.RunProgram(ctx, shell.New(a.shellOptions()))
	log.Printf("TUI_EXIT | error=%v", err)
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// demoTasks seeds the in-process backend of the demo.
func demoTasks() []model.Task {
	return []model.Task{
		{TaskID: "demo-1", Title: "Write the first paragraph of the report", Priority: model.PriorityHigh, EstimatedDuration: 25},
		{TaskID: "demo-2", Title: "Reply to two emails", Priority: model.PriorityMedium, EstimatedDuration: 10},
		{TaskID: "demo-3", Title: "Stretch for five minutes", Description: "Neck, shoulders, back", Priority: model.PriorityLow, EstimatedDuration: 5},
		{TaskID: "demo-4", Title: "Plan tomorrow's micro-steps", Priority: model.PriorityMedium, EstimatedDuration: 15},
		{TaskID: "demo-5", Title: "Drink a glass of water", Priority: model.PriorityLow, EstimatedDuration: 5, Status: model.StatusCompleted},
	}
}

func (a *App) demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Try the dashboard against a built-in practice backend",
		Long: `Start an in-process backend with sample tasks and open the dashboard
in single-user mode. Requests stay on the loopback interface and nothing is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fake := apitest.New(apitest.Open())
			defer fake.Close()
			fake.SeedTasks(apitest.DefaultUserID, demoTasks()...)

			a.cfg.Mode = config.ModeSingle
			a.store = nil
			a.auth = nil
			a.client = api.New(fake.BaseURL(), nil, api.WithTimeout(a.cfg.Timeout()))
			a.tasks = api.NewTaskService(a.client)
			log.Printf("DEMO_START | base_url=%s", fake.BaseURL())
			return a.runTUI(cmd.Context())
		},
	}
}
