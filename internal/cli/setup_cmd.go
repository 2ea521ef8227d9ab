// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/config"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/setup"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
)

func (a *App) setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Walk through first-run configuration",
		Long: `Choose accounts or single-user mode, point microstep at your backend,
check that it responds and save ~/.microstep/config.toml (or --config).

Choose "Open the dashboard" at the end to start right away.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotSkipSetup: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.flags.json {
				return NewValidationError("json", "", "setup is interactive; use 'microstep config set' in scripts")
			}
			path, err := a.configFile()
			if err != nil {
				return err
			}
			if strings.HasSuffix(path, ".json") {
				return NewValidationError("config", path, "setup writes TOML; pass a .toml file")
			}
			start, err := loadFileConfig(path)
			if err != nil {
				return err
			}

			w := setup.New(setup.Options{
				Config:  start,
				Path:    path,
				Health:  wizardHealth,
				Save:    func(cfg *config.Config) error { return config.SaveTOML(cfg, path) },
				Theme:   styles.NewTheme(),
				Timeout: start.Timeout(),
			})
			if err := a.RunProgram(cmd.Context(), w); err != nil {
				return fmt.Errorf("run setup: %w", err)
			}

			res := w.Result()
			if !res.Saved {
				fmt.Fprintln(a.Stdout, DimStyle.Render("Setup cancelled; nothing was saved."))
				return nil
			}
			fmt.Fprintf(a.Stdout, "%s Configuration saved to %s\n", SuccessStyle.Render("[OK]"), path)
			if !res.Launch {
				return nil
			}

			if err := a.bootstrap(cmd); err != nil {
				return err
			}
			log.Printf("SETUP_LAUNCH | path=%s mode=%s", path, a.cfg.Mode)
			return a.runTUI(cmd.Context())
		},
	}
}

// wizardHealth probes baseURL with a throwaway client holding no session.
func wizardHealth(ctx context.Context, baseURL string) (model.Health, error) {
	return api.NewTaskService(api.New(baseURL, nil)).HealthCheck(ctx)
}
