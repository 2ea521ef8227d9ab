// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/microstep-tui/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit the configuration file",
		Long: `Show and edit ~/.microstep/config.toml (or the file given with --config).

Precedence, highest first: flags, MICROSTEP_* environment (including .env),
the config file, built-in defaults.`,
	}
	skip := map[string]string{annotSkipSetup: "true"}

	show := &cobra.Command{
		Use:         "show",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: skip,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			return a.emit(cmd, cfg, func(w io.Writer) {
				for _, key := range config.GetAllKeys() {
					v, _ := cfg.Get(key)
					fmt.Fprintln(w, RenderField(key, fmt.Sprint(v)))
				}
			})
		},
	}

	get := &cobra.Command{
		Use:         "get <key>",
		Short:       "Print one configuration value",
		Example:     "  microstep config get api.base_url",
		Args:        cobra.ExactArgs(1),
		Annotations: skip,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			v, err := cfg.Get(args[0])
			if err != nil {
				return NewValidationErrorWithExample("key", args[0], err.Error(), "one of: "+strings.Join(config.GetAllKeys(), ", "))
			}
			return a.emit(cmd, map[string]interface{}{args[0]: v}, func(w io.Writer) {
				fmt.Fprintln(w, v)
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the configuration file",
		Example: `  microstep config set api.base_url https://microstep.example.com/api
  microstep config set mode single`,
		Args:        cobra.ExactArgs(2),
		Annotations: skip,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := a.configFile()
			if err != nil {
				return err
			}
			if strings.HasSuffix(path, ".json") {
				return NewValidationError("config", path, "config set writes TOML; pass a .toml file")
			}

			cfg, err := loadFileConfig(path)
			if err != nil {
				return err
			}

			if err := cfg.Set(args[0], args[1]); err != nil {
				return NewValidationErrorWithExample("key", args[0], err.Error(), "one of: "+strings.Join(config.GetAllKeys(), ", "))
			}
			cfg.SetDefaults()
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := config.SaveTOML(cfg, path); err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"key": args[0], "value": args[1], "path": path}, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s = %s %s\n", SuccessStyle.Render("[OK]"), args[0], args[1], DimStyle.Render("("+path+")"))
			})
		},
	}

	path := &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file location",
		Args:        cobra.NoArgs,
		Annotations: skip,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.configFile()
			if err != nil {
				return err
			}
			return a.emit(cmd, map[string]string{"path": p}, func(w io.Writer) {
				fmt.Fprintln(w, p)
			})
		},
	}

	cmd.AddCommand(show, get, set, path)
	return cmd
}

// loadFileConfig reads only the TOML file's own values over the defaults,
// without env or flag overrides. A missing file yields the defaults.
func loadFileConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return cfg, nil
}

// configFile is the file config set writes: --config, else the default TOML path.
func (a *App) configFile() (string, error) {
	if a.flags.configPath != "" {
		return a.flags.configPath, nil
	}
	return config.ConfigPathTOML()
}
