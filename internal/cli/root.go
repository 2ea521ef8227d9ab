// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/config"
	"github.com/jeranaias/microstep-tui/internal/session"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotSkipSetup marks commands that run without a loaded config or client.
const annotSkipSetup = "microstep/skip-setup"

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	apiURL     string
	configPath string
	singleUser bool
	json       bool
}

// App carries the IO streams and the services built from the loaded
// config. One App serves one command invocation.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Now is the clock used for token expiry and JSON timestamps.
	Now func() time.Time
	// RunProgram runs a Bubble Tea model to completion.
	RunProgram func(ctx context.Context, m tea.Model) error

	flags globalFlags

	cfg     *config.Config
	store   *session.Store
	client  *api.Client
	auth    *api.AuthService
	tasks   *api.TaskService
	logFile io.Closer
}

// NewApp returns an App bound to the process streams.
func NewApp() *App {
	return &App{
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Now:        time.Now,
		RunProgram: runProgram,
	}
}

func runProgram(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}

// Main runs the CLI with os.Args and returns the process exit code.
func Main(ctx context.Context) int {
	app := NewApp()
	defer app.Close()

	root := app.Command()
	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		DisplayError(app.Stderr, cmd.CommandPath(), err, app.flags.json)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// Command builds the command tree.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "microstep",
		Short: "Micro-step task tracker with AI nudges, in your terminal",
		Long: `microstep breaks work into micro-steps, tracks streaks and points,
and asks the backend for mood-aware motivational nudges.

Run without a subcommand to open the interactive dashboard.`,
		Version:           fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.NoArgs,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}
	root.SetIn(a.Stdin)
	root.SetOut(a.Stdout)
	root.SetErr(a.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.apiURL, "api-url", "", "backend base URL including /api (overrides config and "+config.EnvAPIURL+")")
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default ~/.microstep/config.toml)")
	pf.BoolVar(&a.flags.singleUser, "single-user", false, "skip authentication and act as the default user")
	pf.BoolVar(&a.flags.json, "json", false, "print machine-readable JSON")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.tasksCmd(),
		a.nudgeCmd(),
		a.digestCmd(),
		a.statsCmd(),
		a.healthCmd(),
		a.configCmd(),
		a.setupCmd(),
		a.demoCmd(),
	)
	return root
}

// Close releases the log file.
func (a *App) Close() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads the config, applies flag overrides, opens the log and
// builds the session store and API services.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotSkipSetup] == "true" {
		return nil
	}
	return a.bootstrap(cmd)
}

// bootstrap does the work of setup. Commands that skip setup call it
// themselves once a usable config exists.
func (a *App) bootstrap(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := a.openLog(); err != nil {
		return err
	}

	if !cfg.SingleUser() {
		path, err := cfg.SessionPath()
		if err != nil {
			return err
		}
		store, err := session.NewStore(path)
		if err != nil {
			return fmt.Errorf("open session: %w", err)
		}
		a.store = store
	}

	a.client = api.New(cfg.API.BaseURL, a.store,
		api.WithTimeout(cfg.Timeout()),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
	)
	a.tasks = api.NewTaskService(a.client)
	if a.store != nil {
		a.auth = api.NewAuthService(a.client)
	}
	log.Printf("CLI_START | command=%s mode=%s base_url=%s", cmd.CommandPath(), cfg.Mode, cfg.API.BaseURL)
	return nil
}

// loadConfig reads the config file and layers the global flags on top.
func (a *App) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if a.flags.configPath != "" {
		cfg, err = config.LoadFromPath(a.flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.API.BaseURL = a.flags.apiURL
	}
	if a.flags.singleUser {
		cfg.Mode = config.ModeSingle
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openLog sends the standard logger to the log file. The TUI owns the
// terminal, so nothing is logged to stderr.
func (a *App) openLog() error {
	if !a.cfg.Log.Enabled {
		log.SetOutput(io.Discard)
		return nil
	}
	path, err := a.cfg.LogPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	a.logFile = f
	return nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// emit prints data as a JSON envelope in --json mode, or runs human.
func (a *App) emit(cmd *cobra.Command, data interface{}, human func(w io.Writer)) error {
	if a.flags.json {
		return NewJSONResponse(cmd.CommandPath(), data, a.Now()).Print(a.Stdout)
	}
	human(a.Stdout)
	return nil
}

// callContext bounds one API call by the configured timeout.
func (a *App) callContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, a.cfg.Timeout())
}

// requireAuth fails fast for commands that need the multi-user session.
func (a *App) requireAuth() error {
	if a.auth == nil {
		return errSingleUser
	}
	return nil
}

// requireSession fails fast when no token is held in multi-user mode.
func (a *App) requireSession() error {
	if a.store != nil && !a.store.HasToken() {
		return errNotLoggedIn
	}
	return nil
}
