// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/microstep-tui/internal/config"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
)

const tagline = "Small steps. Real momentum."

// =============================================================================
// WIZARD MODEL
// =============================================================================

// Phase is the current wizard screen.
type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseMode
	PhaseServer
	PhaseCheck
	PhaseComplete
)

// String returns the phase name for logs.
func (p Phase) String() string {
	switch p {
	case PhaseWelcome:
		return "welcome"
	case PhaseMode:
		return "mode"
	case PhaseServer:
		return "server"
	case PhaseCheck:
		return "check"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// HealthFunc probes the backend at baseURL.
type HealthFunc func(ctx context.Context, baseURL string) (model.Health, error)

// SaveFunc persists the finished configuration.
type SaveFunc func(cfg *config.Config) error

// Options configures a Wizard.
type Options struct {
	// Config holds the starting values. It is copied, never modified.
	Config *config.Config
	// Path is shown on the completion screen.
	Path    string
	Health  HealthFunc
	Save    SaveFunc
	Theme   *styles.Theme
	Timeout time.Duration
}

// Result is what the wizard decided once it has quit.
type Result struct {
	Config *config.Config
	Saved  bool
	// Launch asks the caller to open the dashboard.
	Launch bool
}

// modeChoice is one row of the mode selector.
type modeChoice struct {
	mode  string
	title string
	help  string
}

var modeChoices = []modeChoice{
	{config.ModeMulti, "Accounts", "Sign in with email and password. Your tasks follow your account."},
	{config.ModeSingle, "Just me", "No sign in. Everything belongs to the default user."},
}

// Wizard is the first-run configuration model.
type Wizard struct {
	opts  Options
	cfg   config.Config
	theme *styles.Theme

	phase   Phase
	width   int
	height  int
	spinner spinner.Model
	input   textinput.Model

	modeSelected int

	checking bool
	health   model.Health
	checkErr string

	err    string
	saving bool
	saved  bool

	launchSelected bool
	done           bool

	// Animation state
	typingText   string
	typingTarget string
}

// New creates a wizard starting from opts.Config, or defaults.
func New(opts Options) *Wizard {
	cfg := config.Default()
	if opts.Config != nil {
		c := *opts.Config
		cfg = &c
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = theme.Spinner

	ti := textinput.New()
	ti.Placeholder = config.DefaultBaseURL
	ti.CharLimit = 256
	ti.SetValue(cfg.API.BaseURL)

	w := &Wizard{
		opts:           opts,
		cfg:            *cfg,
		theme:          theme,
		phase:          PhaseWelcome,
		spinner:        s,
		input:          ti,
		launchSelected: true,
	}
	if cfg.SingleUser() {
		w.modeSelected = 1
	}
	return w
}

// Phase returns the current screen.
func (w *Wizard) Phase() Phase {
	return w.phase
}

// Err returns the inline error, if any.
func (w *Wizard) Err() string {
	return w.err
}

// Result reports the outcome. Saved is false when the user quit early.
func (w *Wizard) Result() Result {
	c := w.cfg
	return Result{Config: &c, Saved: w.saved, Launch: w.saved && w.done && w.launchSelected}
}

// Init starts the spinner and types the tagline.
func (w *Wizard) Init() tea.Cmd {
	return tea.Batch(
		w.spinner.Tick,
		w.typeWriter(tagline, 20*time.Millisecond),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

type typeWriterMsg struct {
	target string
	index  int
}

type healthMsg struct {
	baseURL string
	health  model.Health
	err     error
}

type savedMsg struct {
	err error
}

// Update handles messages.
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return w.handleKey(msg)

	case tea.WindowSizeMsg:
		w.width, w.height = msg.Width, msg.Height
		w.theme.SetSize(msg.Width, msg.Height)
		inputWidth := msg.Width - 20
		if inputWidth < 20 {
			inputWidth = 20
		}
		if inputWidth > 60 {
			inputWidth = 60
		}
		w.input.Width = inputWidth
		return w, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		w.spinner, cmd = w.spinner.Update(msg)
		return w, cmd

	case typeWriterMsg:
		if msg.target == w.typingTarget && msg.index <= len(msg.target) {
			w.typingText = msg.target[:msg.index]
			if msg.index < len(msg.target) {
				return w, w.typeWriterTick(msg.target, msg.index+1, 20*time.Millisecond)
			}
		}
		return w, nil

	case healthMsg:
		if msg.baseURL != w.cfg.API.BaseURL {
			return w, nil
		}
		w.checking = false
		w.health = msg.health
		w.checkErr = ""
		if msg.err != nil {
			w.checkErr = msg.err.Error()
		}
		return w, nil

	case savedMsg:
		w.saving = false
		if msg.err != nil {
			w.err = msg.err.Error()
			return w, nil
		}
		w.err = ""
		w.saved = true
		w.phase = PhaseComplete
		return w, nil
	}

	if w.phase == PhaseServer {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		return w, cmd
	}
	return w, nil
}

// handleKey processes key presses.
func (w *Wizard) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return w, tea.Quit
	case "enter":
		return w.handleSelect()
	case "esc":
		return w.back()
	}

	// The server screen is typing; everything else goes to the input.
	if w.phase == PhaseServer {
		var cmd tea.Cmd
		w.input, cmd = w.input.Update(msg)
		w.err = ""
		return w, cmd
	}

	switch msg.String() {
	case "q":
		return w, tea.Quit

	case "up", "k":
		if w.phase == PhaseMode && w.modeSelected > 0 {
			w.modeSelected--
		}
		if w.phase == PhaseComplete {
			w.launchSelected = true
		}

	case "down", "j":
		if w.phase == PhaseMode && w.modeSelected < len(modeChoices)-1 {
			w.modeSelected++
		}
		if w.phase == PhaseComplete {
			w.launchSelected = false
		}

	case "tab":
		if w.phase == PhaseComplete {
			w.launchSelected = !w.launchSelected
		}

	case "r":
		if w.phase == PhaseCheck && !w.checking {
			return w, w.runCheck()
		}
	}
	return w, nil
}

// handleSelect advances to the next phase.
func (w *Wizard) handleSelect() (tea.Model, tea.Cmd) {
	switch w.phase {
	case PhaseWelcome:
		w.phase = PhaseMode
		return w, nil

	case PhaseMode:
		w.cfg.Mode = modeChoices[w.modeSelected].mode
		w.phase = PhaseServer
		return w, w.input.Focus()

	case PhaseServer:
		next := w.cfg
		next.API.BaseURL = strings.TrimSpace(w.input.Value())
		next.SetDefaults()
		if err := next.Validate(); err != nil {
			w.err = fieldError(err, "api.base_url")
			return w, nil
		}
		w.cfg = next
		w.err = ""
		w.input.Blur()
		w.phase = PhaseCheck
		return w, w.runCheck()

	case PhaseCheck:
		// A failing backend can still be saved; it may simply not be running yet.
		if w.checking || w.saving {
			return w, nil
		}
		return w, w.save()

	case PhaseComplete:
		w.done = true
		return w, tea.Quit
	}
	return w, nil
}

// back returns to the previous phase.
func (w *Wizard) back() (tea.Model, tea.Cmd) {
	switch w.phase {
	case PhaseMode:
		w.phase = PhaseWelcome
	case PhaseServer:
		w.input.Blur()
		w.err = ""
		w.phase = PhaseMode
	case PhaseCheck:
		if w.saving {
			return w, nil
		}
		w.checking = false
		w.phase = PhaseServer
		return w, w.input.Focus()
	}
	return w, nil
}

// fieldError picks the message for field out of a validation failure.
func fieldError(err error, field string) string {
	var errs config.ValidateErrors
	if errors.As(err, &errs) {
		for _, e := range errs {
			if e.Field == field {
				return e.Message
			}
		}
	}
	return err.Error()
}

// =============================================================================
// COMMANDS
// =============================================================================

// typeWriter starts a typing animation.
func (w *Wizard) typeWriter(text string, delay time.Duration) tea.Cmd {
	w.typingTarget = text
	w.typingText = ""
	return w.typeWriterTick(text, 1, delay)
}

func (w *Wizard) typeWriterTick(target string, index int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return typeWriterMsg{target: target, index: index}
	})
}

// runCheck probes the chosen backend.
func (w *Wizard) runCheck() tea.Cmd {
	w.checking = true
	w.checkErr = ""
	w.health = nil
	if w.opts.Health == nil {
		w.checking = false
		return nil
	}

	baseURL, probe, timeout := w.cfg.API.BaseURL, w.opts.Health, w.opts.Timeout
	if timeout <= 0 {
		timeout = w.cfg.Timeout()
	}
	check := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		h, err := probe(ctx, baseURL)
		return healthMsg{baseURL: baseURL, health: h, err: err}
	}
	return tea.Batch(check, w.spinner.Tick)
}

// save writes the configuration.
func (w *Wizard) save() tea.Cmd {
	w.saving = true
	cfg := w.cfg
	fn := w.opts.Save
	return func() tea.Msg {
		if fn == nil {
			return savedMsg{}
		}
		return savedMsg{err: fn(&cfg)}
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the current phase.
func (w *Wizard) View() string {
	switch w.phase {
	case PhaseWelcome:
		return w.center(w.viewWelcome())
	case PhaseMode:
		return w.center(w.viewMode())
	case PhaseServer:
		return w.center(w.viewServer())
	case PhaseCheck:
		return w.center(w.viewCheck())
	case PhaseComplete:
		return w.center(w.viewComplete())
	}
	return ""
}

func (w *Wizard) viewWelcome() string {
	t := w.theme
	var s strings.Builder

	s.WriteString(t.Title.Render(components.Brand))
	s.WriteString("\n")
	line := tagline
	if w.typingTarget == tagline {
		line = w.typingText
	}
	s.WriteString(t.Subtitle.Render(line))
	s.WriteString("\n\n")

	s.WriteString(t.FormBox.Render(`Welcome! Let's get microstep ready.

This will:

  * Choose between accounts and single-user mode
  * Point microstep at your backend
  * Check that the backend responds
  * Save your configuration`))
	s.WriteString("\n\n")
	s.WriteString(t.Help.Render("enter begin • q quit"))
	return s.String()
}

func (w *Wizard) viewMode() string {
	t := w.theme
	var s strings.Builder

	s.WriteString(t.Section.Render("How will you use microstep?"))
	s.WriteString("\n\n")
	for i, c := range modeChoices {
		cursor, style := "  ", t.Muted
		if i == w.modeSelected {
			cursor, style = "> ", t.FormLabelFocus
		}
		s.WriteString(style.Render(cursor + c.title))
		s.WriteString("\n")
		s.WriteString(t.Muted.Render("    " + c.help))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(t.Help.Render("↑/↓ select • enter confirm • esc back"))
	return s.String()
}

func (w *Wizard) viewServer() string {
	t := w.theme
	var s strings.Builder

	s.WriteString(t.Section.Render("Where is your backend?"))
	s.WriteString("\n")
	s.WriteString(t.Muted.Render("The base URL includes the /api prefix."))
	s.WriteString("\n\n")
	s.WriteString(t.FormLabelFocus.Render("Base URL"))
	s.WriteString("\n")
	s.WriteString(w.input.View())
	s.WriteString("\n")
	if w.err != "" {
		s.WriteString(t.FormError.Render(styles.StatusIndicators.Error + " " + w.err))
		s.WriteString("\n")
	}
	s.WriteString("\n")
	s.WriteString(t.Help.Render("enter check • esc back • ctrl+c quit"))
	return s.String()
}

func (w *Wizard) viewCheck() string {
	t := w.theme
	var s strings.Builder

	s.WriteString(t.Section.Render("Checking the backend"))
	s.WriteString("\n\n")

	switch {
	case w.checking:
		s.WriteString(fmt.Sprintf("  %s %s", w.spinner.View(), w.cfg.API.BaseURL))
		s.WriteString(t.Muted.Render(" - Checking..."))
	case w.checkErr != "":
		s.WriteString("  " + t.ErrorStyle.Render(styles.StatusIndicators.Error) + " " + w.cfg.API.BaseURL)
		s.WriteString(t.Muted.Render(" - " + w.checkErr))
		s.WriteString("\n")
		s.WriteString(t.Muted.Render("      -> start the backend, or press esc to change the URL"))
	default:
		s.WriteString("  " + t.SuccessStyle.Render(styles.StatusIndicators.Success) + " " + w.cfg.API.BaseURL)
		s.WriteString(t.Muted.Render(" - responding"))
		keys := make([]string, 0, len(w.health))
		for k := range w.health {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.WriteString("\n")
			s.WriteString(t.Muted.Render(fmt.Sprintf("      %s: %v", k, w.health[k])))
		}
	}
	s.WriteString("\n\n")

	if w.err != "" {
		s.WriteString(t.FormError.Render(styles.StatusIndicators.Error + " " + w.err))
		s.WriteString("\n\n")
	}

	if !w.checking {
		help := "enter save • r retry • esc back"
		if w.checkErr != "" {
			help = "enter save anyway • r retry • esc back"
		}
		s.WriteString(t.Help.Render(help))
	}
	return s.String()
}

func (w *Wizard) viewComplete() string {
	t := w.theme
	var s strings.Builder

	s.WriteString(t.SuccessStyle.Render("*** You're all set! ***"))
	s.WriteString("\n\n")

	mode := modeChoices[0].title
	if w.cfg.SingleUser() {
		mode = modeChoices[1].title
	}
	s.WriteString(t.Muted.Render(fmt.Sprintf("  Mode:    %s", mode)))
	s.WriteString("\n")
	s.WriteString(t.Muted.Render(fmt.Sprintf("  Backend: %s", w.cfg.API.BaseURL)))
	s.WriteString("\n")
	if w.opts.Path != "" {
		s.WriteString(t.Muted.Render(fmt.Sprintf("  Config:  %s", w.opts.Path)))
		s.WriteString("\n")
	}
	s.WriteString("\n")

	launch, closeText := "Open the dashboard", "Close"
	if w.launchSelected {
		s.WriteString(t.FormLabelFocus.Render("  > " + launch))
		s.WriteString("\n")
		s.WriteString(t.Muted.Render("    " + closeText))
	} else {
		s.WriteString(t.Muted.Render("    " + launch))
		s.WriteString("\n")
		s.WriteString(t.FormLabelFocus.Render("  > " + closeText))
		s.WriteString(t.Muted.Render("  <- you can run 'microstep' anytime"))
	}
	s.WriteString("\n\n")
	s.WriteString(t.Help.Render("↑/↓ or tab select • enter confirm"))
	return s.String()
}

// center places content in the top third of the screen, horizontally centered.
func (w *Wizard) center(content string) string {
	if w.width == 0 || w.height == 0 {
		return content
	}
	top := (w.height - lipgloss.Height(content)) / 3
	if top < 0 {
		top = 0
	}
	return strings.Repeat("\n", top) + lipgloss.PlaceHorizontal(w.width, lipgloss.Center, content)
}
