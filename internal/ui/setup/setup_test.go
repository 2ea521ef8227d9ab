// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package setup

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/api/apitest"
	"github.com/jeranaias/microstep-tui/internal/config"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
)

type harness struct {
	w     *Wizard
	saved []*config.Config
}

func newHarness(t *testing.T, start *config.Config, health HealthFunc) *harness {
	t.Helper()
	h := &harness{}
	theme := styles.NewTheme()
	theme.SetSize(120, 40)
	h.w = New(Options{
		Config: start,
		Path:   "/tmp/microstep/config.toml",
		Health: health,
		Save: func(cfg *config.Config) error {
			h.saved = append(h.saved, cfg)
			return nil
		},
		Theme: theme,
	})
	return h
}

// apiHealth probes a real client the way the CLI does.
func apiHealth(ctx context.Context, baseURL string) (model.Health, error) {
	return api.NewTaskService(api.New(baseURL, nil)).HealthCheck(ctx)
}

func blankConfig() *config.Config {
	cfg := config.Default()
	cfg.API.BaseURL = ""
	return cfg
}

// press sends k and returns the resulting command without running it.
func (h *harness) press(k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := h.w.Update(msg)
	return cmd
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.w.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// deliver runs cmd and feeds its messages back in. Follow-up commands are dropped.
func (h *harness) deliver(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			h.deliver(c)
		}
		return
	}
	switch msg.(type) {
	case nil, tea.QuitMsg:
	default:
		h.w.Update(msg)
	}
}

// toServer walks welcome and mode screens, choosing the mode at index.
func (h *harness) toServer(modeIndex int) {
	h.press("enter")
	for i := 0; i < modeIndex; i++ {
		h.press("down")
	}
	h.press("enter")
}

func TestWizard_HappyPath(t *testing.T) {
	srv := apitest.New()
	defer srv.Close()
	h := newHarness(t, blankConfig(), apiHealth)

	assert.Equal(t, PhaseWelcome, h.w.Phase())
	assert.Contains(t, h.w.View(), "Welcome!")

	h.toServer(0)
	require.Equal(t, PhaseServer, h.w.Phase())

	h.typeText(srv.BaseURL())
	cmd := h.press("enter")
	require.Equal(t, PhaseCheck, h.w.Phase())
	assert.Contains(t, h.w.View(), "Checking...")

	h.deliver(cmd)
	assert.Contains(t, h.w.View(), "responding")
	assert.Contains(t, h.w.View(), "healthy")
	assert.Equal(t, 1, srv.Hits("GET", "/health"))

	h.deliver(h.press("enter"))
	require.Equal(t, PhaseComplete, h.w.Phase())
	require.Len(t, h.saved, 1)
	assert.Equal(t, config.ModeMulti, h.saved[0].Mode)
	assert.Equal(t, srv.BaseURL(), h.saved[0].API.BaseURL)
	assert.Contains(t, h.w.View(), "/tmp/microstep/config.toml")

	cmd = h.press("enter")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	res := h.w.Result()
	assert.True(t, res.Saved)
	assert.True(t, res.Launch)
}

func TestWizard_SingleUserAndClose(t *testing.T) {
	h := newHarness(t, blankConfig(), func(context.Context, string) (model.Health, error) {
		return model.Health{"status": "healthy"}, nil
	})

	h.toServer(1)
	h.typeText("http://localhost:5000/api/")
	h.deliver(h.press("enter"))
	h.deliver(h.press("enter"))
	require.Equal(t, PhaseComplete, h.w.Phase())
	assert.Contains(t, h.w.View(), "Just me")

	h.press("down")
	h.press("enter")

	res := h.w.Result()
	assert.True(t, res.Saved)
	assert.False(t, res.Launch)
	assert.Equal(t, config.ModeSingle, res.Config.Mode)
	assert.Equal(t, "http://localhost:5000/api", res.Config.API.BaseURL)
}

func TestWizard_InvalidURL(t *testing.T) {
	h := newHarness(t, blankConfig(), nil)
	h.toServer(0)

	h.typeText("localhost:5000")
	assert.Nil(t, h.press("enter"))
	assert.Equal(t, PhaseServer, h.w.Phase())
	assert.Contains(t, h.w.Err(), "must be an absolute http(s) URL")
	assert.Contains(t, h.w.View(), "[X]")

	// Typing clears the error.
	h.typeText("x")
	assert.Empty(t, h.w.Err())
}

func TestWizard_BackendDownCanStillSave(t *testing.T) {
	calls := 0
	h := newHarness(t, blankConfig(), func(context.Context, string) (model.Health, error) {
		calls++
		return nil, errors.New("Backend is not responding")
	})
	h.toServer(0)
	h.typeText("http://127.0.0.1:1/api")
	h.deliver(h.press("enter"))

	view := h.w.View()
	assert.Contains(t, view, "Backend is not responding")
	assert.Contains(t, view, "enter save anyway")

	h.deliver(h.press("r"))
	assert.Equal(t, 2, calls)

	h.deliver(h.press("enter"))
	assert.Equal(t, PhaseComplete, h.w.Phase())
	assert.Len(t, h.saved, 1)
}

func TestWizard_SaveFailureStays(t *testing.T) {
	w := New(Options{
		Config: blankConfig(),
		Theme:  styles.NewTheme(),
		Save:   func(*config.Config) error { return errors.New("permission denied") },
	})
	h := &harness{w: w}
	h.toServer(0)
	h.typeText("http://localhost:5000/api")
	h.deliver(h.press("enter"))
	h.deliver(h.press("enter"))

	assert.Equal(t, PhaseCheck, w.Phase())
	assert.Equal(t, "permission denied", w.Err())
	assert.False(t, w.Result().Saved)
}

func TestWizard_EscGoesBack(t *testing.T) {
	h := newHarness(t, nil, nil)
	h.toServer(0)
	require.Equal(t, PhaseServer, h.w.Phase())

	h.press("esc")
	assert.Equal(t, PhaseMode, h.w.Phase())
	h.press("esc")
	assert.Equal(t, PhaseWelcome, h.w.Phase())
}

func TestWizard_StartsFromExistingConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = config.ModeSingle
	cfg.API.BaseURL = "https://microstep.example.com/api"
	cfg.UI.FocusCount = 7

	h := newHarness(t, cfg, nil)
	h.press("enter")
	assert.Contains(t, h.w.View(), "> Just me")
	h.press("enter")
	h.deliver(h.press("enter"))
	h.deliver(h.press("enter"))

	require.Len(t, h.saved, 1)
	assert.Equal(t, "https://microstep.example.com/api", h.saved[0].API.BaseURL)
	assert.Equal(t, 7, h.saved[0].UI.FocusCount)
	// The caller's config is untouched.
	assert.Equal(t, config.ModeSingle, cfg.Mode)
}

func TestWizard_QuitEarly(t *testing.T) {
	h := newHarness(t, nil, nil)
	cmd := h.press("q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.False(t, h.w.Result().Saved)
	assert.False(t, h.w.Result().Launch)

	h.toServer(0)
	// q is text on the server screen.
	h.press("q")
	assert.Equal(t, PhaseServer, h.w.Phase())
}

func TestWizard_StaleHealthIgnored(t *testing.T) {
	h := newHarness(t, blankConfig(), nil)
	h.toServer(0)
	h.typeText("http://localhost:5000/api")
	h.press("enter")

	h.w.Update(healthMsg{baseURL: "http://other/api", err: errors.New("boom")})
	assert.NotContains(t, h.w.View(), "boom")
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "welcome", PhaseWelcome.String())
	assert.Equal(t, "complete", PhaseComplete.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
