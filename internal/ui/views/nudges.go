// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/state"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/util"
)

// Nudge view messages.
const (
	msgNudgeFailed     = "Failed to get nudge"
	msgNudgeDelivered  = "Fresh motivation delivered! ✨"
	msgDigestFailed    = "Failed to generate daily digest"
	msgDigestShortcut  = "Daily digest generated! Check your stats page."
	DefaultNudgeText   = "Hey there! Ready to tackle your next micro-step? You've got this! 💪"
	nudgeHistoryFormat = "15:04"
)

// Nudges is the motivation center: current nudge, mood selector, quick
// actions and the recent nudge history.
type Nudges struct {
	deps    *Deps
	keys    KeyMap
	spinner spinner.Model

	mood     model.Mood
	fetching bool
	// quiet suppresses the success toast for the nudge fetched on mount.
	quiet     bool
	digesting bool
}

// NewNudges creates the nudges view.
func NewNudges(deps *Deps) Nudges {
	return Nudges{deps: deps, keys: DefaultKeyMap(), spinner: newSpinner(), mood: model.MoodNeutral}
}

// Mood returns the selected mood.
func (m Nudges) Mood() model.Mood {
	return m.mood
}

// Fetching reports whether a nudge request is outstanding.
func (m Nudges) Fetching() bool {
	return m.fetching
}

// Mount drops the previous history and fetches a neutral nudge.
func (m Nudges) Mount(snap state.Snapshot) (Nudges, state.Snapshot, tea.Cmd) {
	m.mood = model.MoodNeutral
	m.fetching = true
	m.quiet = true
	return m, snap.ClearNudges(), tea.Batch(m.spinner.Tick, nudgeCmd(m.deps, model.MoodNeutral))
}

func (m Nudges) request(mood model.Mood) (Nudges, tea.Cmd) {
	if m.fetching {
		return m, nil
	}
	m.fetching = true
	m.quiet = false
	return m, tea.Batch(m.spinner.Tick, nudgeCmd(m.deps, mood))
}

// Update folds nudge messages into the snapshot.
func (m Nudges) Update(msg tea.Msg, snap state.Snapshot) (Nudges, state.Snapshot, tea.Cmd) {
	switch msg := msg.(type) {
	case nudgeMsg:
		m.fetching = false
		if msg.err != nil {
			return m, snap, failToast(msg.err, msgNudgeFailed)
		}
		snap = snap.PushNudge(state.NewNudgeEntry(msg.mood, msg.text, m.deps.now()))
		if m.quiet {
			m.quiet = false
			return m, snap, nil
		}
		return m, snap, components.SuccessToastCmd(msgNudgeDelivered)

	case digestMsg:
		if msg.view != components.TabNudges {
			return m, snap, nil
		}
		m.digesting = false
		if msg.err != nil {
			return m, snap, failToast(msg.err, msgDigestFailed)
		}
		return m, snap, components.SuccessToastCmd(msgDigestShortcut)

	case spinner.TickMsg:
		if m.fetching {
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

func (m Nudges) handleKey(msg tea.KeyMsg, snap state.Snapshot) (Nudges, state.Snapshot, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Left):
		m.mood = shiftMood(m.mood, -1)
	case key.Matches(msg, m.keys.Right):
		m.mood = shiftMood(m.mood, 1)
	case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Refresh):
		m, cmd = m.request(m.mood)
	case key.Matches(msg, m.keys.Positive):
		m, cmd = m.request(model.MoodPositive)
	case key.Matches(msg, m.keys.Neutral):
		m, cmd = m.request(model.MoodNeutral)
	case key.Matches(msg, m.keys.Negative):
		m, cmd = m.request(model.MoodNegative)
	case key.Matches(msg, m.keys.Digest):
		if !m.digesting {
			m.digesting = true
			cmd = digestCmd(m.deps, components.TabNudges)
		}
	}
	return m, snap, cmd
}

// shiftMood moves through model.Moods without wrapping.
func shiftMood(mood model.Mood, delta int) model.Mood {
	for i, candidate := range model.Moods {
		if candidate == mood {
			return model.Moods[clamp(i+delta, len(model.Moods))]
		}
	}
	return model.MoodNeutral
}

// View renders the nudge center over snap.
func (m Nudges) View(snap state.Snapshot) string {
	theme := m.deps.Theme
	width := m.deps.width()
	wrap := width - 8
	if wrap < 20 {
		wrap = 20
	}

	header := theme.Title.Render("AI Motivation Center") + "\n" +
		theme.Subtitle.Render("Your AI coach is here to keep you moving forward")

	var current string
	if m.fetching {
		current = components.Loading(theme, m.spinner.View(), "your personalized motivation")
	} else {
		text := DefaultNudgeText
		if latest, ok := snap.LatestNudge(); ok && latest.Text != "" {
			text = latest.Text
		}
		current = util.Wrap(text, wrap)
	}
	currentBox := theme.NudgeBox.Render(current)

	moods := make([]string, 0, len(model.Moods))
	for _, mood := range model.Moods {
		label := "  " + mood.Label() + "  "
		if mood == m.mood {
			moods = append(moods, theme.NavTabActive.Render(label))
		} else {
			moods = append(moods, theme.NavTab.Render(label))
		}
	}
	selector := theme.Section.Render("How are you feeling right now?") + "\n" +
		lipgloss.JoinHorizontal(lipgloss.Top, moods...)

	quick := theme.Section.Render("Quick Motivation Actions") + "\n" +
		theme.Muted.Render(helpLine(m.keys.Positive, m.keys.Neutral, m.keys.Negative))

	var history string
	if len(snap.Nudges) > 0 {
		var b strings.Builder
		b.WriteString(theme.Section.Render("Recent Nudges"))
		for _, n := range snap.Nudges {
			b.WriteString("\n")
			meta := theme.Muted.Render(util.Label(string(n.Mood)) + " • " + n.At.Format(nudgeHistoryFormat))
			b.WriteString(theme.NudgeItem.Render(meta + "\n" + util.Wrap(n.Text, wrap-4)))
		}
		history = b.String()
	}

	digest := theme.Section.Render("Daily Digest") + "\n" +
		theme.Muted.Render("Get a personalized AI-generated summary of your day.")

	return joinLines(
		header,
		currentBox,
		selector,
		quick,
		history,
		digest,
		theme.Help.Render(helpLine(m.keys.Left, m.keys.Right, m.keys.Submit, m.keys.Digest)),
	)
}
