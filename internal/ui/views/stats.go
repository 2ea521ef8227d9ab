// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/microstep-tui/internal/progress"
	"github.com/jeranaias/microstep-tui/internal/state"
	"github.com/jeranaias/microstep-tui/internal/ui/components"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/util"
)

// Stats view messages.
const (
	msgStatsLoadFailed = "Failed to load stats"
	msgDigestReady     = "Daily digest generated! 📖"
	msgExcellentRate   = "Excellent completion rate! Keep up the great work!"
)

// Stats shows the full progress picture: cards, task overview, ring,
// daily digest and badges.
type Stats struct {
	deps    *Deps
	keys    KeyMap
	spinner spinner.Model
	loading bool

	digesting bool
	digest    string
	rendered  string
}

// NewStats creates the stats view.
func NewStats(deps *Deps) Stats {
	return Stats{deps: deps, keys: DefaultKeyMap(), spinner: newSpinner()}
}

// Loading reports whether the stats fetch is outstanding.
func (m Stats) Loading() bool {
	return m.loading
}

// Digest returns the raw text of the last generated digest.
func (m Stats) Digest() string {
	return m.digest
}

// Mount fetches the stats snapshot. A digest generated earlier in the
// session stays on screen.
func (m Stats) Mount() (Stats, tea.Cmd) {
	m.loading = true
	return m, tea.Batch(m.spinner.Tick, loadStatsCmd(m.deps, components.TabStats))
}

// Update folds stats messages into the snapshot.
func (m Stats) Update(msg tea.Msg, snap state.Snapshot) (Stats, state.Snapshot, tea.Cmd) {
	switch msg := msg.(type) {
	case statsLoadedMsg:
		if msg.view != components.TabStats {
			return m, snap, nil
		}
		m.loading = false
		if msg.err != nil {
			return m, snap, failToast(msg.err, msgStatsLoadFailed)
		}
		return m, snap.WithStats(msg.stats), nil

	case digestMsg:
		// A digest generated from the nudges view is shown here too.
		if msg.err != nil {
			if msg.view == components.TabStats {
				m.digesting = false
				return m, snap, failToast(msg.err, msgDigestFailed)
			}
			return m, snap, nil
		}
		m.digest = msg.text
		m.rendered = renderDigest(m.deps, msg.text)
		if msg.view != components.TabStats {
			return m, snap, nil
		}
		m.digesting = false
		return m, snap, components.SuccessToastCmd(msgDigestReady)

	case spinner.TickMsg:
		if m.loading || m.digesting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, snap, cmd
		}
		return m, snap, nil

	case tea.WindowSizeMsg:
		if m.digest != "" {
			m.rendered = renderDigest(m.deps, m.digest)
		}
		return m, snap, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Digest):
			if m.digesting {
				return m, snap, nil
			}
			m.digesting = true
			return m, snap, tea.Batch(m.spinner.Tick, digestCmd(m.deps, components.TabStats))
		case key.Matches(msg, m.keys.Refresh):
			var cmd tea.Cmd
			m, cmd = m.Mount()
			return m, snap, cmd
		}
	}
	return m, snap, nil
}

// renderDigest renders the digest as markdown, falling back to plain
// wrapped text when glamour cannot.
func renderDigest(d *Deps, text string) string {
	width := d.width() - 8
	if width < 20 {
		width = 20
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if d.Theme != nil {
		opts = append(opts,
			glamour.WithStandardStyle(d.Theme.GlamourStyle(d.DigestStyle)),
			glamour.WithColorProfile(d.Theme.ColorProfile),
		)
	} else {
		opts = append(opts, glamour.WithStandardStyle("dark"))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return util.Wrap(text, width)
	}
	out, err := r.Render(text)
	if err != nil {
		return util.Wrap(text, width)
	}
	return strings.TrimRight(out, "\n")
}

// View renders the stats view over snap.
func (m Stats) View(snap state.Snapshot) string {
	theme := m.deps.Theme
	if m.loading {
		return components.Loading(theme, m.spinner.View(), "your stats")
	}
	width := m.deps.width()
	st := snap.Stats

	header := theme.Title.Render("Your Progress") + "\n" +
		theme.Subtitle.Render("Track your journey and celebrate your achievements")

	cards := components.CardRow(theme, width,
		components.StatCard{Icon: "🔥", Label: "Current Streak", Value: fmt.Sprintf("%d days", st.Streak),
			Caption: progress.StreakMessage(st.Streak), Accent: styles.Amber},
		components.StatCard{Icon: "⭐", Label: "Total Points", Value: util.Thousands(st.TotalPoints),
			Caption: progress.PointsCaption(st.TotalPoints), Accent: styles.Purple},
		components.StatCard{Icon: "🎯", Label: "Completion Rate", Value: fmt.Sprintf("%d%%", progress.CompletionPercent(st.CompletionRate)),
			Caption: progress.RateCaption(st.CompletionRate), Accent: styles.RateColor(progress.LevelForRate(st.CompletionRate).String())},
		components.StatCard{Icon: "📅", Label: "This Week", Value: fmt.Sprintf("%d tasks", st.WeeklyTasks),
			Caption: progress.WeeklyCaption(st.WeeklyTasks), Accent: styles.Cyan},
	)

	overview := theme.Section.Render("Task Overview") + "\n" +
		fmt.Sprintf("%s %s   %s %s   %s %s",
			theme.CardLabel.Render("Total"), theme.CardValue.Render(fmt.Sprintf("%d", st.TotalTasks)),
			theme.CardLabel.Render("Completed"), theme.SuccessStyle.Render(fmt.Sprintf("%d", st.CompletedTasks)),
			theme.CardLabel.Render("Pending"), theme.ErrorStyle.Render(fmt.Sprintf("%d", st.Pending())),
		)

	ring := theme.Section.Render("Progress Visualization") + "\n" +
		components.ProgressRing(theme, st.CompletionRate, width) + "\n" +
		theme.Muted.Render(fmt.Sprintf("You've completed %d out of %d tasks, maintaining a %d%% completion rate.",
			st.CompletedTasks, st.TotalTasks, progress.CompletionPercent(st.CompletionRate)))
	if st.CompletionRate >= progress.TaskMasterRate {
		ring += "\n" + theme.SuccessStyle.Render(styles.StatusIndicators.Success+" "+msgExcellentRate)
	}

	digest := theme.Section.Render("Daily Digest") + "\n"
	switch {
	case m.digesting:
		digest += components.Loading(theme, m.spinner.View(), "your daily digest")
	case m.rendered != "":
		digest += m.rendered
	default:
		digest += theme.Muted.Render("No daily digest yet") + "\n" +
			theme.Muted.Render("Generate your personalized AI summary of the day")
	}

	badges := theme.Section.Render(fmt.Sprintf("Achievement Badges (%d/3)", progress.UnlockedCount(st))) + "\n" +
		components.BadgeRow(theme, progress.Badges(st))

	return joinLines(
		header,
		cards,
		overview,
		ring,
		digest,
		badges,
		theme.Help.Render(helpLine(m.keys.Digest, m.keys.Refresh)),
	)
}
