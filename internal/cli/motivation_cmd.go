// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/progress"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/util"
)

func (a *App) nudgeCmd() *cobra.Command {
	var mood string
	cmd := &cobra.Command{
		Use:   "nudge",
		Short: "Ask for a motivational nudge",
		Example: `  microstep nudge
  microstep nudge --mood negative`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := model.ParseMood(mood)
			if err != nil {
				return NewValidationErrorWithExample("mood", mood, "unknown mood", "--mood positive|neutral|negative")
			}
			if err := a.requireSession(); err != nil {
				return err
			}

			ctx, cancel := a.callContext(cmd)
			defer cancel()
			reply, err := a.tasks.GetNudge(ctx, m)
			if err != nil {
				return err
			}
			return a.emit(cmd, NudgeData{Mood: m, Nudge: reply.Nudge}, func(w io.Writer) {
				fmt.Fprintln(w, TitleStyle.Render("✨ "+m.Label()))
				fmt.Fprintln(w, util.Wrap(reply.Nudge, terminalWidth(a.Stdout)-2))
			})
		},
	}
	cmd.Flags().StringVarP(&mood, "mood", "m", string(model.MoodNeutral), "positive, neutral or negative")
	return cmd
}

func (a *App) digestCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Generate today's AI summary",
		Long: `Generate the daily digest. The backend builds a fresh digest on every
call; nothing is cached. Output is rendered as markdown on a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx, cancel := a.callContext(cmd)
			defer cancel()
			d, err := a.tasks.GetDailyDigest(ctx)
			if err != nil {
				return err
			}
			return a.emit(cmd, d, func(w io.Writer) {
				if raw || !ColorsEnabled() {
					fmt.Fprintln(w, d.Digest)
					return
				}
				fmt.Fprintln(w, a.renderMarkdown(d.Digest))
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the digest without markdown rendering")
	return cmd
}

// renderMarkdown renders text with glamour in the configured theme,
// falling back to the raw text.
func (a *App) renderMarkdown(text string) string {
	theme := styles.NewTheme()
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme.GlamourStyle(a.cfg.UI.Theme)),
		glamour.WithWordWrap(terminalWidth(a.Stdout)-4),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func (a *App) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show streak, points, completion rate and badges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx, cancel := a.callContext(cmd)
			defer cancel()
			st, err := a.tasks.GetUserStats(ctx)
			if err != nil {
				return err
			}
			data := StatsData{
				Stats:             st,
				CompletionPercent: progress.CompletionPercent(st.CompletionRate),
				StreakMessage:     progress.StreakMessage(st.Streak),
				Badges:            progress.Badges(st),
			}
			return a.emit(cmd, data, func(w io.Writer) {
				printStats(w, data)
			})
		},
	}
}

func printStats(w io.Writer, d StatsData) {
	st := d.Stats
	fmt.Fprintln(w, TitleStyle.Render("Your Progress"))
	fmt.Fprintln(w, RenderField("🔥 Streak", fmt.Sprintf("%d days  ", st.Streak))+DimStyle.Render(d.StreakMessage))
	fmt.Fprintln(w, RenderField("⭐ Points", util.Thousands(st.TotalPoints)+"  ")+DimStyle.Render(progress.PointsCaption(st.TotalPoints)))
	fmt.Fprintln(w, RenderField("🎯 Completion", fmt.Sprintf("%d%%  ", d.CompletionPercent))+DimStyle.Render(progress.RateCaption(st.CompletionRate)))
	fmt.Fprintln(w, RenderField("📅 This week", fmt.Sprintf("%d tasks  ", st.WeeklyTasks))+DimStyle.Render(progress.WeeklyCaption(st.WeeklyTasks)))

	fmt.Fprintln(w, SectionStyle.Render("Task Overview"))
	fmt.Fprintf(w, "Total %d • Completed %d • Pending %d\n", st.TotalTasks, st.CompletedTasks, st.Pending())
	fmt.Fprintf(w, "%s %d%%\n", progress.ProgressBar(st.CompletionRate, 30), d.CompletionPercent)

	unlocked := 0
	for _, b := range d.Badges {
		if b.Unlocked {
			unlocked++
		}
	}
	fmt.Fprintln(w, SectionStyle.Render(fmt.Sprintf("Achievement Badges (%d/%d)", unlocked, len(d.Badges))))
	for _, b := range d.Badges {
		state := "locked"
		if b.Unlocked {
			state = "unlocked"
		}
		fmt.Fprintf(w, "%s %s %s %s\n", RenderStatus(state), b.Icon, b.Name, DimStyle.Render(b.Status()))
	}
}

func (a *App) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is responding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.callContext(cmd)
			defer cancel()
			h, err := a.tasks.HealthCheck(ctx)
			if err != nil {
				return err
			}
			data := HealthData{BaseURL: a.cfg.API.BaseURL, Healthy: true, Details: h}
			return a.emit(cmd, data, func(w io.Writer) {
				fmt.Fprintf(w, "%s Backend is responding at %s\n", RenderStatus("ok"), data.BaseURL)
				keys := make([]string, 0, len(h))
				for k := range h {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintln(w, RenderField(k, fmt.Sprint(h[k])))
				}
			})
		},
	}
}
