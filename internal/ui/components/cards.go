// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/progress"
	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/util"
)

// StatCard is a labelled number with an optional caption.
type StatCard struct {
	Icon    string
	Label   string
	Value   string
	Caption string
	Accent  lipgloss.AdaptiveColor
}

// View renders the card at the given outer width.
func (c StatCard) View(theme *styles.Theme, width int) string {
	inner := width - 4
	if inner < 10 {
		inner = 10
	}
	lines := []string{
		theme.CardLabel.Render(util.TruncateWidth(c.Icon+" "+c.Label, inner)),
		theme.CardValue.Foreground(c.Accent).Render(util.TruncateWidth(c.Value, inner)),
	}
	if c.Caption != "" {
		lines = append(lines, theme.CardCaption.Render(util.TruncateWidth(c.Caption, inner)))
	}
	return theme.Card.Width(inner + 2).Render(strings.Join(lines, "\n"))
}

// CardRow lays cards out side by side, wrapping to two rows or one column
// when the terminal is narrow.
func CardRow(theme *styles.Theme, width int, cards ...StatCard) string {
	if len(cards) == 0 {
		return ""
	}
	perRow := len(cards)
	switch theme.GetLayoutMode() {
	case styles.LayoutNarrow:
		perRow = 1
	case styles.LayoutMedium:
		if perRow > 2 {
			perRow = 2
		}
	}
	cardWidth := width / perRow
	if width <= 0 {
		cardWidth = 24
	}

	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		rendered := make([]string, 0, perRow)
		for _, c := range cards[i:end] {
			rendered = append(rendered, c.View(theme, cardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// BadgeCard renders one achievement.
func BadgeCard(theme *styles.Theme, b progress.Badge) string {
	style := theme.BadgeLocked
	mark := styles.StatusIndicators.Pending
	if b.Unlocked {
		style = theme.BadgeUnlocked
		mark = styles.StatusIndicators.Done
	}
	return style.Width(26).Render(b.Icon + " " + b.Name + "\n" + mark + " " + b.Status())
}

// BadgeRow renders all badges side by side.
func BadgeRow(theme *styles.Theme, badges []progress.Badge) string {
	rendered := make([]string, 0, len(badges))
	for _, b := range badges {
		rendered = append(rendered, BadgeCard(theme, b))
	}
	if theme.GetLayoutMode() == styles.LayoutNarrow {
		return lipgloss.JoinVertical(lipgloss.Left, rendered...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

// TaskLine renders one task row: checkbox, title, priority and duration.
func TaskLine(theme *styles.Theme, t model.Task, selected bool, width int) string {
	box := styles.StatusIndicators.Pending
	title := t.Title
	titleStyle := theme.TaskTitle
	if t.IsCompleted() {
		box = styles.StatusIndicators.Done
		titleStyle = theme.TaskDone
	}

	priority := lipgloss.NewStyle().
		Foreground(styles.PriorityColor(string(t.Priority))).
		Render(util.Label(string(t.Priority)))
	meta := priority + theme.TaskMeta.Render(" • "+util.Minutes(t.EstimatedDuration))
	if t.IsCompleted() && t.PointsValue > 0 {
		meta += theme.TaskMeta.Render(fmt.Sprintf(" • +%d", t.PointsValue))
	}

	titleWidth := width - lipgloss.Width(meta) - 10
	if titleWidth < 10 {
		titleWidth = 10
	}
	line := box + " " + titleStyle.Render(util.PadRight(title, titleWidth)) + "  " + meta
	if t.Description != "" && selected {
		line += "\n      " + theme.Muted.Render(util.TruncateWidth(t.Description, width-8))
	}

	if selected {
		return theme.TaskRowSelected.Render(line)
	}
	return theme.TaskRow.Render(line)
}

// ProgressRing is the text rendition of the completion ring: a bar filled
// in proportion to the ring angle, plus the rounded percentage.
func ProgressRing(theme *styles.Theme, rate float64, width int) string {
	barWidth := width - 12
	if barWidth < 10 {
		barWidth = 10
	}
	if barWidth > 40 {
		barWidth = 40
	}
	color := styles.RateColor(progress.LevelForRate(rate).String())
	bar := lipgloss.NewStyle().Foreground(color).Render(progress.ProgressBar(rate, barWidth))
	pct := theme.CardValue.Render(fmt.Sprintf("%3d%%", progress.CompletionPercent(rate)))
	return bar + " " + pct
}

// Loading renders the placeholder shown until a view's fetches settle.
func Loading(theme *styles.Theme, spinnerView, what string) string {
	return theme.Spinner.Render(spinnerView) + " " + theme.Muted.Render("Loading "+what+"...")
}
