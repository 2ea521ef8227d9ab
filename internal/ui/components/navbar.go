// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/util"
)

// Brand is shown at the left of the nav bar.
const Brand = "🚀 Micro Motivation"

// Tab identifies one of the four content views.
type Tab int

const (
	TabDashboard Tab = iota
	TabTasks
	TabNudges
	TabStats
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{TabDashboard, TabTasks, TabNudges, TabStats}

// String returns the tab title.
func (t Tab) String() string {
	switch t {
	case TabDashboard:
		return "Dashboard"
	case TabTasks:
		return "Tasks"
	case TabNudges:
		return "Nudges"
	case TabStats:
		return "Stats"
	default:
		return "?"
	}
}

// Next cycles forward through Tabs.
func (t Tab) Next() Tab {
	return Tabs[(int(t)+1)%len(Tabs)]
}

// Prev cycles backward through Tabs.
func (t Tab) Prev() Tab {
	return Tabs[(int(t)+len(Tabs)-1)%len(Tabs)]
}

// NavBar is the persistent header of the authenticated views.
type NavBar struct {
	UserName string
	Streak   int
	Points   int
	Active   Tab
	Width    int
}

// Summary is the "N day streak • P points" line.
func (n NavBar) Summary() string {
	return fmt.Sprintf("%d day streak • %s points", n.Streak, util.Thousands(n.Points))
}

// View renders the two-line nav bar: brand and user on top, tabs below.
func (n NavBar) View(theme *styles.Theme) string {
	left := theme.NavBrand.Render(Brand)
	right := theme.NavUser.Render(n.UserName) + "  " + theme.NavMeta.Render(n.Summary())

	gap := n.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 2 {
		gap = 2
	}
	top := left + strings.Repeat(" ", gap) + right

	tabs := make([]string, 0, len(Tabs))
	for i, t := range Tabs {
		label := fmt.Sprintf("%d %s", i+1, t)
		if t == n.Active {
			tabs = append(tabs, theme.NavTabActive.Render(label))
		} else {
			tabs = append(tabs, theme.NavTab.Render(label))
		}
	}
	bottom := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	bar := theme.NavBar
	if n.Width > 0 {
		bar = bar.Width(n.Width)
	}
	return bar.Render(top + "\n" + bottom)
}
