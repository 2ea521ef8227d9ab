// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI pieces for the microstep TUI.

# Feedback

ToastManager (toast.go) - Non-blocking notifications in the bottom-right
corner. Success and status toasts live 4s, errors 8s; at most five are shown,
newest first. Views never touch the manager directly: they return a ToastMsg
from a command and the shell adds it.

Celebration (celebration.go) - The one-shot modal shown after completing a
task. Show returns the tea.Tick that dismisses it; a sequence number makes
an older dismissal harmless when a newer celebration replaced it.

# Layout

NavBar (navbar.go) - Brand, user name, streak and points, and the four tabs.

StatCard, CardRow, BadgeCard, TaskLine, ProgressRing (cards.go) - The
building blocks of the dashboard, task list and stats views. They adapt to
styles.LayoutMode.

# Search

FuzzyMatch, FilterTasks (filter.go) - Ranked fuzzy filtering for the task list.
*/
package components
