// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package views holds the screens of the microstep TUI.

Each view is a Bubble Tea sub-model with UI-local state only (cursor,
spinner, form fields). The data they show lives in a state.Snapshot owned
by the shell and passed into every Update and View:

	m, snap, cmd = m.Update(msg, snap)
	out := m.View(snap)

All server calls are tea.Cmds. Their results come back as unexported
messages tagged with the tab that asked, so the shell can broadcast
non-key messages to every view without one view folding another's result.

Failures never touch the snapshot; they produce a components.ToastMsg with
the server's message or the view's fallback text.
*/
package views
