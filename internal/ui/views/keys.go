// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap holds the bindings shared by the content views.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Complete key.Binding
	Add      key.Binding
	Filter   key.Binding
	Refresh  key.Binding
	Digest   key.Binding
	Cancel   key.Binding
	NextFld  key.Binding
	PrevFld  key.Binding
	Submit   key.Binding
	Left     key.Binding
	Right    key.Binding
	Positive key.Binding
	Neutral  key.Binding
	Negative key.Binding
}

// DefaultKeyMap returns the default view bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "move down"),
		),
		Complete: key.NewBinding(
			key.WithKeys("enter", "x", " "),
			key.WithHelp("enter/x", "complete"),
		),
		Add: key.NewBinding(
			key.WithKeys("a", "n"),
			key.WithHelp("a", "add task"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Digest: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "daily digest"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		NextFld: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "next field"),
		),
		PrevFld: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("S-tab", "previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next"),
		),
		Positive: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "I'm feeling great!"),
		),
		Neutral: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "just okay"),
		),
		Negative: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "I need support"),
		),
	}
}

// helpLine renders bindings as "key desc • key desc".
func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " • "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}
