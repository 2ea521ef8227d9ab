// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/microstep-tui/internal/ui/styles"
	"github.com/jeranaias/microstep-tui/internal/util"
)

// CelebrationDuration is how long the completion modal stays up.
const CelebrationDuration = 3 * time.Second

// CelebrationDismissMsg closes the celebration with the matching sequence number.
type CelebrationDismissMsg struct {
	Seq int
}

// Celebration is the one-shot modal shown after a task is completed.
// A newer Show supersedes an older one; the older dismissal is ignored.
type Celebration struct {
	Text     string
	Points   int
	Visible  bool
	Duration time.Duration
	seq      int
}

// NewCelebration returns a hidden celebration with the default duration.
func NewCelebration() Celebration {
	return Celebration{Duration: CelebrationDuration}
}

// Show opens the modal and returns the command that closes it.
func (c Celebration) Show(text string, points int) (Celebration, tea.Cmd) {
	c.seq++
	c.Text = text
	c.Points = points
	c.Visible = true

	seq, d := c.seq, c.Duration
	if d <= 0 {
		d = CelebrationDuration
	}
	return c, tea.Tick(d, func(time.Time) tea.Msg {
		return CelebrationDismissMsg{Seq: seq}
	})
}

// Update handles the dismissal message.
func (c Celebration) Update(msg tea.Msg) Celebration {
	if m, ok := msg.(CelebrationDismissMsg); ok && m.Seq == c.seq {
		c.Visible = false
	}
	return c
}

// Dismiss closes the modal immediately (any key).
func (c Celebration) Dismiss() Celebration {
	c.Visible = false
	return c
}

// View renders the modal, or "" when hidden.
func (c Celebration) View(theme *styles.Theme, width int) string {
	if !c.Visible {
		return ""
	}
	inner := 40
	if width > 0 && width-10 < inner {
		inner = width - 10
	}
	if inner < 20 {
		inner = 20
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		"🎉",
		theme.ModalTitle.Render("Task Completed!"),
		"",
		util.Wrap(c.Text, inner),
	)
	if c.Points > 0 {
		body = lipgloss.JoinVertical(lipgloss.Center, body, "",
			theme.InfoStyle.Render(fmt.Sprintf("+%d points", c.Points)))
	}
	box := theme.Modal.Width(inner + 6).Render(body)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
	}
	return box
}
