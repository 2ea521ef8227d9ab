// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// APPLICATION CONTAINER STYLES
	// ==========================================================================

	App       lipgloss.Style
	Container lipgloss.Style
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Section   lipgloss.Style
	Muted     lipgloss.Style
	Help      lipgloss.Style

	// ==========================================================================
	// NAV BAR STYLES
	// ==========================================================================

	NavBar       lipgloss.Style
	NavBrand     lipgloss.Style
	NavUser      lipgloss.Style
	NavMeta      lipgloss.Style
	NavTab       lipgloss.Style
	NavTabActive lipgloss.Style

	// ==========================================================================
	// CARD STYLES
	// ==========================================================================

	Card        lipgloss.Style
	CardLabel   lipgloss.Style
	CardValue   lipgloss.Style
	CardCaption lipgloss.Style

	// ==========================================================================
	// TASK STYLES
	// ==========================================================================

	TaskRow         lipgloss.Style
	TaskRowSelected lipgloss.Style
	TaskTitle       lipgloss.Style
	TaskDone        lipgloss.Style
	TaskMeta        lipgloss.Style

	// ==========================================================================
	// BADGE STYLES
	// ==========================================================================

	BadgeUnlocked lipgloss.Style
	BadgeLocked   lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormBox        lipgloss.Style
	FormLabel      lipgloss.Style
	FormLabelFocus lipgloss.Style
	FormButton     lipgloss.Style
	FormError      lipgloss.Style

	// ==========================================================================
	// OVERLAY STYLES
	// ==========================================================================

	Modal      lipgloss.Style
	ModalTitle lipgloss.Style
	Spinner    lipgloss.Style
	NudgeBox   lipgloss.Style
	NudgeItem  lipgloss.Style

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	InfoStyle    lipgloss.Style
}

// NewTheme creates a theme, detecting the terminal background.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle()
	t.Container = lipgloss.NewStyle().Padding(0, 1)

	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Section = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginTop(1)

	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted).
		MarginTop(1)

	// Nav bar
	t.NavBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.NavBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.NavUser = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.NavMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.NavTab = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.NavTabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)

	// Cards
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CardLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.CardValue = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)
	t.CardCaption = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	// Tasks
	t.TaskRow = lipgloss.NewStyle().PaddingLeft(2)

	t.TaskRowSelected = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Purple).
		Background(SurfaceBright).
		PaddingLeft(1)

	t.TaskTitle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimary)

	t.TaskDone = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)

	t.TaskMeta = lipgloss.NewStyle().Foreground(TextSecondary)

	// Badges
	t.BadgeUnlocked = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Emerald).
		Padding(0, 1).
		Align(lipgloss.Center)

	t.BadgeLocked = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Foreground(TextMuted).
		Padding(0, 1).
		Align(lipgloss.Center)

	// Forms
	t.FormBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.FormLabel = lipgloss.NewStyle().Foreground(TextSecondary)
	t.FormLabelFocus = lipgloss.NewStyle().Foreground(Purple).Bold(true)

	t.FormButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 2)

	t.FormError = lipgloss.NewStyle().Foreground(Rose)

	// Overlays
	t.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Emerald).
		Padding(1, 3).
		Align(lipgloss.Center)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.Spinner = lipgloss.NewStyle().Foreground(Purple)

	t.NudgeBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(1, 2)

	t.NudgeItem = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Overlay).
		PaddingLeft(1)

	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GlamourStyle picks the markdown style for theme ("auto", "dark", "light").
func (t *Theme) GlamourStyle(theme string) string {
	switch theme {
	case "dark", "light":
		return theme
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}
