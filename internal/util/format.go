// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titleCaser = cases.Title(language.English)
	printer    = message.NewPrinter(language.English)
)

// Label turns a wire value such as "high" or "in_progress" into display
// text ("High", "In Progress").
func Label(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	return titleCaser.String(s)
}

// Thousands formats n with English digit grouping (1234567 -> "1,234,567").
func Thousands(n int) string {
	return printer.Sprintf("%d", n)
}

// Minutes renders a duration in minutes as "45 min" or "1h 30m".
func Minutes(m int) string {
	if m < 60 {
		return printer.Sprintf("%d min", m)
	}
	if m%60 == 0 {
		return printer.Sprintf("%dh", m/60)
	}
	return printer.Sprintf("%dh %dm", m/60, m%60)
}
