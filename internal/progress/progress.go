// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package progress derives display values from a stats snapshot.
//
// Nothing here is recomputed from raw tasks: completion rate, streak and
// points all arrive from the server. These functions only map those values
// onto captions, thresholds and angles, so every view renders them alike.
package progress

import (
	"math"
	"strings"
	"time"

	"github.com/jeranaias/microstep-tui/internal/model"
)

// =============================================================================
// STREAK MESSAGING
// =============================================================================

// Streak captions, lowest tier first.
const (
	StreakStart     = "Start your streak today!"
	StreakGreat     = "Great start! Keep it going!"
	StreakMomentum  = "You're building momentum!"
	StreakAmazing   = "Amazing consistency!"
	StreakOnFire    = "You're on fire! 🔥"
	StreakLegendary = "Legendary streak! You're unstoppable! 🏆"
)

// StreakMessage picks the caption for a streak length in days.
// Boundaries are half-open: [1,3), [3,7), [7,14), [14,30), [30,∞).
func StreakMessage(streak int) string {
	switch {
	case streak <= 0:
		return StreakStart
	case streak < 3:
		return StreakGreat
	case streak < 7:
		return StreakMomentum
	case streak < 14:
		return StreakAmazing
	case streak < 30:
		return StreakOnFire
	default:
		return StreakLegendary
	}
}

// =============================================================================
// COMPLETION RATE
// =============================================================================

// CompletionPercent is the displayed percentage of a server-supplied rate.
func CompletionPercent(rate float64) int {
	return int(math.Round(rate))
}

// RingAngle maps a 0-100 completion rate onto 0-360 degrees.
func RingAngle(rate float64) float64 {
	return rate * 3.6
}

// RateLevel buckets a completion rate for coloring.
type RateLevel int

const (
	RatePoor RateLevel = iota
	RateFair
	RateGood
)

// String returns "poor", "fair" or "good".
func (l RateLevel) String() string {
	switch l {
	case RateGood:
		return "good"
	case RateFair:
		return "fair"
	default:
		return "poor"
	}
}

// LevelForRate returns good at 80 and above, fair at 60 and above.
func LevelForRate(rate float64) RateLevel {
	switch {
	case rate >= 80:
		return RateGood
	case rate >= 60:
		return RateFair
	default:
		return RatePoor
	}
}

// ProgressBar renders the completion ring as a text bar of the given width.
// Filled cells are proportional to RingAngle over a full turn.
func ProgressBar(rate float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac := RingAngle(rate) / 360
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(math.Round(frac * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// =============================================================================
// STAT CARD CAPTIONS
// =============================================================================

// PointsCaption is shown under the points total.
func PointsCaption(points int) string {
	if points > 100 {
		return "Point master!"
	}
	return "Keep earning!"
}

// RateCaption is shown under the completion rate.
func RateCaption(rate float64) string {
	if rate >= 80 {
		return "Excellent!"
	}
	return "Room to improve!"
}

// WeeklyCaption is shown under the weekly task count.
func WeeklyCaption(weekly int) string {
	if weekly > 5 {
		return "Super productive!"
	}
	return "Keep going!"
}

// =============================================================================
// GREETING
// =============================================================================

// Greeting returns the time-of-day salutation for t's local hour.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// =============================================================================
// BADGES
// =============================================================================

// Badge thresholds. All comparisons are inclusive.
const (
	StreakMasterDays    = 7
	PointCollectorPoint = 100
	TaskMasterRate      = 80.0
)

// Badge is an achievement computed purely from the current snapshot.
type Badge struct {
	Name     string
	Icon     string
	Unlocked bool
	Hint     string
}

// Status is the caption under the badge.
func (b Badge) Status() string {
	if b.Unlocked {
		return "Unlocked!"
	}
	return b.Hint
}

// StreakMaster is unlocked at a streak of 7 days or more.
func StreakMaster(s model.Stats) bool { return s.Streak >= StreakMasterDays }

// PointCollector is unlocked at 100 points or more.
func PointCollector(s model.Stats) bool { return s.TotalPoints >= PointCollectorPoint }

// TaskMaster is unlocked at an 80% completion rate or more.
func TaskMaster(s model.Stats) bool { return s.CompletionRate >= TaskMasterRate }

// Badges returns the three badges in display order.
func Badges(s model.Stats) []Badge {
	return []Badge{
		{Name: "Streak Master", Icon: "🔥", Unlocked: StreakMaster(s), Hint: "Complete 7 days"},
		{Name: "Point Collector", Icon: "⭐", Unlocked: PointCollector(s), Hint: "Earn 100 points"},
		{Name: "Task Master", Icon: "🎯", Unlocked: TaskMaster(s), Hint: "80% completion rate"},
	}
}

// UnlockedCount returns how many badges are unlocked.
func UnlockedCount(s model.Stats) int {
	n := 0
	for _, b := range Badges(s) {
		if b.Unlocked {
			n++
		}
	}
	return n
}
