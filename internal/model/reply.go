// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// AuthReply is returned by POST /register and POST /login.
type AuthReply struct {
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// Completion is returned by POST /tasks/{id}/complete.
type Completion struct {
	Message      string `json:"message,omitempty"`
	PointsEarned int    `json:"points_earned"`
	Celebration  string `json:"celebration"`
}

// NudgeReply is returned by POST /nudge.
type NudgeReply struct {
	Nudge string `json:"nudge"`
}

// Digest is returned by GET /daily-digest.
type Digest struct {
	Digest string `json:"digest"`
}

// Health is the free-form liveness payload of GET /health.
type Health map[string]any

// =============================================================================
// MOOD
// =============================================================================

// Mood is the self-reported state a nudge is tailored to.
type Mood string

const (
	MoodPositive Mood = "positive"
	MoodNeutral  Mood = "neutral"
	MoodNegative Mood = "negative"
)

// Moods lists the moods in selector order.
var Moods = []Mood{MoodPositive, MoodNeutral, MoodNegative}

// Valid reports whether m is a known mood.
func (m Mood) Valid() bool {
	switch m {
	case MoodPositive, MoodNeutral, MoodNegative:
		return true
	}
	return false
}

// Label is the selector caption for the mood.
func (m Mood) Label() string {
	switch m {
	case MoodPositive:
		return "Great!"
	case MoodNegative:
		return "Struggling"
	default:
		return "Okay"
	}
}

// ParseMood converts user input to a Mood; empty input means neutral.
func ParseMood(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if m == "" {
		return MoodNeutral, nil
	}
	if !m.Valid() {
		return "", fmt.Errorf("unknown mood %q (want positive, neutral or negative)", s)
	}
	return m, nil
}
