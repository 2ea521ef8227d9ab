// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Stats is a progress snapshot recomputed by the server on every fetch.
type Stats struct {
	Streak         int     `json:"streak"`
	TotalPoints    int     `json:"total_points"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	CompletionRate float64 `json:"completion_rate"`
	WeeklyTasks    int     `json:"weekly_tasks"`
}

// Pending returns the number of tasks not yet completed.
func (s Stats) Pending() int {
	if p := s.TotalTasks - s.CompletedTasks; p > 0 {
		return p
	}
	return 0
}

// StatsFromUser seeds a snapshot from the cached profile before the first fetch.
func StatsFromUser(u User) Stats {
	return Stats{Streak: u.Streak, TotalPoints: u.TotalPoints}
}
