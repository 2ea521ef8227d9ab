// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the client-side snapshot the views render and the
// reducers that fold server replies into it.
//
// A Snapshot is a value. Every reducer returns a new Snapshot and never
// writes through to slices reachable from its receiver, so a view can keep
// an old snapshot around (for example while a request is in flight) without
// it changing underneath.
package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/microstep-tui/internal/model"
)

// MaxNudges is how many nudges the history keeps.
const MaxNudges = 5

// CompletionMode selects how a completed task is folded into the list.
type CompletionMode int

const (
	// RemoveCompleted drops the task (dashboard focus list).
	RemoveCompleted CompletionMode = iota
	// MarkCompleted keeps the task and flags it completed (task list).
	MarkCompleted
)

// NudgeEntry is one line of nudge history.
type NudgeEntry struct {
	ID   string
	Mood model.Mood
	Text string
	At   time.Time
}

// NewNudgeEntry stamps a nudge reply with a fresh id.
func NewNudgeEntry(mood model.Mood, text string, at time.Time) NudgeEntry {
	return NudgeEntry{ID: uuid.NewString(), Mood: mood, Text: text, At: at}
}

// Snapshot is everything the views render.
type Snapshot struct {
	Identity model.Identity
	Tasks    []model.Task
	Stats    model.Stats
	Nudges   []NudgeEntry
	// Points is the running total shown in the nav bar. It starts from the
	// identity, follows stats fetches and adds every completion's points.
	Points int
}

// New seeds a snapshot from an identity.
func New(id model.Identity) Snapshot {
	return Snapshot{
		Identity: id,
		Stats:    model.StatsFromUser(id.User),
		Points:   id.TotalPoints,
	}
}

// WithIdentity replaces the identity, keeping loaded data.
func (s Snapshot) WithIdentity(id model.Identity) Snapshot {
	s.Identity = id
	if s.Points == 0 {
		s.Points = id.TotalPoints
	}
	return s
}

// WithTasks replaces the task list with a copy of tasks.
func (s Snapshot) WithTasks(tasks []model.Task) Snapshot {
	s.Tasks = append([]model.Task(nil), tasks...)
	if s.Tasks == nil {
		s.Tasks = []model.Task{}
	}
	return s
}

// WithStats replaces the stats snapshot and syncs the displayed points and streak.
func (s Snapshot) WithStats(st model.Stats) Snapshot {
	s.Stats = st
	s.Points = st.TotalPoints
	s.Identity.Streak = st.Streak
	s.Identity.TotalPoints = st.TotalPoints
	return s
}

// WithCreatedTask puts a newly created task at the top of the list.
func (s Snapshot) WithCreatedTask(t model.Task) Snapshot {
	tasks := make([]model.Task, 0, len(s.Tasks)+1)
	tasks = append(tasks, t)
	tasks = append(tasks, s.Tasks...)
	s.Tasks = tasks
	s.Stats.TotalTasks++
	return s
}

// WithCompletion folds a successful completion reply in. The task is dropped
// or flagged according to mode; points and the completed counter always
// advance, even when taskID is no longer in the list.
func (s Snapshot) WithCompletion(taskID string, c model.Completion, now time.Time, mode CompletionMode) Snapshot {
	tasks := make([]model.Task, 0, len(s.Tasks))
	for _, t := range s.Tasks {
		if t.TaskID != taskID {
			tasks = append(tasks, t)
			continue
		}
		if mode == RemoveCompleted {
			continue
		}
		at := now
		t.Status = model.StatusCompleted
		t.CompletedAt = &at
		if c.PointsEarned > 0 {
			t.PointsValue = c.PointsEarned
		}
		tasks = append(tasks, t)
	}
	s.Tasks = tasks

	s.Points += c.PointsEarned
	s.Stats.TotalPoints += c.PointsEarned
	s.Stats.CompletedTasks++
	s.Identity.TotalPoints = s.Points
	return s
}

// PushNudge records a nudge, newest first, keeping at most MaxNudges.
func (s Snapshot) PushNudge(e NudgeEntry) Snapshot {
	n := len(s.Nudges) + 1
	if n > MaxNudges {
		n = MaxNudges
	}
	nudges := make([]NudgeEntry, 0, n)
	nudges = append(nudges, e)
	for _, old := range s.Nudges {
		if len(nudges) == MaxNudges {
			break
		}
		nudges = append(nudges, old)
	}
	s.Nudges = nudges
	return s
}

// ClearNudges drops the nudge history. The nudges view calls it on mount.
func (s Snapshot) ClearNudges() Snapshot {
	s.Nudges = nil
	return s
}

// LatestNudge returns the newest nudge, if any.
func (s Snapshot) LatestNudge() (NudgeEntry, bool) {
	if len(s.Nudges) == 0 {
		return NudgeEntry{}, false
	}
	return s.Nudges[0], true
}

// PendingTasks returns the tasks not yet completed, in list order.
func (s Snapshot) PendingTasks() []model.Task {
	return filter(s.Tasks, model.Task.IsPending)
}

// CompletedTasks returns the completed tasks, in list order.
func (s Snapshot) CompletedTasks() []model.Task {
	return filter(s.Tasks, model.Task.IsCompleted)
}

// FocusTasks returns at most n pending tasks.
func (s Snapshot) FocusTasks(n int) []model.Task {
	pending := s.PendingTasks()
	if n >= 0 && len(pending) > n {
		pending = pending[:n]
	}
	return pending
}

// FindTask looks a task up by id.
func (s Snapshot) FindTask(id string) (model.Task, bool) {
	for _, t := range s.Tasks {
		if t.TaskID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func filter(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
