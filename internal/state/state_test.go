// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/microstep-tui/internal/model"
)

var now = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func sampleTasks() []model.Task {
	return []model.Task{
		{TaskID: "t1", Title: "Write report", Priority: model.PriorityHigh, EstimatedDuration: 45, Status: model.StatusPending},
		{TaskID: "t2", Title: "Inbox zero", Priority: model.PriorityLow, EstimatedDuration: 15, Status: model.StatusCompleted},
		{TaskID: "t3", Title: "Stretch", Priority: model.PriorityMedium, EstimatedDuration: 5},
		{TaskID: "t4", Title: "Call mom", Priority: model.PriorityMedium, EstimatedDuration: 20},
		{TaskID: "t5", Title: "Plan week", Priority: model.PriorityHigh, EstimatedDuration: 30},
	}
}

func TestNew_SeedsFromIdentity(t *testing.T) {
	id := model.Identity{User: model.User{UserID: "u", Streak: 3, TotalPoints: 40}, Source: model.SourceToken}
	s := New(id)

	assert.Equal(t, 40, s.Points)
	assert.Equal(t, 3, s.Stats.Streak)
	assert.Empty(t, s.Tasks)
}

func TestWithTasks_Copies(t *testing.T) {
	in := sampleTasks()
	s := Snapshot{}.WithTasks(in)
	in[0].Title = "mutated"

	assert.Equal(t, "Write report", s.Tasks[0].Title)
	assert.NotNil(t, Snapshot{}.WithTasks(nil).Tasks)
}

func TestWithStats_SyncsPoints(t *testing.T) {
	s := New(model.StaticIdentity()).WithStats(model.Stats{Streak: 10, TotalPoints: 120})
	assert.Equal(t, 120, s.Points)
	assert.Equal(t, 10, s.Identity.Streak)
}

func TestWithCreatedTask_Prepends(t *testing.T) {
	base := Snapshot{}.WithTasks(sampleTasks())
	next := base.WithCreatedTask(model.Task{TaskID: "new", Title: "Fresh"})

	require.Len(t, next.Tasks, 6)
	assert.Equal(t, "new", next.Tasks[0].TaskID)
	assert.Len(t, base.Tasks, 5, "input snapshot unchanged")
	assert.Equal(t, "t1", base.Tasks[0].TaskID)
}

func TestWithCompletion_Remove(t *testing.T) {
	base := Snapshot{Points: 5}.WithTasks(sampleTasks())
	next := base.WithCompletion("t1", model.Completion{PointsEarned: 15, Celebration: "Nice!"}, now, RemoveCompleted)

	_, found := next.FindTask("t1")
	assert.False(t, found)
	assert.Equal(t, 20, next.Points)
	assert.Equal(t, 1, next.Stats.CompletedTasks)

	_, found = base.FindTask("t1")
	assert.True(t, found, "input snapshot unchanged")
	assert.Equal(t, 5, base.Points)
}

func TestWithCompletion_Mark(t *testing.T) {
	base := Snapshot{}.WithTasks(sampleTasks())
	next := base.WithCompletion("t3", model.Completion{PointsEarned: 10}, now, MarkCompleted)

	task, found := next.FindTask("t3")
	require.True(t, found)
	assert.True(t, task.IsCompleted())
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)
	assert.Equal(t, 10, task.PointsValue)

	orig, _ := base.FindTask("t3")
	assert.True(t, orig.IsPending(), "input snapshot unchanged")
	assert.Len(t, next.PendingTasks(), 3)
	assert.Len(t, next.CompletedTasks(), 2)
}

func TestWithCompletion_UnknownTask(t *testing.T) {
	base := Snapshot{}.WithTasks(sampleTasks())
	next := base.WithCompletion("nope", model.Completion{PointsEarned: 7}, now, RemoveCompleted)

	assert.Equal(t, base.Tasks, next.Tasks)
	assert.Equal(t, 7, next.Points)
}

func TestPushNudge_CapAndOrder(t *testing.T) {
	var s Snapshot
	for i := 0; i < 8; i++ {
		s = s.PushNudge(NewNudgeEntry(model.MoodNeutral, fmt.Sprintf("nudge %d", i), now.Add(time.Duration(i)*time.Minute)))
	}

	require.Len(t, s.Nudges, MaxNudges)
	assert.Equal(t, "nudge 7", s.Nudges[0].Text)
	assert.Equal(t, "nudge 3", s.Nudges[4].Text)

	latest, ok := s.LatestNudge()
	require.True(t, ok)
	assert.Equal(t, "nudge 7", latest.Text)
	assert.NotEmpty(t, latest.ID)

	_, ok = Snapshot{}.LatestNudge()
	assert.False(t, ok)
}

func TestPushNudge_DoesNotAlias(t *testing.T) {
	a := Snapshot{}.PushNudge(NewNudgeEntry(model.MoodPositive, "one", now))
	b := a.PushNudge(NewNudgeEntry(model.MoodNegative, "two", now))
	c := a.PushNudge(NewNudgeEntry(model.MoodNeutral, "three", now))

	assert.Equal(t, "two", b.Nudges[0].Text)
	assert.Equal(t, "three", c.Nudges[0].Text)
	assert.Len(t, a.Nudges, 1)
}

func TestClearNudges(t *testing.T) {
	a := Snapshot{}.PushNudge(NewNudgeEntry(model.MoodPositive, "one", now))
	b := a.ClearNudges()

	assert.Empty(t, b.Nudges)
	assert.Len(t, a.Nudges, 1)
}

func TestFocusTasks(t *testing.T) {
	s := Snapshot{}.WithTasks(sampleTasks())

	focus := s.FocusTasks(3)
	require.Len(t, focus, 3)
	assert.Equal(t, []string{"t1", "t3", "t4"}, []string{focus[0].TaskID, focus[1].TaskID, focus[2].TaskID})

	assert.Len(t, s.FocusTasks(10), 4)
	assert.Empty(t, Snapshot{}.FocusTasks(3))
}

// One pending task, completed from the dashboard: it leaves the pending
// list and the celebration text is the server's.
func TestScenario_CompleteFromDashboard(t *testing.T) {
	s := Snapshot{}.WithTasks([]model.Task{
		{TaskID: "t1", Title: "Write report", Priority: model.PriorityHigh, EstimatedDuration: 45, Status: model.StatusPending},
	})
	reply := model.Completion{PointsEarned: 15, Celebration: "Nice!"}

	s = s.WithCompletion("t1", reply, now, RemoveCompleted)

	assert.Empty(t, s.PendingTasks())
	assert.Equal(t, 15, s.Points)
}
