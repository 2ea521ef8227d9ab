// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/microstep-tui/internal/api/apitest"
	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/session"
)

func newTaskFixture(t *testing.T) (*apitest.Server, *TaskService, string) {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	user := srv.AddUser("Ada", "ada@example.com", "pw")
	store := session.NewMemoryStore(srv.Token(user.UserID, time.Hour))
	return srv, NewTaskService(New(srv.BaseURL(), store)), user.UserID
}

func TestGetTasks(t *testing.T) {
	srv, svc, uid := newTaskFixture(t)
	srv.SeedTasks(uid,
		model.Task{TaskID: "t1", Title: "Write intro", Priority: model.PriorityHigh, EstimatedDuration: 25},
		model.Task{TaskID: "t2", Title: "Stretch", Priority: model.PriorityLow, EstimatedDuration: 5, Status: model.StatusCompleted},
	)

	tasks, err := svc.GetTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t1", tasks[0].TaskID)
	assert.True(t, tasks[0].IsPending())
	assert.True(t, tasks[1].IsCompleted())
}

func TestGetTasks_EmptyIsNotNil(t *testing.T) {
	srv, svc, _ := newTaskFixture(t)
	srv.Respond(http.MethodGet, "/tasks", http.StatusOK, `null`)

	tasks, err := svc.GetTasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestGetTasks_ServerError(t *testing.T) {
	srv, svc, _ := newTaskFixture(t)
	srv.Respond(http.MethodGet, "/tasks", http.StatusInternalServerError, "")

	_, err := svc.GetTasks(context.Background())
	assert.EqualError(t, err, "Failed to fetch tasks")
}

func TestGetTasks_FlaskDates(t *testing.T) {
	srv, svc, _ := newTaskFixture(t)
	srv.Respond(http.MethodGet, "/tasks", http.StatusOK, `[
		{"task_id":"t1","title":"Write intro","priority":"high","estimated_duration":"25","status":"completed","completed_at":"Sun, 18 Oct 2026 03:10:00 GMT"},
		{"task_id":"t2","title":"Stretch","priority":"low","estimated_duration":"a while","status":"pending","completed_at":null}
	]`)

	tasks, err := svc.GetTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	require.NotNil(t, tasks[0].CompletedAt)
	assert.True(t, time.Date(2026, time.October, 18, 3, 10, 0, 0, time.UTC).Equal(*tasks[0].CompletedAt))
	assert.Equal(t, 25, tasks[0].EstimatedDuration)
	assert.Nil(t, tasks[1].CompletedAt)
	assert.Equal(t, 0, tasks[1].EstimatedDuration)
}

func TestGetTasks_AfterComplete(t *testing.T) {
	srv, svc, uid := newTaskFixture(t)
	srv.SeedTasks(uid, model.Task{TaskID: "t1", Title: "Read", EstimatedDuration: 15})

	_, err := svc.CompleteTask(context.Background(), "t1")
	require.NoError(t, err)

	tasks, err := svc.GetTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].IsCompleted())
	assert.NotNil(t, tasks[0].CompletedAt)
}

func TestCreateTask(t *testing.T) {
	_, svc, _ := newTaskFixture(t)

	task, err := svc.CreateTask(context.Background(), model.NewTask{
		Title:             "Outline chapter",
		Priority:          model.PriorityHigh,
		EstimatedDuration: 20,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.TaskID)
	assert.Equal(t, "Outline chapter", task.Title)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, 20, task.EstimatedDuration)
	assert.True(t, task.IsPending())

	tasks, err := svc.GetTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.TaskID, tasks[0].TaskID)
}

func TestCreateTask_ServerRejects(t *testing.T) {
	_, svc, _ := newTaskFixture(t)

	_, err := svc.CreateTask(context.Background(), model.NewTask{Title: "  "})
	assert.EqualError(t, err, "Title is required!")
}

func TestCompleteTask(t *testing.T) {
	srv, svc, uid := newTaskFixture(t)
	srv.SeedTasks(uid, model.Task{TaskID: "t1", Title: "Read", PointsValue: 15})

	c, err := svc.CompleteTask(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 15, c.PointsEarned)
	assert.NotEmpty(t, c.Celebration)
	assert.Equal(t, 1, srv.Hits(http.MethodPost, "/tasks/t1/complete"))

	st, err := svc.GetUserStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.CompletedTasks)
	assert.Equal(t, 15, st.TotalPoints)
}

func TestCompleteTask_NotFound(t *testing.T) {
	_, svc, _ := newTaskFixture(t)

	_, err := svc.CompleteTask(context.Background(), "missing")
	assert.EqualError(t, err, "Task not found!")
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestGetNudge(t *testing.T) {
	_, svc, _ := newTaskFixture(t)

	for _, mood := range model.Moods {
		reply, err := svc.GetNudge(context.Background(), mood)
		require.NoError(t, err)
		assert.Equal(t, apitest.Nudges[mood], reply.Nudge)
	}

	reply, err := svc.GetNudge(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, apitest.Nudges[model.MoodNeutral], reply.Nudge)
}

func TestGetNudge_Fallback(t *testing.T) {
	srv, svc, _ := newTaskFixture(t)
	srv.Respond(http.MethodPost, "/nudge", http.StatusInternalServerError, "")

	_, err := svc.GetNudge(context.Background(), model.MoodPositive)
	assert.EqualError(t, err, "Failed to get nudge")
}

func TestGetDailyDigest_NotCached(t *testing.T) {
	srv, svc, _ := newTaskFixture(t)

	_, err := svc.GetDailyDigest(context.Background())
	require.NoError(t, err)
	d, err := svc.GetDailyDigest(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, d.Digest)
	assert.Equal(t, 2, srv.Hits(http.MethodGet, "/daily-digest"))
}

func TestGetUserStats(t *testing.T) {
	srv, svc, uid := newTaskFixture(t)
	srv.SetStats(uid, model.Stats{Streak: 7, TotalPoints: 150, TotalTasks: 10, CompletedTasks: 8, CompletionRate: 80, WeeklyTasks: 6})

	st, err := svc.GetUserStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, st.Streak)
	assert.InDelta(t, 80.0, st.CompletionRate, 0.001)
	assert.Equal(t, 2, st.Pending())
}

func TestHealthCheck(t *testing.T) {
	srv, svc, _ := newTaskFixture(t)

	h, err := svc.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", h["status"])

	srv.Respond(http.MethodGet, "/health", http.StatusServiceUnavailable, `{"message":"db down"}`)
	_, err = svc.HealthCheck(context.Background())
	assert.EqualError(t, err, "Backend is not responding")
}

func TestSingleUserMode(t *testing.T) {
	srv := apitest.New(apitest.Open())
	defer srv.Close()
	srv.SeedTasks(apitest.DefaultUserID, model.Task{TaskID: "t1", Title: "Solo"})

	svc := NewTaskService(New(srv.BaseURL(), nil))
	tasks, err := svc.GetTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Solo", tasks[0].Title)
}
