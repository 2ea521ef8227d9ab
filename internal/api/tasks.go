// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jeranaias/microstep-tui/internal/model"
)

// Fallback messages for task endpoint failures without a server message.
const (
	msgFetchTasks    = "Failed to fetch tasks"
	msgCreateTask    = "Failed to create task"
	msgCompleteTask  = "Failed to complete task"
	msgGetNudge      = "Failed to get nudge"
	msgGetDigest     = "Failed to get daily digest"
	msgGetStats      = "Failed to get user stats"
	msgHealthFailure = "Backend is not responding"
)

// TaskService wraps the task, nudge, digest, stats and health endpoints.
type TaskService struct {
	client *Client
}

// NewTaskService returns a task service using client.
func NewTaskService(client *Client) *TaskService {
	return &TaskService{client: client}
}

// GetTasks lists the user's tasks.
func (s *TaskService) GetTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := s.client.Do(ctx, http.MethodGet, "/tasks", nil, &tasks, msgFetchTasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// CreateTask creates a task. The caller validates the form first; this
// layer forwards the payload unchanged.
func (s *TaskService) CreateTask(ctx context.Context, req model.NewTask) (model.Task, error) {
	var task model.Task
	if err := s.client.Do(ctx, http.MethodPost, "/tasks", req, &task, msgCreateTask); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

// CompleteTask marks a task completed. Calling it twice is up to the server.
func (s *TaskService) CompleteTask(ctx context.Context, taskID string) (model.Completion, error) {
	var c model.Completion
	path := "/tasks/" + url.PathEscape(taskID) + "/complete"
	if err := s.client.Do(ctx, http.MethodPost, path, nil, &c, msgCompleteTask); err != nil {
		return model.Completion{}, err
	}
	return c, nil
}

// GetNudge asks for a motivational message for mood. An empty mood is neutral.
func (s *TaskService) GetNudge(ctx context.Context, mood model.Mood) (model.NudgeReply, error) {
	if mood == "" {
		mood = model.MoodNeutral
	}
	var reply model.NudgeReply
	body := map[string]model.Mood{"mood": mood}
	if err := s.client.Do(ctx, http.MethodPost, "/nudge", body, &reply, msgGetNudge); err != nil {
		return model.NudgeReply{}, err
	}
	return reply, nil
}

// GetDailyDigest generates the end-of-day summary. It is never cached.
func (s *TaskService) GetDailyDigest(ctx context.Context) (model.Digest, error) {
	var d model.Digest
	if err := s.client.Do(ctx, http.MethodGet, "/daily-digest", nil, &d, msgGetDigest); err != nil {
		return model.Digest{}, err
	}
	return d, nil
}

// GetUserStats fetches the progress snapshot.
func (s *TaskService) GetUserStats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	if err := s.client.Do(ctx, http.MethodGet, "/user/stats", nil, &st, msgGetStats); err != nil {
		return model.Stats{}, err
	}
	return st, nil
}

// HealthCheck calls the liveness endpoint. Every failure reports the same
// "Backend is not responding" message, whatever the server said.
func (s *TaskService) HealthCheck(ctx context.Context) (model.Health, error) {
	var h model.Health
	if err := s.client.Do(ctx, http.MethodGet, "/health", nil, &h, msgHealthFailure); err != nil {
		if apiErr, ok := err.(*Error); ok {
			apiErr.Message = msgHealthFailure
			apiErr.ServerMessage = false
		}
		return nil, err
	}
	return h, nil
}
