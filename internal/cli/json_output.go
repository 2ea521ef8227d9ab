// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for --json.
//
// Every command prints the same envelope so scripts can check "success"
// without knowing the command. Human-readable notes go to stderr in JSON
// mode.

package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/microstep-tui/internal/model"
	"github.com/jeranaias/microstep-tui/internal/progress"
)

// JSONResponse is the envelope of every --json result.
type JSONResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data"`
	Error     *string     `json:"error"`
	Timestamp string      `json:"timestamp"`
	Command   string      `json:"command,omitempty"`
}

// NewJSONResponse creates a successful response.
func NewJSONResponse(command string, data interface{}, now time.Time) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: now.UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// WhoAmIData is the whoami result.
type WhoAmIData struct {
	Identity      model.Identity `json:"identity"`
	Authenticated bool           `json:"authenticated"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
}

// CompleteData is the tasks complete result.
type CompleteData struct {
	TaskID     string           `json:"task_id"`
	Completion model.Completion `json:"completion"`
}

// NudgeData is the nudge result.
type NudgeData struct {
	Mood  model.Mood `json:"mood"`
	Nudge string     `json:"nudge"`
}

// StatsData is the stats result with the client-side derived values.
type StatsData struct {
	Stats             model.Stats      `json:"stats"`
	CompletionPercent int              `json:"completion_percent"`
	StreakMessage     string           `json:"streak_message"`
	Badges            []progress.Badge `json:"badges"`
}

// HealthData is the health result.
type HealthData struct {
	BaseURL string       `json:"base_url"`
	Healthy bool         `json:"healthy"`
	Details model.Health `json:"details,omitempty"`
}
