// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// PRIORITY
// =============================================================================

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is used when a form leaves the priority blank.
const DefaultPriority = PriorityMedium

// Priorities lists the priorities in ascending order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// String returns the wire form of the priority.
func (p Priority) String() string {
	return string(p)
}

// ParsePriority converts user input to a Priority. Matching is case-insensitive.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return DefaultPriority, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q (want low, medium or high)", s)
	}
	return p, nil
}

// Next cycles low -> medium -> high -> low. Used by form selectors.
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityLow
	}
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the lifecycle state of a task. Tasks move pending -> completed once.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// =============================================================================
// TASK
// =============================================================================

// Task is a server-owned unit of work.
type Task struct {
	TaskID            string     `json:"task_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description,omitempty"`
	Priority          Priority   `json:"priority"`
	EstimatedDuration int        `json:"estimated_duration"`
	Status            Status     `json:"status"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	PointsValue       int        `json:"points_value,omitempty"`
}

// UnmarshalJSON decodes a task as the server sends it. completed_at may be
// RFC 3339 or an HTTP date (Flask's jsonify format); anything else reads as
// not set. estimated_duration may be a number or a numeric string; anything
// else reads as 0 minutes.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var aux struct {
		plain
		EstimatedDuration json.RawMessage `json:"estimated_duration"`
		CompletedAt       json.RawMessage `json:"completed_at"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = Task(aux.plain)
	t.EstimatedDuration = decodeMinutes(aux.EstimatedDuration)
	t.CompletedAt = decodeTimestamp(aux.CompletedAt)
	return nil
}

// timestampLayouts are tried before falling back to http.ParseTime.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

// ParseTimestamp parses a server timestamp in any of the formats the backend
// is known to emit.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	if ts, err := http.ParseTime(s); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

func decodeTimestamp(raw json.RawMessage) *time.Time {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return nil
	}
	ts, ok := ParseTimestamp(s)
	if !ok {
		return nil
	}
	return &ts
}

func decodeMinutes(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var s string
	if raw[0] == '"' {
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
	} else {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return int(f)
}

// IsPending reports whether the task still needs doing. A missing status
// counts as pending, matching how the server creates tasks.
func (t Task) IsPending() bool {
	return t.Status == StatusPending || t.Status == ""
}

// IsCompleted reports whether the task has been completed.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// =============================================================================
// NEW TASK FORM
// =============================================================================

// Duration limits for the task form, in minutes.
const (
	MinDuration     = 5
	MaxDuration     = 480
	DefaultDuration = 30
)

// Form validation errors.
var (
	ErrEmptyTitle      = errors.New("please enter a task title")
	ErrDurationRange   = fmt.Errorf("estimated duration must be between %d and %d minutes", MinDuration, MaxDuration)
	ErrUnknownPriority = errors.New("priority must be low, medium or high")
)

// NewTask is the payload for POST /tasks.
type NewTask struct {
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	Priority          Priority `json:"priority"`
	EstimatedDuration int      `json:"estimated_duration"`
}

// WithDefaults fills the fields a blank form leaves empty.
func (n NewTask) WithDefaults() NewTask {
	if n.Priority == "" {
		n.Priority = DefaultPriority
	}
	if n.EstimatedDuration == 0 {
		n.EstimatedDuration = DefaultDuration
	}
	return n
}

// Validate applies the form constraints. The task client does not call this;
// forms and the CLI do before submitting.
func (n NewTask) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if n.EstimatedDuration < MinDuration || n.EstimatedDuration > MaxDuration {
		return ErrDurationRange
	}
	if !n.Priority.Valid() {
		return ErrUnknownPriority
	}
	return nil
}
