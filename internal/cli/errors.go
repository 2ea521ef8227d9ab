// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Unified error handling for the microstep commands.
//
// STANDARDIZED PATTERN:
//   - RunE always returns errors, it never prints and returns nil
//   - Main displays the error once and maps it to an exit code
//   - Structured error types carry the details JSON mode reports

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/microstep-tui/internal/api"
	"github.com/jeranaias/microstep-tui/internal/config"
	"github.com/jeranaias/microstep-tui/internal/session"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	// ExitUsageError covers invalid arguments and form validation failures.
	ExitUsageError = 2
	ExitConfigError = 3
	// ExitAuthError covers 401s and a missing or unreadable session.
	ExitAuthError = 4
	// ExitNetworkError means the backend could not be reached.
	ExitNetworkError = 5
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a command failure with context.
type CommandError struct {
	Command string // e.g. "tasks"
	Action  string // e.g. "add"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// errNotLoggedIn is returned by commands that need a session when none is held.
var errNotLoggedIn = errors.New("not logged in; run 'microstep login' first")

// errSingleUser is returned by the auth commands in single-user mode.
var errSingleUser = errors.New("authentication is disabled in single-user mode")

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err once, as JSON or as a styled line.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(w, command, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), userMessage(err))
}

// DisplayErrorJSON writes the error envelope with structured details.
func DisplayErrorJSON(w io.Writer, command string, err error) {
	output := map[string]interface{}{
		"success": false,
		"command": command,
		"error":   userMessage(err),
	}

	var (
		cmdErr *CommandError
		valErr *ValidationError
		apiErr *api.Error
	)
	switch {
	case errors.As(err, &valErr):
		output["error_type"] = "validation_error"
		output["field"] = valErr.Field
		output["reason"] = valErr.Reason
		if valErr.Value != "" {
			output["value"] = valErr.Value
		}
	case errors.As(err, &apiErr):
		output["error_type"] = "api_error"
		output["kind"] = apiErr.Kind.String()
		if apiErr.Status != 0 {
			output["status"] = apiErr.Status
		}
	case errors.As(err, &cmdErr):
		output["error_type"] = "command_error"
		output["action"] = cmdErr.Action
		output["reason"] = cmdErr.Reason
	default:
		output["error_type"] = "generic_error"
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(output)
}

// userMessage prefers the server's message for API failures.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		valErr  *ValidationError
		cfgErrs config.ValidateErrors
	)
	switch {
	case errors.As(err, &valErr):
		return ExitUsageError
	case errors.As(err, &cfgErrs):
		return ExitConfigError
	case api.IsUnauthorized(err),
		errors.Is(err, api.ErrInvalidToken),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, errNotLoggedIn):
		return ExitAuthError
	case api.IsNetwork(err):
		return ExitNetworkError
	}
	return ExitGeneralError
}
