// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorKind categorizes client failures.
type ErrorKind int

const (
	// KindNetwork is a transport failure with no response.
	KindNetwork ErrorKind = iota
	// KindHTTP is a non-2xx response.
	KindHTTP
	// KindDecode is a 2xx response whose body could not be decoded.
	KindDecode
)

// String returns a log-friendly name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by every Client call that fails.
type Error struct {
	Kind    ErrorKind
	Op      string // e.g. "GET /tasks"
	Status  int    // HTTP status, 0 for network failures
	Message string // server-provided message, else the per-operation fallback
	// ServerMessage is true when Message came from the response body.
	ServerMessage bool
	Cause         error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrUnauthorized) match any 401.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Kind == KindHTTP && e.Status == http.StatusUnauthorized
}

// Detail describes the failure for logs, including status and cause.
func (e *Error) Detail() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	default:
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s error: %v", e.Op, e.Kind, e.Cause)
		}
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
}

// Sentinel errors for easy checking.
var (
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken is returned when the stored token is absent or cannot be decoded.
	ErrInvalidToken = errors.New("invalid token")
)

// =============================================================================
// HELPERS
// =============================================================================

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindNetwork
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// MessageOr returns the server-provided message carried by err, or fallback
// when the server supplied none.
func MessageOr(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.ServerMessage && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
