// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the client packages: crash-safe
// file writes for the session and config files, and width-aware text
// shaping for the terminal views.
package util
