// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data transfer objects exchanged with the
// micro-motivation API.
//
// Every entity here is owned by the server. The client treats values as
// immutable snapshots and only changes them as a local echo of a response
// it has just received.
//
// # Key Types
//
//   - User: Account profile with streak and point totals
//   - Identity: A User plus where the client learned it from
//   - Task: A unit of work with priority, duration and status
//   - NewTask: Form payload for creating a task, with client-side validation
//   - Stats: Server-computed progress snapshot
//   - Completion, NudgeReply, Digest, AuthReply: endpoint response shapes
//
// # Usage
//
// Validate a form before sending it:
//
//	req := model.NewTask{Title: "Write report", EstimatedDuration: 45}
//	req = req.WithDefaults()
//	if err := req.Validate(); err != nil {
//	    return err
//	}
package model
