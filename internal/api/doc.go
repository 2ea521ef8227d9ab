// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the micro-motivation REST API.
//
// Client is the shared transport: it binds a base URL, attaches the bearer
// token from an injected session.Store, and turns non-2xx responses into
// *Error values carrying the server's message. A 401 from any endpoint
// clears the session, which the TUI observes as a logout and answers by
// routing to the login screen. The failing call still returns its error.
//
// AuthService and TaskService wrap the individual endpoints. Neither retries;
// a failed call surfaces immediately.
//
// # Key Types
//
//   - Client: JSON transport with auth header and 401 handling
//   - Error: Network, HTTP or decode failure with a user-facing message
//   - AuthService: register, login, unverified token decode, logout
//   - TaskService: tasks, nudges, daily digest, stats, health
//
// # Usage
//
//	store, _ := session.NewStore(path)
//	client := api.New("http://localhost:5000/api", store)
//	tasks := api.NewTaskService(client)
//	list, err := tasks.GetTasks(ctx)
//	if err != nil {
//	    toast(api.MessageOr(err, "Failed to load tasks"))
//	}
package api
