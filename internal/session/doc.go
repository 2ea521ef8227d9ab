// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the bearer token for the signed-in user.
//
// A Store is created once at startup and handed to the API client, so the
// token is an explicit dependency rather than ambient global state. Login
// sets it, logout or a 401 response clears it, and every change is
// announced on the Events channel so the TUI can route back to the login
// screen.
//
// # Key Types
//
//   - Store: Token holder, optionally persisted to a file
//   - Event: Login or logout notification
//
// # Usage
//
//	store, err := session.NewStore(cfg.Session.Path)
//	if err != nil {
//	    return err
//	}
//	go store.Watch(ctx) // pick up logins/logouts from other processes
//
//	client := api.New(cfg.API.BaseURL, store)
package session
