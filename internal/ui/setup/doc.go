// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package setup is the first-run wizard behind "microstep setup".

The wizard walks through four screens:

  - Welcome: what is about to happen
  - Mode: accounts (multi) or single-user
  - Server: the backend base URL, validated with config.Validate
  - Check: GET /health against the chosen URL

Enter on the check screen saves the configuration even when the backend
did not answer. After it quits, Result reports whether the file was
saved and whether the user asked to open the dashboard.

The wizard never touches the network or the filesystem itself; the
caller supplies HealthFunc and SaveFunc.
*/
package setup
