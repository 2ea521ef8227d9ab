// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the microstep command tree.
//
// Running microstep without a subcommand opens the dashboard TUI. The
// subcommands expose every client operation for scripts:
//
//	microstep login | register | logout | whoami
//	microstep tasks list | add | complete
//	microstep nudge --mood negative
//	microstep digest
//	microstep stats
//	microstep health
//	microstep config show | get | set | path
//	microstep setup
//	microstep demo
//
// # Global flags
//
//   - --api-url overrides api.base_url and MICROSTEP_API_URL
//   - --config selects the config file
//   - --single-user skips authentication
//   - --json prints a {success, data, error, timestamp, command} envelope
//
// # Errors
//
// Commands return errors from RunE and never print them. Main displays the
// error once (as JSON in --json mode) and maps it to an exit code:
// 2 usage, 3 config, 4 auth, 5 network, 1 anything else.
package cli
