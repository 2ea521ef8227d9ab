// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package shell is the root Bubble Tea model of the microstep TUI.

It owns the state.Snapshot, the toast stack and the celebration modal, and
routes between two trees:

  - unauthenticated: the login and register forms (ctrl+r swaps them)
  - authenticated: the nav bar and the Dashboard, Tasks, Nudges and Stats
    views, switched with 1-4 or tab

The starting tree is decided once in New from the session store: a held,
unexpired token is decoded and shown immediately, anything else is cleared.
Afterwards the shell listens on the store's event channel, so a 401 from
any request (which clears the store) or another process deleting the
session file sends the user back to the login form.

Key messages go to the active view only. Everything else is broadcast; the
views ignore results tagged for another tab.
*/
package shell
