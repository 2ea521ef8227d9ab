// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jeranaias/microstep-tui/internal/util"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind distinguishes session transitions.
type EventKind int

const (
	// EventLogin means a token was stored.
	EventLogin EventKind = iota
	// EventLogout means the token was removed.
	EventLogout
)

// String returns a log-friendly name.
func (k EventKind) String() string {
	if k == EventLogin {
		return "login"
	}
	return "logout"
}

// Event reports a change to the stored token.
type Event struct {
	Kind EventKind
	// External is true when the change came from another process editing the file.
	External bool
}

// eventBuffer bounds how many unread events a slow consumer may accumulate.
const eventBuffer = 16

// =============================================================================
// STORE
// =============================================================================

// ErrNoSession is returned when an operation needs a token and there is none.
var ErrNoSession = errors.New("no active session")

// fileFormat is the on-disk shape of the session file.
type fileFormat struct {
	Token string `json:"token"`
}

// Store holds at most one bearer token. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	token  string
	path   string // empty for memory-only stores
	events chan Event
}

// NewStore returns a store persisted at path, loading any token already there.
// A missing file is not an error; an unreadable or corrupt one is.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path, events: make(chan Event, eventBuffer)}
	if path == "" {
		return s, nil
	}

	token, err := readTokenFile(path)
	if err != nil {
		return nil, err
	}
	s.token = token
	return s, nil
}

// NewMemoryStore returns a store that never touches disk.
func NewMemoryStore(token string) *Store {
	return &Store{token: token, events: make(chan Event, eventBuffer)}
}

// Path returns the session file path, or "" for memory-only stores.
func (s *Store) Path() string {
	return s.path
}

// Token returns the current token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// HasToken reports whether a token is held.
func (s *Store) HasToken() bool {
	return s.Token() != ""
}

// Set stores token, persists it with owner-only permissions and emits EventLogin.
func (s *Store) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session: empty token")
	}

	s.mu.Lock()
	if s.path != "" {
		data, err := json.Marshal(fileFormat{Token: token})
		if err != nil {
			s.mu.Unlock()
			return err
		}
		// SECURITY: the token is a credential; keep it owner-readable only.
		if err := util.AtomicWriteFile(s.path, data, 0600, 0700); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("save session: %w", err)
		}
	}
	s.token = token
	s.mu.Unlock()

	s.emit(Event{Kind: EventLogin})
	return nil
}

// Clear forgets the token and removes the session file. Clearing an empty
// store is a no-op and emits nothing.
func (s *Store) Clear() error {
	s.mu.Lock()
	had := s.token != ""
	s.token = ""
	var err error
	if s.path != "" {
		if rmErr := os.Remove(s.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("remove session: %w", rmErr)
		}
	}
	s.mu.Unlock()

	if had {
		s.emit(Event{Kind: EventLogout})
	}
	return err
}

// Events delivers login and logout notifications. Events are dropped, not
// blocked on, when the consumer falls more than a buffer behind.
func (s *Store) Events() <-chan Event {
	return s.events
}

func (s *Store) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
	}
}

// reload re-reads the session file after an external change and emits the
// matching event when the token actually changed.
func (s *Store) reload() error {
	token, err := readTokenFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	changed := token != s.token
	s.token = token
	s.mu.Unlock()

	if !changed {
		return nil
	}
	if token == "" {
		s.emit(Event{Kind: EventLogout, External: true})
	} else {
		s.emit(Event{Kind: EventLogin, External: true})
	}
	return nil
}

func readTokenFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", nil
	}

	var f fileFormat
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("parse session %s: %w", path, err)
	}
	return strings.TrimSpace(f.Token), nil
}
