// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SetPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	s, err := NewStore(path)
	require.NoError(t, err)
	assert.False(t, s.HasToken())

	require.NoError(t, s.Set("tok-123"))
	assert.Equal(t, "tok-123", s.Token())

	again, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", again.Token())
}

func TestStore_ClearRemovesFileAndEmits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("tok"))
	require.Equal(t, EventLogin, (<-s.Events()).Kind)

	require.NoError(t, s.Clear())
	assert.Equal(t, "", s.Token())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	ev := <-s.Events()
	assert.Equal(t, EventLogout, ev.Kind)
	assert.False(t, ev.External)
}

func TestStore_ClearWhenEmptyEmitsNothing(t *testing.T) {
	s := NewMemoryStore("")
	require.NoError(t, s.Clear())

	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected event %v", ev.Kind)
	default:
	}
}

func TestStore_SetRejectsEmptyToken(t *testing.T) {
	s := NewMemoryStore("")
	assert.Error(t, s.Set("  "))
	assert.False(t, s.HasToken())
}

func TestStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := NewStore(path)
	assert.Error(t, err)
}

func TestStore_EventsNeverBlock(t *testing.T) {
	s := NewMemoryStore("")
	for i := 0; i < eventBuffer*3; i++ {
		require.NoError(t, s.Set("tok"))
		require.NoError(t, s.Clear())
	}
	// Reaching here without deadlock is the assertion.
	assert.Len(t, s.Events(), eventBuffer)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore("start")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Set("tok")
		}()
		go func() {
			defer wg.Done()
			_ = s.Token()
		}()
	}
	wg.Wait()
}

func TestStore_WatchSeesExternalLogout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("tok"))
	<-s.Events()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Watch(ctx)
	}()

	// Give the watcher time to register before mutating the file.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.Remove(path))

	select {
	case ev := <-s.Events():
		assert.Equal(t, EventLogout, ev.Kind)
		assert.True(t, ev.External)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report external logout")
	}
	assert.Equal(t, "", s.Token())

	cancel()
	<-done
}

func TestStore_WatchRequiresPath(t *testing.T) {
	assert.Error(t, NewMemoryStore("").Watch(context.Background()))
}
