// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.set")
	other := filepath.Join(dir, "other.set")
	require.NoError(t, os.WriteFile(path, []byte("\"a\",\"a\",0\n"), 0644))

	changed := make(chan string, 4)
	w, err := NewWatcher(path, 50*time.Millisecond, func(p string) { changed <- p }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch())
	defer w.Close()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("\"b\",\"b\",0\n"), 0644))

	select {
	case p := <-changed:
		assert.Equal(t, w.Path(), p)
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	// Debounced writes collapse into a single notification.
	select {
	case p := <-changed:
		t.Fatalf("unexpected second notification for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.c")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	w, err := NewWatcher(path, 0, func(string) {}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Watch())

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
