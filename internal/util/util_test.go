// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ATOMIC WRITE TESTS
// =============================================================================

func TestAtomicWriteFile_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.set")

	require.NoError(t, AtomicWriteFile(path, []byte(`"get","Get value",1`), 0644))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `"get","Get value",1`, string(content))
}

func TestAtomicWriteFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "commands.set")

	require.NoError(t, AtomicWriteFile(path, []byte("x"), 0644))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestAtomicWriteFile_OverwritesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, AtomicWriteFile(path, []byte("first"), 0600))
	require.NoError(t, AtomicWriteFile(path, []byte("second"), 0600))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), "temp file left behind: %s", e.Name())
	}
}

func TestExpandPath(t *testing.T) {
	home := HomeDir()

	got, err := ExpandPath("~/commands.set")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "commands.set"), got)

	got, err = ExpandPath("/tmp/x.set")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.set", got)

	got, err = ExpandPath("")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

// =============================================================================
// WIDTH TESTS
// =============================================================================

func TestTruncateWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "status", 10, "status"},
		{"exact", "status", 6, "status"},
		{"cut", "Display the task table", 10, "Display..."},
		{"tiny", "status", 2, "st"},
		{"zero", "status", 0, ""},
		{"wide runes", "日本語テキスト", 7, "日本..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateWidth(tt.input, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, StringWidth(got), tt.width)
		})
	}
}

func TestPadWidth(t *testing.T) {
	assert.Equal(t, "get   ", PadWidth("get", 6))
	assert.Equal(t, "getAll", PadWidth("getAll", 3))
	assert.Equal(t, "日本  ", PadWidth("日本", 6))
}
