// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history records submitted command lines and lets the operator step
// back and forth through them, optionally persisting them in SQLite.
package history

// Buffer is an append-only list of submitted lines with a navigation cursor.
// The cursor ranges over [0, Len()]; Len() is the blank line after the most
// recent entry. Buffer is not safe for concurrent use.
type Buffer struct {
	entries []string
	cursor  int
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append records cmd and moves the cursor to the blank line. Empty input is
// ignored.
func (b *Buffer) Append(cmd string) {
	if cmd == "" {
		return
	}
	b.entries = append(b.entries, cmd)
	b.cursor = len(b.entries)
}

// StepBackward moves to the previous entry and returns it. At the oldest
// entry the cursor stays put and that entry is returned again; an empty
// buffer returns "".
func (b *Buffer) StepBackward() string {
	if b.cursor > 0 {
		b.cursor--
	}
	if b.cursor >= len(b.entries) {
		return ""
	}
	return b.entries[b.cursor]
}

// StepForward moves to the next entry and returns it, or "" once the cursor
// reaches the blank line.
func (b *Buffer) StepForward() string {
	if b.cursor >= len(b.entries) {
		return ""
	}
	b.cursor++
	if b.cursor == len(b.entries) {
		return ""
	}
	return b.entries[b.cursor]
}

// Len returns the number of entries.
func (b *Buffer) Len() int {
	return len(b.entries)
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Entries returns a copy of the entries, oldest first.
func (b *Buffer) Entries() []string {
	out := make([]string, len(b.entries))
	copy(out, b.entries)
	return out
}

// Last returns the most recent entry, or "" when empty.
func (b *Buffer) Last() string {
	if len(b.entries) == 0 {
		return ""
	}
	return b.entries[len(b.entries)-1]
}
