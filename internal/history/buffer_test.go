// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_AppendIgnoresEmpty(t *testing.T) {
	b := NewBuffer()
	b.Append("")
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.Cursor())

	b.Append("get")
	b.Append("")
	assert.Equal(t, []string{"get"}, b.Entries())
	assert.Equal(t, 1, b.Cursor())
}

func TestBuffer_Navigation(t *testing.T) {
	b := NewBuffer()
	b.Append("a")
	b.Append("b")

	assert.Equal(t, "b", b.StepBackward())
	assert.Equal(t, "a", b.StepBackward())
	assert.Equal(t, "a", b.StepBackward(), "floor clamps at the oldest entry")
	assert.Equal(t, 0, b.Cursor())

	assert.Equal(t, "b", b.StepForward())
	assert.Equal(t, "", b.StepForward())
	assert.Equal(t, "", b.StepForward(), "past the end stays blank")
	assert.Equal(t, 2, b.Cursor())
}

func TestBuffer_AppendResetsCursor(t *testing.T) {
	b := NewBuffer()
	b.Append("a")
	b.Append("b")
	b.StepBackward()
	b.StepBackward()

	b.Append("c")
	assert.Equal(t, 3, b.Cursor())
	assert.Equal(t, "c", b.StepBackward())
	assert.Equal(t, "c", b.Last())
}

func TestBuffer_Empty(t *testing.T) {
	b := NewBuffer()
	assert.Equal(t, "", b.StepBackward())
	assert.Equal(t, "", b.StepForward())
	assert.Equal(t, 0, b.Cursor())
	assert.Equal(t, "", b.Last())
}

func TestBuffer_CursorStaysInRange(t *testing.T) {
	b := NewBuffer()
	moves := []func() string{b.StepBackward, b.StepForward, b.StepForward, b.StepBackward}
	for i := 0; i < 5; i++ {
		b.Append("cmd")
		for _, move := range moves {
			move()
			assert.GreaterOrEqual(t, b.Cursor(), 0)
			assert.LessOrEqual(t, b.Cursor(), b.Len())
		}
	}
}
