// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractArgs(t *testing.T) {
	tests := []struct {
		name     string
		help     string
		argCount int
		want     []string
	}{
		{"zero args is nil", "Set <key> <value>", 0, nil},
		{"values", "Set <key> <value>", 2, []string{"key", "value"}},
		{"value then flag", "Get <key> [verbose]", 2, []string{"key", "verbose"}},
		{"flag then value", "[all] or <name>", 1, []string{"all", "name"}},
		{"no placeholders", "Resets the device", 1, []string{}},
		{"variadic", "echo <text>", -1, []string{"text"}},
		{"empty placeholder skipped", "x <> [] <a>", 1, []string{"a"}},
		{"unclosed ignored", "x <open [flag]", 1, []string{"flag"}},
		{"no nesting", "x <a [b]> c", 1, []string{"a [b]"}},
		{"escape markers kept out", `\r\nget <k>:\r\n`, 1, []string{"k"}},
		{"closer on next line", "x <a\nb>", 1, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractArgs(tt.help, tt.argCount))
		})
	}
}

func TestExtractPlaceholders_Kinds(t *testing.T) {
	got := ExtractPlaceholders("Get <key> [verbose]", 2)

	assert.Equal(t, []Placeholder{
		{Name: "key", Kind: PlaceholderValue},
		{Name: "verbose", Kind: PlaceholderFlag},
	}, got)
	assert.Equal(t, "value", got[0].Kind.String())
	assert.Equal(t, "flag", got[1].Kind.String())
}
