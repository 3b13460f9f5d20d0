// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import "strings"

// PlaceholderKind tells a value placeholder from a flag placeholder.
type PlaceholderKind int

const (
	// PlaceholderValue is written <name> in help text.
	PlaceholderValue PlaceholderKind = iota
	// PlaceholderFlag is written [name] in help text.
	PlaceholderFlag
)

func (k PlaceholderKind) String() string {
	if k == PlaceholderFlag {
		return "flag"
	}
	return "value"
}

// Placeholder is an argument placeholder found in help text.
type Placeholder struct {
	Name string
	Kind PlaceholderKind
}

// ExtractArgs returns the argument placeholder names of a help text in order
// of appearance. It returns nil when argCount is 0 and an empty, non-nil
// slice when the help text has no placeholders.
func ExtractArgs(help string, argCount int) []string {
	ph := ExtractPlaceholders(help, argCount)
	if ph == nil {
		return nil
	}
	names := make([]string, len(ph))
	for i, p := range ph {
		names[i] = p.Name
	}
	return names
}

// ExtractPlaceholders is ExtractArgs keeping the placeholder kind.
//
// Help text is scanned left to right. A '<' or '[' opens a placeholder that
// runs to the next matching '>' or ']' on the same line; the delimiters do
// not nest. Unclosed openers and empty placeholders are ignored, plain words
// are skipped.
func ExtractPlaceholders(help string, argCount int) []Placeholder {
	if argCount == 0 {
		return nil
	}

	out := []Placeholder{}
	for i := 0; i < len(help); i++ {
		var closer byte
		var kind PlaceholderKind
		switch help[i] {
		case '<':
			closer, kind = '>', PlaceholderValue
		case '[':
			closer, kind = ']', PlaceholderFlag
		default:
			continue
		}

		end := closingIndex(help[i+1:], closer)
		if end < 0 {
			continue
		}
		if name := help[i+1 : i+1+end]; name != "" {
			out = append(out, Placeholder{Name: name, Kind: kind})
		}
		i += end + 1
	}
	return out
}

// closingIndex finds closer in s before any line break.
func closingIndex(s string, closer byte) int {
	end := strings.IndexAny(s, string(closer)+"\n\r")
	if end < 0 || s[end] != closer {
		return -1
	}
	return end
}
