// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import "strings"

// Entry is one device command.
type Entry struct {
	// Name is what the operator types. Unique within a Catalog.
	Name string `json:"name" yaml:"name"`

	// ArgCount is the declared parameter count. Negative means variadic.
	ArgCount int `json:"arg_count" yaml:"arg_count"`

	// Help is the help text exactly as found in the input, including any
	// literal two-character `\n` and `\r` markers.
	Help string `json:"help" yaml:"help"`
}

// Rendered returns Help with the literal `\n` markers removed, then the
// `\r` markers. The passes run in that order, so a `\r` formed by removing
// a `\n` is removed too.
func (e Entry) Rendered() string {
	s := strings.ReplaceAll(e.Help, `\n`, "")
	return strings.ReplaceAll(s, `\r`, "")
}

// Variadic reports whether the command takes a variable number of arguments.
func (e Entry) Variadic() bool {
	return e.ArgCount < 0
}

// HelpText returns Rendered() when hideEscapes is set and Help otherwise.
func (e Entry) HelpText(hideEscapes bool) string {
	if hideEscapes {
		return e.Rendered()
	}
	return e.Help
}
