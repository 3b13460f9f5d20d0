// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package assist computes the command assistant shown while the operator
// types: which catalog commands match the partial input and which argument
// placeholders they expect.
//
// Suggest is recomputed on every edit and keeps no state. Presentation is
// left to the caller; Line carries enough structure to style names and
// placeholder kinds separately, and Text gives the plain form.
package assist

import (
	"strings"

	"github.com/jeranaias/devcli/internal/catalog"
)

// GenericPlaceholder stands in for the arguments of a command whose help
// text names none.
const GenericPlaceholder = "..."

// Line is one row of the assistant.
type Line struct {
	// Name is the command name. Empty when the row only lists the arguments
	// of the command already typed in full.
	Name string

	// Placeholders are the argument placeholders. A command without named
	// placeholders gets a single generic one.
	Placeholders []catalog.Placeholder

	// Exact is set when Name equals the typed prefix.
	Exact bool
}

// Text renders the line as "name [ a ] [ b ]".
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Placeholders)+1)
	if l.Name != "" {
		parts = append(parts, l.Name)
	}
	for _, p := range l.Placeholders {
		parts = append(parts, FormatPlaceholder(p.Name))
	}
	return strings.Join(parts, " ")
}

// FormatPlaceholder renders an argument placeholder as "[ name ]".
func FormatPlaceholder(name string) string {
	return "[ " + name + " ]"
}

// Suggestion is the assistant content for one partial input.
type Suggestion struct {
	// Prefix is the first whitespace-separated token of the input.
	Prefix string

	// Lines holds one row per matching command, in catalog order.
	Lines []Line

	// match is the command name Tab completes to.
	match string
}

// Empty reports whether there is nothing to show.
func (s Suggestion) Empty() bool {
	return len(s.Lines) == 0
}

// Text returns the rows joined with newlines.
func (s Suggestion) Text() string {
	rows := make([]string, len(s.Lines))
	for i, l := range s.Lines {
		rows[i] = l.Text()
	}
	return strings.Join(rows, "\n")
}

// IsSingleMatch reports whether the content is a single row.
func (s Suggestion) IsSingleMatch() bool {
	return !s.Empty() && !strings.Contains(s.Text(), "\n")
}

// Completion returns the command name Tab should insert. It is only
// available when content is shown and it is a single match.
func (s Suggestion) Completion() (string, bool) {
	if !s.IsSingleMatch() || s.match == "" {
		return "", false
	}
	return s.match, true
}

// Suggest computes the assistant content for partial against cat.
//
// Only the first token of partial is used as a prefix; arguments already
// typed are ignored. For each entry whose name starts with the prefix:
//
//   - the name equals the prefix and the command takes no arguments: nothing
//     is shown, provided it is the only match
//   - the name equals the prefix and the command takes arguments: its
//     placeholders are shown
//   - otherwise: the name followed by its placeholders
func Suggest(cat *catalog.Catalog, partial string) Suggestion {
	fields := strings.Fields(partial)
	if len(fields) == 0 || cat == nil {
		return Suggestion{}
	}
	prefix := fields[0]
	s := Suggestion{Prefix: prefix}

	matches := cat.WithPrefix(prefix)
	if len(matches) == 1 && matches[0].Name == prefix && matches[0].ArgCount == 0 {
		return s
	}
	for _, e := range matches {
		s.Lines = append(s.Lines, lineFor(e, prefix))
	}
	if len(matches) == 1 {
		s.match = matches[0].Name
	}
	return s
}

// Complete returns the input with its first token replaced by the single
// matching command name. ok is false when Tab should do nothing.
func Complete(cat *catalog.Catalog, partial string) (completed string, ok bool) {
	name, ok := Suggest(cat, partial).Completion()
	if !ok {
		return partial, false
	}

	trimmed := strings.TrimLeft(partial, " \t")
	rest := ""
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		rest = trimmed[i:]
	}
	return name + rest, true
}

// lineFor renders one matching entry. A command typed in full shows only
// its placeholders; a zero-arg one keeps its name so it stays listed next
// to longer matches.
func lineFor(e catalog.Entry, prefix string) Line {
	exact := e.Name == prefix
	if exact && e.ArgCount != 0 {
		return Line{Placeholders: placeholdersFor(e), Exact: true}
	}
	l := Line{Name: e.Name, Exact: exact}
	if e.ArgCount != 0 {
		l.Placeholders = placeholdersFor(e)
	}
	return l
}

// placeholdersFor returns the entry's placeholders or the generic one.
func placeholdersFor(e catalog.Entry) []catalog.Placeholder {
	ph := catalog.ExtractPlaceholders(e.Help, e.ArgCount)
	if len(ph) == 0 {
		return []catalog.Placeholder{{Name: GenericPlaceholder, Kind: catalog.PlaceholderValue}}
	}
	return ph
}
