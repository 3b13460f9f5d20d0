// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import "strconv"

// definitionType is the struct type that marks a command definition.
const definitionType = "CLI_Command_Definition_t"

// ExtractFromSource returns every command definition found in C source text,
// in order of appearance:
//
//	static const CLI_Command_Definition_t <ident> = {
//		"<name>", [comment] "<help>", <handler>, [comment] <int> [comment]
//	};
//
// /* */ comments count as whitespace. Each [comment] slot admits one bare
// identifier. Adjacent help literals are concatenated as the C compiler
// would. The trailing ';' is optional. Anything else is skipped.
func ExtractFromSource(text string) []Entry {
	toks := lexSource(text)
	entries := []Entry{}
	for i := 0; i < len(toks); {
		if e, next, ok := matchDefinition(toks, i); ok {
			entries = append(entries, e)
			i = next
			continue
		}
		i++
	}
	return entries
}

// matcher walks a token slice for a single definition attempt.
type matcher struct {
	toks []token
	pos  int
}

func (m *matcher) peek() (token, bool) {
	if m.pos >= len(m.toks) {
		return token{}, false
	}
	return m.toks[m.pos], true
}

// ident consumes an identifier. An empty want accepts any identifier.
func (m *matcher) ident(want string) (string, bool) {
	t, ok := m.peek()
	if !ok || t.kind != tokIdent || (want != "" && t.text != want) {
		return "", false
	}
	m.pos++
	return t.text, true
}

func (m *matcher) punct(want string) bool {
	t, ok := m.peek()
	if !ok || t.kind != tokPunct || t.text != want {
		return false
	}
	m.pos++
	return true
}

func (m *matcher) str() (string, bool) {
	t, ok := m.peek()
	if !ok || t.kind != tokString {
		return "", false
	}
	m.pos++
	return t.text, true
}

// strs consumes one or more adjacent string literals and joins them.
func (m *matcher) strs() (string, bool) {
	s, ok := m.str()
	if !ok {
		return "", false
	}
	for {
		more, ok := m.str()
		if !ok {
			return s, true
		}
		s += more
	}
}

func (m *matcher) number() (int, bool) {
	t, ok := m.peek()
	if !ok || t.kind != tokNumber {
		return 0, false
	}
	n, err := strconv.Atoi(t.text)
	if err != nil {
		return 0, false
	}
	m.pos++
	return n, true
}

// optionalComment consumes one bare identifier if present.
func (m *matcher) optionalComment() {
	m.ident("")
}

// matchDefinition tries to match one definition starting at toks[start].
// It returns the entry and the index just past the match.
func matchDefinition(toks []token, start int) (Entry, int, bool) {
	m := &matcher{toks: toks, pos: start}

	if _, ok := m.ident("static"); !ok {
		return Entry{}, 0, false
	}
	if _, ok := m.ident("const"); !ok {
		return Entry{}, 0, false
	}
	if _, ok := m.ident(definitionType); !ok {
		return Entry{}, 0, false
	}
	if _, ok := m.ident(""); !ok {
		return Entry{}, 0, false
	}
	if !m.punct("=") || !m.punct("{") {
		return Entry{}, 0, false
	}

	name, ok := m.str()
	if !ok || !m.punct(",") {
		return Entry{}, 0, false
	}

	m.optionalComment()
	help, ok := m.strs()
	if !ok || !m.punct(",") {
		return Entry{}, 0, false
	}

	if _, ok := m.ident(""); !ok {
		return Entry{}, 0, false
	}
	if !m.punct(",") {
		return Entry{}, 0, false
	}

	m.optionalComment()
	args, ok := m.number()
	if !ok {
		return Entry{}, 0, false
	}
	m.optionalComment()
	if !m.punct("}") {
		return Entry{}, 0, false
	}
	m.punct(";")

	return Entry{Name: name, ArgCount: args, Help: help}, m.pos, true
}
