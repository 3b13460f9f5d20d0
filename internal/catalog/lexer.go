// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"strings"
	"unicode/utf8"
)

// tokenKind classifies a lexed token of C-like source.
type tokenKind int

const (
	tokIdent  tokenKind = iota // letter or '_' followed by letters, digits, '_'
	tokString                  // "..." on one line; text holds the body, escapes verbatim
	tokNumber                  // optional sign directly followed by decimal digits
	tokPunct                   // one of { } = , ;
	tokOther                   // anything else, one rune or one char literal
)

// token is one lexeme. For tokString, text excludes the quotes.
type token struct {
	kind tokenKind
	text string
}

// lexSource splits C-like text into tokens. Whitespace and /* */ comments are
// dropped. Lexing never fails: an unterminated string, char literal or comment
// just yields its opening character as a tokOther and lexing resumes after it.
func lexSource(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			i++

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				toks = append(toks, token{tokOther, "/"})
				i++
				continue
			}
			i += 2 + end + 2

		case c == '"' || c == '\'':
			end, ok := scanQuoted(src, i)
			if !ok {
				toks = append(toks, token{tokOther, string(c)})
				i++
				continue
			}
			if c == '"' {
				toks = append(toks, token{tokString, src[i+1 : end]})
			} else {
				toks = append(toks, token{tokOther, src[i : end+1]})
			}
			i = end + 1

		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j]})
			i = j

		case isDigit(c) || ((c == '+' || c == '-') && i+1 < len(src) && isDigit(src[i+1])):
			j := i + 1
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j]})
			i = j

		case strings.IndexByte("{}=,;", c) >= 0:
			toks = append(toks, token{tokPunct, string(c)})
			i++

		default:
			_, size := utf8.DecodeRuneInString(src[i:])
			toks = append(toks, token{tokOther, src[i : i+size]})
			i += size
		}
	}
	return toks
}

// scanQuoted returns the index of the closing quote matching src[start].
// Backslash escapes the next byte; a raw newline terminates the literal
// unsuccessfully.
func scanQuoted(src string, start int) (int, bool) {
	quote := src[start]
	for j := start + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '\n':
			return 0, false
		case quote:
			return j, true
		}
	}
	return 0, false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
