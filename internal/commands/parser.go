// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// EscapePrefix starts a device line that itself begins with "/".
const EscapePrefix = "//"

// =============================================================================
// PARSE RESULT
// =============================================================================

// ParseResult contains the result of parsing console input.
type ParseResult struct {
	// IsCommand is true if the input is a slash command
	IsCommand bool

	// Command is the matched command (nil if not found)
	Command *Command

	// CommandName is the raw command name (e.g., "/help")
	CommandName string

	Args     []string
	RawInput string

	// RawArgs is the unparsed arguments portion
	RawArgs string
}

// =============================================================================
// PARSER
// =============================================================================

// Parser handles parsing of slash commands and their arguments.
type Parser struct {
	registry *Registry
}

// NewParser creates a new parser with the given registry.
func NewParser(registry *Registry) *Parser {
	return &Parser{registry: registry}
}

// Parse parses console input. IsCommand is false for device lines.
func (p *Parser) Parse(input string) ParseResult {
	input = strings.TrimSpace(input)
	result := ParseResult{RawInput: input}

	if !IsCommand(input) {
		return result
	}
	result.IsCommand = true

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return result
	}

	result.CommandName = parts[0]
	if len(parts) > 1 {
		result.Args = parts[1:]
		if end := strings.IndexFunc(input, unicode.IsSpace); end >= 0 {
			result.RawArgs = strings.TrimSpace(input[end:])
		}
	}

	result.Command = p.registry.Get(strings.ToLower(result.CommandName))
	return result
}

// ParseArgs parses a raw argument string into individual arguments.
// Handles quoted strings with spaces.
func ParseArgs(input string) []string {
	return splitCommandLine(input)
}

// =============================================================================
// ARGUMENT PARSING
// =============================================================================

// splitCommandLine splits a command line into tokens, respecting quotes.
// Supports both single and double quotes for arguments with spaces.
func splitCommandLine(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote, quoted bool

	for i := 0; i < len(input); i++ {
		char := input[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			quoted = true

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			quoted = true

		case char == '\\' && i+1 < len(input) && (inDoubleQuote || inSingleQuote):
			next := input[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteByte(next)
				i++
			} else {
				current.WriteByte(char)
			}

		case (char == ' ' || char == '\t') && !inSingleQuote && !inDoubleQuote:
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}

		default:
			current.WriteByte(char)
		}
	}

	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// IsCommand reports whether input is a slash command rather than a device line.
func IsCommand(input string) bool {
	input = strings.TrimSpace(input)
	return strings.HasPrefix(input, "/") && !strings.HasPrefix(input, EscapePrefix)
}

// DeviceLine returns the text to send for a device line, removing one
// leading slash from an escaped "//" line. Other lines are returned as typed.
func DeviceLine(input string) string {
	if strings.HasPrefix(strings.TrimLeft(input, " \t"), EscapePrefix) {
		return strings.Replace(input, EscapePrefix, "/", 1)
	}
	return input
}

// GetPartialCommand returns the command name being typed, or "" once an
// argument has started or the input is not a command.
func GetPartialCommand(input string) string {
	if !IsCommand(input) || strings.IndexFunc(input, unicode.IsSpace) != -1 {
		return ""
	}
	return input
}

// GetPartialArg returns the index of the argument being typed and its
// partial text.
func GetPartialArg(input string) (int, string) {
	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return 0, ""
	}
	if strings.HasSuffix(input, " ") {
		return len(parts) - 1, ""
	}
	if len(parts) == 1 {
		return 0, ""
	}
	return len(parts) - 2, parts[len(parts)-1]
}

// ValidateArgs validates arguments against a command's argument definitions.
func ValidateArgs(cmd *Command, args []string) error {
	if cmd == nil {
		return nil
	}

	for i, argDef := range cmd.Args {
		if argDef.Required && i >= len(args) {
			return &ValidationError{
				Command:  cmd.Name,
				Arg:      argDef.Name,
				Message:  "required argument missing",
				Expected: argDef.Description,
			}
		}

		if i < len(args) && argDef.Type == ArgTypeEnum && len(argDef.Values) > 0 {
			if !containsFold(argDef.Values, args[i]) {
				return &ValidationError{
					Command:  cmd.Name,
					Arg:      argDef.Name,
					Message:  "invalid value",
					Got:      args[i],
					Expected: strings.Join(argDef.Values, ", "),
				}
			}
		}
	}

	return nil
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION ERROR
// =============================================================================

// ValidationError represents an argument validation error.
type ValidationError struct {
	Command  string
	Arg      string
	Message  string
	Got      string
	Expected string
}

func (e *ValidationError) Error() string {
	msg := e.Command + ": " + e.Message
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += ", expected: " + e.Expected
	}
	return msg
}
