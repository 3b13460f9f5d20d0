// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jeranaias/devcli/internal/config"
)

// maxFileCompletions caps directory listings.
const maxFileCompletions = 20

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Display text shown in the list
	Display string

	Description string

	// Score for ranking (higher = better match)
	Score int
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for slash commands and their arguments.
// Device lines are completed by the assist package instead.
type Completer struct {
	registry *Registry

	// CommandsFn returns catalog command names for ArgTypeCommand arguments.
	CommandsFn func() []string
	// FilesFn overrides directory listing for ArgTypeFile arguments.
	FilesFn func(prefix string) []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns completions for input up to cursorPos.
func (c *Completer) Complete(input string, cursorPos int) []Completion {
	if cursorPos >= 0 && cursorPos < len(input) {
		input = input[:cursorPos]
	}
	input = strings.TrimLeft(input, " \t")
	if !IsCommand(input) {
		return nil
	}

	if partial := GetPartialCommand(input); partial != "" {
		return c.completeCommands(partial)
	}

	parts := splitCommandLine(input)
	cmd := c.registry.Get(strings.ToLower(parts[0]))
	if cmd == nil {
		return nil
	}
	argIndex, partial := GetPartialArg(input)
	return c.completeArg(cmd, argIndex, partial)
}

// Apply replaces the word being completed in input with comp.Value.
func Apply(input string, comp Completion) string {
	cut := strings.LastIndexAny(input, " \t")
	if cut < 0 {
		return comp.Value
	}
	return input[:cut+1] + comp.Value
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}
	arg := cmd.Args[argIndex]

	switch arg.Type {
	case ArgTypeFile:
		if c.FilesFn != nil {
			return completeFromList(c.FilesFn(partial), partial, false)
		}
		return completeFiles(partial)
	case ArgTypeEnum:
		return completeFromList(arg.Values, partial, false)
	case ArgTypeConfig:
		return completeFromList(config.Keys(), partial, false)
	case ArgTypeCommand:
		if c.CommandsFn == nil {
			return nil
		}
		// Device commands are case-sensitive.
		return completeFromList(c.CommandsFn(), partial, true)
	default:
		return nil
	}
}

func completeFiles(partial string) []Completion {
	var completions []Completion

	dir, prefix := filepath.Split(partial)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix)) {
			continue
		}
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(prefix, ".") {
			continue
		}

		value := name
		if d, _ := filepath.Split(partial); d != "" {
			value = d + name
		}
		score := calculateScore(name, prefix)
		desc := ""
		if entry.IsDir() {
			value += string(os.PathSeparator)
			score += 5
			desc = "directory"
		} else if info, err := entry.Info(); err == nil {
			desc = formatFileSize(info.Size())
		}

		completions = append(completions, Completion{
			Value:       value,
			Display:     name,
			Description: desc,
			Score:       score,
		})
	}

	sortCompletions(completions)
	if len(completions) > maxFileCompletions {
		completions = completions[:maxFileCompletions]
	}
	return completions
}

func completeFromList(values []string, partial string, caseSensitive bool) []Completion {
	var completions []Completion
	for _, value := range values {
		match := strings.HasPrefix(value, partial)
		if !caseSensitive {
			match = strings.HasPrefix(strings.ToLower(value), strings.ToLower(partial))
		}
		if match {
			completions = append(completions, Completion{
				Value:   value,
				Display: value,
				Score:   calculateScore(value, partial),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// calculateScore ranks a prefix match. Exact matches rank highest, then
// shorter values.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100
	if value == partial {
		return score + 100
	}
	if strings.HasPrefix(value, partial) {
		score += 50
		score += 20 - len(value)
	}
	score -= len(value) / 2
	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

func formatFileSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
	)
	switch {
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState holds the state for cycling through completions.
type CompletionState struct {
	// OriginalInput is the input the completions were computed for.
	OriginalInput string

	Completions []Completion

	// Selected index (-1 for none)
	Selected int

	Visible bool
}

// NewCompletionState creates a new completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the completions and selects the first.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	cs.Visible = len(completions) > 0
}

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns the input with the selected completion applied.
func (cs *CompletionState) Accept() string {
	sel := cs.GetSelected()
	if sel == nil {
		return cs.OriginalInput
	}
	return Apply(cs.OriginalInput, *sel)
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
	cs.Visible = false
}

// GetSelected returns the currently selected completion, or nil.
func (cs *CompletionState) GetSelected() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}
