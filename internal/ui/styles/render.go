// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/devcli/internal/assist"
	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/util"
)

// =============================================================================
// ASSISTANT POPOVER
// =============================================================================

// RenderSuggestion draws the assistant popover for s, at most maxWidth cells
// wide including the border. It returns "" when there is nothing to show.
//
// Command names are bold. Placeholders are italic, colored by kind, and bold
// as well on the line for a fully typed command.
func (t *Theme) RenderSuggestion(s assist.Suggestion, maxWidth int) string {
	if s.Empty() {
		return ""
	}
	inner := maxWidth - 4 // border and padding
	if inner < 8 {
		inner = 8
	}

	rows := make([]string, 0, len(s.Lines))
	for _, line := range s.Lines {
		if util.StringWidth(line.Text()) > inner {
			rows = append(rows, t.PopoverName.Render(util.TruncateWidth(line.Text(), inner)))
			continue
		}
		rows = append(rows, t.renderLine(line))
	}
	return t.Popover.Render(strings.Join(rows, "\n"))
}

func (t *Theme) renderLine(line assist.Line) string {
	parts := make([]string, 0, len(line.Placeholders)+1)
	if line.Name != "" {
		parts = append(parts, t.PopoverName.Render(line.Name))
	}
	for _, p := range line.Placeholders {
		style := t.PlaceholderValue
		if p.Kind == catalog.PlaceholderFlag {
			style = t.PlaceholderFlag
		}
		if line.Name == "" {
			style = style.Bold(true)
		}
		parts = append(parts, style.Render(assist.FormatPlaceholder(p.Name)))
	}
	return strings.Join(parts, t.App.Render(" "))
}

// =============================================================================
// MARKDOWN AND SOURCE
// =============================================================================

// RenderMarkdown renders md for the terminal, wrapped at width. The input is
// returned unchanged if glamour fails.
func (t *Theme) RenderMarkdown(md string, width int) string {
	style := "light"
	switch {
	case t.ColorProfile == termenv.Ascii:
		style = "notty"
	case t.IsDark || t.Scheme.HasColors():
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// HighlightSource applies C syntax highlighting for a 256-color terminal.
// The code is returned unchanged if chroma fails.
func HighlightSource(code string) string {
	lexer := lexers.Get("c")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// Width returns the rendered width of s in cells.
func Width(s string) int {
	return lipgloss.Width(s)
}
