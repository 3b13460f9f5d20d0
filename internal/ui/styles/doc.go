// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling of the devcli console.

# Schemes

The console has three color schemes, chosen with ui.color or /color:

	none     the terminal's own colors
	sea      turquoise on dark teal
	console  white on black

Accent colors (prompt, placeholders, status) use Lip Gloss AdaptiveColor so
they suit light and dark terminals under the none scheme. The other schemes
draw everything in their foreground color.

# Theme

NewTheme detects the terminal's color profile with termenv and builds every
style for a scheme. SetScheme rebuilds them after /color.

# Rendering

  - RenderSuggestion draws the assistant popover: bold command names,
    italic placeholders colored by kind (value or flag)
  - RenderMarkdown renders /describe help cards with glamour
  - HighlightSource colors generated C definitions with chroma
*/
package styles
