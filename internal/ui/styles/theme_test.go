// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/devcli/internal/assist"
	"github.com/jeranaias/devcli/internal/catalog"
)

// =============================================================================
// SCHEME TESTS
// =============================================================================

func TestSchemeByName(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"none", "none", false},
		{"Sea", "sea", false},
		{"CONSOLE", "console", false},
		{"solarized", "none", true},
	}

	for _, tc := range tests {
		s, err := SchemeByName(tc.input)
		if tc.wantErr {
			assert.Error(t, err, tc.input)
		} else {
			assert.NoError(t, err, tc.input)
		}
		assert.Equal(t, tc.want, s.Name)
	}
}

func TestSchemeColors(t *testing.T) {
	assert.False(t, SchemeNone.HasColors())
	assert.True(t, SchemeSea.HasColors())
	assert.Equal(t, lipgloss.Color("#123A4A"), SchemeSea.Background)
	assert.Equal(t, lipgloss.Color(Turquoise2), SchemeSea.Foreground)
	assert.Equal(t, lipgloss.Color("#000000"), SchemeConsole.Background)
	assert.Equal(t, lipgloss.Color("#FFFFFF"), SchemeConsole.Foreground)
}

// =============================================================================
// THEME TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme("sea")
	require.NotNil(t, theme)
	assert.Equal(t, "sea", theme.Scheme.Name)

	assert.Equal(t, "none", NewTheme("bogus").Scheme.Name)
}

func TestThemeSetScheme(t *testing.T) {
	theme := NewTheme("none")

	require.NoError(t, theme.SetScheme("console"))
	assert.Equal(t, "console", theme.Scheme.Name)
	assert.Equal(t, SchemeConsole.Foreground, theme.PopoverName.GetForeground())

	assert.Error(t, theme.SetScheme("neon"))
	assert.Equal(t, "console", theme.Scheme.Name)
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("none")

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Prompt", theme.Prompt},
		{"System", theme.System},
		{"ErrorTitle", theme.ErrorTitle},
		{"Popover", theme.Popover},
		{"PaneSelected", theme.PaneSelected},
		{"StatusBar", theme.StatusBar},
	}
	for _, s := range styles {
		assert.Contains(t, s.style.Render("test"), "test", s.name)
	}
	assert.True(t, theme.PopoverName.GetBold())
	assert.True(t, theme.PlaceholderValue.GetItalic())
	assert.True(t, theme.PlaceholderFlag.GetItalic())
}

func TestGetLayoutMode(t *testing.T) {
	theme := NewTheme("none")

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	for _, tc := range tests {
		theme.SetSize(tc.width, 24)
		assert.Equal(t, tc.want, theme.GetLayoutMode(), "width %d", tc.width)
	}
}

// =============================================================================
// RENDER TESTS
// =============================================================================

func testCatalog() *catalog.Catalog {
	c := catalog.New()
	c.Merge([]catalog.Entry{
		{Name: "get", ArgCount: 1, Help: "get <key> [-v]"},
		{Name: "getAll", ArgCount: 0, Help: "getAll"},
	})
	return c
}

func TestRenderSuggestion(t *testing.T) {
	theme := NewTheme("none")
	cat := testCatalog()

	assert.Equal(t, "", theme.RenderSuggestion(assist.Suggest(cat, "x"), 40))

	out := theme.RenderSuggestion(assist.Suggest(cat, "ge"), 40)
	assert.Contains(t, out, "get")
	assert.Contains(t, out, "[ key ]")
	assert.Contains(t, out, "[ -v ]")
	assert.Contains(t, out, "getAll")
	assert.Equal(t, 4, lipgloss.Height(out), "two rows plus the border")

	out = theme.RenderSuggestion(assist.Suggest(cat, "getA"), 40)
	assert.Contains(t, out, "getAll")
}

func TestRenderSuggestion_Truncates(t *testing.T) {
	theme := NewTheme("none")
	c := catalog.New()
	c.Merge([]catalog.Entry{{Name: "configure", ArgCount: 3, Help: "configure <interface> <address> <netmask>"}})

	out := theme.RenderSuggestion(assist.Suggest(c, "conf"), 24)

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 24)
	}
	assert.Contains(t, out, "...")
}

func TestRenderMarkdown(t *testing.T) {
	theme := NewTheme("none")
	out := theme.RenderMarkdown("# get\n\n**Usage:** `get [ key ]`\n", 60)
	assert.Contains(t, out, "get")
	assert.Contains(t, out, "Usage")
}

func TestHighlightSource(t *testing.T) {
	src := `static const CLI_Command_Definition_t xGet = { "get", "get <key>", prvGet, 1 };`
	out := HighlightSource(src)
	assert.Contains(t, out, "CLI_Command_Definition_t")
	assert.Contains(t, out, "prvGet")
}
