// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components of the console.
// It detects the terminal's color capability and applies a Scheme on top.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Scheme Scheme

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// CONSOLE STYLES
	// ==========================================================================

	App        lipgloss.Style
	Prompt     lipgloss.Style
	Sent       lipgloss.Style
	DeviceData lipgloss.Style
	System     lipgloss.Style
	ErrorTitle lipgloss.Style
	ErrorText  lipgloss.Style
	Tip        lipgloss.Style

	// ==========================================================================
	// ASSISTANT POPOVER STYLES
	// ==========================================================================

	Popover          lipgloss.Style
	PopoverName      lipgloss.Style
	PlaceholderValue lipgloss.Style
	PlaceholderFlag  lipgloss.Style

	// ==========================================================================
	// CATALOG PANE STYLES
	// ==========================================================================

	Pane         lipgloss.Style
	PaneTitle    lipgloss.Style
	PaneItem     lipgloss.Style
	PaneSelected lipgloss.Style
	PaneHelp     lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar          lipgloss.Style
	StatusConnected    lipgloss.Style
	StatusDisconnected lipgloss.Style
	StatusInfo         lipgloss.Style
	Muted              lipgloss.Style
}

// NewTheme creates a theme for the named scheme. Unknown names fall back to
// the none scheme.
func NewTheme(scheme string) *Theme {
	colorProfile := termenv.ColorProfile()

	s, err := SchemeByName(scheme)
	if err != nil {
		s = SchemeNone
	}
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
		Scheme:       s,
	}
	t.initStyles()
	return t
}

// SetScheme switches to the named scheme and rebuilds the styles.
func (t *Theme) SetScheme(name string) error {
	s, err := SchemeByName(name)
	if err != nil {
		return err
	}
	t.Scheme = s
	t.initStyles()
	return nil
}

// base returns a style carrying the scheme's colors.
func (t *Theme) base() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Scheme.Foreground).
		Background(t.Scheme.Background)
}

// accent returns c, or the scheme foreground when the scheme sets colors.
func (t *Theme) accent(c lipgloss.TerminalColor) lipgloss.TerminalColor {
	if t.Scheme.HasColors() {
		return t.Scheme.Foreground
	}
	return c
}

func (t *Theme) initStyles() {
	t.App = t.base()

	t.Prompt = t.base().Bold(true).Foreground(t.accent(Cyan))
	t.Sent = t.base()
	t.DeviceData = t.base()
	t.System = t.base().Foreground(t.accent(TextSecondary)).Italic(true)
	t.ErrorTitle = t.base().Bold(true).Foreground(Rose)
	t.ErrorText = t.base().Foreground(Rose)
	t.Tip = t.base().Foreground(t.accent(TextMuted)).Italic(true)

	// The popover marks names bold and placeholders italic.
	t.Popover = t.base().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.accent(Overlay)).
		BorderBackground(t.Scheme.Background).
		Padding(0, 1)
	t.PopoverName = t.base().Bold(true).Foreground(t.accent(Cyan))
	t.PlaceholderValue = t.base().Italic(true).Foreground(t.accent(Purple))
	t.PlaceholderFlag = t.base().Italic(true).Foreground(t.accent(Amber))

	t.Pane = t.base().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(t.accent(Overlay)).
		BorderBackground(t.Scheme.Background)
	t.PaneTitle = t.base().Bold(true).Foreground(t.accent(Cyan)).Padding(0, 1)
	t.PaneItem = t.base().Padding(0, 1)
	t.PaneSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Purple).
		Padding(0, 1)
	t.PaneHelp = t.base().Foreground(t.accent(TextMuted)).Padding(0, 1)

	statusBg := lipgloss.TerminalColor(SurfaceDim)
	if t.Scheme.HasColors() {
		statusBg = t.Scheme.Background
	}
	t.StatusBar = lipgloss.NewStyle().
		Foreground(t.accent(TextPrimary)).
		Background(statusBg).
		Padding(0, 1)
	t.StatusConnected = lipgloss.NewStyle().Bold(true).Foreground(Emerald).Background(statusBg)
	t.StatusDisconnected = lipgloss.NewStyle().Bold(true).Foreground(Rose).Background(statusBg)
	t.StatusInfo = lipgloss.NewStyle().Foreground(t.accent(TextSecondary)).Background(statusBg)
	t.Muted = t.base().Foreground(t.accent(TextMuted))
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, catalog pane hidden
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
