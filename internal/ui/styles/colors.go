// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// CONSOLE SCHEMES
// =============================================================================

// Scheme is a console color scheme.
type Scheme struct {
	Name       string
	Background lipgloss.TerminalColor
	Foreground lipgloss.TerminalColor
}

// Turquoise2 is the X11 color used by the sea scheme.
const Turquoise2 = "#00E5EE"

var (
	// SchemeNone leaves the terminal's own colors alone.
	SchemeNone = Scheme{Name: "none", Background: lipgloss.NoColor{}, Foreground: lipgloss.NoColor{}}

	// SchemeSea is turquoise text on dark teal.
	SchemeSea = Scheme{Name: "sea", Background: lipgloss.Color("#123A4A"), Foreground: lipgloss.Color(Turquoise2)}

	// SchemeConsole is white text on black.
	SchemeConsole = Scheme{Name: "console", Background: lipgloss.Color("#000000"), Foreground: lipgloss.Color("#FFFFFF")}
)

// Schemes lists the available schemes in menu order.
var Schemes = []Scheme{SchemeNone, SchemeSea, SchemeConsole}

// SchemeByName returns the scheme called name, ignoring case.
func SchemeByName(name string) (Scheme, error) {
	for _, s := range Schemes {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return SchemeNone, fmt.Errorf("unknown color scheme %q", name)
}

// HasColors reports whether the scheme sets its own colors.
func (s Scheme) HasColors() bool {
	return s.Name != SchemeNone.Name
}

// =============================================================================
// ACCENT COLORS
// =============================================================================

// Cyan - prompt, command names
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - value placeholders, selections
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - connected state
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors, disconnected state
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - flag placeholders, warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// =============================================================================
// SURFACE AND TEXT COLORS
// =============================================================================

var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#181825"}
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}
var TextInverse = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}
