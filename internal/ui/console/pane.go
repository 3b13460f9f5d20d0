// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/ui/styles"
	"github.com/jeranaias/devcli/internal/util"
)

const (
	minPaneWidth = 30
	maxPaneWidth = 60
)

// catalogPane lists the catalog beside the scrollback.
type catalogPane struct {
	entries []catalog.Entry
	cursor  int
	offset  int
	visible bool

	width  int
	height int
}

// SetEntries replaces the listed entries, keeping the cursor in range.
func (p *catalogPane) SetEntries(entries []catalog.Entry) {
	p.entries = entries
	if p.cursor >= len(entries) {
		p.cursor = len(entries) - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}
	p.clampOffset()
}

// SetSize sets the outer size including the border.
func (p *catalogPane) SetSize(width, height int) {
	p.width, p.height = width, height
	p.clampOffset()
}

// rows is how many entries fit below the title.
func (p *catalogPane) rows() int {
	r := p.height - 3 // border and title
	if r < 1 {
		r = 1
	}
	return r
}

func (p *catalogPane) Up() {
	if p.cursor > 0 {
		p.cursor--
		p.clampOffset()
	}
}

func (p *catalogPane) Down() {
	if p.cursor < len(p.entries)-1 {
		p.cursor++
		p.clampOffset()
	}
}

func (p *catalogPane) clampOffset() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+p.rows() {
		p.offset = p.cursor - p.rows() + 1
	}
	if p.offset < 0 {
		p.offset = 0
	}
}

// Selected returns the entry under the cursor.
func (p *catalogPane) Selected() (catalog.Entry, bool) {
	if p.cursor < 0 || p.cursor >= len(p.entries) {
		return catalog.Entry{}, false
	}
	return p.entries[p.cursor], true
}

// paneWidth picks the pane width for a terminal width.
func paneWidth(total int) int {
	w := total / 3
	if w < minPaneWidth {
		w = minPaneWidth
	}
	if w > maxPaneWidth {
		w = maxPaneWidth
	}
	if w > total {
		w = total
	}
	return w
}

// View renders the pane. Each row shows name, argument count and help.
func (p *catalogPane) View(theme *styles.Theme, hideEscapes bool) string {
	inner := p.width - 2
	if inner < 4 {
		inner = 4
	}

	title := theme.PaneTitle.Render(util.TruncateWidth(fmt.Sprintf("Catalog (%d)", len(p.entries)), inner-2))
	lines := []string{title}

	if len(p.entries) == 0 {
		lines = append(lines, theme.PaneHelp.Render(util.TruncateWidth("Use /import to load commands", inner-2)))
	}

	nameWidth := inner / 3
	end := p.offset + p.rows()
	if end > len(p.entries) {
		end = len(p.entries)
	}
	for i := p.offset; i < end; i++ {
		e := p.entries[i]
		row := util.PadWidth(util.TruncateWidth(e.Name, nameWidth), nameWidth) + " " +
			util.PadWidth(strconv.Itoa(e.ArgCount), 3) + " " +
			e.HelpText(hideEscapes)
		row = util.PadWidth(util.TruncateWidth(row, inner-2), inner-2)
		if i == p.cursor {
			lines = append(lines, theme.PaneSelected.Render(row))
		} else {
			lines = append(lines, theme.PaneItem.Render(row))
		}
	}

	body := strings.Join(lines, "\n")
	return theme.Pane.
		Width(inner).
		Height(p.height - 2).
		Render(lipgloss.NewStyle().MaxWidth(inner).Render(body))
}
