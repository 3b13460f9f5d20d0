// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/devcli/internal/util"
)

// View renders the console: scrollback (with the catalog pane beside it),
// the assistant popover, the input line and the status bar.
func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var sections []string

	body := m.viewport.View()
	if m.pane.visible {
		pane := m.pane.View(m.theme, m.cfg.UI.HideEscapeChars)
		if m.pane.width >= m.width {
			body = pane
		} else {
			body = lipgloss.JoinHorizontal(lipgloss.Top, body, pane)
		}
	}
	sections = append(sections, body)

	if m.popover != "" {
		sections = append(sections, m.popover)
	}
	sections = append(sections, m.input.View())
	sections = append(sections, m.renderStatusBar())
	if m.help.ShowAll {
		sections = append(sections, m.help.View(m.keys))
	}

	return m.theme.App.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// renderStatusBar shows the link state on the left and the catalog and key
// hints on the right.
func (m Model) renderStatusBar() string {
	t := m.theme

	var left string
	switch {
	case m.sess.Connected():
		st := m.sess.Status()
		left = t.StatusConnected.Render("● "+st.Kind.String()) + t.StatusInfo.Render(" "+st.RemoteAddr)
	case m.spin.active:
		left = m.spin.View(t)
	default:
		left = t.StatusDisconnected.Render("○ offline")
	}

	right := t.StatusInfo.Render(m.catalogInfo() + "  F1 keys  F2 catalog")

	inner := m.width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = inner - lipgloss.Width(left)
		if gap < 0 {
			gap = 0
		}
	}
	bar := left + t.StatusInfo.Render(strings.Repeat(" ", gap)) + right
	return t.StatusBar.Width(m.width).MaxWidth(m.width).Render(bar)
}

func (m Model) catalogInfo() string {
	n := m.sess.Catalog().Len()
	if !m.sess.Loaded() {
		return "no catalog"
	}
	path, _ := m.sess.Source()
	return fmt.Sprintf("%s %d cmds", util.TruncateWidth(filepath.Base(path), 24), n)
}
