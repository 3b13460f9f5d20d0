// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devcli/internal/ui/styles"
)

// connectSpinner animates the status bar while a dial is in flight.
type connectSpinner struct {
	spinner spinner.Model
	target  string
	started time.Time
	active  bool
}

func newConnectSpinner() connectSpinner {
	s := spinner.New()
	// ASCII frames render on every terminal.
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return connectSpinner{spinner: s}
}

// Start shows the spinner for target and returns the first tick.
func (s *connectSpinner) Start(target string) tea.Cmd {
	s.active = true
	s.target = target
	s.started = time.Now()
	return s.spinner.Tick
}

func (s *connectSpinner) Stop() {
	s.active = false
}

// Update advances the animation. Ticks arriving after Stop end the loop.
func (s connectSpinner) Update(msg tea.Msg) (connectSpinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the frame, the target and the elapsed time.
func (s connectSpinner) View(theme *styles.Theme) string {
	if !s.active {
		return ""
	}
	elapsed := time.Since(s.started).Truncate(100 * time.Millisecond)
	return theme.StatusInfo.Render(fmt.Sprintf("%s connecting to %s (%s)", s.spinner.View(), s.target, elapsed))
}
