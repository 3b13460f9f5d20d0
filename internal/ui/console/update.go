// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/commands"
	"github.com/jeranaias/devcli/internal/transport"
)

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.ready = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	// ----- device link -----

	case DataMsg:
		if msg.Gen == m.gen {
			m.appendData(msg.Data)
		}
		return m, nil

	case ConnectedMsg:
		return m.handleConnected(msg), nil

	case ConnectFailedMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		m.spin.Stop()
		m.appendError("Connect failed", fmt.Sprintf("%s: %v", msg.Addr, msg.Err), "Check the address with /status, or change it with /config")
		return m, nil

	case ClosedMsg:
		if msg.Gen != m.gen || !m.sess.Connected() {
			return m, nil
		}
		m.sess.LinkClosed(msg.Err)
		if msg.Err != nil {
			m.appendError("Connection lost", msg.Err.Error(), "Use /connect to reconnect")
		} else {
			m.appendSystem("Connection closed by device.")
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	// ----- catalog file -----

	case CatalogChangedMsg:
		res, err := m.sess.Reload()
		if err != nil {
			m.appendError("Reload failed", err.Error(), "")
			return m, nil
		}
		m.appendSystem(fmt.Sprintf("%s changed, reloaded %d commands.", msg.Path, res.Added))
		m.refreshPane()
		m.refreshAssist()
		return m, nil

	case WatchErrorMsg:
		m.log.Warn("catalog watch error", "error", msg.Err)
		m.appendError("Watch error", msg.Err.Error(), "")
		return m, nil

	// ----- slash commands -----

	case commands.SystemMessageMsg:
		m.appendSystem(msg.Content)
		return m, nil

	case commands.ErrorMsg:
		m.appendError(msg.Title, msg.Message, msg.Tip)
		return m, nil

	case commands.ClearMsg:
		m.clear()
		return m, nil

	case commands.ConnectMsg:
		return m, m.startConnect(msg)

	case commands.DisconnectMsg:
		// Bump the generation first so the closing receive loop is stale.
		m.gen++
		wasConnecting := m.spin.active
		m.spin.Stop()
		if !m.sess.Connected() {
			if wasConnecting {
				m.appendSystem("Connect cancelled.")
			}
			return m, nil
		}
		addr := m.sess.RemoteAddr()
		if err := m.sess.Disconnect(); err != nil {
			m.log.Warn("disconnect", "error", err)
		}
		m.appendSystem("Disconnected from " + addr + ".")
		return m, nil

	case commands.CatalogLoadedMsg:
		m.appendSystem(msg.Summary())
		m.refreshPane()
		m.refreshAssist()
		m.restartWatcher()
		return m, nil

	case commands.DescribeMsg:
		m.appendLines(m.theme.RenderMarkdown(msg.Markdown, m.viewport.Width), func(s string) string { return s })
		return m, nil

	case commands.ConfigUpdateMsg:
		if msg.Error != nil {
			m.appendError("Config error", msg.Error.Error(), "")
			return m, nil
		}
		m.applyConfig()
		if msg.Key != "" {
			m.appendSystem(fmt.Sprintf("%s = %v", msg.Key, msg.Value))
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.pane.visible {
		if handled, cmd := m.handlePaneKey(msg); handled {
			return m, cmd
		}
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Catalog):
		m.pane.visible = !m.pane.visible
		m.refreshPane()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.clear()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Dismiss):
		if m.slash.Visible {
			m.setInput(m.slash.OriginalInput)
			m.slash.Clear()
		}
		m.refreshAssist()
		return m, nil

	case key.Matches(msg, m.keys.HistoryPrev):
		if m.slash.Visible {
			m.slash.Prev()
			m.setInput(m.slash.Accept())
		} else {
			m.setInput(m.sess.History().StepBackward())
		}
		m.refreshAssist()
		return m, nil

	case key.Matches(msg, m.keys.HistoryNext):
		if m.slash.Visible {
			m.slash.Next()
			m.setInput(m.slash.Accept())
		} else {
			m.setInput(m.sess.History().StepForward())
		}
		m.refreshAssist()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		m.complete()
		m.refreshAssist()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	m.slash.Clear()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.refreshAssist()
	return m, cmd
}

// handlePaneKey moves the catalog selection. Enter copies the selected
// command into the input line.
func (m *Model) handlePaneKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.HistoryPrev):
		m.pane.Up()
	case key.Matches(msg, m.keys.HistoryNext):
		m.pane.Down()
	case key.Matches(msg, m.keys.Submit):
		if e, ok := m.pane.Selected(); ok {
			m.setInput(e.Name + " ")
		}
		m.pane.visible = false
		m.refreshAssist()
	case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.Catalog):
		m.pane.visible = false
		m.layout()
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) setInput(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// complete handles Tab. Slash lines cycle through command and argument
// completions; device lines complete the command name from the catalog.
func (m *Model) complete() {
	value := m.input.Value()
	if commands.IsCommand(value) {
		if m.slash.Visible {
			m.slash.Next()
			m.setInput(m.slash.Accept())
			return
		}
		comps := m.completer.Complete(value, -1)
		switch len(comps) {
		case 0:
		case 1:
			m.setInput(commands.Apply(value, comps[0]))
		default:
			m.slash.Update(value, comps)
			m.setInput(m.slash.Accept())
		}
		return
	}
	// Tab only completes what the assistant is showing.
	if m.cfg.UI.HideAssistant || m.popover == "" {
		return
	}
	if completed, ok := m.sess.Complete(value); ok {
		m.setInput(completed)
	}
}

// =============================================================================
// SUBMIT
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()
	m.slash.Clear()
	m.refreshAssist()

	if commands.IsCommand(line) {
		m.appendEcho(line)
		m.sess.History().Append(line)
		cmd, _ := m.registry.Execute(m.cmdCtx, line)
		return m, cmd
	}

	m.sess.Record(context.Background(), line)
	line = commands.DeviceLine(line)
	m.appendEcho(line)
	_, err := m.sess.Send(line)
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrNotConnected):
		if strings.TrimSpace(line) != "" {
			m.appendError("Not connected", "", "Use /connect")
		}
	default:
		m.appendError("Send failed", err.Error(), "")
	}
	return m, nil
}

// =============================================================================
// CONNECTION
// =============================================================================

// startConnect dials off the event loop. The result comes back as a
// ConnectedMsg or ConnectFailedMsg tagged with this attempt's generation.
func (m *Model) startConnect(msg commands.ConnectMsg) tea.Cmd {
	m.gen++
	gen := m.gen

	bridge := m.bridge
	opts := transport.Options{
		Kind:        msg.Kind,
		Address:     msg.Address,
		Port:        msg.Port,
		DialTimeout: m.cfg.Connection.DialTimeout(),
		SendRate:    m.cfg.Connection.SendRate,
		OnData: func(data []byte) {
			bridge.Send(DataMsg{Gen: gen, Data: data})
		},
		OnClose: func(err error) {
			bridge.Send(ClosedMsg{Gen: gen, Err: err})
		},
	}
	m.appendSystem(fmt.Sprintf("Connecting to %s over %s...", opts.Addr(), opts.Kind))

	sess := m.sess
	dial := func() tea.Msg {
		link, err := sess.Dial(context.Background(), opts)
		if err != nil {
			return ConnectFailedMsg{Gen: gen, Addr: opts.Addr(), Err: err}
		}
		return ConnectedMsg{Gen: gen, Link: link, Kind: opts.Kind}
	}
	return tea.Batch(dial, m.spin.Start(opts.Addr()))
}

func (m Model) handleConnected(msg ConnectedMsg) Model {
	if msg.Gen != m.gen {
		// Superseded by a later connect or a disconnect.
		msg.Link.Close()
		return m
	}
	m.spin.Stop()
	m.sess.Attach(msg.Link, msg.Kind)
	m.appendSystem(fmt.Sprintf("Connected to %s (%s).", msg.Link.RemoteAddr(), msg.Kind))
	return m
}

// =============================================================================
// CONFIG AND WATCHER
// =============================================================================

// applyConfig pushes settings changes into the session and the widgets.
func (m *Model) applyConfig() {
	m.sess.SetTerminator(m.cfg.Connection.Terminator())
	if policy, err := catalog.ParseMergePolicy(m.cfg.Catalog.MergePolicy); err == nil {
		m.sess.Catalog().SetPolicy(policy)
	}
	m.applyTheme()
	m.refreshPane()
	m.refreshAssist()
	m.refreshViewport()
}

// restartWatcher watches the current catalog source when watching is on.
func (m *Model) restartWatcher() {
	if m.watcher != nil {
		m.watcher.Close()
		m.watcher = nil
	}
	path, _ := m.sess.Source()
	if !m.cfg.Catalog.Watch || path == "" {
		return
	}

	bridge := m.bridge
	w, err := catalog.NewWatcher(path, catalog.DefaultDebounce,
		func(changed string) { bridge.Send(CatalogChangedMsg{Path: changed}) },
		func(err error) { bridge.Send(WatchErrorMsg{Err: err}) },
	)
	if err == nil {
		err = w.Watch()
	}
	if err != nil {
		if w != nil {
			w.Close()
		}
		m.appendError("Watch failed", err.Error(), "")
		return
	}
	m.watcher = w
}
