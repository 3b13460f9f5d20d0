// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/commands"
	"github.com/jeranaias/devcli/internal/config"
	"github.com/jeranaias/devcli/internal/logging"
	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/ui/styles"
)

// maxScrollback caps the lines kept in the console.
const maxScrollback = 5000

// Options configures a console.
type Options struct {
	Session *session.Session
	Config  *config.Config
	Logger  logging.Logger

	// ConfigPath is where settings changes are saved.
	ConfigPath string

	// Connect dials the configured device at startup.
	Connect bool

	// Import is imported at startup when set.
	Import string
}

// Model is the console's Bubble Tea model.
type Model struct {
	sess *session.Session
	cfg  *config.Config
	log  logging.Logger

	registry  *commands.Registry
	cmdCtx    *commands.Context
	completer *commands.Completer
	slash     *commands.CompletionState

	theme  *styles.Theme
	keys   KeyMap
	help   help.Model
	bridge *Bridge

	viewport viewport.Model
	input    textinput.Model
	pane     catalogPane

	// Scrollback lines, already styled. partial is the device output line
	// still waiting for its newline.
	lines   []string
	partial string

	// popover is the rendered assistant or slash completion list.
	popover string

	width  int
	height int
	ready  bool

	gen     int
	spin    connectSpinner
	watcher *catalog.Watcher

	startup []tea.Cmd
}

// New creates a console model.
func New(opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Session == nil {
		opts.Session = session.New(session.Options{Logger: opts.Logger})
	}

	registry := commands.NewRegistry()
	cmdCtx := commands.NewContext(opts.Session, opts.Config, registry, opts.Logger)
	cmdCtx.ConfigPath = opts.ConfigPath

	completer := commands.NewCompleter(registry)
	completer.CommandsFn = opts.Session.Catalog().Names

	ti := textinput.New()
	ti.Prompt = opts.Config.UI.Prompt
	ti.Placeholder = "command, or /help"
	ti.CharLimit = 4096
	ti.Focus()

	theme := styles.NewTheme(opts.Config.UI.Color)

	m := Model{
		sess:      opts.Session,
		cfg:       opts.Config,
		log:       opts.Logger,
		registry:  registry,
		cmdCtx:    cmdCtx,
		completer: completer,
		slash:     commands.NewCompletionState(),
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		bridge:    NewBridge(),
		viewport:  viewport.New(80, 20),
		input:     ti,
		spin:      newConnectSpinner(),
		width:     80,
		height:    24,
	}
	m.applyTheme()

	if opts.Import != "" {
		m.startup = append(m.startup, commands.HandleImport(cmdCtx, []string{opts.Import}))
	}
	if opts.Connect {
		m.startup = append(m.startup, commands.HandleConnect(cmdCtx, nil))
	}
	return m
}

// Bridge returns the bridge background goroutines use to reach the model.
func (m Model) Bridge() *Bridge {
	return m.bridge
}

// Close stops the file watcher and closes the session.
func (m Model) Close() error {
	if m.watcher != nil {
		m.watcher.Close()
	}
	return m.sess.Close()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init prints the banner and runs the startup import and connect.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		func() tea.Msg {
			return commands.SystemMessageMsg{Content: "devcli - type /help for commands, F2 for the catalog"}
		},
	}
	return tea.Sequence(append(cmds, m.startup...)...)
}

// Run starts the console and blocks until it exits.
func Run(ctx context.Context, opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.bridge.Attach(p)

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	return err
}

// =============================================================================
// SCROLLBACK
// =============================================================================

func (m *Model) appendLines(text string, render func(string) string) {
	m.flushPartial()
	for _, line := range strings.Split(text, "\n") {
		m.lines = append(m.lines, render(line))
	}
	m.trimScrollback()
	m.refreshViewport()
}

func (m *Model) appendSystem(text string) {
	m.appendLines(text, func(s string) string { return m.theme.System.Render(s) })
}

func (m *Model) appendError(title, message, tip string) {
	m.flushPartial()
	line := m.theme.ErrorTitle.Render(title)
	if message != "" {
		line += m.theme.ErrorText.Render(": " + message)
	}
	m.lines = append(m.lines, line)
	if tip != "" {
		m.lines = append(m.lines, m.theme.Tip.Render("  "+tip))
	}
	m.trimScrollback()
	m.refreshViewport()
}

// appendEcho shows a submitted line after the prompt.
func (m *Model) appendEcho(line string) {
	m.flushPartial()
	m.lines = append(m.lines, m.theme.Prompt.Render(m.cfg.UI.Prompt)+m.theme.Sent.Render(line))
	m.trimScrollback()
	m.refreshViewport()
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "")

// appendData adds device output. Output without a trailing newline stays in
// partial until more arrives or something else is printed.
func (m *Model) appendData(data []byte) {
	text := lineBreaks.Replace(m.partial + string(data))
	parts := strings.Split(text, "\n")
	for _, line := range parts[:len(parts)-1] {
		m.lines = append(m.lines, m.theme.DeviceData.Render(line))
	}
	m.partial = parts[len(parts)-1]
	m.trimScrollback()
	m.refreshViewport()
}

func (m *Model) flushPartial() {
	if m.partial != "" {
		m.lines = append(m.lines, m.theme.DeviceData.Render(m.partial))
		m.partial = ""
	}
}

func (m *Model) trimScrollback() {
	if over := len(m.lines) - maxScrollback; over > 0 {
		m.lines = append([]string(nil), m.lines[over:]...)
	}
}

func (m *Model) clear() {
	m.lines = nil
	m.partial = ""
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	content := strings.Join(m.lines, "\n")
	if m.partial != "" {
		if content != "" {
			content += "\n"
		}
		content += m.theme.DeviceData.Render(m.partial)
	}
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(content)
	if atBottom || !m.ready {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// THEME AND LAYOUT
// =============================================================================

// applyTheme pushes the current config into the theme and widgets.
func (m *Model) applyTheme() {
	if m.theme.Scheme.Name != strings.ToLower(m.cfg.UI.Color) {
		if err := m.theme.SetScheme(m.cfg.UI.Color); err != nil {
			m.log.Warn("unknown color scheme", "color", m.cfg.UI.Color)
		}
	}
	m.input.Prompt = m.cfg.UI.Prompt
	m.input.PromptStyle = m.theme.Prompt
	m.input.TextStyle = m.theme.App
	m.input.PlaceholderStyle = m.theme.Muted
	m.viewport.Style = m.theme.App
}

// layout sizes the viewport, pane and input from the window size and the
// current popover.
func (m *Model) layout() {
	m.theme.SetSize(m.width, m.height)
	m.help.Width = m.width

	reserved := 2 // input and status bar
	if m.popover != "" {
		reserved += strings.Count(m.popover, "\n") + 1
	}
	if m.help.ShowAll {
		reserved += strings.Count(m.help.View(m.keys), "\n") + 1
	}
	height := m.height - reserved
	if height < 1 {
		height = 1
	}

	width := m.width
	if m.pane.visible {
		pw := paneWidth(m.width)
		if m.theme.GetLayoutMode() == styles.LayoutNarrow {
			pw = m.width
		}
		m.pane.SetSize(pw, height)
		width = m.width - pw
	}
	if width < 1 {
		width = 1
	}

	m.viewport.Width = width
	m.viewport.Height = height

	inputWidth := m.width - len(m.cfg.UI.Prompt) - 1
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth
}

// refreshAssist recomputes the popover for the current input.
func (m *Model) refreshAssist() {
	m.popover = ""
	value := m.input.Value()
	switch {
	case m.slash.Visible:
		m.popover = m.renderSlashCompletions()
	case commands.IsCommand(value):
	case !m.cfg.UI.HideAssistant:
		m.popover = m.theme.RenderSuggestion(m.sess.Suggest(value), m.width)
	}
	m.layout()
}

const maxSlashRows = 8

func (m *Model) renderSlashCompletions() string {
	rows := make([]string, 0, maxSlashRows)
	start := 0
	if m.slash.Selected >= maxSlashRows {
		start = m.slash.Selected - maxSlashRows + 1
	}
	for i := start; i < len(m.slash.Completions) && i < start+maxSlashRows; i++ {
		c := m.slash.Completions[i]
		row := c.Display
		if c.Description != "" {
			row += "  " + c.Description
		}
		if i == m.slash.Selected {
			rows = append(rows, m.theme.PaneSelected.Render(row))
		} else {
			rows = append(rows, m.theme.PopoverName.Render(row))
		}
	}
	return m.theme.Popover.Render(strings.Join(rows, "\n"))
}

// refreshPane reloads the pane entries from the catalog.
func (m *Model) refreshPane() {
	m.pane.SetEntries(m.sess.Catalog().Entries())
}
