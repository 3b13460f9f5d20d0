// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devcli/internal/assist"
	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/config"
	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/transport"
	"github.com/jeranaias/devcli/internal/util"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// SystemMessageMsg adds a system line to the console.
type SystemMessageMsg struct {
	Content string
}

// ErrorMsg indicates an error occurred.
type ErrorMsg struct {
	Title   string
	Message string
	Tip     string
}

// ClearMsg clears the console scrollback.
type ClearMsg struct{}

// ConnectMsg asks the console to dial the device.
type ConnectMsg struct {
	Kind    transport.Kind
	Address string
	Port    int
}

// DisconnectMsg asks the console to close the device connection.
type DisconnectMsg struct{}

// CatalogLoadedMsg reports a finished import.
type CatalogLoadedMsg struct {
	Path   string
	Kind   catalog.Kind
	Mode   session.ImportMode
	Result catalog.MergeResult
	Total  int
}

// Summary is the line printed after an import.
func (m CatalogLoadedMsg) Summary() string {
	s := fmt.Sprintf("Imported %d commands from %s (%s, %s)", m.Result.Added, m.Path, m.Kind, m.Mode)
	if m.Result.Skipped > 0 {
		s += fmt.Sprintf(", %d duplicates skipped", m.Result.Skipped)
	}
	return s + fmt.Sprintf(". Catalog has %d commands.", m.Total)
}

// DescribeMsg carries a command's help card as markdown.
type DescribeMsg struct {
	Name     string
	Markdown string
}

// ConfigUpdateMsg reports a settings change. The console re-applies the
// config when it receives one.
type ConfigUpdateMsg struct {
	Key      string
	Value    interface{}
	OldValue interface{}
	Error    error
}

func msgCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func systemCmd(format string, args ...any) tea.Cmd {
	return msgCmd(SystemMessageMsg{Content: fmt.Sprintf(format, args...)})
}

func errorCmd(title, message, tip string) tea.Cmd {
	return msgCmd(ErrorMsg{Title: title, Message: message, Tip: tip})
}

// =============================================================================
// CONNECTION
// =============================================================================

// HandleConnect resolves the target from the arguments and the config.
//
//	/connect                 configured type and address
//	/connect tcp             configured TCP address
//	/connect 10.0.0.2:7000   configured type, given address
func HandleConnect(ctx *Context, args []string) tea.Cmd {
	conn := ctx.Config.Connection
	if len(args) > 0 {
		if kind, err := transport.ParseKind(args[0]); err == nil {
			conn.Type = string(kind)
			args = args[1:]
		}
	}
	kind, err := transport.ParseKind(conn.Type)
	if err != nil {
		return errorCmd("Connect failed", err.Error(), "Use /transport udp|tcp")
	}

	host, port := conn.Address()
	if len(args) > 0 {
		host, port, err = ParseHostPort(args[0], host, port)
		if err != nil {
			return errorCmd("Connect failed", err.Error(), "Usage: /connect [udp|tcp] [host[:port]]")
		}
	}
	return msgCmd(ConnectMsg{Kind: kind, Address: host, Port: port})
}

// ParseHostPort parses "host", "host:port" or ":port", filling the missing
// parts from the defaults.
func ParseHostPort(s, defHost string, defPort int) (string, int, error) {
	if !strings.Contains(s, ":") {
		return s, defPort, nil
	}
	host, p, err := net.SplitHostPort(s)
	if err != nil {
		return "", 0, err
	}
	if host == "" {
		host = defHost
	}
	port, err := strconv.Atoi(p)
	if err != nil || port < 1 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", p)
	}
	return host, port, nil
}

// HandleDisconnect closes the device connection.
func HandleDisconnect(ctx *Context, args []string) tea.Cmd {
	if !ctx.Session.Connected() {
		return systemCmd("Not connected.")
	}
	return msgCmd(DisconnectMsg{})
}

// HandleTransport changes the connection type and reconnects when a link
// is open.
func HandleTransport(ctx *Context, args []string) tea.Cmd {
	kind, err := transport.ParseKind(args[0])
	if err != nil {
		return errorCmd("Invalid transport", err.Error(), "Valid types: udp, tcp")
	}
	old := ctx.Config.Connection.Type
	ctx.Config.Connection.Type = string(kind)
	ctx.persist()

	if ctx.Session.Connected() {
		return tea.Batch(
			systemCmd("Transport set to %s, reconnecting.", kind),
			HandleConnect(ctx, nil),
		)
	}
	return msgCmd(ConfigUpdateMsg{Key: "connection.type", Value: string(kind), OldValue: old})
}

// HandleStatus shows connection and catalog status.
func HandleStatus(ctx *Context, args []string) tea.Cmd {
	return msgCmd(SystemMessageMsg{Content: GenerateStatusText(ctx.Session.Status())})
}

// GenerateStatusText renders a session status block.
func GenerateStatusText(st session.Status) string {
	var sb strings.Builder
	sb.WriteString("Session " + st.SessionID + "\n")
	if st.Connected {
		fmt.Fprintf(&sb, "  Connection   %s %s\n", st.Kind, st.RemoteAddr)
	} else {
		sb.WriteString("  Connection   not connected\n")
	}
	if st.Loaded {
		fmt.Fprintf(&sb, "  Catalog      %d commands", st.CatalogSize)
		if st.Source != "" {
			sb.WriteString(" from " + st.Source)
		}
		sb.WriteString("\n")
	} else {
		sb.WriteString("  Catalog      none loaded\n")
	}
	fmt.Fprintf(&sb, "  History      %d commands\n", st.HistoryLen)
	fmt.Fprintf(&sb, "  Uptime       %s", session.FormatDuration(st.Duration))
	return sb.String()
}

// =============================================================================
// CATALOG
// =============================================================================

// HandleImport imports a catalog file, choosing the grammar by extension.
func HandleImport(ctx *Context, args []string) tea.Cmd {
	return importFile(ctx, args, catalog.KindAuto)
}

// HandleSource imports command definitions from a C source file.
func HandleSource(ctx *Context, args []string) tea.Cmd {
	return importFile(ctx, args, catalog.KindSource)
}

func importFile(ctx *Context, args []string, kind catalog.Kind) tea.Cmd {
	path, err := util.ExpandPath(args[0])
	if err != nil {
		return errorCmd("Import failed", err.Error(), "")
	}
	mode := session.ImportReplace
	if len(args) > 1 {
		if mode, err = session.ParseImportMode(args[1]); err != nil {
			return errorCmd("Import failed", err.Error(), "")
		}
	}

	res, err := ctx.Session.Import(path, kind, mode)
	if err != nil {
		return errorCmd("Import failed", err.Error(), "Check the file path")
	}
	_, resolved := ctx.Session.Source()
	return msgCmd(CatalogLoadedMsg{
		Path:   path,
		Kind:   resolved,
		Mode:   mode,
		Result: res,
		Total:  ctx.Session.Catalog().Len(),
	})
}

// HandleReload re-imports the last imported file.
func HandleReload(ctx *Context, args []string) tea.Cmd {
	res, err := ctx.Session.Reload()
	if err != nil {
		return errorCmd("Reload failed", err.Error(), "Use /import first")
	}
	path, kind := ctx.Session.Source()
	return msgCmd(CatalogLoadedMsg{
		Path:   path,
		Kind:   kind,
		Mode:   session.ImportReplace,
		Result: res,
		Total:  ctx.Session.Catalog().Len(),
	})
}

// HandleSave writes the catalog as a .set file.
func HandleSave(ctx *Context, args []string) tea.Cmd {
	path, err := util.ExpandPath(args[0])
	if err != nil {
		return errorCmd("Save failed", err.Error(), "")
	}
	written, err := ctx.Session.Save(path)
	if errors.Is(err, session.ErrNoCatalog) {
		return errorCmd("Save failed", "A set of commands must be loaded", "Use /import or /source first")
	}
	if err != nil {
		return errorCmd("Save failed", err.Error(), "")
	}
	return systemCmd("Saved %d commands to %s", ctx.Session.Catalog().Len(), written)
}

// HandleList lists catalog commands, optionally filtered by prefix.
func HandleList(ctx *Context, args []string) tea.Cmd {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}
	entries := ctx.Session.Catalog().WithPrefix(prefix)
	if len(entries) == 0 {
		if ctx.Session.Catalog().Len() == 0 {
			return systemCmd("The catalog is empty. Use /import or /source to load commands.")
		}
		return systemCmd("No commands start with %q.", prefix)
	}
	return msgCmd(SystemMessageMsg{Content: FormatCatalog(entries, ctx.Config.UI.HideEscapeChars, 0)})
}

const (
	maxNameColumn = 24
	argsColumn    = 6
)

// FormatCatalog renders entries as aligned name, argument count and help
// columns. A width above zero truncates each line to fit.
func FormatCatalog(entries []catalog.Entry, hideEscapes bool, width int) string {
	nameWidth := 4
	for _, e := range entries {
		if w := util.StringWidth(e.Name); w > nameWidth {
			nameWidth = w
		}
	}
	if nameWidth > maxNameColumn {
		nameWidth = maxNameColumn
	}

	var sb strings.Builder
	sb.WriteString(util.PadWidth("NAME", nameWidth) + "  " + util.PadWidth("ARGS", argsColumn) + "HELP\n")
	for i, e := range entries {
		line := util.PadWidth(util.TruncateWidth(e.Name, nameWidth), nameWidth) + "  " +
			util.PadWidth(strconv.Itoa(e.ArgCount), argsColumn) +
			e.HelpText(hideEscapes)
		if width > 0 {
			line = util.TruncateWidth(line, width)
		}
		sb.WriteString(line)
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// HandleDescribe shows a command's help card.
func HandleDescribe(ctx *Context, args []string) tea.Cmd {
	name := args[0]
	entry, ok := ctx.Session.Catalog().Get(name)
	if !ok {
		tip := ""
		if similar := ctx.Session.Catalog().WithPrefix(name); len(similar) > 0 {
			names := make([]string, 0, len(similar))
			for _, e := range similar {
				names = append(names, e.Name)
			}
			tip = "Did you mean: " + strings.Join(names, ", ")
		}
		return errorCmd("Unknown command", fmt.Sprintf("%q is not in the catalog", name), tip)
	}
	return msgCmd(DescribeMsg{Name: entry.Name, Markdown: DescribeMarkdown(entry)})
}

var markerBreaks = strings.NewReplacer(`\r\n`, "\n", `\n`, "\n", `\r`, "")

// DescribeMarkdown renders an entry as a markdown help card. The help text's
// \n markers become real line breaks.
func DescribeMarkdown(e catalog.Entry) string {
	usage := assist.Line{Name: e.Name, Placeholders: catalog.ExtractPlaceholders(e.Help, e.ArgCount)}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", e.Name)
	fmt.Fprintf(&sb, "**Usage:** `%s`\n\n", usage.Text())
	switch {
	case e.Variadic():
		sb.WriteString("**Arguments:** variable\n\n")
	default:
		fmt.Fprintf(&sb, "**Arguments:** %d\n\n", e.ArgCount)
	}
	help := strings.TrimRight(markerBreaks.Replace(e.Help), "\n")
	if help != "" {
		sb.WriteString("```text\n" + help + "\n```\n")
	}
	return sb.String()
}

// =============================================================================
// CONSOLE
// =============================================================================

// HandleHelp shows help for all commands or one command.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	topic := ""
	if len(args) > 0 {
		topic = args[0]
	}
	return msgCmd(SystemMessageMsg{Content: GenerateHelpText(ctx.Registry, topic)})
}

// HandleClear clears the console.
func HandleClear(ctx *Context, args []string) tea.Cmd {
	return msgCmd(ClearMsg{})
}

const defaultHistoryCount = 20

// HandleHistory lists the most recent submitted commands.
func HandleHistory(ctx *Context, args []string) tea.Cmd {
	count := defaultHistoryCount
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return errorCmd("Invalid count", fmt.Sprintf("%q is not a positive number", args[0]), "Usage: /history [count]")
		}
		count = n
	}

	entries := ctx.Session.History().Entries()
	if len(entries) == 0 {
		return systemCmd("No commands sent yet.")
	}
	start := 0
	if len(entries) > count {
		start = len(entries) - count
	}
	var sb strings.Builder
	for i := start; i < len(entries); i++ {
		fmt.Fprintf(&sb, "%5d  %s", i+1, entries[i])
		if i < len(entries)-1 {
			sb.WriteString("\n")
		}
	}
	return msgCmd(SystemMessageMsg{Content: sb.String()})
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// =============================================================================
// SETTINGS
// =============================================================================

func isOn(s string) bool {
	return strings.EqualFold(s, "on")
}

// HandleEscape shows or hides the \n and \r markers in listed help text.
func HandleEscape(ctx *Context, args []string) tea.Cmd {
	old := ctx.Config.UI.HideEscapeChars
	ctx.Config.UI.HideEscapeChars = !isOn(args[0])
	ctx.persist()
	return msgCmd(ConfigUpdateMsg{Key: "ui.hide_escape_chars", Value: ctx.Config.UI.HideEscapeChars, OldValue: old})
}

// HandleAssistant turns the command assistant on or off.
func HandleAssistant(ctx *Context, args []string) tea.Cmd {
	old := ctx.Config.UI.HideAssistant
	ctx.Config.UI.HideAssistant = !isOn(args[0])
	ctx.persist()
	return msgCmd(ConfigUpdateMsg{Key: "ui.hide_assistant", Value: ctx.Config.UI.HideAssistant, OldValue: old})
}

// HandleColor shows or changes the color scheme.
func HandleColor(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		return systemCmd("Color scheme: %s (available: none, sea, console)", ctx.Config.UI.Color)
	}
	old := ctx.Config.UI.Color
	ctx.Config.UI.Color = strings.ToLower(args[0])
	ctx.persist()
	return msgCmd(ConfigUpdateMsg{Key: "ui.color", Value: ctx.Config.UI.Color, OldValue: old})
}

// HandleConfig shows all settings, shows one, or changes one. Changes are
// validated before they are applied and saved.
func HandleConfig(ctx *Context, args []string) tea.Cmd {
	if len(args) == 0 {
		var sb strings.Builder
		keys := config.Keys()
		for i, key := range keys {
			val, _ := ctx.Config.Get(key)
			fmt.Fprintf(&sb, "%s = %v", key, val)
			if i < len(keys)-1 {
				sb.WriteString("\n")
			}
		}
		return msgCmd(SystemMessageMsg{Content: sb.String()})
	}

	key := strings.ToLower(args[0])
	if len(args) == 1 {
		val, err := ctx.Config.Get(key)
		if err != nil {
			return errorCmd("Config error", err.Error(), "Use /config to see all available keys")
		}
		return systemCmd("%s = %v", key, val)
	}

	value := strings.Join(args[1:], " ")
	updated := ctx.Config.Clone()
	if err := updated.Set(key, value); err != nil {
		return msgCmd(ConfigUpdateMsg{Key: key, Error: err})
	}
	if err := updated.Validate(); err != nil {
		return msgCmd(ConfigUpdateMsg{Key: key, Error: err})
	}
	oldVal, _ := ctx.Config.Get(key)
	*ctx.Config = *updated
	ctx.persist()
	newVal, _ := ctx.Config.Get(key)
	return msgCmd(ConfigUpdateMsg{Key: key, Value: newVal, OldValue: oldVal})
}

// =============================================================================
// HELP TEXT GENERATION
// =============================================================================

// GenerateHelpText returns the full command list, or the details of one
// command when topic names it (with or without the leading slash).
func GenerateHelpText(r *Registry, topic string) string {
	if topic != "" {
		name := strings.ToLower(topic)
		if !strings.HasPrefix(name, "/") {
			name = "/" + name
		}
		if cmd := r.Get(name); cmd != nil {
			return generateCommandHelp(cmd)
		}
		return fmt.Sprintf("No command named %s.\n\n", topic) + generateFullHelp(r)
	}
	return generateFullHelp(r)
}

func generateCommandHelp(cmd *Command) string {
	var sb strings.Builder
	sb.WriteString(cmd.Name + ": " + cmd.Description + "\n")
	if cmd.Usage != "" {
		sb.WriteString("  Usage: " + cmd.Usage + "\n")
	}
	if len(cmd.Aliases) > 0 {
		sb.WriteString("  Aliases: " + strings.Join(cmd.Aliases, ", ") + "\n")
	}
	for _, arg := range cmd.Args {
		req := "optional"
		if arg.Required {
			req = "required"
		}
		fmt.Fprintf(&sb, "  %s (%s): %s\n", arg.Name, req, arg.Description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func generateFullHelp(r *Registry) string {
	var sb strings.Builder

	sb.WriteString("Console Commands\n")
	sb.WriteString("================\n\n")

	categories := r.ByCategory()
	for _, category := range categoryOrder {
		cmds := categories[category]
		if len(cmds) == 0 {
			continue
		}

		sb.WriteString(category + "\n")
		sb.WriteString(strings.Repeat("-", len(category)) + "\n")

		for _, cmd := range cmds {
			line := "  " + cmd.Name
			if len(cmd.Aliases) > 0 {
				line += " (" + strings.Join(cmd.Aliases, ", ") + ")"
			}
			sb.WriteString(util.PadWidth(line, 30) + cmd.Description + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Keyboard Shortcuts\n")
	sb.WriteString("------------------\n")
	sb.WriteString("  Enter           Send the line to the device\n")
	sb.WriteString("  Tab             Complete the command\n")
	sb.WriteString("  Up/Down         Navigate history\n")
	sb.WriteString("  F2              Toggle the catalog pane\n")
	sb.WriteString("  Ctrl+L          Clear the console\n")
	sb.WriteString("  Ctrl+C          Quit\n\n")

	sb.WriteString("Lines that do not start with / are sent to the device. Start a line with // to send a literal /.")

	return sb.String()
}
