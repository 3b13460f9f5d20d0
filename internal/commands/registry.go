// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the console.
package commands

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devcli/internal/config"
	"github.com/jeranaias/devcli/internal/logging"
	"github.com/jeranaias/devcli/internal/session"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/import <file> [append|replace]")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeFile                   // File path
	ArgTypeEnum                   // One of predefined values
	ArgTypeConfig                 // Config key
	ArgTypeCommand                // Device command from the catalog
)

// Categories in help order.
var categoryOrder = []string{"Connection", "Catalog", "Console", "Settings"}

// =============================================================================
// CONTEXT
// =============================================================================

// Context gives handlers access to the running session. Handlers run on the
// console's event loop, so they may mutate the session directly.
type Context struct {
	Session  *session.Session
	Config   *config.Config
	Registry *Registry
	Logger   logging.Logger

	// ConfigPath is where settings changes are saved. Empty disables saving.
	ConfigPath string
}

// NewContext creates a handler context. A nil config is replaced by the
// defaults and a nil logger discards.
func NewContext(sess *session.Session, cfg *config.Config, registry *Registry, logger logging.Logger) *Context {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Context{
		Session:  sess,
		Config:   cfg,
		Registry: registry,
		Logger:   logger,
	}
}

// persist writes the config to ConfigPath when one is set.
func (c *Context) persist() {
	if c.ConfigPath == "" {
		return
	}
	if err := config.Save(c.Config, c.ConfigPath); err != nil {
		c.Logger.Warn("save config failed", "path", c.ConfigPath, "error", err)
	}
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry, replacing any with the same name.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns visible commands grouped by category, sorted by name.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "Console"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Execute parses input and runs the matching handler. ok is false when the
// input is not a slash command and should go to the device instead.
func (r *Registry) Execute(ctx *Context, input string) (cmd tea.Cmd, ok bool) {
	result := NewParser(r).Parse(input)
	if !result.IsCommand {
		return nil, false
	}
	if result.Command == nil {
		return errorCmd("Unknown command", result.CommandName+" is not a console command", "Type /help to list commands, or // to send a line starting with /"), true
	}
	if err := ValidateArgs(result.Command, result.Args); err != nil {
		tip := ""
		if result.Command.Usage != "" {
			tip = "Usage: " + result.Command.Usage
		}
		return errorCmd("Invalid arguments", err.Error(), tip), true
	}
	if ctx.Logger != nil {
		ctx.Logger.Debug("slash command", "command", result.Command.Name, "args", len(result.Args))
	}
	return result.Command.Handler(ctx, result.Args), true
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	onOff := []string{"on", "off"}
	importModes := []string{"append", "replace"}

	// Connection
	r.Register(&Command{
		Name:        "/connect",
		Aliases:     []string{"/c"},
		Description: "Connect to the device",
		Usage:       "/connect [udp|tcp] [host[:port]]",
		Args: []ArgDef{
			{Name: "type-or-host", Type: ArgTypeString, Description: "udp, tcp or an address"},
			{Name: "host", Type: ArgTypeString, Description: "Device address"},
		},
		Category: "Connection",
		Handler:  HandleConnect,
	})
	r.Register(&Command{
		Name:        "/disconnect",
		Aliases:     []string{"/dc"},
		Description: "Close the device connection",
		Category:    "Connection",
		Handler:     HandleDisconnect,
	})
	r.Register(&Command{
		Name:        "/transport",
		Description: "Choose UDP or TCP",
		Usage:       "/transport udp|tcp",
		Args: []ArgDef{
			{Name: "type", Required: true, Type: ArgTypeEnum, Values: []string{"udp", "tcp"}, Description: "udp or tcp"},
		},
		Category: "Connection",
		Handler:  HandleTransport,
	})
	r.Register(&Command{
		Name:        "/status",
		Description: "Show connection and catalog status",
		Category:    "Connection",
		Handler:     HandleStatus,
	})

	// Catalog
	r.Register(&Command{
		Name:        "/import",
		Aliases:     []string{"/i"},
		Description: "Import commands from a .set, .yaml or C file",
		Usage:       "/import <file> [append|replace]",
		Args: []ArgDef{
			{Name: "file", Required: true, Type: ArgTypeFile, Description: "Catalog file"},
			{Name: "mode", Type: ArgTypeEnum, Values: importModes, Description: "append or replace"},
		},
		Category: "Catalog",
		Handler:  HandleImport,
	})
	r.Register(&Command{
		Name:        "/source",
		Description: "Import command definitions from a C source file",
		Usage:       "/source <file> [append|replace]",
		Args: []ArgDef{
			{Name: "file", Required: true, Type: ArgTypeFile, Description: "C source file"},
			{Name: "mode", Type: ArgTypeEnum, Values: importModes, Description: "append or replace"},
		},
		Category: "Catalog",
		Handler:  HandleSource,
	})
	r.Register(&Command{
		Name:        "/reload",
		Description: "Re-import the last imported file",
		Category:    "Catalog",
		Handler:     HandleReload,
	})
	r.Register(&Command{
		Name:        "/save",
		Aliases:     []string{"/s"},
		Description: "Save the catalog as a .set file",
		Usage:       "/save <file>",
		Args: []ArgDef{
			{Name: "file", Required: true, Type: ArgTypeFile, Description: "Destination (.set is appended)"},
		},
		Category: "Catalog",
		Handler:  HandleSave,
	})
	r.Register(&Command{
		Name:        "/list",
		Aliases:     []string{"/ls"},
		Description: "List catalog commands",
		Usage:       "/list [prefix]",
		Args: []ArgDef{
			{Name: "prefix", Type: ArgTypeCommand, Description: "Only commands starting with prefix"},
		},
		Category: "Catalog",
		Handler:  HandleList,
	})
	r.Register(&Command{
		Name:        "/describe",
		Aliases:     []string{"/d"},
		Description: "Show a command's help card",
		Usage:       "/describe <command>",
		Args: []ArgDef{
			{Name: "command", Required: true, Type: ArgTypeCommand, Description: "Catalog command"},
		},
		Category: "Catalog",
		Handler:  HandleDescribe,
	})

	// Console
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Usage:       "/help [command]",
		Args: []ArgDef{
			{Name: "command", Type: ArgTypeString, Description: "Slash command to describe"},
		},
		Category: "Console",
		Handler:  HandleHelp,
	})
	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/cls"},
		Description: "Clear the console",
		Category:    "Console",
		Handler:     HandleClear,
	})
	r.Register(&Command{
		Name:        "/history",
		Description: "Show submitted commands",
		Usage:       "/history [count]",
		Args: []ArgDef{
			{Name: "count", Type: ArgTypeString, Description: "Number of entries"},
		},
		Category: "Console",
		Handler:  HandleHistory,
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit devcli",
		Category:    "Console",
		Handler:     HandleQuit,
	})

	// Settings
	r.Register(&Command{
		Name:        "/escape",
		Description: "Show or hide \\n and \\r markers in help text",
		Usage:       "/escape on|off",
		Args: []ArgDef{
			{Name: "state", Required: true, Type: ArgTypeEnum, Values: onOff, Description: "on shows the markers"},
		},
		Category: "Settings",
		Handler:  HandleEscape,
	})
	r.Register(&Command{
		Name:        "/assistant",
		Description: "Turn the command assistant on or off",
		Usage:       "/assistant on|off",
		Args: []ArgDef{
			{Name: "state", Required: true, Type: ArgTypeEnum, Values: onOff, Description: "on or off"},
		},
		Category: "Settings",
		Handler:  HandleAssistant,
	})
	r.Register(&Command{
		Name:        "/color",
		Description: "Change the console color scheme",
		Usage:       "/color [none|sea|console]",
		Args: []ArgDef{
			{Name: "scheme", Type: ArgTypeEnum, Values: []string{"none", "sea", "console"}, Description: "Color scheme"},
		},
		Category: "Settings",
		Handler:  HandleColor,
	})
	r.Register(&Command{
		Name:        "/config",
		Description: "Show or change settings",
		Usage:       "/config [key] [value]",
		Args: []ArgDef{
			{Name: "key", Type: ArgTypeConfig, Description: "Setting in dot notation"},
			{Name: "value", Type: ArgTypeString, Description: "New value"},
		},
		Category: "Settings",
		Handler:  HandleConfig,
	})
}
