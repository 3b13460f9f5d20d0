// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the console's slash commands.
//
// Lines typed in the console go to the device unless they start with "/".
// Slash commands act on the client: connection, catalog import and export,
// settings. A line starting with "//" is sent to the device with one slash
// removed.
//
// # Key Types
//
//   - Registry: all slash commands, with Execute to parse and run a line
//   - Parser / ParseResult: quote-aware splitting of a command line
//   - Completer / CompletionState: Tab completion of names and arguments
//   - Context: the session and config handlers act on
//
// # Usage
//
//	reg := commands.NewRegistry()
//	ctx := commands.NewContext(sess, cfg, reg, logger)
//	if cmd, ok := reg.Execute(ctx, line); ok {
//	    return m, cmd
//	}
package commands
