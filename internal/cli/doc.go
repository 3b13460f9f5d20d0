// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli wires the devcli command tree.
//
// Running devcli with no subcommand opens the full-screen console. The
// subcommands cover scripted and line-mode use:
//
//   - shell: line-mode console for terminals without full-screen support
//   - catalog: extract a command catalog and print or convert it
//   - send: send one command to the device and print the reply
//   - version: print build information
//
// Errors are returned to Execute, which prints them and maps them to an
// exit code with GetExitCode.
package cli
