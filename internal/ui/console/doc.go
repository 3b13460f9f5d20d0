// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package console provides the interactive device console.
//
// The console is a Bubble Tea program. Its Update loop is the only code that
// touches the session: transport receive goroutines and the catalog file
// watcher hand their results to the loop as messages (DataMsg, ClosedMsg,
// CatalogChangedMsg) through a Bridge.
//
// # Layout
//
//	scrollback (viewport)          | catalog pane (F2)
//	assistant popover
//	> input
//	status bar
//
// Lines starting with "/" run slash commands from the commands package;
// everything else is sent to the device.
package console
