// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the devcli packages.
//
// # Key Functions
//
// Files:
//   - AtomicWriteFile: crash-safe write (temp file, fsync, rename)
//   - ExpandPath: "~" expansion for user supplied paths
//
// Display:
//   - TruncateWidth: cell-width aware truncation with ellipsis
//   - PadWidth: right-pad to a column width
//
// # Usage
//
//	path, err := util.ExpandPath("~/.devcli/commands.set")
//	err = util.AtomicWriteFile(path, data, 0644)
//	cell := util.PadWidth(util.TruncateWidth(help, 40), 40)
package util
