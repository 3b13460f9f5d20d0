// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session ties one command catalog, one history buffer and at most
// one device connection together for the lifetime of a console.
//
// A Session is driven from a single goroutine (the console's event loop).
// Transport callbacks arrive on other goroutines and must be forwarded into
// that loop; the session never touches its state from them.
//
// # Key Types
//
//   - Session: catalog, history and connection owner
//   - ImportMode: append to or replace the current catalog
//   - Status: snapshot for the status bar and /status-like output
//
// # Usage
//
//	s := session.New(session.Options{Logger: log})
//	res, err := s.Import("cli_commands.c", catalog.KindAuto, session.ImportReplace)
//	err = s.Connect(ctx, transport.Options{Kind: transport.UDP, Address: "127.0.0.1", Port: 5005})
//	_, err = s.Submit(ctx, "task-stats")
package session
