// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/transport"
)

// =============================================================================
// MESSAGES
// =============================================================================

// Every connection attempt gets a generation number. Messages from an older
// generation belong to a link that has since been replaced or closed.

// DataMsg carries bytes received from the device.
type DataMsg struct {
	Gen  int
	Data []byte
}

// ClosedMsg reports that a link's receive loop ended.
type ClosedMsg struct {
	Gen int
	Err error
}

// ConnectedMsg carries a freshly dialed link.
type ConnectedMsg struct {
	Gen  int
	Link session.Link
	Kind transport.Kind
}

// ConnectFailedMsg reports a failed dial.
type ConnectFailedMsg struct {
	Gen  int
	Addr string
	Err  error
}

// CatalogChangedMsg reports that the imported catalog file changed on disk.
type CatalogChangedMsg struct {
	Path string
}

// WatchErrorMsg reports a file watcher failure.
type WatchErrorMsg struct {
	Err error
}

// =============================================================================
// BRIDGE
// =============================================================================

// Bridge delivers messages from background goroutines into the program.
// Messages sent before a program is attached are dropped.
type Bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewBridge returns a bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach routes messages to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.send = p.Send
	b.mu.Unlock()
}

// Send delivers msg to the attached program.
func (b *Bridge) Send(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}
