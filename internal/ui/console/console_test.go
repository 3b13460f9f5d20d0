// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package console

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/commands"
	"github.com/jeranaias/devcli/internal/config"
	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/transport"
)

const testSource = `
static const CLI_Command_Definition_t a = { "get", "get <key>", prvGet, 1 };
static const CLI_Command_Definition_t b = { "getAll", "getAll", prvGetAll, 0 };
static const CLI_Command_Definition_t c = { "reset", "reset", prvReset, 0 };
`

type fakeLink struct {
	sent   []string
	closed bool
}

func (f *fakeLink) Send(p []byte) (transport.Handle, error) {
	f.sent = append(f.sent, string(p))
	return transport.Handle{Seq: uint64(len(f.sent)), Bytes: len(p)}, nil
}

func (f *fakeLink) Close() error {
	f.closed = true
	return nil
}

func (f *fakeLink) RemoteAddr() string { return "127.0.0.1:5005" }

type harness struct {
	t       *testing.T
	m       Model
	links   []*fakeLink
	dialErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t}
	sess := session.New(session.Options{
		Terminator: "\n",
		Dial: func(ctx context.Context, opts transport.Options) (session.Link, error) {
			if h.dialErr != nil {
				return nil, h.dialErr
			}
			l := &fakeLink{}
			h.links = append(h.links, l)
			return l, nil
		},
	})
	sess.ImportText(testSource, catalog.KindSource, session.ImportReplace)

	h.m = New(Options{Session: sess, Config: config.Default()})
	h.update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return h
}

// update feeds msg through the model and returns the resulting command.
func (h *harness) update(msg tea.Msg) tea.Cmd {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// run executes cmd and feeds its message back, once.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case nil:
	case tea.BatchMsg:
		for _, c := range msg {
			h.run(c)
		}
	default:
		h.update(msg)
	}
}

func (h *harness) typeText(s string) {
	h.update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) key(k tea.KeyType) tea.Cmd {
	return h.update(tea.KeyMsg{Type: k})
}

func (h *harness) scrollback() string {
	return strings.Join(h.m.lines, "\n")
}

func (h *harness) connect() *fakeLink {
	h.t.Helper()
	cmd := h.update(commands.ConnectMsg{Kind: transport.UDP, Address: "127.0.0.1", Port: 5005})
	require.NotNil(h.t, cmd)
	h.run(cmd)
	require.True(h.t, h.m.sess.Connected())
	return h.links[len(h.links)-1]
}

func TestSubmitSendsLine(t *testing.T) {
	h := newHarness(t)
	link := h.connect()

	h.typeText("get x")
	h.key(tea.KeyEnter)

	assert.Equal(t, []string{"get x\n"}, link.sent)
	assert.Equal(t, "", h.m.input.Value())
	assert.Contains(t, h.scrollback(), "get x")
	assert.Equal(t, "get x", h.m.sess.History().Last())
}

func TestSubmitWhileDisconnected(t *testing.T) {
	h := newHarness(t)

	h.typeText("reset")
	h.key(tea.KeyEnter)

	assert.Contains(t, h.scrollback(), "Not connected")
	assert.Equal(t, "reset", h.m.sess.History().Last())
}

func TestSubmitEmptyLineWhileDisconnected(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyEnter)

	assert.NotContains(t, h.scrollback(), "Not connected")
}

func TestEscapedSlashIsSent(t *testing.T) {
	h := newHarness(t)
	link := h.connect()

	h.typeText("//raw")
	h.key(tea.KeyEnter)

	assert.Equal(t, []string{"/raw\n"}, link.sent)
	assert.Equal(t, "//raw", h.m.sess.History().Last())

	h.key(tea.KeyUp)
	require.Equal(t, "//raw", h.m.input.Value())
	h.key(tea.KeyEnter)
	assert.Equal(t, []string{"/raw\n", "/raw\n"}, link.sent)
	assert.NotContains(t, h.scrollback(), "Unknown")
}

func TestSlashCommandRuns(t *testing.T) {
	h := newHarness(t)
	link := h.connect()

	h.typeText("/list get")
	h.run(h.key(tea.KeyEnter))

	assert.Empty(t, link.sent)
	assert.Contains(t, h.scrollback(), "getAll")
	assert.Equal(t, "/list get", h.m.sess.History().Last())
}

func TestUnknownSlashCommand(t *testing.T) {
	h := newHarness(t)

	h.typeText("/bogus")
	h.run(h.key(tea.KeyEnter))

	assert.Contains(t, h.scrollback(), "Unknown command")
}

func TestClearCommand(t *testing.T) {
	h := newHarness(t)
	h.update(commands.SystemMessageMsg{Content: "hello"})
	require.Contains(t, h.scrollback(), "hello")

	h.typeText("/clear")
	h.run(h.key(tea.KeyEnter))

	assert.Empty(t, h.m.lines)
}

func TestHistoryRecall(t *testing.T) {
	h := newHarness(t)
	h.typeText("get a")
	h.key(tea.KeyEnter)
	h.typeText("get b")
	h.key(tea.KeyEnter)

	h.key(tea.KeyUp)
	assert.Equal(t, "get b", h.m.input.Value())
	h.key(tea.KeyUp)
	assert.Equal(t, "get a", h.m.input.Value())
	h.key(tea.KeyDown)
	assert.Equal(t, "get b", h.m.input.Value())
	h.key(tea.KeyDown)
	assert.Equal(t, "", h.m.input.Value())
}

func TestAssistantPopover(t *testing.T) {
	h := newHarness(t)

	h.typeText("ge")
	assert.Contains(t, h.m.popover, "getAll")
	assert.Contains(t, h.m.popover, "get")

	h.typeText("tAll")
	assert.Empty(t, h.m.popover)
}

func TestAssistantHidden(t *testing.T) {
	h := newHarness(t)
	h.m.cfg.UI.HideAssistant = true

	h.typeText("ge")
	assert.Empty(t, h.m.popover)
}

func TestTabDisabledWhenAssistantHidden(t *testing.T) {
	h := newHarness(t)
	h.m.cfg.UI.HideAssistant = true

	h.typeText("r")
	require.Empty(t, h.m.popover)
	h.key(tea.KeyTab)
	assert.Equal(t, "r", h.m.input.Value())
}

func TestAssistantShowsArgsOfExactMatch(t *testing.T) {
	h := newHarness(t)

	h.typeText("get")
	assert.Contains(t, h.m.popover, "[ key ]")
	assert.Contains(t, h.m.popover, "getAll")

	h.key(tea.KeyTab)
	assert.Equal(t, "get", h.m.input.Value())
}

func TestTabCompletesSingleMatch(t *testing.T) {
	h := newHarness(t)

	h.typeText("r")
	h.key(tea.KeyTab)
	assert.Equal(t, "reset", h.m.input.Value())
}

func TestTabIgnoresAmbiguousPrefix(t *testing.T) {
	h := newHarness(t)

	h.typeText("g")
	h.key(tea.KeyTab)
	assert.Equal(t, "g", h.m.input.Value())
}

func TestTabCompletesSlashCommand(t *testing.T) {
	h := newHarness(t)

	h.typeText("/hel")
	h.key(tea.KeyTab)
	assert.True(t, strings.HasPrefix(h.m.input.Value(), "/help"), h.m.input.Value())
}

func TestSlashCompletionCycles(t *testing.T) {
	h := newHarness(t)

	h.typeText("/d")
	h.key(tea.KeyTab)
	require.True(t, h.m.slash.Visible)
	require.NotEmpty(t, h.m.popover)
	first := h.m.input.Value()

	h.key(tea.KeyTab)
	assert.NotEqual(t, first, h.m.input.Value())

	h.key(tea.KeyEsc)
	assert.False(t, h.m.slash.Visible)
	assert.Equal(t, "/d", h.m.input.Value())
}

func TestDeviceDataKeepsPartialLine(t *testing.T) {
	h := newHarness(t)
	h.connect()
	gen := h.m.gen

	h.update(DataMsg{Gen: gen, Data: []byte("ab")})
	assert.Equal(t, "ab", h.m.partial)

	h.update(DataMsg{Gen: gen, Data: []byte("c\r\nd")})
	assert.Contains(t, h.scrollback(), "abc")
	assert.Equal(t, "d", h.m.partial)

	h.update(commands.SystemMessageMsg{Content: "note"})
	assert.Equal(t, "", h.m.partial)
	assert.Contains(t, h.scrollback(), "d\nnote")
}

func TestStaleDataIgnored(t *testing.T) {
	h := newHarness(t)
	h.connect()

	h.update(DataMsg{Gen: h.m.gen - 1, Data: []byte("old\n")})
	assert.NotContains(t, h.scrollback(), "old")
}

func TestConnectFailure(t *testing.T) {
	h := newHarness(t)
	h.dialErr = errors.New("refused")

	h.run(h.update(commands.ConnectMsg{Kind: transport.TCP, Address: "127.0.0.1", Port: 1}))

	assert.False(t, h.m.sess.Connected())
	assert.False(t, h.m.spin.active)
	assert.Contains(t, h.scrollback(), "refused")
}

func TestDisconnectDropsPendingConnect(t *testing.T) {
	h := newHarness(t)

	cmd := h.update(commands.ConnectMsg{Kind: transport.UDP, Address: "127.0.0.1", Port: 5005})
	h.update(commands.DisconnectMsg{})
	h.run(cmd)

	require.Len(t, h.links, 1)
	assert.True(t, h.links[0].closed)
	assert.False(t, h.m.sess.Connected())
}

func TestClosedMsg(t *testing.T) {
	h := newHarness(t)
	h.connect()

	h.update(ClosedMsg{Gen: h.m.gen - 1})
	assert.True(t, h.m.sess.Connected())

	h.update(ClosedMsg{Gen: h.m.gen})
	assert.False(t, h.m.sess.Connected())
	assert.Contains(t, h.scrollback(), "Connection closed")
}

func TestDisconnectIgnoresOwnClose(t *testing.T) {
	h := newHarness(t)
	h.connect()
	gen := h.m.gen

	h.update(commands.DisconnectMsg{})
	h.update(ClosedMsg{Gen: gen})

	assert.NotContains(t, h.scrollback(), "Connection closed")
}

func TestReconnectReplacesLink(t *testing.T) {
	h := newHarness(t)
	first := h.connect()
	second := h.connect()

	assert.True(t, first.closed)
	assert.False(t, second.closed)
}

func TestCatalogPane(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyF2)
	require.True(t, h.m.pane.visible)
	assert.Contains(t, h.m.View(), "Catalog (3)")
	assert.Less(t, h.m.viewport.Width, 100)

	h.key(tea.KeyDown)
	h.key(tea.KeyDown)
	h.key(tea.KeyEnter)

	assert.False(t, h.m.pane.visible)
	assert.Equal(t, "reset ", h.m.input.Value())
	assert.Equal(t, 100, h.m.viewport.Width)
}

func TestConfigUpdateAppliesLineEnding(t *testing.T) {
	h := newHarness(t)
	link := h.connect()

	h.m.cfg.Connection.LineEnding = "crlf"
	h.update(commands.ConfigUpdateMsg{Key: "connection.line_ending", Value: "crlf"})

	h.typeText("reset")
	h.key(tea.KeyEnter)
	assert.Equal(t, []string{"reset\r\n"}, link.sent)
}

func TestSystemMessageSplitsLines(t *testing.T) {
	h := newHarness(t)
	before := len(h.m.lines)

	h.update(commands.SystemMessageMsg{Content: "first\nsecond"})

	require.Len(t, h.m.lines, before+2)
	assert.Contains(t, h.m.lines[before], "first")
	assert.Contains(t, h.m.lines[before+1], "second")
}

func TestCatalogChangedReloads(t *testing.T) {
	h := newHarness(t)

	h.update(CatalogChangedMsg{Path: "cli.c"})
	assert.Contains(t, h.scrollback(), "Reload failed")
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t)
	before := h.m.viewport.Height

	h.key(tea.KeyF1)
	assert.True(t, h.m.help.ShowAll)
	assert.Less(t, h.m.viewport.Height, before)
}

func TestStatusBar(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.m.View(), "offline")

	h.connect()
	assert.Contains(t, h.m.View(), "UDP")
}

func TestQuitKey(t *testing.T) {
	h := newHarness(t)
	cmd := h.key(tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestConnectingStatus(t *testing.T) {
	h := newHarness(t)

	cmd := h.update(commands.ConnectMsg{Kind: transport.UDP, Address: "127.0.0.1", Port: 5005})
	assert.True(t, h.m.spin.active)
	assert.Contains(t, h.m.View(), "connecting to 127.0.0.1:5005")

	h.run(cmd)
	assert.False(t, h.m.spin.active)
	assert.NotContains(t, h.m.View(), "connecting to")
}
