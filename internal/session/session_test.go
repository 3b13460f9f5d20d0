// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/history"
	"github.com/jeranaias/devcli/internal/transport"
)

// fakeLink records sent payloads.
type fakeLink struct {
	sent    []string
	closed  bool
	sendErr error
}

func (f *fakeLink) Send(p []byte) (transport.Handle, error) {
	if f.sendErr != nil {
		return transport.Handle{}, f.sendErr
	}
	f.sent = append(f.sent, string(p))
	return transport.Handle{Seq: uint64(len(f.sent)), Bytes: len(p)}, nil
}

func (f *fakeLink) Close() error {
	f.closed = true
	return nil
}

func (f *fakeLink) RemoteAddr() string { return "127.0.0.1:5005" }

func newWithLink(t *testing.T, opts Options) (*Session, *fakeLink) {
	t.Helper()
	link := &fakeLink{}
	opts.Dial = func(ctx context.Context, o transport.Options) (Link, error) {
		return link, nil
	}
	s := New(opts)
	require.NoError(t, s.Connect(context.Background(), transport.Options{Kind: transport.UDP, Address: "127.0.0.1", Port: 5005}))
	return s, link
}

const sourceText = `
static const CLI_Command_Definition_t a = { "get", "get <key>", prvGet, 1 };
static const CLI_Command_Definition_t b = { "getAll", "getAll", prvGetAll, 0 };
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseImportMode(t *testing.T) {
	m, err := ParseImportMode("")
	require.NoError(t, err)
	assert.Equal(t, ImportReplace, m)

	m, err = ParseImportMode("Append")
	require.NoError(t, err)
	assert.Equal(t, ImportAppend, m)

	_, err = ParseImportMode("merge-ish")
	assert.Error(t, err)
}

func TestSession_ImportAppendAndReplace(t *testing.T) {
	s := New(Options{})
	src := writeFile(t, "cli.c", sourceText)
	set := writeFile(t, "extra.set", "\"get\",\"other\",3\n\"reset\",\"reset\",0\n")

	assert.False(t, s.Loaded())

	res, err := s.Import(src, catalog.KindAuto, ImportReplace)
	require.NoError(t, err)
	assert.Equal(t, catalog.MergeResult{Added: 2}, res)
	assert.True(t, s.Loaded())

	res, err = s.Import(set, catalog.KindAuto, ImportAppend)
	require.NoError(t, err)
	assert.Equal(t, catalog.MergeResult{Added: 1, Skipped: 1}, res)
	assert.Equal(t, []string{"get", "getAll", "reset"}, s.Catalog().Names())

	path, kind := s.Source()
	assert.Equal(t, set, path)
	assert.Equal(t, catalog.KindSet, kind)

	res, err = s.Import(set, catalog.KindAuto, ImportReplace)
	require.NoError(t, err)
	assert.Equal(t, catalog.MergeResult{Added: 2}, res)
	assert.Equal(t, []string{"get", "reset"}, s.Catalog().Names())
}

func TestSession_ImportMissingFileKeepsCatalog(t *testing.T) {
	s := New(Options{})
	s.ImportText(sourceText, catalog.KindSource, ImportReplace)

	_, err := s.Import(filepath.Join(t.TempDir(), "missing.c"), catalog.KindAuto, ImportReplace)
	require.Error(t, err)
	assert.Equal(t, 2, s.Catalog().Len())
}

func TestSession_Reload(t *testing.T) {
	s := New(Options{})
	_, err := s.Reload()
	assert.ErrorIs(t, err, ErrNoCatalog)

	path := writeFile(t, "cli.set", "\"a\",\"a\",0\n")
	_, err = s.Import(path, catalog.KindAuto, ImportReplace)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("\"b\",\"b\",0\n\"c\",\"c\",0\n"), 0644))
	res, err := s.Reload()
	require.NoError(t, err)
	assert.Equal(t, catalog.MergeResult{Added: 2}, res)
	assert.Equal(t, []string{"b", "c"}, s.Catalog().Names())
}

func TestSession_Save(t *testing.T) {
	s := New(Options{})
	dir := t.TempDir()

	_, err := s.Save(filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, ErrNoCatalog)

	s.ImportText(sourceText, catalog.KindSource, ImportReplace)
	written, err := s.Save(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.set"), written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Equal(t, "\"get\",\"get <key>\",1\n\"getAll\",\"getAll\",0\n", string(data))
}

func TestSession_SuggestAndComplete(t *testing.T) {
	s := New(Options{})
	s.ImportText(sourceText, catalog.KindSource, ImportReplace)

	sug := s.Suggest("get")
	assert.Equal(t, "[ key ]\ngetAll", sug.Text())
	assert.False(t, sug.IsSingleMatch())

	got, ok := s.Complete("getA")
	assert.True(t, ok)
	assert.Equal(t, "getAll", got)
}

func TestSession_SubmitWithoutConnection(t *testing.T) {
	s := New(Options{})

	_, err := s.Submit(context.Background(), "get key")

	assert.ErrorIs(t, err, transport.ErrNotConnected)
	assert.Equal(t, []string{"get key"}, s.History().Entries())
}

func TestSession_SubmitSendsWithTerminator(t *testing.T) {
	s, link := newWithLink(t, Options{Terminator: "\r\n"})

	h, err := s.Submit(context.Background(), "get key")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), h.Seq)

	_, err = s.Submit(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"get key\r\n", "\r\n"}, link.sent)
	assert.Equal(t, []string{"get key"}, s.History().Entries(), "empty lines are sent but not recorded")
}

func TestSession_RecordAndSendSeparately(t *testing.T) {
	s, link := newWithLink(t, Options{Terminator: "\n"})

	s.Record(context.Background(), "//raw")
	_, err := s.Send("/raw")
	require.NoError(t, err)

	assert.Equal(t, []string{"/raw\n"}, link.sent)
	assert.Equal(t, []string{"//raw"}, s.History().Entries())
}

func TestSession_SubmitSendError(t *testing.T) {
	s, link := newWithLink(t, Options{})
	link.sendErr = errors.New("boom")

	_, err := s.Submit(context.Background(), "get")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, s.History().Len())
}

func TestSession_ConnectDisconnect(t *testing.T) {
	s, link := newWithLink(t, Options{})
	assert.True(t, s.Connected())
	assert.Equal(t, "127.0.0.1:5005", s.RemoteAddr())
	assert.Equal(t, transport.UDP, s.Status().Kind)

	require.NoError(t, s.Disconnect())
	assert.True(t, link.closed)
	assert.False(t, s.Connected())
	assert.Equal(t, "", s.RemoteAddr())
	require.NoError(t, s.Disconnect())
}

func TestSession_ConnectFailure(t *testing.T) {
	s := New(Options{Dial: func(ctx context.Context, o transport.Options) (Link, error) {
		return nil, errors.New("refused")
	}})

	err := s.Connect(context.Background(), transport.Options{Kind: transport.TCP, Address: "127.0.0.1", Port: 1})
	assert.Error(t, err)
	assert.False(t, s.Connected())
}

func TestSession_LinkClosed(t *testing.T) {
	s, link := newWithLink(t, Options{})

	s.LinkClosed(errors.New("reset by peer"))

	assert.False(t, s.Connected())
	assert.True(t, link.closed)
	s.LinkClosed(nil)
}

func TestSession_RealTransport(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	got := make(chan string, 1)
	go func() {
		buf := make([]byte, 1024)
		n, _, err := pc.ReadFrom(buf)
		if err == nil {
			got <- string(buf[:n])
		}
	}()

	s := New(Options{})
	port := pc.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, s.Connect(context.Background(), transport.Options{
		Kind: transport.UDP, Address: "127.0.0.1", Port: port,
	}))
	defer s.Close()

	_, err = s.Submit(context.Background(), "stats")
	require.NoError(t, err)

	select {
	case line := <-got:
		assert.Equal(t, "stats", line)
	case <-time.After(3 * time.Second):
		t.Fatal("datagram not received")
	}
}

func TestSession_HistoryStore(t *testing.T) {
	ctx := context.Background()
	store, err := history.OpenStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "earlier", "reset"))

	s := New(Options{Store: store})
	n, err := s.LoadHistory(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	s.Submit(ctx, "get key")

	records, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, s.ID(), records[1].SessionID)
	assert.Equal(t, []string{"reset", "get key"}, s.History().Entries())

	require.NoError(t, s.Close())
}

func TestSession_Status(t *testing.T) {
	s := New(Options{})
	s.ImportText(sourceText, catalog.KindSource, ImportReplace)
	s.Submit(context.Background(), "get")

	st := s.Status()
	assert.Equal(t, s.ID(), st.SessionID)
	assert.False(t, st.Connected)
	assert.Equal(t, transport.Kind(""), st.Kind)
	assert.True(t, st.Loaded)
	assert.Equal(t, 2, st.CatalogSize)
	assert.Equal(t, 1, st.HistoryLen)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m", FormatDuration(3*time.Minute))
	assert.Equal(t, "3m 5s", FormatDuration(3*time.Minute+5*time.Second))
}

func TestSession_AttachReplacesLink(t *testing.T) {
	s, first := newWithLink(t, Options{})
	second := &fakeLink{}

	s.Attach(second, transport.TCP)

	assert.True(t, first.closed)
	assert.False(t, second.closed)
	assert.Equal(t, transport.TCP, s.Status().Kind)

	_, err := s.Submit(context.Background(), "ping")
	require.NoError(t, err)
	assert.Empty(t, first.sent)
	assert.Equal(t, []string{"ping"}, second.sent)
}
