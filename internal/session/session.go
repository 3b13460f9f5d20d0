// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/devcli/internal/assist"
	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/history"
	"github.com/jeranaias/devcli/internal/logging"
	"github.com/jeranaias/devcli/internal/transport"
)

// ErrNoCatalog is returned by Save before any catalog has been imported.
var ErrNoCatalog = errors.New("a set of commands must be loaded")

// =============================================================================
// TYPES
// =============================================================================

// Link is an open device connection.
type Link interface {
	transport.Sender
	Close() error
	RemoteAddr() string
}

// DialFunc opens a Link.
type DialFunc func(ctx context.Context, opts transport.Options) (Link, error)

// DialTransport dials with the transport package.
func DialTransport(ctx context.Context, opts transport.Options) (Link, error) {
	c, err := transport.Dial(ctx, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ImportMode says what happens to the current catalog on import.
type ImportMode int

const (
	// ImportAppend merges into the current catalog; existing names win.
	ImportAppend ImportMode = iota
	// ImportReplace clears the catalog before merging.
	ImportReplace
)

func (m ImportMode) String() string {
	if m == ImportReplace {
		return "replace"
	}
	return "append"
}

// ParseImportMode parses "append" or "replace". Empty means replace.
func ParseImportMode(s string) (ImportMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace", "new":
		return ImportReplace, nil
	case "append", "add":
		return ImportAppend, nil
	default:
		return ImportReplace, fmt.Errorf("unknown import mode %q (expected append or replace)", s)
	}
}

// Options configures New. Zero values are usable.
type Options struct {
	Policy catalog.MergePolicy

	// Store persists submitted lines when set.
	Store *history.Store

	Logger logging.Logger

	// Dial defaults to DialTransport.
	Dial DialFunc

	// Terminator is appended to every sent line.
	Terminator string
}

// Session owns the catalog, the history buffer and the device link.
type Session struct {
	id      string
	started time.Time

	catalog *catalog.Catalog
	history *history.Buffer
	store   *history.Store
	log     logging.Logger
	dial    DialFunc

	link       Link
	linkKind   transport.Kind
	terminator string

	loaded     bool
	source     string
	sourceKind catalog.Kind
}

// New creates a session with an empty catalog and history.
func New(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Dial == nil {
		opts.Dial = DialTransport
	}
	id := uuid.NewString()
	return &Session{
		id:         id,
		started:    time.Now(),
		catalog:    catalog.NewWithPolicy(opts.Policy),
		history:    history.NewBuffer(),
		store:      opts.Store,
		log:        opts.Logger.With("session", id),
		dial:       opts.Dial,
		terminator: opts.Terminator,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Catalog returns the session's catalog.
func (s *Session) Catalog() *catalog.Catalog { return s.catalog }

// History returns the session's history buffer.
func (s *Session) History() *history.Buffer { return s.history }

// Loaded reports whether a catalog has been imported.
func (s *Session) Loaded() bool { return s.loaded }

// Source returns the last imported file and the kind it was read as.
func (s *Session) Source() (string, catalog.Kind) { return s.source, s.sourceKind }

// SetTerminator changes the bytes appended to sent lines.
func (s *Session) SetTerminator(t string) { s.terminator = t }

// =============================================================================
// CATALOG
// =============================================================================

// Import reads path, extracts entries with the grammar for kind and merges
// them. The catalog is left untouched when the file cannot be read.
func (s *Session) Import(path string, kind catalog.Kind, mode ImportMode) (catalog.MergeResult, error) {
	kind = kind.Resolve(path)
	text, err := catalog.ReadFile(path)
	if err != nil {
		s.log.Warn("import failed", "file", path, "error", err)
		return catalog.MergeResult{}, fmt.Errorf("import: %w", err)
	}

	res := s.ImportText(text, kind, mode)
	s.source, s.sourceKind = path, kind
	s.log.Info("import", "file", path, "kind", kind.String(), "mode", mode.String(),
		"added", res.Added, "skipped", res.Skipped)
	return res, nil
}

// ImportText merges entries extracted from text.
func (s *Session) ImportText(text string, kind catalog.Kind, mode ImportMode) catalog.MergeResult {
	entries := catalog.Extract(kind, text)
	if mode == ImportReplace {
		s.catalog.Clear()
	}
	res := s.catalog.Merge(entries)
	s.loaded = true
	return res
}

// Reload re-imports the last imported file, replacing the catalog.
func (s *Session) Reload() (catalog.MergeResult, error) {
	if s.source == "" {
		return catalog.MergeResult{}, ErrNoCatalog
	}
	return s.Import(s.source, s.sourceKind, ImportReplace)
}

// Save writes the catalog as a .set file and returns the written path.
func (s *Session) Save(path string) (string, error) {
	if !s.loaded {
		return "", ErrNoCatalog
	}
	written, err := catalog.SaveSetFile(path, s.catalog)
	if err != nil {
		s.log.Error("save failed", "file", path, "error", err)
		return "", err
	}
	s.log.Info("save", "file", written, "entries", s.catalog.Len())
	return written, nil
}

// Suggest returns the assistant content for partial.
func (s *Session) Suggest(partial string) assist.Suggestion {
	return assist.Suggest(s.catalog, partial)
}

// Complete returns partial with its command completed, if unambiguous.
func (s *Session) Complete(partial string) (string, bool) {
	return assist.Complete(s.catalog, partial)
}

// =============================================================================
// HISTORY AND SENDING
// =============================================================================

// LoadHistory fills the history buffer from the store.
func (s *Session) LoadHistory(ctx context.Context, limit int) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.Load(ctx, s.history, limit)
}

// Submit records line in history and sends it when connected. The line is
// recorded even when it cannot be sent.
func (s *Session) Submit(ctx context.Context, line string) (transport.Handle, error) {
	s.Record(ctx, line)
	return s.Send(line)
}

// Record appends line to history and persists it when a store is attached.
// Callers that rewrite the line before sending record the text as typed so
// recalling it reproduces the same input.
func (s *Session) Record(ctx context.Context, line string) {
	s.history.Append(line)
	if s.store != nil && line != "" {
		if err := s.store.Append(ctx, s.id, line); err != nil {
			s.log.Warn("persist history failed", "error", err)
		}
	}
}

// Send writes line plus the terminator to the link.
func (s *Session) Send(line string) (transport.Handle, error) {
	if s.link == nil {
		return transport.Handle{}, transport.ErrNotConnected
	}
	h, err := s.link.Send([]byte(line + s.terminator))
	if err != nil {
		s.log.Error("send failed", "error", err)
		return transport.Handle{}, err
	}
	s.log.Debug("sent", "seq", h.Seq, "bytes", h.Bytes)
	return h, nil
}

// =============================================================================
// CONNECTION
// =============================================================================

// Connect opens a link with opts, closing any existing one first.
func (s *Session) Connect(ctx context.Context, opts transport.Options) error {
	link, err := s.Dial(ctx, opts)
	if err != nil {
		return err
	}
	s.Attach(link, opts.Kind)
	return nil
}

// Dial opens a link without attaching it. It does not touch session state,
// so the console runs it off the event loop and attaches the result.
func (s *Session) Dial(ctx context.Context, opts transport.Options) (Link, error) {
	link, err := s.dial(ctx, opts)
	if err != nil {
		s.log.Warn("connect failed", "kind", string(opts.Kind), "addr", opts.Addr(), "error", err)
		return nil, err
	}
	return link, nil
}

// Attach makes link the session's connection, closing any existing one.
func (s *Session) Attach(link Link, kind transport.Kind) {
	if s.link != nil {
		s.Disconnect()
	}
	s.link, s.linkKind = link, kind
	s.log.Info("connected", "kind", string(kind), "addr", link.RemoteAddr())
}

// Disconnect closes the link. It is a no-op when not connected.
func (s *Session) Disconnect() error {
	if s.link == nil {
		return nil
	}
	err := s.link.Close()
	s.log.Info("disconnected", "addr", s.link.RemoteAddr())
	s.link = nil
	return err
}

// LinkClosed forgets a link whose receive loop has ended. The console calls
// it when the transport reports the connection closed.
func (s *Session) LinkClosed(err error) {
	if s.link == nil {
		return
	}
	if err != nil {
		s.log.Warn("connection lost", "addr", s.link.RemoteAddr(), "error", err)
	}
	s.link.Close()
	s.link = nil
}

// Connected reports whether a link is open.
func (s *Session) Connected() bool { return s.link != nil }

// RemoteAddr returns the peer address, or "" when disconnected.
func (s *Session) RemoteAddr() string {
	if s.link == nil {
		return ""
	}
	return s.link.RemoteAddr()
}

// Close disconnects and closes the history store.
func (s *Session) Close() error {
	err := s.Disconnect()
	if s.store != nil {
		if cerr := s.store.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// =============================================================================
// STATUS
// =============================================================================

// Status is a snapshot of the session.
type Status struct {
	SessionID   string
	StartTime   time.Time
	Duration    time.Duration
	Connected   bool
	Kind        transport.Kind
	RemoteAddr  string
	Loaded      bool
	Source      string
	CatalogSize int
	HistoryLen  int
}

// Status returns the current status.
func (s *Session) Status() Status {
	st := Status{
		SessionID:   s.id,
		StartTime:   s.started,
		Duration:    time.Since(s.started),
		Connected:   s.Connected(),
		RemoteAddr:  s.RemoteAddr(),
		Loaded:      s.loaded,
		Source:      s.source,
		CatalogSize: s.catalog.Len(),
		HistoryLen:  s.history.Len(),
	}
	if st.Connected {
		st.Kind = s.linkKind
	}
	return st
}

// FormatDuration renders d as "42s", "3m" or "3m 5s".
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
