// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport carries command lines to the device over UDP or TCP and
// hands whatever comes back to a callback.
//
// The receive loop runs on its own goroutine. Callers with a single-threaded
// event loop (the console's bubbletea program) should forward OnData into
// that loop rather than touch their state from the callback.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS AND ERRORS
// =============================================================================

const (
	// RecvBufferSize is the largest chunk handed to OnData at once.
	RecvBufferSize = 1024

	// DefaultDialTimeout bounds TCP connection setup.
	DefaultDialTimeout = 5 * time.Second
)

// ErrNotConnected is returned when sending without an open connection.
var ErrNotConnected = errors.New("not connected")

// Kind is the socket type.
type Kind string

const (
	UDP Kind = "udp"
	TCP Kind = "tcp"
)

// ParseKind accepts "udp" and "tcp" in any case.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case UDP:
		return UDP, nil
	case TCP:
		return TCP, nil
	default:
		return "", fmt.Errorf("unknown connection type %q (expected udp or tcp)", s)
	}
}

// String returns the upper-case name shown to the operator.
func (k Kind) String() string {
	return strings.ToUpper(string(k))
}

// =============================================================================
// TYPES
// =============================================================================

// Handle identifies one completed send.
type Handle struct {
	Seq    uint64
	Bytes  int
	SentAt time.Time
}

// Sender is the part of a connection the session uses to submit lines.
type Sender interface {
	Send(p []byte) (Handle, error)
}

// Options configures Dial.
type Options struct {
	Kind    Kind
	Address string
	Port    int

	// DialTimeout bounds connection setup. Zero means DefaultDialTimeout.
	DialTimeout time.Duration

	// SendRate caps sends per second. Zero or less is unlimited.
	SendRate float64

	// OnData receives each chunk read from the socket. The slice is owned
	// by the callee.
	OnData func(data []byte)

	// OnClose runs once when the receive loop ends. err is nil for a local
	// Close, an orderly remote shutdown or a zero-length read.
	OnClose func(err error)
}

// Addr returns host:port.
func (o Options) Addr() string {
	return net.JoinHostPort(o.Address, strconv.Itoa(o.Port))
}

// =============================================================================
// CONNECTION
// =============================================================================

// Conn is an open UDP or TCP connection to the device.
type Conn struct {
	kind    Kind
	conn    net.Conn
	limiter *rate.Limiter
	onData  func([]byte)
	onClose func(error)

	seq       atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens a connection and starts its receive loop. UDP sockets are
// connected to the target so only its datagrams are delivered.
func Dial(ctx context.Context, opts Options) (*Conn, error) {
	if opts.Kind != UDP && opts.Kind != TCP {
		return nil, fmt.Errorf("dial: unknown connection type %q", opts.Kind)
	}
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	d := net.Dialer{Timeout: timeout}
	nc, err := d.DialContext(ctx, string(opts.Kind), opts.Addr())
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", opts.Kind, opts.Addr(), err)
	}

	c := &Conn{
		kind:    opts.Kind,
		conn:    nc,
		onData:  opts.OnData,
		onClose: opts.OnClose,
		done:    make(chan struct{}),
	}
	if c.onData == nil {
		c.onData = func([]byte) {}
	}
	if c.onClose == nil {
		c.onClose = func(error) {}
	}
	if opts.SendRate > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.SendRate), 1)
	}

	go c.receive()
	return c, nil
}

// Kind returns the socket type.
func (c *Conn) Kind() Kind {
	return c.kind
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// LocalAddr returns the local socket address.
func (c *Conn) LocalAddr() string {
	return c.conn.LocalAddr().String()
}

// Send writes p as one datagram (UDP) or one write (TCP).
func (c *Conn) Send(p []byte) (Handle, error) {
	return c.SendContext(context.Background(), p)
}

// SendContext is Send with a context bounding the wait for the rate limiter.
func (c *Conn) SendContext(ctx context.Context, p []byte) (Handle, error) {
	if c.closed.Load() {
		return Handle{}, ErrNotConnected
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Handle{}, fmt.Errorf("send: %w", err)
		}
	}

	n, err := c.conn.Write(p)
	if err != nil {
		if c.closed.Load() {
			return Handle{}, ErrNotConnected
		}
		return Handle{}, fmt.Errorf("send: %w", err)
	}
	return Handle{Seq: c.seq.Add(1), Bytes: n, SentAt: time.Now()}, nil
}

// Close shuts the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.conn.Close()
	})
	return err
}

// Done is closed when the receive loop has ended and OnClose has returned.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

func (c *Conn) receive() {
	defer close(c.done)

	buf := make([]byte, RecvBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			c.onData(data)
		}
		if err != nil {
			// Nobody listening yet; later datagrams may still arrive.
			if c.kind == UDP && errors.Is(err, syscall.ECONNREFUSED) && !c.closed.Load() {
				continue
			}
			c.finish(err)
			return
		}
		if n == 0 {
			c.finish(nil)
			return
		}
	}
}

func (c *Conn) finish(err error) {
	if c.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		err = nil
	}
	c.Close()
	c.onClose(err)
}
