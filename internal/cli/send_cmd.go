// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/devcli/internal/commands"
	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/transport"
)

type sendOptions struct {
	kind     string
	address  string
	wait     time.Duration
	jsonMode bool
}

// sendResult is the --json payload.
type sendResult struct {
	Kind     string   `json:"kind"`
	Address  string   `json:"address"`
	Lines    []string `json:"lines"`
	Sent     int      `json:"bytes_sent"`
	Response string   `json:"response"`
}

func newSendCmd(flags *globalFlags) *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send [command...]",
		Short: "Send a command and print the reply",
		Long: `send connects to the configured device, sends one line and prints what
the device answers within --wait. With no arguments each line of stdin is
sent in turn.`,
		Example: `  devcli send get speed
  devcli send --type tcp --address 10.0.0.7:7000 reset
  printf 'get a\nget b\n' | devcli send`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			lines, err := sendLines(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return OutputJSON(cmd.OutOrStdout(), opts.jsonMode, "send", func() (interface{}, error) {
				return runSend(cmd.Context(), env, opts, lines, cmd.OutOrStdout())
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.kind, "type", "t", "", "transport: udp or tcp (default from config)")
	f.StringVarP(&opts.address, "address", "a", "", "device host[:port] (default from config)")
	f.DurationVarP(&opts.wait, "wait", "w", 2*time.Second, "how long to collect the reply")
	f.BoolVar(&opts.jsonMode, "json", false, "print the result as JSON")
	return cmd
}

// sendLines returns the joined arguments, or the lines of in when there are
// no arguments.
func sendLines(args []string, in io.Reader) ([]string, error) {
	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}
	if f, ok := in.(*os.File); ok && f == os.Stdin && IsTTY() {
		return nil, NewValidationErrorWithExample("command", "", "nothing to send", "devcli send get speed")
	}
	var lines []string
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, NewCommandError("send", "read", "stdin", err)
	}
	return lines, nil
}

// syncBuffer collects device output from the receive goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) {
	b.mu.Lock()
	b.buf.Write(p)
	b.mu.Unlock()
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runSend(ctx context.Context, env *env, opts *sendOptions, lines []string, out io.Writer) (*sendResult, error) {
	conn := env.cfg.Connection
	if opts.kind != "" {
		conn.Type = opts.kind
	}
	kind, err := transport.ParseKind(conn.Type)
	if err != nil {
		return nil, NewValidationErrorWithExample("type", conn.Type, "unknown transport", "--type udp")
	}
	host, port := conn.Address()
	if opts.address != "" {
		host, port, err = commands.ParseHostPort(opts.address, host, port)
		if err != nil {
			return nil, NewValidationErrorWithExample("address", opts.address, err.Error(), "--address 10.0.0.7:7000")
		}
	}

	var reply syncBuffer
	closed := make(chan struct{})
	var closeOnce sync.Once
	sess := session.New(session.Options{Logger: env.log, Terminator: conn.Terminator()})
	defer sess.Close()

	err = sess.Connect(ctx, transport.Options{
		Kind:        kind,
		Address:     host,
		Port:        port,
		DialTimeout: conn.DialTimeout(),
		SendRate:    conn.SendRate,
		OnData: func(data []byte) {
			reply.Write(data)
			if !opts.jsonMode {
				out.Write(data)
			}
		},
		OnClose: func(error) { closeOnce.Do(func() { close(closed) }) },
	})
	if err != nil {
		return nil, NewCommandError("send", "connect", fmt.Sprintf("%s:%d", host, port), err)
	}

	res := &sendResult{Kind: string(kind), Address: sess.RemoteAddr(), Lines: lines}
	for _, line := range lines {
		h, err := sess.Submit(ctx, line)
		if err != nil {
			return nil, NewCommandError("send", "send", line, err)
		}
		res.Sent += h.Bytes
	}

	timer := time.NewTimer(opts.wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-closed:
	case <-ctx.Done():
	}
	res.Response = reply.String()
	return res, nil
}
