// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/devcli/internal/commands"
	"github.com/jeranaias/devcli/internal/config"
	"github.com/jeranaias/devcli/internal/logging"
	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/transport"
	"github.com/jeranaias/devcli/internal/ui/styles"
)

func newShellCmd(flags *globalFlags) *cobra.Command {
	var (
		connect    bool
		importFile string
	)
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Line-mode console",
		Long: `shell is the console without the full-screen interface. Tab completes
device commands and slash commands; Up and Down walk the history.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(flags, true)
			if err != nil {
				return err
			}
			defer env.Close()

			sess, err := env.newSession(cmd.Context())
			if err != nil {
				return err
			}
			sh := newShell(sess, env.cfg, env.log, cmd.OutOrStdout())
			sh.cmdCtx.ConfigPath = env.cfgPath
			defer sh.Close()

			if importFile == "" {
				importFile = env.cfg.Catalog.DefaultFile
			}
			if importFile != "" {
				sh.handleCmd(commands.HandleImport(sh.cmdCtx, []string{importFile}))
			}
			if connect {
				sh.handleCmd(commands.HandleConnect(sh.cmdCtx, nil))
			}
			return sh.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&connect, "connect", "c", false, "connect to the configured device at startup")
	cmd.Flags().StringVarP(&importFile, "import", "i", "", "catalog file to import at startup")
	return cmd
}

// =============================================================================
// SHELL
// =============================================================================

// shell runs slash commands and device lines against a session, printing
// to out. mu guards the session against the transport callbacks.
type shell struct {
	mu    sync.Mutex
	outMu sync.Mutex

	sess      *session.Session
	cfg       *config.Config
	log       logging.Logger
	registry  *commands.Registry
	cmdCtx    *commands.Context
	completer *commands.Completer
	theme     *styles.Theme
	out       io.Writer

	// gen tags each connection so a replaced link's close is ignored.
	gen int
}

func newShell(sess *session.Session, cfg *config.Config, log logging.Logger, out io.Writer) *shell {
	registry := commands.NewRegistry()
	completer := commands.NewCompleter(registry)
	completer.CommandsFn = sess.Catalog().Names
	return &shell{
		sess:      sess,
		cfg:       cfg,
		log:       log,
		registry:  registry,
		cmdCtx:    commands.NewContext(sess, cfg, registry, log),
		completer: completer,
		theme:     styles.NewTheme(cfg.UI.Color),
		out:       out,
	}
}

// Run reads lines until /quit, Ctrl+C or end of input.
func (s *shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.complete)
	for _, h := range s.sess.History().Entries() {
		line.AppendHistory(h)
	}

	s.println("devcli shell - type /help for commands, /quit to leave")
	for {
		input, err := line.Prompt(s.cfg.UI.Prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				s.println("")
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if quit := s.execLine(ctx, input); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close disconnects and closes the session.
func (s *shell) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.sess.Close()
}

// execLine runs one input line. It reports whether the shell should exit.
func (s *shell) execLine(ctx context.Context, input string) bool {
	if commands.IsCommand(input) {
		s.mu.Lock()
		s.sess.History().Append(input)
		cmd, _ := s.registry.Execute(s.cmdCtx, input)
		s.mu.Unlock()
		return s.handleCmd(cmd)
	}

	line := commands.DeviceLine(input)
	s.mu.Lock()
	s.sess.Record(ctx, input)
	_, err := s.sess.Send(line)
	s.mu.Unlock()
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrNotConnected):
		if strings.TrimSpace(line) != "" {
			s.printError("Not connected", "", "Use /connect")
		}
	default:
		s.printError("Send failed", err.Error(), "")
	}
	return false
}

// handleCmd runs cmd and handles the message it produces.
func (s *shell) handleCmd(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	return s.handle(cmd())
}

// handle applies a command message. It reports whether the shell should
// exit.
func (s *shell) handle(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.BatchMsg:
		for _, cmd := range msg {
			if s.handleCmd(cmd) {
				return true
			}
		}

	case tea.QuitMsg:
		return true

	case commands.SystemMessageMsg:
		s.println(msg.Content)

	case commands.ErrorMsg:
		s.printError(msg.Title, msg.Message, msg.Tip)

	case commands.ClearMsg:
		if f, ok := s.out.(*os.File); ok {
			termenv.NewOutput(f).ClearScreen()
		}

	case commands.ConnectMsg:
		s.connect(msg)

	case commands.DisconnectMsg:
		s.mu.Lock()
		s.gen++
		addr := s.sess.RemoteAddr()
		err := s.sess.Disconnect()
		s.mu.Unlock()
		if err != nil {
			s.log.Warn("disconnect", "error", err)
		}
		s.println("Disconnected from " + addr + ".")

	case commands.CatalogLoadedMsg:
		s.println(msg.Summary())

	case commands.DescribeMsg:
		s.println(s.theme.RenderMarkdown(msg.Markdown, GetTerminalWidth()))

	case commands.ConfigUpdateMsg:
		if msg.Error != nil {
			s.printError("Config error", msg.Error.Error(), "")
			return false
		}
		s.mu.Lock()
		s.sess.SetTerminator(s.cfg.Connection.Terminator())
		s.mu.Unlock()
		if err := s.theme.SetScheme(s.cfg.UI.Color); err != nil {
			s.log.Warn("unknown color scheme", "color", s.cfg.UI.Color)
		}
		if msg.Key != "" {
			s.println(fmt.Sprintf("%s = %v", msg.Key, msg.Value))
		}
	}
	return false
}

// connect dials synchronously; the line-mode shell has nothing else to do
// while it waits.
func (s *shell) connect(msg commands.ConnectMsg) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	opts := transport.Options{
		Kind:        msg.Kind,
		Address:     msg.Address,
		Port:        msg.Port,
		DialTimeout: s.cfg.Connection.DialTimeout(),
		SendRate:    s.cfg.Connection.SendRate,
		OnData:      s.printData,
		OnClose: func(err error) {
			s.mu.Lock()
			current := gen == s.gen
			if current {
				s.sess.LinkClosed(err)
			}
			s.mu.Unlock()
			switch {
			case !current:
			case err != nil:
				s.printError("Connection lost", err.Error(), "Use /connect to reconnect")
			default:
				s.println("Connection closed by device.")
			}
		},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sess.Connect(context.Background(), opts); err != nil {
		s.printError("Connect failed", fmt.Sprintf("%s: %v", opts.Addr(), err), "Check the address with /status")
		return
	}
	s.println(fmt.Sprintf("Connected to %s (%s).", opts.Addr(), opts.Kind))
}

// complete is the liner completer. Slash lines complete from the command
// registry; device lines complete the command name from the catalog.
func (s *shell) complete(line string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if commands.IsCommand(line) {
		comps := s.completer.Complete(line, -1)
		out := make([]string, len(comps))
		for i, c := range comps {
			out[i] = commands.Apply(line, c)
		}
		return out
	}

	if s.cfg.UI.HideAssistant {
		return nil
	}
	if completed, ok := s.sess.Complete(line); ok {
		return []string{completed}
	}
	// Several matches: offer each name in turn.
	trimmed := strings.TrimLeft(line, " \t")
	rest := ""
	if i := strings.IndexAny(trimmed, " \t"); i >= 0 {
		rest = trimmed[i:]
	}
	var out []string
	for _, l := range s.sess.Suggest(line).Lines {
		if l.Name != "" {
			out = append(out, l.Name+rest)
		}
	}
	return out
}

// =============================================================================
// OUTPUT
// =============================================================================

func (s *shell) println(text string) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fmt.Fprintln(s.out, text)
}

func (s *shell) printData(data []byte) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	s.out.Write(data)
}

func (s *shell) printError(title, message, tip string) {
	text := ErrorStyle.Render(title)
	if message != "" {
		text += ": " + message
	}
	if tip != "" {
		text += "\n  " + DimStyle.Render(tip)
	}
	s.println(text)
}
