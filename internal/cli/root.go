// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/config"
	"github.com/jeranaias/devcli/internal/history"
	"github.com/jeranaias/devcli/internal/logging"
	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/ui/console"
	"github.com/jeranaias/devcli/internal/util"
)

// Version information, set by main from build flags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	verbose    bool
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		DisplayError(err)
		return GetExitCode(err)
	}
	return ExitSuccess
}

// NewRootCmd builds the devcli command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}
	var (
		connect    bool
		importFile string
	)

	root := &cobra.Command{
		Use:   "devcli",
		Short: "Command-line console for embedded devices",
		Long: `devcli sends text commands to an embedded device over UDP or TCP.

It loads the device's command catalog from C sources or .set files and
suggests commands and their arguments as you type. Type /help inside the
console for the slash commands.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RequiresTTY("the console"); err != nil {
				return err
			}
			env, err := setup(flags, true)
			if err != nil {
				return err
			}
			defer env.Close()

			sess, err := env.newSession(cmd.Context())
			if err != nil {
				return err
			}
			if importFile == "" {
				importFile = env.cfg.Catalog.DefaultFile
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return console.Run(ctx, console.Options{
				Session:    sess,
				Config:     env.cfg,
				Logger:     env.log,
				ConfigPath: env.cfgPath,
				Connect:    connect,
				Import:     importFile,
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.devcli/config.toml)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")

	root.Flags().BoolVarP(&connect, "connect", "c", false, "connect to the configured device at startup")
	root.Flags().StringVarP(&importFile, "import", "i", "", "catalog file to import at startup")

	root.AddCommand(
		newShellCmd(flags),
		newCatalogCmd(flags),
		newSendCmd(flags),
		newConfigCmd(flags),
		newVersionCmd(),
	)
	return root
}

// =============================================================================
// RUNTIME ENVIRONMENT
// =============================================================================

// env is the loaded config and the resources built from it.
type env struct {
	cfg     *config.Config
	cfgPath string
	log     logging.Logger
	store   *history.Store
	closers []io.Closer
}

// setup loads the config and opens the log file. withStore opens the
// history database when persistence is on.
func setup(flags *globalFlags, withStore bool) (*env, error) {
	path := flags.configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	e := &env{cfg: cfg, cfgPath: path}

	log, closer, err := logging.OpenFile(config.LogPath(), flags.verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("warning: "+err.Error()))
	}
	e.log = log
	e.closers = append(e.closers, closer)

	if withStore && cfg.History.Persist {
		dbPath, err := util.ExpandPath(cfg.History.DatabasePath)
		if err == nil {
			e.store, err = history.OpenStore(dbPath)
		}
		if err != nil {
			// History is a convenience; run without it.
			e.log.Warn("history store unavailable", "error", err)
			e.store = nil
		}
	}
	return e, nil
}

// newSession creates a session from the config and loads past history.
func (e *env) newSession(ctx context.Context) (*session.Session, error) {
	policy, err := catalog.ParseMergePolicy(e.cfg.Catalog.MergePolicy)
	if err != nil {
		return nil, &ConfigError{Path: e.cfgPath, Err: err}
	}
	sess := session.New(session.Options{
		Policy:     policy,
		Store:      e.store,
		Logger:     e.log,
		Terminator: e.cfg.Connection.Terminator(),
	})
	if e.store != nil {
		if _, err := sess.LoadHistory(ctx, e.cfg.History.MaxLoaded); err != nil {
			e.log.Warn("load history", "error", err)
		}
	}
	return sess, nil
}

// Close releases the log file. The history store belongs to the session
// once one is created.
func (e *env) Close() {
	for _, c := range e.closers {
		if c != nil {
			c.Close()
		}
	}
}
