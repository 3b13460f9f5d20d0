// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/devcli/internal/config"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `config reads and writes the settings file. Keys use dot notation,
for example connection.udp_port or ui.color.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List every setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render(env.cfgPath))
			for _, key := range config.Keys() {
				v, _ := env.cfg.Get(key)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %v\n", RenderLabel(key), v)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			v, err := env.cfg.Get(args[0])
			if err != nil {
				return &ValidationError{Field: "key", Value: args[0], Reason: err.Error()}
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting and save",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(flags, false)
			if err != nil {
				return err
			}
			defer env.Close()

			next := env.cfg.Clone()
			if err := next.Set(args[0], args[1]); err != nil {
				return &ValidationError{Field: "key", Value: args[0], Reason: err.Error()}
			}
			if err := next.Validate(); err != nil {
				return &ValidationError{Field: args[0], Value: args[1], Reason: err.Error()}
			}
			if err := config.Save(next, env.cfgPath); err != nil {
				return &ConfigError{Path: env.cfgPath, Err: err}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s\n", SuccessStyle.Render("Saved"), args[0], args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configPath
			if path == "" {
				p, err := config.Path()
				if err != nil {
					return &ConfigError{Err: err}
				}
				path = p
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}
