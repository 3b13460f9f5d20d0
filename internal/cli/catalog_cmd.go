// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/devcli/internal/catalog"
	"github.com/jeranaias/devcli/internal/commands"
	"github.com/jeranaias/devcli/internal/ui/styles"
	"github.com/jeranaias/devcli/internal/util"
)

// formatTable is the human-readable listing, the default on stdout.
const formatTable = "table"

type catalogOptions struct {
	kind        string
	format      string
	output      string
	prefix      string
	hideEscapes bool
}

func newCatalogCmd(flags *globalFlags) *cobra.Command {
	opts := &catalogOptions{}
	cmd := &cobra.Command{
		Use:   "catalog <file>...",
		Short: "Extract a command catalog",
		Long: `catalog reads command definitions from C sources, .set files or YAML
exports and prints them, or converts them with --format and --output.

Several files merge into one catalog in order; later duplicates are
dropped.`,
		Example: `  devcli catalog cli_commands.c
  devcli catalog cli_commands.c -o device.set
  devcli catalog device.set --format yaml
  devcli catalog cli_commands.c --format c`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(cmd, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.kind, "kind", "k", "auto", "input grammar: auto, source, set or yaml")
	f.StringVarP(&opts.format, "format", "f", "", "output format: table, set, yaml, json or c")
	f.StringVarP(&opts.output, "output", "o", "", "write to a file instead of stdout")
	f.StringVarP(&opts.prefix, "prefix", "p", "", "only commands starting with this prefix")
	f.BoolVar(&opts.hideEscapes, "hide-escapes", false, "render \\n and \\t markers in help text")
	return cmd
}

func runCatalog(cmd *cobra.Command, opts *catalogOptions, files []string) error {
	kind, err := catalog.ParseKind(opts.kind)
	if err != nil {
		return NewValidationErrorWithExample("kind", opts.kind, "unknown input grammar", "--kind source")
	}
	format := opts.format
	if format == "" {
		format = formatFor(opts.output)
	}

	cat := catalog.New()
	for _, file := range files {
		path, err := util.ExpandPath(file)
		if err != nil {
			return NewCommandError("catalog", "read", file, err)
		}
		entries, err := catalog.ExtractFile(path, kind)
		if err != nil {
			return NewCommandError("catalog", "read", file, err)
		}
		res := cat.Merge(entries)
		if res.Skipped > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), DimStyle.Render(fmt.Sprintf("%s: %d duplicates skipped", file, res.Skipped)))
		}
	}
	entries := cat.WithPrefix(opts.prefix)

	if format == formatTable {
		if opts.output != "" {
			return NewValidationErrorWithExample("format", format, "table output is for the terminal", "--format set")
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No commands found.")
			return nil
		}
		width := 0
		if IsStdoutTTY() {
			width = GetTerminalWidth()
		}
		fmt.Fprintln(cmd.OutOrStdout(), commands.FormatCatalog(entries, opts.hideEscapes, width))
		return nil
	}

	f, err := catalog.ParseFormat(format)
	if err != nil {
		return NewValidationErrorWithExample("format", format, "unknown output format", "--format yaml")
	}
	var buf bytes.Buffer
	if err := catalog.Export(&buf, f, entries); err != nil {
		return NewCommandError("catalog", "export", string(f), err)
	}

	if opts.output == "" {
		out := buf.String()
		if f == catalog.FormatSource && ColorsEnabled() {
			out = styles.HighlightSource(out)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}

	path, err := util.ExpandPath(opts.output)
	if err != nil {
		return NewCommandError("catalog", "write", opts.output, err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return NewCommandError("catalog", "write", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d commands to %s\n", SuccessStyle.Render("Wrote"), len(entries), path)
	return nil
}

// formatFor picks the export format from the output file extension.
func formatFor(output string) string {
	if output == "" {
		return formatTable
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".yaml", ".yml":
		return string(catalog.FormatYAML)
	case ".json":
		return string(catalog.FormatJSON)
	case ".c", ".h":
		return string(catalog.FormatSource)
	default:
		return string(catalog.FormatSet)
	}
}
