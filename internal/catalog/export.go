// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Format is an output format for Export.
type Format string

const (
	FormatSet    Format = "set"
	FormatYAML   Format = "yaml"
	FormatJSON   Format = "json"
	FormatSource Format = "c"
)

// Formats lists the accepted export formats.
var Formats = []Format{FormatSet, FormatYAML, FormatJSON, FormatSource}

// ParseFormat validates an export format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		f = FormatYAML
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (expected set, yaml, json or c)", s)
}

// exportDoc is the document shape used by the YAML and JSON formats.
type exportDoc struct {
	Commands []Entry `json:"commands" yaml:"commands"`
}

// Export writes entries to w in the given format.
func Export(w io.Writer, format Format, entries []Entry) error {
	switch format {
	case FormatSet:
		return WriteSetFile(w, entries)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(exportDoc{Commands: entries}); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(exportDoc{Commands: entries}); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil

	case FormatSource:
		_, err := io.WriteString(w, GenerateSource(entries))
		return err

	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// ImportYAML reads a document written by Export with FormatYAML.
func ImportYAML(r io.Reader) ([]Entry, error) {
	var doc exportDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if doc.Commands == nil {
		return []Entry{}, nil
	}
	return doc.Commands, nil
}

// GenerateSource renders entries as CLI_Command_Definition_t declarations that
// ExtractFromSource reads back unchanged.
func GenerateSource(entries []Entry) string {
	var sb strings.Builder
	seen := make(map[string]int)

	for i, e := range entries {
		base := cIdentifier(e.Name)
		seen[base]++
		if seen[base] > 1 {
			base = fmt.Sprintf("%s%d", base, seen[base])
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "static const %s x%s =\n{\n", definitionType, base)
		fmt.Fprintf(&sb, "\t\"%s\",\n", e.Name)
		fmt.Fprintf(&sb, "\t\"%s\",\n", e.Help)
		fmt.Fprintf(&sb, "\tprv%sCommand,\n", base)
		fmt.Fprintf(&sb, "\t%d\n};\n", e.ArgCount)
	}
	return sb.String()
}

// cIdentifier turns a command name such as "task-stats" into "TaskStats".
func cIdentifier(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	id := sb.String()
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = "Cmd" + id
	}
	return id
}
