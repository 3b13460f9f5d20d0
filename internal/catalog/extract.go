// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrUnknownKind is returned for an input kind that is not source, set or auto.
var ErrUnknownKind = errors.New("unknown catalog input kind")

// Kind selects which grammar reads a file.
type Kind int

const (
	// KindAuto picks KindSet for ".set" files and KindSource otherwise.
	KindAuto Kind = iota
	// KindSource reads C struct-literal definitions.
	KindSource
	// KindSet reads `"name","help",argCount` lines.
	KindSet
	// KindYAML reads a document produced by Export with FormatYAML.
	KindYAML
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindSet:
		return "set"
	case KindYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// ParseKind parses "auto", "source" (or "c"), "set" and "yaml".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return KindAuto, nil
	case "source", "c", "src":
		return KindSource, nil
	case "set":
		return KindSet, nil
	case "yaml", "yml":
		return KindYAML, nil
	default:
		return KindAuto, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Resolve turns KindAuto into a concrete kind based on the file extension.
func (k Kind) Resolve(path string) Kind {
	if k != KindAuto {
		return k
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case SetFileExt:
		return KindSet
	case ".yaml", ".yml":
		return KindYAML
	default:
		return KindSource
	}
}

// Extract runs the grammar for kind over text. KindAuto is treated as
// KindSource since there is no file name to go by. A YAML document that does
// not decode yields no entries, like any other unmatched input.
func Extract(kind Kind, text string) []Entry {
	switch kind {
	case KindSet:
		return ExtractFromCatalogFile(text)
	case KindYAML:
		entries, err := ImportYAML(strings.NewReader(text))
		if err != nil {
			return []Entry{}
		}
		return entries
	default:
		return ExtractFromSource(text)
	}
}

// ReadFile reads a whole file and decodes it to a string.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeText(data)
}

// ExtractFile reads path and extracts its entries with the grammar kind
// resolves to.
func ExtractFile(path string, kind Kind) ([]Entry, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(kind.Resolve(path), text), nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText converts file bytes to a string. UTF-8 input (with or without a
// BOM) is used as-is; anything else is decoded as ISO 8859-1, the usual
// encoding of older embedded sources.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(out), nil
}
