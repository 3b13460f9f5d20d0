// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/jeranaias/devcli/internal/util"
)

// SetFileExt is the extension of catalog files.
const SetFileExt = ".set"

// setLine matches `"name","help",argCount` with optional blanks around the
// commas. Quoted bodies may hold backslash escapes, kept verbatim.
var setLine = regexp.MustCompile(`"((?:[^"\\\n]|\\.)*)"\s*,\s*"((?:[^"\\\n]|\\.)*)"\s*,\s*([+-]?[0-9]+)`)

// ExtractFromCatalogFile returns the entries of a .set file in line order.
// Lines that do not match are skipped.
func ExtractFromCatalogFile(text string) []Entry {
	entries := []Entry{}
	for _, line := range strings.Split(text, "\n") {
		for _, m := range setLine.FindAllStringSubmatch(line, -1) {
			n, err := strconv.Atoi(m[3])
			if err != nil {
				continue
			}
			entries = append(entries, Entry{Name: m[1], Help: m[2], ArgCount: n})
		}
	}
	return entries
}

// WriteSetFile writes entries in .set format, one per line, values verbatim.
func WriteSetFile(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "\"%s\",\"%s\",%d\n", e.Name, e.Help, e.ArgCount); err != nil {
			return fmt.Errorf("write entry %q: %w", e.Name, err)
		}
	}
	return bw.Flush()
}

// SaveSetFile atomically writes the catalog to path, appending ".set" when
// the name lacks it. It returns the path actually written.
func SaveSetFile(path string, c *Catalog) (string, error) {
	path = WithSetExt(path)

	var buf bytes.Buffer
	if err := WriteSetFile(&buf, c.entries); err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("save catalog: %w", err)
	}
	return path, nil
}

// WithSetExt appends ".set" unless path already ends with it.
func WithSetExt(path string) string {
	if strings.EqualFold(filepath.Ext(path), SetFileExt) {
		return path
	}
	return path + SetFileExt
}
