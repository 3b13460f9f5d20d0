// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog extracts device CLI command definitions from text and keeps
// them in an ordered, name-unique Catalog.
//
// Two input shapes are understood:
//
//   - C sources declaring FreeRTOS+CLI style tables:
//
//     static const CLI_Command_Definition_t xGet = {
//     "get", /* name */ "get <key>: read a value\r\n", prvGet, 1 };
//
//   - ".set" files, one `"name","help",argCount` per line, as written by
//     WriteSetFile.
//
// Scanning is permissive. Text that does not match the expected shape is
// skipped and an input without any match yields an empty slice, never an
// error. Extraction has no side effects; only the file helpers (ReadFile,
// SaveSetFile, Watcher) touch the filesystem.
//
// # Usage
//
//	cat := catalog.New()
//	text, _ := catalog.ReadFile("commands.c")
//	res := cat.Merge(catalog.ExtractFromSource(text))
//	fmt.Printf("%d added, %d skipped\n", res.Added, res.Skipped)
//
//	for _, p := range catalog.ExtractPlaceholders(e.Help, e.ArgCount) {
//		fmt.Println(p.Name, p.Kind)
//	}
package catalog
