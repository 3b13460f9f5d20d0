// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"reflect"
	"testing"
)

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestIsCommand(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"/help", true},
		{"/import cli.set", true},
		{"  /help", true},
		{"task-stats", false},
		{"echo /help", false},
		{"", false},
		{"/", true},
		{"//raw", false},
	}

	for _, tc := range tests {
		if got := IsCommand(tc.input); got != tc.want {
			t.Errorf("IsCommand(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestDeviceLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"get key", "get key"},
		{"//raw", "/raw"},
		{"  //raw x", "  /raw x"},
		{"a // b", "a // b"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := DeviceLine(tc.input); got != tc.want {
			t.Errorf("DeviceLine(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialCommand(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/imp", "/imp"},
		{"/import", "/import"},
		{"/import ", ""},
		{"/import cli", ""},
		{"get", ""},
	}

	for _, tc := range tests {
		if got := GetPartialCommand(tc.input); got != tc.want {
			t.Errorf("GetPartialCommand(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestGetPartialArg(t *testing.T) {
	tests := []struct {
		input     string
		wantIndex int
		wantText  string
	}{
		{"/import", 0, ""},
		{"/import ", 0, ""},
		{"/import cli", 0, "cli"},
		{"/import cli.set ", 1, ""},
		{"/import cli.set app", 1, "app"},
	}

	for _, tc := range tests {
		idx, text := GetPartialArg(tc.input)
		if idx != tc.wantIndex || text != tc.wantText {
			t.Errorf("GetPartialArg(%q) = (%d, %q), want (%d, %q)", tc.input, idx, text, tc.wantIndex, tc.wantText)
		}
	}
}

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"/import cli.set", []string{"/import", "cli.set"}},
		{`/import "my cli.set" append`, []string{"/import", "my cli.set", "append"}},
		{`/save 'out dir/x'`, []string{"/save", "out dir/x"}},
		{`/config ui.prompt "a \"b\""`, []string{"/config", "ui.prompt", `a "b"`}},
		{`/config ui.prompt ""`, []string{"/config", "ui.prompt", ""}},
		{"  /list   get  ", []string{"/list", "get"}},
		{"", nil},
	}

	for _, tc := range tests {
		if got := splitCommandLine(tc.input); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitCommandLine(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParserParse(t *testing.T) {
	p := NewParser(NewRegistry())

	res := p.Parse("/IMPORT  cli.set append")
	if !res.IsCommand || res.Command == nil || res.Command.Name != "/import" {
		t.Fatalf("Parse did not resolve /import: %+v", res)
	}
	if !reflect.DeepEqual(res.Args, []string{"cli.set", "append"}) {
		t.Errorf("Args = %q", res.Args)
	}
	if res.RawArgs != "cli.set append" {
		t.Errorf("RawArgs = %q", res.RawArgs)
	}

	res = p.Parse("/q")
	if res.Command == nil || res.Command.Name != "/quit" {
		t.Errorf("alias /q did not resolve to /quit")
	}

	res = p.Parse("/nope")
	if !res.IsCommand || res.Command != nil {
		t.Errorf("unknown command: %+v", res)
	}

	res = p.Parse("task-stats")
	if res.IsCommand {
		t.Errorf("device line parsed as command")
	}
}

func TestValidateArgs(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		name    string
		command string
		args    []string
		wantErr bool
	}{
		{"required missing", "/import", nil, true},
		{"required present", "/import", []string{"cli.set"}, false},
		{"enum ok", "/import", []string{"cli.set", "APPEND"}, false},
		{"enum bad", "/import", []string{"cli.set", "merge"}, true},
		{"optional enum absent", "/color", nil, false},
		{"enum bad color", "/color", []string{"pink"}, true},
		{"no args", "/clear", nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateArgs(r.Get(tc.command), tc.args)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateArgs(%s, %q) error = %v, wantErr %v", tc.command, tc.args, err, tc.wantErr)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Command: "/color", Arg: "scheme", Message: "invalid value", Got: "pink", Expected: "none, sea, console"}
	want := "/color: invalid value for argument 'scheme' (got: pink), expected: none, sea, console"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
