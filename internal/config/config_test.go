// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DEVCLI_TYPE", "DEVCLI_ADDRESS", "DEVCLI_PORT", "DEVCLI_COLOR"} {
		t.Setenv(k, "")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "udp", cfg.Connection.Type)
	assert.Equal(t, "127.0.0.1", cfg.Connection.UDPAddress)
	assert.Equal(t, 5005, cfg.Connection.UDPPort)
	assert.Equal(t, "127.0.0.1", cfg.Connection.TCPAddress)
	assert.Equal(t, 5005, cfg.Connection.TCPPort)
	assert.Equal(t, "none", cfg.UI.Color)
	assert.Equal(t, "> ", cfg.UI.Prompt)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PartialFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[connection]
type = "TCP"
tcp_address = "10.0.0.7"
tcp_port = 2323

[ui]
color = "sea"
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp", cfg.Connection.Type)
	host, port := cfg.Connection.Address()
	assert.Equal(t, "10.0.0.7", host)
	assert.Equal(t, 2323, port)
	assert.Equal(t, 5005, cfg.Connection.UDPPort, "unset keys keep defaults")
	assert.Equal(t, "sea", cfg.UI.Color)
}

func TestLoad_UnknownKey(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[connection]\nbaud = 9600\n"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection.baud")
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[connection]
type = "serial"
udp_address = "localhost"
udp_port = 70000
`), 0600))

	_, err := Load(path)
	require.Error(t, err)

	var verrs ValidateErrors
	require.True(t, errors.As(err, &verrs))
	fields := make([]string, len(verrs))
	for i, e := range verrs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"connection.type", "connection.udp_address", "connection.udp_port"}, fields)
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEVCLI_TYPE", "TCP")
	t.Setenv("DEVCLI_ADDRESS", "192.168.1.50")
	t.Setenv("DEVCLI_PORT", "23")
	t.Setenv("DEVCLI_COLOR", "Console")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "tcp", cfg.Connection.Type)
	assert.Equal(t, "192.168.1.50", cfg.Connection.TCPAddress)
	assert.Equal(t, 23, cfg.Connection.TCPPort)
	assert.Equal(t, "127.0.0.1", cfg.Connection.UDPAddress)
	assert.Equal(t, "console", cfg.UI.Color)
}

func TestSaveAndReload(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Connection.UDPAddress = "10.1.2.3"
	cfg.Catalog.DefaultFile = "~/boards/main.set"
	cfg.UI.HideEscapeChars = true
	require.NoError(t, Save(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("connection.udp_port")
	require.NoError(t, err)
	assert.Equal(t, 5005, v)

	require.NoError(t, cfg.Set("connection.udp_port", "6000"))
	assert.Equal(t, 6000, cfg.Connection.UDPPort)

	require.NoError(t, cfg.Set("ui.hide_assistant", "on"))
	assert.True(t, cfg.UI.HideAssistant)

	require.NoError(t, cfg.Set("connection.send_rate", 2.5))
	assert.Equal(t, 2.5, cfg.Connection.SendRate)

	require.NoError(t, cfg.Set("history.max_loaded", 10))
	assert.Equal(t, 10, cfg.History.MaxLoaded)

	assert.Error(t, cfg.Set("connection.udp_port", "many"))
	assert.Error(t, cfg.Set("ui.hide_assistant", "maybe"))
	assert.Error(t, cfg.Set("ui.prompt", 5))
	assert.Error(t, cfg.Set("nope.key", "1"))
	assert.Error(t, cfg.Set("connection", "x"))
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestKeys(t *testing.T) {
	keys := Keys()
	assert.Contains(t, keys, "connection.type")
	assert.Contains(t, keys, "ui.hide_escape_chars")
	assert.Contains(t, keys, "history.database_path")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestConnectionDerived(t *testing.T) {
	c := Default().Connection
	assert.Equal(t, 5*time.Second, c.DialTimeout())
	assert.Equal(t, "", c.Terminator())
	c.LineEnding = "crlf"
	assert.Equal(t, "\r\n", c.Terminator())
	c.LineEnding = "lf"
	assert.Equal(t, "\n", c.Terminator())
}
