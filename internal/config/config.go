// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/devcli/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config is the complete devcli configuration.
type Config struct {
	Connection ConnectionConfig `toml:"connection"`
	UI         UIConfig         `toml:"ui"`
	Catalog    CatalogConfig    `toml:"catalog"`
	History    HistoryConfig    `toml:"history"`
}

// ConnectionConfig describes how to reach the device.
type ConnectionConfig struct {
	// Type is "udp" or "tcp".
	Type string `toml:"type"`

	UDPAddress string `toml:"udp_address"`
	UDPPort    int    `toml:"udp_port"`
	TCPAddress string `toml:"tcp_address"`
	TCPPort    int    `toml:"tcp_port"`

	// DialTimeoutSecs bounds TCP connection setup.
	DialTimeoutSecs int `toml:"dial_timeout_secs"`

	// SendRate caps commands per second; 0 is unlimited.
	SendRate float64 `toml:"send_rate"`

	// LineEnding is appended to each sent line: "none", "lf" or "crlf".
	LineEnding string `toml:"line_ending"`
}

// UIConfig holds console preferences.
type UIConfig struct {
	// Color is the console scheme: "none", "sea" or "console".
	Color string `toml:"color"`
	// HideEscapeChars shows help text without the literal \r and \n markers.
	HideEscapeChars bool `toml:"hide_escape_chars"`
	// HideAssistant turns the command assistant off.
	HideAssistant bool `toml:"hide_assistant"`
	// Prompt is printed before each input line.
	Prompt string `toml:"prompt"`
}

// CatalogConfig controls command catalog loading.
type CatalogConfig struct {
	// DefaultFile is imported at startup when set.
	DefaultFile string `toml:"default_file"`
	// Watch re-imports the last imported file when it changes.
	Watch bool `toml:"watch"`
	// MergePolicy is "always-check" or "empty-fast-path".
	MergePolicy string `toml:"merge_policy"`
}

// HistoryConfig controls command history persistence.
type HistoryConfig struct {
	Persist      bool   `toml:"persist"`
	DatabasePath string `toml:"database_path"`
	// MaxLoaded is how many past commands are loaded at startup.
	MaxLoaded int `toml:"max_loaded"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

const (
	DefaultAddress = "127.0.0.1"
	DefaultPort    = 5005
	DefaultType    = "udp"
	DefaultColor   = "none"
	DefaultPrompt  = "> "
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Connection: ConnectionConfig{
			Type:            DefaultType,
			UDPAddress:      DefaultAddress,
			UDPPort:         DefaultPort,
			TCPAddress:      DefaultAddress,
			TCPPort:         DefaultPort,
			DialTimeoutSecs: 5,
			SendRate:        0,
			LineEnding:      "none",
		},
		UI: UIConfig{
			Color:  DefaultColor,
			Prompt: DefaultPrompt,
		},
		Catalog: CatalogConfig{
			MergePolicy: "always-check",
		},
		History: HistoryConfig{
			Persist:      true,
			DatabasePath: "~/.devcli/history.db",
			MaxLoaded:    500,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the devcli configuration directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".devcli"), nil
}

// Path returns the default config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// LogPath returns the default log file path.
func LogPath() string {
	dir, err := Dir()
	if err != nil {
		return filepath.Join(os.TempDir(), "devcli.log")
	}
	return filepath.Join(dir, "devcli.log")
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file at path (the default path when empty), then
// applies .env and environment overrides and validates. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	// A missing .env is the common case.
	_ = godotenv.Load()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys absent from the file keep cfg's values.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Save writes cfg to path (the default path when empty) atomically with
// 0600 permissions.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		path = p
	}

	var sb strings.Builder
	sb.WriteString("# devcli configuration file\n")
	sb.WriteString("# Generated by devcli - edit with care\n\n")
	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, []byte(sb.String()), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetDefaults fills zero values that would make the config unusable.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Connection.Type == "" {
		c.Connection.Type = d.Connection.Type
	}
	c.Connection.Type = strings.ToLower(c.Connection.Type)
	if c.Connection.DialTimeoutSecs <= 0 {
		c.Connection.DialTimeoutSecs = d.Connection.DialTimeoutSecs
	}
	if c.Connection.LineEnding == "" {
		c.Connection.LineEnding = d.Connection.LineEnding
	}
	if c.UI.Color == "" {
		c.UI.Color = d.UI.Color
	}
	c.UI.Color = strings.ToLower(c.UI.Color)
	if c.Catalog.MergePolicy == "" {
		c.Catalog.MergePolicy = d.Catalog.MergePolicy
	}
	if c.History.DatabasePath == "" {
		c.History.DatabasePath = d.History.DatabasePath
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid setting.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

var (
	validTypes       = []string{"udp", "tcp"}
	validColors      = []string{"none", "sea", "console"}
	validLineEndings = []string{"none", "lf", "crlf"}
	validPolicies    = []string{"always-check", "empty-fast-path"}
)

// Validate checks every setting and returns ValidateErrors listing all
// problems, or nil.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !oneOf(c.Connection.Type, validTypes) {
		add("connection.type", "invalid type '%s', must be one of: %s", c.Connection.Type, strings.Join(validTypes, ", "))
	}
	if !isIPv4(c.Connection.UDPAddress) {
		add("connection.udp_address", "'%s' is not an IPv4 address", c.Connection.UDPAddress)
	}
	if !isIPv4(c.Connection.TCPAddress) {
		add("connection.tcp_address", "'%s' is not an IPv4 address", c.Connection.TCPAddress)
	}
	if c.Connection.UDPPort < 1 || c.Connection.UDPPort > 65535 {
		add("connection.udp_port", "port %d out of range 1-65535", c.Connection.UDPPort)
	}
	if c.Connection.TCPPort < 1 || c.Connection.TCPPort > 65535 {
		add("connection.tcp_port", "port %d out of range 1-65535", c.Connection.TCPPort)
	}
	if c.Connection.SendRate < 0 {
		add("connection.send_rate", "must not be negative")
	}
	if !oneOf(c.Connection.LineEnding, validLineEndings) {
		add("connection.line_ending", "invalid line ending '%s', must be one of: %s", c.Connection.LineEnding, strings.Join(validLineEndings, ", "))
	}
	if !oneOf(c.UI.Color, validColors) {
		add("ui.color", "invalid color '%s', must be one of: %s", c.UI.Color, strings.Join(validColors, ", "))
	}
	if !oneOf(c.Catalog.MergePolicy, validPolicies) {
		add("catalog.merge_policy", "invalid policy '%s', must be one of: %s", c.Catalog.MergePolicy, strings.Join(validPolicies, ", "))
	}
	if c.History.MaxLoaded < 0 {
		add("history.max_loaded", "must not be negative")
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

func isIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil && !strings.Contains(s, ":")
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Address returns the host and port for the selected connection type.
func (c ConnectionConfig) Address() (string, int) {
	if strings.EqualFold(c.Type, "tcp") {
		return c.TCPAddress, c.TCPPort
	}
	return c.UDPAddress, c.UDPPort
}

// DialTimeout returns DialTimeoutSecs as a duration.
func (c ConnectionConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSecs) * time.Second
}

// Terminator returns the bytes appended to each sent line.
func (c ConnectionConfig) Terminator() string {
	switch strings.ToLower(c.LineEnding) {
	case "lf":
		return "\n"
	case "crlf":
		return "\r\n"
	default:
		return ""
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies:
//   - DEVCLI_TYPE: connection.type
//   - DEVCLI_ADDRESS: address of the selected connection type
//   - DEVCLI_PORT: port of the selected connection type
//   - DEVCLI_COLOR: ui.color
func (c *Config) ApplyEnvOverrides() {
	if t := os.Getenv("DEVCLI_TYPE"); t != "" {
		c.Connection.Type = strings.ToLower(t)
	}
	tcp := strings.EqualFold(c.Connection.Type, "tcp")

	if addr := os.Getenv("DEVCLI_ADDRESS"); addr != "" {
		if tcp {
			c.Connection.TCPAddress = addr
		} else {
			c.Connection.UDPAddress = addr
		}
	}
	if p := os.Getenv("DEVCLI_PORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			if tcp {
				c.Connection.TCPPort = port
			} else {
				c.Connection.UDPPort = port
			}
		}
	}
	if color := os.Getenv("DEVCLI_COLOR"); color != "" {
		c.UI.Color = strings.ToLower(color)
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get returns a value by dot-notation key, e.g. "connection.udp_port".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by dot-notation key. String values are converted to
// the field's type. The config is not validated; call Validate afterwards.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts snake_case or kebab-case to a Go field name.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %w", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %w", err)
			}
			field.SetFloat(f)
			return nil
		case reflect.Bool:
			switch strings.ToLower(strVal) {
			case "1", "true", "yes", "on":
				field.SetBool(true)
			case "0", "false", "no", "off":
				field.SetBool(false)
			default:
				return fmt.Errorf("invalid boolean value: %q", strVal)
			}
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String && field.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys returns every settable key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, section.Tag.Get("toml")+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
