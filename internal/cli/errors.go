// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/jeranaias/devcli/internal/session"
	"github.com/jeranaias/devcli/internal/transport"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates a device connection error
	ExitNetworkError = 5
	// ExitNotFoundError indicates a file or command was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "send", "catalog")
	Action  string // Action being performed (e.g., "connect", "extract")
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ConfigError wraps a failure to load or validate the config file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason, Example: example}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the appropriate exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitConfigError
	}
	var ttyErr *TTYRequiredError
	if errors.As(err, &ttyErr) {
		return ExitUsageError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ExitTimeoutError
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, session.ErrNoCatalog) {
		return ExitNotFoundError
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.Is(err, transport.ErrNotConnected) {
		return ExitNetworkError
	}

	// Cobra reports flag and argument problems as plain errors.
	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "unknown flag") ||
		strings.Contains(errMsg, "unknown command") ||
		strings.Contains(errMsg, "accepts ") ||
		strings.Contains(errMsg, "requires at least") ||
		strings.Contains(errMsg, "invalid argument") {
		return ExitUsageError
	}

	return ExitGeneralError
}

// DisplayError prints err to stderr in the shared error style.
func DisplayError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}
