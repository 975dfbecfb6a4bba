package cli

import "fmt"

// Exit codes distinguish a feed that failed validation from scrutineer
// itself failing.
const (
	// ExitOK means the feed validated without errors.
	ExitOK = 0
	// ExitValidationFailed means the feed has error-severity issues.
	ExitValidationFailed = 1
	// ExitRuntimeError means scrutineer could not complete the run.
	ExitRuntimeError = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ExitError carries the process exit code alongside the cause. The root
// command unwraps it to choose the code without reparsing messages.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit wraps err with the given exit code.
func Exit(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}
