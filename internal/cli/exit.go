package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // a query or scenario failed
	ExitCommandError = 2 // the command itself could not run
)

// Error codes reported in JSON output and text error lines.
const (
	ErrCodeGeneric       = "E001"
	ErrCodeNotFound      = "E002" // input path missing
	ErrCodeWorldInvalid  = "E003" // world document unreadable or inconsistent
	ErrCodeSyntax        = "E004"
	ErrCodeUnbound       = "E005"
	ErrCodeDangling      = "E006"
	ErrCodeStepsExceeded = "E007"
	ErrCodeWriteFailed   = "E008"
	ErrCodeDatabase      = "E009"
	ErrCodeWorldNotFound = "E010" // no stored world with that name
	ErrCodeUsage         = "E011"
	ErrCodeTestFailed    = "E_TEST_FAILED"
)

// ExitError carries the process exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error

	// Reported is set once the error has been written through an
	// OutputFormatter; main does not print it again.
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps a command error to a process exit code. Errors that are
// not ExitErrors count as failures.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	default:
		return ExitFailure
	}
}
