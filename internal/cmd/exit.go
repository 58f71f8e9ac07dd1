package cmd

import (
	"errors"
	"fmt"
)

// Process exit codes
const (
	ExitOK       = 0
	ExitFailure  = 1 // runtime error, including a missing scan root
	ExitUsage    = 2 // bad flags, arguments or configuration
	ExitWarnings = 3 // warnings found with --fail-on-warnings
)

// ExitError carries the exit code a command failure should produce
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by a command to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Err: err}
}
