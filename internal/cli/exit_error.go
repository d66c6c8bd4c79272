package cli

import "fmt"

// Exit codes returned by the stackctl binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError carries a message and a process exit code from a command back to
// main.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// usageErrorf builds an ExitError for bad invocations.
func usageErrorf(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// failuref builds an ExitError for runtime failures.
func failuref(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitFailure, Message: fmt.Sprintf(format, args...)}
}
