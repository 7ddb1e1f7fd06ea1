package cli

import "fmt"

// Exit codes used by the ganymede command.
const (
	// ExitOK means every evaluated rule passed or was skipped.
	ExitOK = 0
	// ExitNonCompliant means at least one rule failed.
	ExitNonCompliant = 1
	// ExitError means the evaluation itself could not complete: bad
	// flags, unreadable inputs, or a rule file with no loadable rules.
	ExitError = 2
)

// ExitCodeError carries a process exit code alongside an error. The root
// command inspects it to decide the exit status.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

// NewExitCodeError creates an ExitCodeError.
func NewExitCodeError(code int, err error) *ExitCodeError {
	return &ExitCodeError{Code: code, Err: err}
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
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
