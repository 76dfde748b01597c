package execcmd

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCommand is returned when a run is requested with no command text.
	// It indicates a caller bug rather than a runtime failure.
	ErrEmptyCommand = errors.New("empty command")

	// ErrCommandFailed matches every *CommandError.
	ErrCommandFailed = errors.New("command failed")
)

// CommandError reports a command that exited non-zero or could not be started.
type CommandError struct {
	Command    string
	ExitStatus int    // -1 when the process never started
	Output     string // captured output, empty for interactive runs
	Err        error  // underlying start/wait error, if any
}

func (e *CommandError) Error() string {
	if e == nil {
		return ""
	}
	if e.ExitStatus < 0 && e.Err != nil {
		return fmt.Sprintf("command %q could not be run: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitStatus)
}

func (e *CommandError) Is(target error) bool { return target == ErrCommandFailed }

func (e *CommandError) Unwrap() error { return e.Err }
