package script

import (
	"errors"
	"fmt"

	dErrors "smartstore/pkg/domain-errors"
)

// CommandError reports a script line that could not be executed.
type CommandError struct {
	Command string
	Reason  string
	Line    int
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Command, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func commandError(command string, line int, err error) *CommandError {
	reason := err.Error()
	var de *dErrors.Error
	if errors.As(err, &de) {
		reason = string(de.Code) + ": " + de.Reason()
	}
	return &CommandError{Command: command, Reason: reason, Line: line, Err: err}
}
