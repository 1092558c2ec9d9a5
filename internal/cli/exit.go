package cli

import (
	"fmt"

	"pth/internal/exitcode"
)

// ExitError carries the process exit status out of a command. Err is nil when
// the command ran correctly but its tests did not all pass.
type ExitError struct {
	Code exitcode.Code
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d (%s)", int(e.Code), e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Fail wraps err as a harness failure
func Fail(err error) *ExitError {
	return &ExitError{Code: exitcode.Exception, Err: err}
}
