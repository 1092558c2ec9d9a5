package phpunit

import (
	"context"
	"errors"
	"os/exec"
)

// Command is a process invocation
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// Commander runs external processes. err is non-nil only when the process
// could not be started or waited for; a non-zero exit is reported through exitCode.
type Commander interface {
	Run(ctx context.Context, cmd Command) (output []byte, exitCode int, err error)
}

// ExecCommander runs commands with os/exec and captures combined output
type ExecCommander struct{}

// Run executes cmd synchronously
func (ExecCommander) Run(ctx context.Context, c Command) ([]byte, int, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	output, err := cmd.CombinedOutput()
	if err == nil {
		return output, 0, nil
	}
	if ctx.Err() != nil {
		return output, -1, ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return output, exitErr.ExitCode(), nil
	}
	return output, -1, err
}
