package commands

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/config"
	"pth/internal/exitcode"
	"pth/internal/harness"
	"pth/internal/phpunit"
	"pth/internal/ui"
)

// RunCommand runs a single test source: pth <source> <report>
type RunCommand struct {
	config    *config.Config
	commander phpunit.Commander
	stdout    io.Writer
	stderr    io.Writer
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(cfg *config.Config, commander phpunit.Commander, stdout, stderr io.Writer) *RunCommand {
	return &RunCommand{
		config:    cfg,
		commander: commander,
		stdout:    stdout,
		stderr:    stderr,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(rc.config, rc.stderr)
	start := time.Now()

	outcome, err := harness.New(rc.config, rc.commander, logger).Run(cmd.Context(), args[0], args[1])
	if err != nil {
		return cli.Fail(err)
	}

	ui.NewFormatter(rc.stdout, rc.config.ProjectPath).PrintOutcome(outcome, time.Since(start))
	if outcome.Code != exitcode.Success {
		return &cli.ExitError{Code: outcome.Code}
	}
	return nil
}
