package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/config"
	"pth/internal/skeleton"
	"pth/internal/ui"
)

// SkeletonCommand prints generated test classes
type SkeletonCommand struct {
	config *config.Config
	stdout io.Writer
	stderr io.Writer
}

// NewSkeletonCommand creates a new SkeletonCommand
func NewSkeletonCommand(cfg *config.Config, stdout, stderr io.Writer) *SkeletonCommand {
	return &SkeletonCommand{config: cfg, stdout: stdout, stderr: stderr}
}

// Execute runs the command
func (sc *SkeletonCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(sc.config, sc.stderr)
	source := args[0]

	var entity string
	if len(args) == 2 {
		entity = args[1]
	} else {
		_, unit, err := loadSource(sc.config, logger, source)
		if err != nil {
			return cli.Fail(err)
		}
		if len(unit.Entities) == 0 {
			return cli.Fail(fmt.Errorf("no class is declared in %s", source))
		}
		entity = unit.Entities[len(unit.Entities)-1].Name
	}

	mode := skeleton.Full
	if sc.config.Flags.Partial {
		mode = skeleton.Partial
	}
	outcome, err := skeleton.NewGenerator(sc.config.SkeletonBaseClass, logger).Generate(entity, source, mode)
	if err != nil {
		return cli.Fail(err)
	}

	ui.NewFormatter(sc.stdout, sc.config.ProjectPath).PrintSkeleton(entity, outcome)
	return nil
}
