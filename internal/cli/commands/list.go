package commands

import (
	"errors"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/config"
	"pth/internal/discovery"
	"pth/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config *config.Config
	stdout io.Writer
	stderr io.Writer
}

// NewListCommand creates a new ListCommand
func NewListCommand(cfg *config.Config, stdout, stderr io.Writer) *ListCommand {
	return &ListCommand{config: cfg, stdout: stdout, stderr: stderr}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	logger := newLogger(lc.config, lc.stderr)
	loader, _, err := loadSource(lc.config, logger, args[0])
	if err != nil {
		return cli.Fail(err)
	}

	entities := loader.Registry().Entities()
	selected, err := discovery.SelectEntity(entities)
	if err != nil && !errors.Is(err, discovery.ErrNoTestEntity) {
		return cli.Fail(err)
	}

	ui.NewFormatter(lc.stdout, lc.config.ProjectPath).PrintEntities(args[0], entities, selected)
	if selected == "" {
		color.New(color.FgYellow).Fprintln(lc.stdout, "\nNo test entity: no class name ends in \"Test\"")
	}
	return nil
}
