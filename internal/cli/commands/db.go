package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/config"
	"pth/internal/database"
)

// DBCommand prepares the test database
type DBCommand struct {
	config *config.Config
	stdout io.Writer
	stderr io.Writer
}

// NewDBCommand creates a new DBCommand
func NewDBCommand(cfg *config.Config, stdout, stderr io.Writer) *DBCommand {
	return &DBCommand{config: cfg, stdout: stdout, stderr: stderr}
}

// Execute runs the command
func (dc *DBCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := ensureDatabase(cmd.Context(), dc.config, newLogger(dc.config, dc.stderr), dc.stdout); err != nil {
		return cli.Fail(err)
	}
	return nil
}

func ensureDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	settings, err := cfg.GetDatabase()
	if err != nil {
		return err
	}
	created, err := database.NewManager(settings, logger).EnsureDatabase(ctx)
	if err != nil {
		return err
	}
	if created {
		color.New(color.FgGreen).Fprintf(out, "Created database %s\n", settings.Name)
	} else {
		color.New(color.FgCyan).Fprintf(out, "Database %s already exists\n", settings.Name)
	}
	return nil
}
