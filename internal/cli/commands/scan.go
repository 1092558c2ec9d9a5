package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/config"
	"pth/internal/discovery"
	"pth/internal/execution"
	"pth/internal/exitcode"
	"pth/internal/harness"
	"pth/internal/phpunit"
	"pth/internal/storage"
	"pth/internal/ui"
)

// ScanCommand runs every test source under a directory
type ScanCommand struct {
	config    *config.Config
	commander phpunit.Commander
	stdout    io.Writer
	stderr    io.Writer
}

// NewScanCommand creates a new ScanCommand
func NewScanCommand(cfg *config.Config, commander phpunit.Commander, stdout, stderr io.Writer) *ScanCommand {
	return &ScanCommand{
		config:    cfg,
		commander: commander,
		stdout:    stdout,
		stderr:    stderr,
	}
}

// Execute runs the command
func (sc *ScanCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := newLogger(sc.config, sc.stderr)

	if sc.config.Flags.PrepareDB {
		if err := ensureDatabase(ctx, sc.config, logger, sc.stdout); err != nil {
			return cli.Fail(err)
		}
	}

	root := sc.config.GetTestPath()
	if len(args) == 1 {
		root = args[0]
	}
	files, err := discovery.NewScanner(sc.config.PathsToIgnore).Scan(root)
	if err != nil {
		return cli.Fail(err)
	}
	files = discovery.NewFilter().FilterByName(files, sc.config.Flags.NameFilter)

	if len(files) == 0 {
		color.New(color.FgYellow).Fprintln(sc.stdout, "No tests to execute")
		return nil
	}

	summary, runErr := sc.executor(root, len(files), logger).Execute(ctx, files)

	formatter := ui.NewFormatter(sc.stdout, sc.config.ProjectPath)
	for _, fr := range summary.Files {
		formatter.PrintFileResult(fr)
	}
	fmt.Fprintln(sc.stdout)
	formatter.PrintScanSummary(summary)

	if err := storage.NewJSONStorage(sc.config).Save(summary); err != nil {
		return cli.Fail(fmt.Errorf("failed to save test results: %w", err))
	}
	if runErr != nil {
		return cli.Fail(runErr)
	}
	if code := exitcode.Code(summary.Meta.ExitCode); code != exitcode.Success {
		return &cli.ExitError{Code: code}
	}
	return nil
}

// executor runs the scanned files one by one through the harness, reporting
// progress on stderr
func (sc *ScanCommand) executor(root string, total int, logger *slog.Logger) execution.Executor {
	batch := execution.NewBatch(
		harness.New(sc.config, sc.commander, logger),
		root,
		sc.config.GetReportDir(),
		sc.config.Flags.FailFast,
		logger,
	)
	batch.SetProgress(ui.NewProgressBar(total, sc.stderr))
	return batch
}
