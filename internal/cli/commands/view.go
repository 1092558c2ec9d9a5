package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/config"
	"pth/internal/domain"
	"pth/internal/junit"
	"pth/internal/storage"
	"pth/internal/ui"
)

// ViewCommand shows failed test cases from JUnit reports
type ViewCommand struct {
	config *config.Config
	viewer ui.Viewer
	stdout io.Writer
	stderr io.Writer
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(cfg *config.Config, viewer ui.Viewer, stdout, stderr io.Writer) *ViewCommand {
	return &ViewCommand{
		config: cfg,
		viewer: viewer,
		stdout: stdout,
		stderr: stderr,
	}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	var failures []domain.TestFailure
	var err error
	if len(args) == 1 {
		failures, err = reportFailures(args[0])
	} else {
		failures, err = vc.lastScanFailures()
	}
	if err != nil {
		return cli.Fail(err)
	}

	if vc.config.Flags.Plain {
		ui.NewFormatter(vc.stdout, vc.config.ProjectPath).PrintFailures(failures)
		return nil
	}
	if err := vc.viewer.View(failures); err != nil {
		return cli.Fail(err)
	}
	return nil
}

func reportFailures(path string) ([]domain.TestFailure, error) {
	report, err := junit.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return report.Failures(path), nil
}

// lastScanFailures collects failures from every report of the last scan.
// Files the harness could not run are listed as errors of their own.
func (vc *ViewCommand) lastScanFailures() ([]domain.TestFailure, error) {
	logger := newLogger(vc.config, vc.stderr)
	summary, err := storage.NewJSONStorage(vc.config).Load()
	if err != nil {
		return nil, fmt.Errorf("no scan results found, run pth scan first: %w", err)
	}

	var failures []domain.TestFailure
	for _, fr := range summary.Files {
		if fr.Error != "" {
			failures = append(failures, domain.TestFailure{
				TestName:  "(harness)",
				ClassName: fr.SourcePath,
				File:      fr.SourcePath,
				Kind:      domain.KindError,
				Message:   fr.Error,
			})
			continue
		}
		if fr.Result.Succeeded {
			continue
		}
		fs, err := reportFailures(fr.ReportPath)
		if err != nil {
			logger.Warn("Skipping unreadable report", "report", fr.ReportPath, "error", err)
			continue
		}
		failures = append(failures, fs...)
	}
	return failures, nil
}
