// Package phpunit drives the PHPUnit command-line runner: it builds suites
// from loaded PHP classes, runs them with JUnit logging enabled and reads the
// report back.
package phpunit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/acarl005/stripansi"

	"pth/internal/config"
	"pth/internal/discovery"
	"pth/internal/domain"
	"pth/internal/junit"
)

// ErrNoReport is returned when PHPUnit exits without writing its JUnit report
var ErrNoReport = errors.New("phpunit did not write a report")

// ProcessError is returned when PHPUnit terminates with a status outside 0..2,
// which means PHP itself failed (fatal error, crash, killed process)
type ProcessError struct {
	ExitCode int
	LogPath  string // Console output saved for inspection
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("phpunit exited with status %d, output saved to %s", e.ExitCode, e.LogPath)
}

// LintError is returned when php -l rejects a source file
type LintError struct {
	Path   string
	Output string
}

func (e *LintError) Error() string {
	return fmt.Sprintf("syntax check failed for %s: %s", e.Path, e.Output)
}

// Framework builds and runs PHPUnit suites
type Framework struct {
	config    *config.Config
	loader    *discovery.Loader
	commander Commander
	logger    *slog.Logger
}

// NewFramework creates a Framework that resolves classes through loader
func NewFramework(cfg *config.Config, loader *discovery.Loader, commander Commander, logger *slog.Logger) *Framework {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if commander == nil {
		commander = ExecCommander{}
	}
	return &Framework{
		config:    cfg,
		loader:    loader,
		commander: commander,
		logger:    logger,
	}
}

// BuildSuite loads sourcePath and returns the suite of test cases declared or
// inherited by entity. An entity without test cases yields
// *domain.EmptyEntityError.
func (f *Framework) BuildSuite(ctx context.Context, entity, sourcePath string) (*domain.Suite, error) {
	unit, err := f.loader.Load(sourcePath)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, fmt.Errorf("load %s: include cycle", sourcePath)
	}

	e, ok := f.loader.Registry().Entity(entity)
	if !ok {
		return nil, fmt.Errorf("class %s is not declared after loading %s", entity, sourcePath)
	}
	cases := f.loader.Registry().Cases(e)
	if len(cases) == 0 {
		return nil, &domain.EmptyEntityError{Entity: entity, File: e.File}
	}

	f.logger.Debug("Built suite", "entity", e.Name, "file", e.File, "cases", len(cases))
	return &domain.Suite{
		Name:       e.Name,
		SourcePath: e.File,
		Cases:      cases,
	}, nil
}

// Run executes suite and writes its JUnit report to reportPath. A warning
// suite is not executed; its report is written directly.
func (f *Framework) Run(ctx context.Context, suite *domain.Suite, reportPath string) (domain.RunResult, error) {
	if suite.IsWarning() {
		f.logger.Debug("Writing warning report", "entity", suite.Name, "report", reportPath)
		if err := junit.WriteFile(reportPath, junit.WarningReport(suite)); err != nil {
			return domain.RunResult{}, err
		}
		return readResult(reportPath)
	}

	if err := os.MkdirAll(filepath.Dir(reportPath), 0755); err != nil {
		return domain.RunResult{}, fmt.Errorf("create report dir: %w", err)
	}
	if err := os.Remove(reportPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.RunResult{}, fmt.Errorf("remove stale report: %w", err)
	}

	env, err := f.config.Environ()
	if err != nil {
		return domain.RunResult{}, err
	}
	cmd := f.command(suite, reportPath)
	cmd.Env = env

	f.logger.Debug("Running phpunit", "cmd", cmd.Name, "args", strings.Join(cmd.Args, " "), "dir", cmd.Dir)
	output, code, err := f.commander.Run(ctx, cmd)
	if err != nil {
		return domain.RunResult{}, fmt.Errorf("run phpunit: %w", err)
	}
	f.logger.Debug("Phpunit finished", "exit", code, "output_bytes", len(output))

	if code < 0 || code > 2 {
		logPath, werr := writeFailureLog(reportPath, output)
		if werr != nil {
			return domain.RunResult{}, werr
		}
		return domain.RunResult{}, &ProcessError{ExitCode: code, LogPath: logPath}
	}

	result, err := readResult(reportPath)
	if errors.Is(err, os.ErrNotExist) {
		logPath, werr := writeFailureLog(reportPath, output)
		if werr != nil {
			return domain.RunResult{}, werr
		}
		return domain.RunResult{}, fmt.Errorf("%w: %s (output saved to %s)", ErrNoReport, reportPath, logPath)
	}
	if err != nil {
		return domain.RunResult{}, err
	}

	if result.Tests == 0 {
		if counts, ok := ParseConsoleCounts(output); ok && counts.Tests > 0 {
			f.logger.Debug("Report is empty, using console summary", "tests", counts.Tests)
			result = counts
		}
	}
	return result, nil
}

// Lint runs php -l on path
func (f *Framework) Lint(ctx context.Context, path string) error {
	cmd := Command{
		Name: f.phpBinary(),
		Args: []string{"-l", path},
		Dir:  f.config.ProjectPath,
	}
	output, code, err := f.commander.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("run php -l: %w", err)
	}
	if code != 0 {
		return &LintError{Path: path, Output: strings.TrimSpace(stripansi.Strip(string(output)))}
	}
	return nil
}

// command builds the PHPUnit invocation for the file declaring suite, filtered
// to the suite's class. PHPUnit is started through the php binary when an
// include_path has to be set or a binary is configured.
func (f *Framework) command(suite *domain.Suite, reportPath string) Command {
	var args []string
	name := f.config.GetPHPUnitPath()

	includePath := f.config.GetIncludePath()
	if includePath != "" || f.config.PHPBinary != "" {
		if includePath != "" {
			args = append(args, "-d", "include_path="+includePath)
		}
		args = append(args, name)
		name = f.phpBinary()
	}

	args = append(args, "--log-junit", reportPath)
	if b := f.config.GetBootstrapPath(); b != "" {
		args = append(args, "--bootstrap", b)
	}
	args = append(args, "--filter", classFilter(suite.Name), suite.SourcePath)

	return Command{Name: name, Args: args, Dir: f.config.ProjectPath}
}

// classFilter matches every test of class name, namespaced or not. PHPUnit
// matches --filter against "Class::method" and uses a delimited pattern as is.
func classFilter(name string) string {
	return `/\b` + name + `::/`
}

func (f *Framework) phpBinary() string {
	if f.config.PHPBinary != "" {
		return f.config.PHPBinary
	}
	return "php"
}

func readResult(reportPath string) (domain.RunResult, error) {
	report, err := junit.ParseFile(reportPath)
	if err != nil {
		return domain.RunResult{}, err
	}
	return report.Result(), nil
}

// writeFailureLog stores the console output next to the report as <name>.txt
func writeFailureLog(reportPath string, output []byte) (string, error) {
	logPath := strings.TrimSuffix(reportPath, filepath.Ext(reportPath)) + ".txt"
	if err := os.WriteFile(logPath, []byte(stripansi.Strip(string(output))), 0644); err != nil {
		return "", fmt.Errorf("write failure log: %w", err)
	}
	return logPath, nil
}
