// Package harness runs one PHP test source end to end: load, select the
// test entity, resolve its suite, run it and map the result to an exit code.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"pth/internal/config"
	"pth/internal/discovery"
	"pth/internal/domain"
	"pth/internal/exitcode"
	"pth/internal/phpunit"
	"pth/internal/resolver"
	"pth/internal/skeleton"
)

// Stage names the step of an invocation that failed
type Stage string

const (
	StageLint    Stage = "lint"
	StageLoad    Stage = "load"
	StageSelect  Stage = "select"
	StageResolve Stage = "resolve"
	StageRun     Stage = "run"
)

// HarnessError is a failure of the harness itself, as opposed to failing tests.
// It always maps to exitcode.Exception.
type HarnessError struct {
	Stage Stage
	Err   error
}

func (e *HarnessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *HarnessError) Unwrap() error {
	return e.Err
}

// Outcome is the result of one invocation
type Outcome struct {
	Args   domain.InvocationArgs
	Suite  *domain.Suite
	Result domain.RunResult
	Code   exitcode.Code
}

// Harness executes test sources with PHPUnit
type Harness struct {
	config    *config.Config
	commander phpunit.Commander
	logger    *slog.Logger
}

// New creates a Harness. A nil commander runs real processes.
func New(cfg *config.Config, commander phpunit.Commander, logger *slog.Logger) *Harness {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if commander == nil {
		commander = phpunit.ExecCommander{}
	}
	return &Harness{config: cfg, commander: commander, logger: logger}
}

// Run executes the test entity of sourcePath and writes its JUnit report to
// reportPath. Each call starts from an empty class registry.
func (h *Harness) Run(ctx context.Context, sourcePath, reportPath string) (*Outcome, error) {
	loader := discovery.NewLoader(discovery.NewRegistry(), h.config.GetIncludePaths(), h.logger)
	framework := phpunit.NewFramework(h.config, loader, h.commander, h.logger)

	if h.config.Lint {
		if err := framework.Lint(ctx, sourcePath); err != nil {
			return nil, &HarnessError{Stage: StageLint, Err: err}
		}
	}

	if bootstrap := h.config.GetBootstrapPath(); bootstrap != "" {
		if _, err := loader.Load(bootstrap); err != nil {
			return nil, &HarnessError{Stage: StageLoad, Err: fmt.Errorf("bootstrap: %w", err)}
		}
	}
	unit, err := loader.Load(sourcePath)
	if err != nil {
		return nil, &HarnessError{Stage: StageLoad, Err: err}
	}

	entity, err := discovery.SelectEntity(loader.Registry().Entities())
	if err != nil {
		return nil, &HarnessError{Stage: StageSelect, Err: fmt.Errorf("%s: %w", sourcePath, err)}
	}

	absReport, err := filepath.Abs(reportPath)
	if err != nil {
		return nil, &HarnessError{Stage: StageRun, Err: err}
	}
	args := domain.InvocationArgs{
		TestEntity: entity,
		SourcePath: unit.Path,
		ReportPath: absReport,
	}
	h.logger.Debug("Selected test entity", "entity", args.TestEntity, "source", args.SourcePath)

	workDir, err := os.MkdirTemp("", "pth-skeleton-*")
	if err != nil {
		return nil, &HarnessError{Stage: StageResolve, Err: fmt.Errorf("create work dir: %w", err)}
	}
	defer os.RemoveAll(workDir)

	generator := skeleton.NewGenerator(h.config.SkeletonBaseClass, h.logger)
	suite, err := resolver.New(framework, generator, workDir, h.logger).Resolve(ctx, args.TestEntity, args.SourcePath)
	if err != nil {
		return nil, &HarnessError{Stage: StageResolve, Err: err}
	}

	result, err := framework.Run(ctx, suite, args.ReportPath)
	if err != nil {
		return nil, &HarnessError{Stage: StageRun, Err: err}
	}

	code := exitcode.FromResult(result)
	h.logger.Debug("Suite finished", "suite", suite.Name, "tests", result.Tests,
		"failed", result.Failed, "errored", result.Errored, "exit", code)
	return &Outcome{Args: args, Suite: suite, Result: result, Code: code}, nil
}
