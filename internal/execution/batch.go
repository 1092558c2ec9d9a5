package execution

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"pth/internal/domain"
	"pth/internal/exitcode"
	"pth/internal/harness"
)

// Invoker runs one test source and writes its report
type Invoker interface {
	Run(ctx context.Context, sourcePath, reportPath string) (*harness.Outcome, error)
}

// Progress receives per-file progress updates
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}

// Batch runs test files one after another through the harness
type Batch struct {
	invoker   Invoker
	root      string
	reportDir string
	failFast  bool
	progress  Progress
	onResult  func(domain.FileResult)
	logger    *slog.Logger
}

var _ Executor = (*Batch)(nil)

// NewBatch creates a Batch writing one report per file under reportDir. Report
// names are derived from each file's path relative to root.
func NewBatch(invoker Invoker, root, reportDir string, failFast bool, logger *slog.Logger) *Batch {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Batch{
		invoker:   invoker,
		root:      root,
		reportDir: reportDir,
		failFast:  failFast,
		logger:    logger,
	}
}

// SetProgress sets the progress bar for the batch
func (b *Batch) SetProgress(p Progress) {
	b.progress = p
}

// OnResult registers a callback invoked after each file
func (b *Batch) OnResult(fn func(domain.FileResult)) {
	b.onResult = fn
}

// Execute runs files in order. With fail-fast enabled it stops after the
// first file that does not succeed. A cancelled context stops the batch and
// returns the partial summary together with the context error.
func (b *Batch) Execute(ctx context.Context, files []string) (*domain.ScanSummary, error) {
	summary := &domain.ScanSummary{
		Meta: domain.ScanSummaryMeta{RunID: uuid.New().String()},
	}
	start := time.Now()
	var passed, failed int
	var codes []exitcode.Code
	var runErr error

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		fr := b.runOne(ctx, file)
		summary.Files = append(summary.Files, fr)
		codes = append(codes, exitcode.Code(fr.ExitCode))

		meta := &summary.Meta
		meta.TotalFiles++
		meta.Tests += fr.Result.Tests
		meta.Failures += fr.Result.Failed
		meta.Errors += fr.Result.Errored
		meta.Skipped += fr.Result.Skipped
		if fr.Error != "" {
			meta.HarnessFailures++
		}

		passed += fr.Result.Passed
		failed += fr.Result.Failed + fr.Result.Errored
		if b.progress != nil {
			b.progress.Update(meta.TotalFiles, passed, failed)
		}
		if b.onResult != nil {
			b.onResult(fr)
		}

		if b.failFast && fr.ExitCode != int(exitcode.Success) {
			b.logger.Debug("Stopping after first failure", "file", file)
			break
		}
	}

	if b.progress != nil {
		b.progress.Finish()
	}

	duration := time.Since(start)
	summary.Meta.ExitCode = int(exitcode.Worst(codes...))
	summary.Meta.Duration = duration.String()
	summary.Meta.DurationSeconds = duration.Seconds()
	summary.Meta.Timestamp = start.Format(time.RFC3339)
	return summary, runErr
}

func (b *Batch) runOne(ctx context.Context, file string) domain.FileResult {
	report := ReportPath(b.reportDir, b.root, file)
	started := time.Now()

	fr := domain.FileResult{SourcePath: file, ReportPath: report}
	out, err := b.invoker.Run(ctx, file, report)
	fr.Duration = time.Since(started)
	if err != nil {
		b.logger.Debug("Harness failed", "file", file, "error", err)
		fr.Error = err.Error()
		fr.ExitCode = int(exitcode.Exception)
		return fr
	}

	fr.Entity = out.Suite.Name
	fr.Result = out.Result
	fr.ExitCode = int(out.Code)
	return fr
}

// ReportPath names the report of file: its path relative to root without the
// .php extension, directories joined with dots, e.g. Unit.UserTest.xml
func ReportPath(reportDir, root, file string) string {
	name := filepath.Base(file)
	if rel, err := filepath.Rel(root, file); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
		name = rel
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(filepath.ToSlash(name), "/", ".")
	return filepath.Join(reportDir, name+".xml")
}
