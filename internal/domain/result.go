package domain

import "time"

// RunResult aggregates the outcome of running one suite.
// Build it with NewRunResult so Succeeded always agrees with the counts.
type RunResult struct {
	Tests     int  `json:"tests"`
	Passed    int  `json:"passed"`
	Failed    int  `json:"failed"`
	Errored   int  `json:"errored"`
	Skipped   int  `json:"skipped"`
	Succeeded bool `json:"succeeded"`
}

// NewRunResult derives passed cases and success from the raw PHPUnit counts
func NewRunResult(tests, failed, errored, skipped int) RunResult {
	passed := tests - failed - errored - skipped
	if passed < 0 {
		passed = 0
	}
	if tests < passed+failed+errored+skipped {
		tests = passed + failed + errored + skipped
	}
	return RunResult{
		Tests:     tests,
		Passed:    passed,
		Failed:    failed,
		Errored:   errored,
		Skipped:   skipped,
		Succeeded: failed == 0 && errored == 0,
	}
}

// FileResult is the outcome of one harness invocation inside a scan
type FileResult struct {
	SourcePath string        `json:"source_path"`
	ReportPath string        `json:"report_path"`
	Entity     string        `json:"entity,omitempty"`
	Result     RunResult     `json:"result"`
	ExitCode   int           `json:"exit_code"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// ScanSummaryMeta contains metadata about a scan run
type ScanSummaryMeta struct {
	RunID           string  `json:"run_id"`
	TotalFiles      int     `json:"total_files"`
	Tests           int     `json:"tests"`
	Failures        int     `json:"failures"`
	Errors          int     `json:"errors"`
	Skipped         int     `json:"skipped"`
	HarnessFailures int     `json:"harness_failures"`
	ExitCode        int     `json:"exit_code"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Timestamp       string  `json:"timestamp"`
}

// ScanSummary is the persisted output of a scan
type ScanSummary struct {
	Meta  ScanSummaryMeta `json:"meta"`
	Files []FileResult    `json:"files"`
}
