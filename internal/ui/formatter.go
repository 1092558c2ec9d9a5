package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"pth/internal/domain"
	"pth/internal/exitcode"
	"pth/internal/harness"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	cyan   = color.New(color.FgCyan)
)

// Formatter formats and displays output
type Formatter struct {
	out         io.Writer
	projectPath string
}

// NewFormatter creates a Formatter writing to out. Paths are shown relative to projectPath.
func NewFormatter(out io.Writer, projectPath string) *Formatter {
	return &Formatter{out: out, projectPath: projectPath}
}

// PrintOutcome prints the result of a single harness invocation
func (f *Formatter) PrintOutcome(o *harness.Outcome, elapsed time.Duration) {
	fmt.Fprintf(f.out, "Running %s\n", o.Suite.Name)
	if o.Suite.IsWarning() {
		yellow.Fprintf(f.out, "Warning: %s\n", o.Suite.Warning)
	}
	f.printCounts(o.Result, int(o.Code), elapsed)
	fmt.Fprintf(f.out, "Report: %s\n", f.rel(o.Args.ReportPath))
}

// PrintFileResult prints one file of a scan in surefire style
func (f *Formatter) PrintFileResult(fr domain.FileResult) {
	name := fr.Entity
	if name == "" {
		name = f.rel(fr.SourcePath)
	}
	fmt.Fprintf(f.out, "Running %s\n", name)
	if fr.Error != "" {
		red.Fprintf(f.out, "Harness failure: %s\n", fr.Error)
		return
	}
	f.printCounts(fr.Result, fr.ExitCode, fr.Duration)
}

func (f *Formatter) printCounts(r domain.RunResult, code int, elapsed time.Duration) {
	line := fmt.Sprintf("Tests run: %d, Failures: %d, Errors: %d, Skipped: %d, Time elapsed: %.3f sec",
		r.Tests, r.Failed, r.Errored, r.Skipped, elapsed.Seconds())
	switch exitcode.Code(code) {
	case exitcode.Success:
		green.Fprintln(f.out, line)
	case exitcode.Failure:
		yellow.Fprintln(f.out, line+" <<< FAILURE!")
	default:
		red.Fprintln(f.out, line+" <<< ERROR!")
	}
}

// PrintScanSummary renders the per-file results table with totals
func (f *Formatter) PrintScanSummary(s *domain.ScanSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Test Results (%s)", s.Meta.Duration))

	t.AppendHeader(table.Row{"File", "Suite", "Tests", "Passed", "Failures", "Errors", "Skipped", "Result"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "File", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failures", Align: text.AlignRight},
		{Name: "Errors", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
	})

	passed := 0
	for _, fr := range s.Files {
		result := exitcode.Code(fr.ExitCode).String()
		if fr.Error != "" {
			result = "HARNESS"
		}
		passed += fr.Result.Passed
		t.AppendRow(table.Row{
			f.rel(fr.SourcePath),
			fr.Entity,
			fr.Result.Tests,
			fr.Result.Passed,
			fr.Result.Failed,
			fr.Result.Errored,
			fr.Result.Skipped,
			result,
		})
	}

	code := exitcode.Code(s.Meta.ExitCode)
	if !color.NoColor {
		switch code {
		case exitcode.Success:
			t.SetStyle(table.StyleColoredBlackOnGreenWhite)
		case exitcode.Failure:
			t.SetStyle(table.StyleColoredBlackOnYellowWhite)
		default:
			t.SetStyle(table.StyleColoredBlackOnRedWhite)
		}
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d files", s.Meta.TotalFiles),
		s.Meta.Tests,
		passed,
		s.Meta.Failures,
		s.Meta.Errors,
		s.Meta.Skipped,
		code.String(),
	})
	t.Render()

	fmt.Fprintln(f.out)
	if code == exitcode.Success {
		green.Fprintln(f.out, "✓ All tests passed!")
		return
	}
	red.Fprintf(f.out, "✗ %d failure(s), %d error(s), %d harness failure(s)\n",
		s.Meta.Failures, s.Meta.Errors, s.Meta.HarnessFailures)
}

// PrintEntities prints the classes loaded from source with their test cases,
// marking the selected test entity
func (f *Formatter) PrintEntities(source string, entities []*domain.Entity, selected string) {
	green.Fprintf(f.out, "Found %d class(es) loading %s:\n\n", len(entities), f.rel(source))

	for i, e := range entities {
		isLastEntity := i == len(entities)-1
		branch, indent := "├── ", "│   "
		if isLastEntity {
			branch, indent = "└── ", "    "
		}

		marker := ""
		if e.Name == selected {
			marker = " " + green.Sprint("[selected]")
		}
		cyan.Fprintf(f.out, "%s%s", branch, e.Name)
		fmt.Fprintf(f.out, " (%s:%d)%s\n", f.rel(e.File), e.Line, marker)

		if len(e.Cases) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint("(no test cases found)"))
			continue
		}
		for j, c := range e.Cases {
			caseBranch := "├── "
			if j == len(e.Cases)-1 {
				caseBranch = "└── "
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, caseBranch, yellow.Sprint(c))
		}
	}
}

// PrintSkeleton prints generated test code and whether it is complete
func (f *Formatter) PrintSkeleton(entity string, outcome domain.SkeletonOutcome) {
	fmt.Fprint(f.out, outcome.GeneratedCode)
	if !strings.HasSuffix(outcome.GeneratedCode, "\n") {
		fmt.Fprintln(f.out)
	}
	if outcome.Incomplete {
		yellow.Fprintf(f.out, "Skeleton for %s is incomplete: add @assert annotations to its public methods.\n", entity)
		return
	}
	green.Fprintf(f.out, "Skeleton for %s is complete.\n", entity)
}

// PrintFailures lists failed and errored test cases as plain text
func (f *Formatter) PrintFailures(failures []domain.TestFailure) {
	if len(failures) == 0 {
		green.Fprintln(f.out, "✓ No test failures found!")
		return
	}
	for i, tf := range failures {
		label := "FAIL"
		if tf.Kind == domain.KindError {
			label = "ERROR"
		}
		red.Fprintf(f.out, "%d) [%s] %s::%s\n", i+1, label, tf.ClassName, tf.TestName)
		if tf.File != "" {
			location := f.rel(tf.File)
			if tf.Line > 0 {
				location = fmt.Sprintf("%s:%d", location, tf.Line)
			}
			cyan.Fprintf(f.out, "   %s\n", location)
		}
		if tf.Type != "" {
			fmt.Fprintf(f.out, "   %s\n", tf.Type)
		}
		for _, line := range strings.Split(tf.Message, "\n") {
			fmt.Fprintf(f.out, "   %s\n", line)
		}
		fmt.Fprintln(f.out)
	}
}

func (f *Formatter) rel(path string) string {
	if f.projectPath == "" || path == "" {
		return path
	}
	base, err := filepath.Abs(f.projectPath)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
