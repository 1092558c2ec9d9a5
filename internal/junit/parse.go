package junit

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"pth/internal/domain"
)

// ParseFile reads the JUnit report at path
func ParseFile(path string) (*Testsuites, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes a JUnit report. A bare <testsuite> root is accepted as well.
func Parse(data []byte) (*Testsuites, error) {
	var r Testsuites
	err := xml.Unmarshal(data, &r)
	if err == nil {
		return &r, nil
	}
	var single Testsuite
	if xml.Unmarshal(data, &single) != nil {
		return nil, err
	}
	return &Testsuites{Suites: []Testsuite{single}}, nil
}

// Count totals the outcomes of every test case in the report. When the report
// holds no test cases at all, the top-level suite attributes are used instead.
func (r *Testsuites) Count() Counts {
	var c Counts
	r.walk(func(_ *Testsuite, tc *Testcase) {
		c.Tests++
		switch {
		case tc.Error != nil:
			c.Errors++
		case tc.Failure != nil:
			c.Failures++
		case tc.Skipped != nil:
			c.Skipped++
		}
	})
	if c.Tests > 0 {
		return c
	}
	for _, s := range r.Suites {
		c.Tests += s.Tests
		c.Failures += s.Failures
		c.Errors += s.Errors
		c.Skipped += s.Skipped
	}
	return c
}

// Result converts the report into a RunResult
func (r *Testsuites) Result() domain.RunResult {
	c := r.Count()
	return domain.NewRunResult(c.Tests, c.Failures, c.Errors, c.Skipped)
}

// Failures lists the failed and errored cases in report order
func (r *Testsuites) Failures(reportPath string) []domain.TestFailure {
	var out []domain.TestFailure
	r.walk(func(s *Testsuite, tc *Testcase) {
		p, kind := tc.Failure, domain.KindFailure
		if tc.Error != nil {
			p, kind = tc.Error, domain.KindError
		}
		if p == nil {
			return
		}
		class := tc.Class
		if class == "" {
			class = strings.ReplaceAll(tc.ClassName, ".", `\`)
		}
		if class == "" {
			class = s.Name
		}
		file := tc.File
		if file == "" {
			file = s.File
		}
		out = append(out, domain.TestFailure{
			TestName:   tc.Name,
			ClassName:  class,
			File:       file,
			Line:       tc.Line,
			Kind:       kind,
			Type:       p.Type,
			Message:    strings.TrimSpace(p.Message),
			ReportPath: reportPath,
		})
	})
	return out
}

func (r *Testsuites) walk(fn func(*Testsuite, *Testcase)) {
	var visit func(s *Testsuite)
	visit = func(s *Testsuite) {
		for i := range s.Cases {
			fn(s, &s.Cases[i])
		}
		for i := range s.Suites {
			visit(&s.Suites[i])
		}
	}
	for i := range r.Suites {
		visit(&r.Suites[i])
	}
}
