package junit

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"pth/internal/domain"
)

// WarningType is the failure type PHPUnit uses for suite-level warnings
const WarningType = `PHPUnit\Framework\Warning`

// WarningReport builds the report of a warning-only suite: one failed "Warning" case
func WarningReport(suite *domain.Suite) *Testsuites {
	return &Testsuites{
		Suites: []Testsuite{{
			Name:     suite.Name,
			File:     suite.SourcePath,
			Tests:    1,
			Failures: 1,
			Time:     "0.000000",
			Cases: []Testcase{{
				Name:      "Warning",
				Class:     WarningType,
				ClassName: "PHPUnit.Framework.Warning",
				File:      suite.SourcePath,
				Time:      "0.000000",
				Failure: &Problem{
					Type:    WarningType,
					Message: suite.Warning,
				},
			}},
		}},
	}
}

// WriteFile writes r as an indented XML document to path
func WriteFile(path string, r *Testsuites) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report: %w", cerr)
		}
	}()

	if _, err := f.WriteString(xml.Header); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if _, err := f.WriteString("\n"); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
