// Package junit reads and writes the JUnit XML reports produced by PHPUnit's --log-junit.
package junit

import (
	"encoding/xml"
)

// Testsuites is the root element PHPUnit writes.
type Testsuites struct {
	XMLName xml.Name    `xml:"testsuites"`
	Suites  []Testsuite `xml:"testsuite"`
}

// Testsuite is a test class, a data-provider group or the synthetic root suite.
type Testsuite struct {
	Name       string      `xml:"name,attr"`
	File       string      `xml:"file,attr,omitempty"`
	Tests      int         `xml:"tests,attr"`
	Assertions int         `xml:"assertions,attr"`
	Errors     int         `xml:"errors,attr"`
	Failures   int         `xml:"failures,attr"`
	Skipped    int         `xml:"skipped,attr"`
	Time       string      `xml:"time,attr"`
	Suites     []Testsuite `xml:"testsuite"`
	Cases      []Testcase  `xml:"testcase"`
}

// Testcase is one executed test method (or one data set of it).
type Testcase struct {
	Name       string   `xml:"name,attr"`
	Class      string   `xml:"class,attr,omitempty"`
	ClassName  string   `xml:"classname,attr,omitempty"`
	File       string   `xml:"file,attr,omitempty"`
	Line       int      `xml:"line,attr,omitempty"`
	Assertions int      `xml:"assertions,attr"`
	Time       string   `xml:"time,attr"`
	Failure    *Problem `xml:"failure"`
	Error      *Problem `xml:"error"`
	Skipped    *Skipped `xml:"skipped"`
	SystemOut  string   `xml:"system-out,omitempty"`
}

// Problem is a <failure> or <error> element.
type Problem struct {
	Type    string `xml:"type,attr,omitempty"`
	Message string `xml:",chardata"`
}

// Skipped marks skipped, incomplete and risky tests.
type Skipped struct{}

// Counts are the per-case outcome totals of a report.
type Counts struct {
	Tests    int
	Failures int
	Errors   int
	Skipped  int
}
