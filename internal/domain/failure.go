package domain

// FailureKind distinguishes assertion failures from unexpected errors
type FailureKind string

const (
	KindFailure FailureKind = "failure"
	KindError   FailureKind = "error"
)

// TestFailure represents a failed or errored test case read from a report
type TestFailure struct {
	TestName   string      `json:"test_name"`
	ClassName  string      `json:"class_name"`
	File       string      `json:"file"`
	Line       int         `json:"line"`
	Kind       FailureKind `json:"kind"`
	Type       string      `json:"type"`
	Message    string      `json:"message"`
	ReportPath string      `json:"report_path"`
}
