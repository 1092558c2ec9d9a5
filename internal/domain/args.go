package domain

// InvocationArgs identifies one harness run. It is built once and passed by value.
type InvocationArgs struct {
	TestEntity string // Selected test entity (class) name
	SourcePath string // Test source unit that was loaded
	ReportPath string // Where the JUnit report is written
}
