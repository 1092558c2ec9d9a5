package domain

import "fmt"

// Suite is the executable collection of test cases resolved from an entity name
type Suite struct {
	Name       string   // Entity the suite was built from
	SourcePath string   // File handed to PHPUnit
	Cases      []string // Test method names in run order
	Warning    string   // Non-empty for the terminal warning-only suite
}

// IsWarning reports whether the suite has no runnable cases and only carries a warning
func (s *Suite) IsWarning() bool {
	return s.Warning != ""
}

// NewWarningSuite returns the suite used when an entity has no tests and no skeleton could be generated
func NewWarningSuite(entity, sourcePath string) *Suite {
	return &Suite{
		Name:       entity,
		SourcePath: sourcePath,
		Warning:    fmt.Sprintf("No tests found in class %q.", entity),
	}
}

// EmptyEntityError is returned by suite construction when an entity defines no test cases
type EmptyEntityError struct {
	Entity string
	File   string // Source file declaring the entity
}

func (e *EmptyEntityError) Error() string {
	return fmt.Sprintf("no tests found in class %q", e.Entity)
}

// SkeletonOutcome is the output of skeleton generation
type SkeletonOutcome struct {
	GeneratedCode string
	Incomplete    bool // True when no usable test code could be produced
}
