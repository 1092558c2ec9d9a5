// Package exitcode maps run outcomes to process exit statuses.
package exitcode

import "pth/internal/domain"

// Code is a process exit status
type Code int

// Values match PHPUnit's TestRunner exit constants.
const (
	Success   Code = 0 // every test passed
	Failure   Code = 1 // at least one failure and no errors
	Exception Code = 2 // at least one error, or the harness itself failed
)

func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Exception:
		return "EXCEPTION"
	default:
		return "UNKNOWN"
	}
}

// FromResult maps a run result. Errors take priority over failures.
func FromResult(r domain.RunResult) Code {
	switch {
	case r.Succeeded:
		return Success
	case r.Errored > 0:
		return Exception
	default:
		return Failure
	}
}

// Worst returns the most severe of codes, or Success when none are given
func Worst(codes ...Code) Code {
	worst := Success
	for _, c := range codes {
		if c > worst {
			worst = c
		}
	}
	return worst
}
