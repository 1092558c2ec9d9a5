package phpunit

import (
	"regexp"
	"strconv"

	"github.com/acarl005/stripansi"

	"pth/internal/domain"
)

var (
	okPattern         = regexp.MustCompile(`OK\s*\(\s*(\d+)\s+tests?`)
	testsPattern      = regexp.MustCompile(`Tests:\s*(\d+)`)
	failuresPattern   = regexp.MustCompile(`Failures:\s*(\d+)`)
	errorsPattern     = regexp.MustCompile(`Errors:\s*(\d+)`)
	skippedPattern    = regexp.MustCompile(`Skipped:\s*(\d+)`)
	incompletePattern = regexp.MustCompile(`Incomplete:\s*(\d+)`)
)

// ParseConsoleCounts extracts the test totals from PHPUnit's console summary,
// either "OK (N tests, ...)" or "Tests: N, Assertions: A, Failures: F, Errors: E".
// ok is false when the output carries no summary.
func ParseConsoleCounts(output []byte) (result domain.RunResult, ok bool) {
	text := stripansi.Strip(string(output))

	if m := okPattern.FindStringSubmatch(text); m != nil {
		return domain.NewRunResult(atoi(m[1]), 0, 0, 0), true
	}

	m := testsPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.RunResult{}, false
	}
	tests := atoi(m[1])
	failures := firstCount(failuresPattern, text)
	errs := firstCount(errorsPattern, text)
	skipped := firstCount(skippedPattern, text) + firstCount(incompletePattern, text)
	return domain.NewRunResult(tests, failures, errs, skipped), true
}

func firstCount(re *regexp.Regexp, text string) int {
	if m := re.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	return 0
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
