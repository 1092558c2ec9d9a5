package skeleton

import (
	"regexp"
	"strings"
)

// assertion is one "@assert (args) op expected" annotation
type assertion struct {
	Args     string
	Op       string
	Expected string
	Raw      string
}

var assertPattern = regexp.MustCompile(`^@assert\s+\((.*)\)\s*(===|!==|==|!=|<>|>=|<=|>|<|throws)\s+(.+?)\s*$`)

// assertMethods maps annotation operators to PHPUnit assertion methods
var assertMethods = map[string]string{
	"==":  "assertEquals",
	"!=":  "assertNotEquals",
	"<>":  "assertNotEquals",
	"===": "assertSame",
	"!==": "assertNotSame",
	">":   "assertGreaterThan",
	">=":  "assertGreaterThanOrEqual",
	"<":   "assertLessThan",
	"<=":  "assertLessThanOrEqual",
}

// parseAssertions extracts the @assert annotations of a docblock in order
func parseAssertions(doc string) []assertion {
	var out []assertion
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "/**")
		line = strings.TrimSuffix(line, "*/")
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		m := assertPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out = append(out, assertion{
			Args:     strings.TrimSpace(m[1]),
			Op:       m[2],
			Expected: m[3],
			Raw:      line,
		})
	}
	return out
}

// body renders the PHP statements checking a against call, indented for a method body
func (a assertion) body(call string) string {
	const indent = "        "
	if a.Op == "throws" {
		return indent + "$this->expectException(" + a.Expected + "::class);\n" +
			indent + call + ";"
	}
	return indent + "$this->" + assertMethods[a.Op] + "(\n" +
		indent + "    " + a.Expected + ",\n" +
		indent + "    " + call + "\n" +
		indent + ");"
}
