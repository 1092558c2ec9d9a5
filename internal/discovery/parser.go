package discovery

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"pth/internal/domain"
)

// ParseError reports a source unit that cannot be loaded
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Unit is one loaded PHP source file
type Unit struct {
	Path     string
	Entities []*domain.Entity
	Includes []Include
}

// Include is a require/include statement with a literal target
type Include struct {
	Target string // Literal path as written
	RelDir bool   // Target was written relative to __DIR__ or dirname(__FILE__)
	Line   int
}

var (
	classPattern    = regexp.MustCompile(`(?i)\b((?:(?:abstract|final|readonly)\s+)*)class\s+([A-Za-z_\x80-\xff][\w\x80-\xff]*)`)
	extendsPattern  = regexp.MustCompile(`(?i)^\s*extends\s+(\\?[A-Za-z_][\w\\]*)`)
	functionPattern = regexp.MustCompile(`(?i)\bfunction\s+&?\s*([A-Za-z_\x80-\xff][\w\x80-\xff]*)\s*\(`)
	includePattern  = regexp.MustCompile(`(?i)\b(?:require_once|require|include_once|include)\b\s*\(?\s*((?:__DIR__|dirname\s*\(\s*__FILE__\s*\))\s*\.\s*)?(['"])`)
	testAnnotation  = regexp.MustCompile(`@test\b`)
)

var modifiers = map[string]bool{
	"public":    true,
	"protected": true,
	"private":   true,
	"static":    true,
	"abstract":  true,
	"final":     true,
	"readonly":  true,
}

// ParseSource extracts the classes, their methods and test cases, and the
// literal includes of a PHP source file
func ParseSource(path string, src []byte) (*Unit, error) {
	m, err := mask(src)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := m.checkBalance(); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	unit := &Unit{Path: path}

	for _, loc := range classPattern.FindAllSubmatchIndex(m.code, -1) {
		if skipClassKeyword(m.code, loc[0]) {
			continue
		}
		entity, err := m.parseClass(path, loc)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		unit.Entities = append(unit.Entities, entity)
	}

	for _, loc := range includePattern.FindAllSubmatchIndex(m.code, -1) {
		quote := loc[4]
		end, err := skipQuoted(src, quote)
		if err != nil {
			continue
		}
		target := string(src[quote+1 : end-1])
		if src[quote] == '"' && strings.ContainsAny(target, "$\\") {
			// Interpolated paths are only known at run time.
			continue
		}
		unit.Includes = append(unit.Includes, Include{
			Target: target,
			RelDir: loc[2] >= 0,
			Line:   lineAt(src, loc[0]),
		})
	}

	return unit, nil
}

// skipClassKeyword filters out "$class", "Foo::class" and "new class" which are not declarations
func skipClassKeyword(code []byte, at int) bool {
	if at > 0 && code[at-1] == '$' {
		return true
	}
	k := at
	for k > 0 && isSpace(code[k-1]) {
		k--
	}
	if k >= 2 && code[k-1] == ':' && code[k-2] == ':' {
		return true
	}
	if k >= 2 && code[k-1] == '>' && code[k-2] == '-' {
		return true
	}
	return k >= 3 && strings.EqualFold(string(code[k-3:k]), "new") && (k == 3 || !isIdentByte(code[k-4]))
}

func (m *masked) parseClass(path string, loc []int) (*domain.Entity, error) {
	name := string(m.code[loc[4]:loc[5]])
	entity := &domain.Entity{
		Name:     name,
		Abstract: strings.Contains(strings.ToLower(string(m.code[loc[2]:loc[3]])), "abstract"),
		File:     path,
		Line:     lineAt(m.src, loc[0]),
	}

	rest := m.code[loc[5]:]
	if ext := extendsPattern.FindSubmatch(rest); ext != nil {
		entity.Extends = string(ext[1])
	}

	open := -1
	for k := loc[5]; k < len(m.code); k++ {
		if m.code[k] == '{' {
			open = k
			break
		}
		if m.code[k] == ';' {
			break
		}
	}
	if open < 0 {
		return nil, fmt.Errorf("class %s at line %d has no body", name, entity.Line)
	}
	closing, ok := m.matchBrace(open)
	if !ok {
		return nil, fmt.Errorf("class %s at line %d is not closed", name, entity.Line)
	}

	entity.Methods = m.parseMethods(open, closing)
	for _, method := range entity.Methods {
		if isTestMethod(method) {
			entity.Cases = append(entity.Cases, method.Name)
		}
	}
	return entity, nil
}

// parseMethods finds the methods declared directly inside the class body (open, closing)
func (m *masked) parseMethods(open, closing int) []domain.Method {
	body := m.code[open+1 : closing]

	depth := make([]int, len(body))
	d := 0
	for k, c := range body {
		depth[k] = d
		switch c {
		case '{':
			d++
		case '}':
			d--
		}
	}

	var methods []domain.Method
	for _, loc := range functionPattern.FindAllSubmatchIndex(body, -1) {
		if depth[loc[0]] != 0 {
			continue
		}
		start := open + 1 + loc[0]
		method := domain.Method{
			Name: string(body[loc[2]:loc[3]]),
			Line: lineAt(m.src, start),
		}
		declStart := m.readModifiers(start, &method)
		method.DocComment = m.docBefore(declStart)
		methods = append(methods, method)
	}
	return methods
}

// readModifiers walks backwards from the function keyword over modifiers and
// attributes, filling them into method, and returns where the declaration starts
func (m *masked) readModifiers(at int, method *domain.Method) int {
	k := at
	for {
		j := k
		for j > 0 && isSpace(m.code[j-1]) {
			j--
		}
		if j == 0 {
			return k
		}

		if m.code[j-1] == ']' {
			open := m.attributeStart(j - 1)
			if open < 0 {
				return k
			}
			method.Attributes = append(parseAttributes(string(m.src[open+2:j-1])), method.Attributes...)
			k = open
			continue
		}

		w := j
		for w > 0 && isIdentByte(m.code[w-1]) {
			w--
		}
		word := strings.ToLower(string(m.code[w:j]))
		if !modifiers[word] {
			return k
		}
		switch word {
		case "public", "protected", "private":
			method.Visibility = word
		case "static":
			method.Static = true
		case "abstract":
			method.Abstract = true
		}
		k = w
	}
}

// attributeStart returns the offset of the "#[" opening the attribute ending at closing
func (m *masked) attributeStart(closing int) int {
	depth := 0
	for k := closing; k > 0; k-- {
		switch m.code[k] {
		case ']':
			depth++
		case '[':
			depth--
			if depth == 0 {
				if m.code[k-1] == '#' {
					return k - 1
				}
				return -1
			}
		}
	}
	return -1
}

// docBefore returns the docblock that ends right before offset, if any
func (m *masked) docBefore(offset int) string {
	for i := len(m.docs) - 1; i >= 0; i-- {
		doc := m.docs[i]
		if doc.end > offset {
			continue
		}
		if strings.TrimSpace(string(m.code[doc.end:offset])) != "" {
			return ""
		}
		return string(m.src[doc.start:doc.end])
	}
	return ""
}

// parseAttributes returns the short names of the attributes in one #[...] group
func parseAttributes(group string) []string {
	var names []string
	depth := 0
	start := 0
	flush := func(part string) {
		part = strings.TrimSpace(part)
		if i := strings.IndexByte(part, '('); i >= 0 {
			part = part[:i]
		}
		part = strings.TrimSpace(part)
		if i := strings.LastIndexByte(part, '\\'); i >= 0 {
			part = part[i+1:]
		}
		if part != "" {
			names = append(names, part)
		}
	}
	for i := 0; i < len(group); i++ {
		switch group[i] {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case ',':
			if depth == 0 {
				flush(group[start:i])
				start = i + 1
			}
		}
	}
	flush(group[start:])
	return names
}

// isTestMethod applies PHPUnit's rules: public, concrete, and either named
// test* or marked with @test / #[Test]
func isTestMethod(method domain.Method) bool {
	if !method.IsPublic() || method.Abstract {
		return false
	}
	if strings.HasPrefix(method.Name, "test") {
		return true
	}
	if testAnnotation.MatchString(method.DocComment) {
		return true
	}
	for _, attr := range method.Attributes {
		if attr == "Test" {
			return true
		}
	}
	return false
}

// resolveInclude maps an include target to a file path, or "" when it cannot be resolved
func resolveInclude(inc Include, fromDir string, includePaths []string, exists func(string) bool) string {
	if inc.RelDir {
		p := filepath.Join(fromDir, inc.Target)
		if exists(p) {
			return p
		}
		return ""
	}
	if filepath.IsAbs(inc.Target) {
		if exists(inc.Target) {
			return inc.Target
		}
		return ""
	}
	candidates := append([]string{fromDir}, includePaths...)
	for _, dir := range candidates {
		p := filepath.Join(dir, inc.Target)
		if exists(p) {
			return p
		}
	}
	return ""
}
