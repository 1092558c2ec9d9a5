// Package skeleton renders PHPUnit test classes for classes that have none.
//
// Test methods are derived from @assert annotations in the docblocks of the
// class's public methods, e.g.
//
//	/**
//	 * @assert (1, 2) == 3
//	 */
//	public function add($a, $b)
//
// becomes testAdd() asserting assertEquals(3, $this->object->add(1, 2)).
// Methods without usable annotations get an incomplete placeholder body and
// mark the whole skeleton incomplete.
package skeleton

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"pth/internal/discovery"
	"pth/internal/domain"
)

// Mode selects how much of the skeleton is rendered
type Mode int

const (
	// Full renders a complete PHP file: open tag, require of the source, class and methods.
	Full Mode = iota
	// Partial renders only the test methods.
	Partial
)

// Generator synthesizes test classes
type Generator struct {
	baseClass string
	logger    *slog.Logger
}

// NewGenerator creates a Generator whose test classes extend baseClass
func NewGenerator(baseClass string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Generator{baseClass: baseClass, logger: logger}
}

type testMethod struct {
	Name       string
	Method     string
	Annotation string
	Body       string
}

type templateData struct {
	SourcePath  string
	ClassName   string
	TestClass   string
	BaseClass   string
	NeedsObject bool
	Tests       []testMethod
}

// Generate renders a test class named entity+"Test" for the class entity
// declared in sourcePath. The outcome is incomplete when any generated test
// is only a placeholder, or when there is nothing to generate.
func (g *Generator) Generate(entity, sourcePath string, mode Mode) (domain.SkeletonOutcome, error) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return domain.SkeletonOutcome{}, fmt.Errorf("resolve %s: %w", sourcePath, err)
	}
	src, err := os.ReadFile(abs)
	if err != nil {
		return domain.SkeletonOutcome{}, fmt.Errorf("read source %s: %w", sourcePath, err)
	}
	unit, err := discovery.ParseSource(abs, src)
	if err != nil {
		return domain.SkeletonOutcome{}, err
	}

	var class *domain.Entity
	for _, e := range unit.Entities {
		if strings.EqualFold(e.Name, entity) {
			class = e
		}
	}
	if class == nil {
		return domain.SkeletonOutcome{}, fmt.Errorf("class %s is not declared in %s", entity, sourcePath)
	}

	data := templateData{
		SourcePath: abs,
		ClassName:  class.Name,
		TestClass:  class.Name + "Test",
		BaseClass:  g.baseClass,
	}
	incomplete := false
	used := make(map[string]bool)

	for _, m := range class.Methods {
		if !eligible(class, m) {
			continue
		}
		asserts := parseAssertions(m.DocComment)
		if len(asserts) == 0 || (class.Abstract && !m.Static) {
			incomplete = true
			data.Tests = append(data.Tests, testMethod{
				Name:   uniqueName(used, m.Name),
				Method: m.Name,
				Body:   incompleteBody,
			})
			continue
		}
		for _, a := range asserts {
			call := "$this->object->" + m.Name + "(" + a.Args + ")"
			if m.Static {
				call = class.Name + "::" + m.Name + "(" + a.Args + ")"
			} else {
				data.NeedsObject = true
			}
			data.Tests = append(data.Tests, testMethod{
				Name:       uniqueName(used, m.Name),
				Method:     m.Name,
				Annotation: a.Raw,
				Body:       a.body(call),
			})
		}
	}

	if len(data.Tests) == 0 {
		incomplete = true
	}

	var buf bytes.Buffer
	name := "file"
	if mode == Partial {
		name = "methods"
	}
	if err := skeletonTemplate.ExecuteTemplate(&buf, name, data); err != nil {
		return domain.SkeletonOutcome{}, fmt.Errorf("render skeleton for %s: %w", class.Name, err)
	}

	g.logger.Debug("Generated skeleton", "class", class.Name, "tests", len(data.Tests), "incomplete", incomplete)
	return domain.SkeletonOutcome{GeneratedCode: buf.String(), Incomplete: incomplete}, nil
}

// eligible reports whether a method gets a generated test: public, concrete,
// declared here, and neither a constructor nor another magic method
func eligible(class *domain.Entity, m domain.Method) bool {
	if !m.IsPublic() || m.Abstract {
		return false
	}
	if strings.HasPrefix(m.Name, "__") || strings.EqualFold(m.Name, class.Name) {
		return false
	}
	return true
}

// uniqueName returns test<Method>, numbered from 2 on repeats
func uniqueName(used map[string]bool, method string) string {
	base := "test" + method
	if first, size := utf8.DecodeRuneInString(method); first != utf8.RuneError {
		base = "test" + string(unicode.ToUpper(first)) + method[size:]
	}
	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		name = base + strconv.Itoa(i)
	}
	used[strings.ToLower(name)] = true
	return name
}
