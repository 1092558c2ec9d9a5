package skeleton

import (
	"strings"
	"text/template"
)

var skeletonTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"phpString": phpString,
}).Parse(`<?php
require_once {{phpString .SourcePath}};

/**
 * Test class for {{.ClassName}}, generated from its @assert annotations.
 */
class {{.TestClass}} extends {{.BaseClass}}
{
{{- if .NeedsObject}}
    /**
     * @var {{.ClassName}}
     */
    protected $object;

    protected function setUp(): void
    {
        $this->object = new {{.ClassName}};
    }
{{end}}
{{- template "methods" .}}}
?>
`))

var _ = template.Must(skeletonTemplate.New("methods").Parse(`{{range .Tests}}
    /**
     * @covers {{$.ClassName}}::{{.Method}}
{{- if .Annotation}}
     * Generated from {{.Annotation}}
{{- end}}
     */
    public function {{.Name}}(): void
    {
{{.Body}}
    }
{{end}}`))

const incompleteBody = `        // Remove the following lines when you implement this test.
        $this->markTestIncomplete(
            'This test has not been implemented yet.'
        );`

// phpString quotes s as a single-quoted PHP string literal
func phpString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
