package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pth/internal/config"
	"pth/internal/discovery"
	"pth/internal/domain"
	"pth/internal/exitcode"
	"pth/internal/phpunit"
)

// scriptedPHPUnit writes a canned JUnit report chosen by the base name of the
// test file it is asked to run
type scriptedPHPUnit struct {
	reports map[string]string
	files   []string
}

func (s *scriptedPHPUnit) Run(_ context.Context, cmd phpunit.Command) ([]byte, int, error) {
	file := cmd.Args[len(cmd.Args)-1]
	s.files = append(s.files, file)

	var report string
	for i, a := range cmd.Args {
		if a == "--log-junit" {
			report = cmd.Args[i+1]
		}
	}
	content, ok := s.reports[filepath.Base(file)]
	if !ok {
		return []byte("Cannot open file"), 2, nil
	}
	if err := os.WriteFile(report, []byte(content), 0644); err != nil {
		return nil, -1, err
	}
	return nil, 1, nil
}

const (
	fooSource = `<?php
class FooTest extends \PHPUnit\Framework\TestCase
{
    public function testOne() { $this->assertTrue(true); }
    public function testTwo() { $this->assertSame(2, 1 + 1); }
}
`
	fooReport = `<testsuites><testsuite name="FooTest">
<testcase name="testOne"/><testcase name="testTwo"/>
</testsuite></testsuites>`

	barSource = `<?php
class BarTest extends \PHPUnit\Framework\TestCase
{
    public function testFails() { $this->fail(); }
    public function testErrors() { throw new RuntimeException('x'); }
}
`
	barReport = `<testsuites><testsuite name="BarTest">
<testcase name="testFails"><failure type="PHPUnit\Framework\AssertionFailedError">Failed</failure></testcase>
<testcase name="testErrors"><error type="RuntimeException">x</error></testcase>
</testsuite></testsuites>`

	erroredSource = `<?php
class QuxTest extends \PHPUnit\Framework\TestCase
{
    public function testErrors() { throw new LogicException('x'); }
}
`
	erroredReport = `<testsuites><testsuite name="QuxTest">
<testcase name="testErrors"><error type="LogicException">x</error></testcase>
</testsuite></testsuites>`

	latestSource = `<?php
class Latest
{
    /**
     * @assert (1, 2) == 3
     */
    public function add($a, $b) { return $a + $b; }
}
`
	latestReport = `<testsuites><testsuite name="LatestTest">
<testcase name="testAdd"/>
</testsuite></testsuites>`

	incompleteSource = `<?php
class Latest
{
    public function add($a, $b) { return $a + $b; }
}
`
)

func newHarness(t *testing.T, php *scriptedPHPUnit) (*Harness, string) {
	t.Helper()
	cfg := config.New()
	cfg.ProjectPath = t.TempDir()
	return New(cfg, php, nil), cfg.ProjectPath
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_Outcomes(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		source     string
		wantSuite  string
		wantResult domain.RunResult
		wantCode   exitcode.Code
	}{
		{
			name:       "passing suite",
			file:       "FooTest.php",
			source:     fooSource,
			wantSuite:  "FooTest",
			wantResult: domain.RunResult{Tests: 2, Passed: 2, Succeeded: true},
			wantCode:   exitcode.Success,
		},
		{
			name:       "failure and error",
			file:       "BarTest.php",
			source:     barSource,
			wantSuite:  "BarTest",
			wantResult: domain.RunResult{Tests: 2, Failed: 1, Errored: 1},
			wantCode:   exitcode.Exception,
		},
		{
			name:       "error only",
			file:       "QuxTest.php",
			source:     erroredSource,
			wantSuite:  "QuxTest",
			wantResult: domain.RunResult{Tests: 1, Errored: 1},
			wantCode:   exitcode.Exception,
		},
		{
			name:       "generated skeleton",
			file:       "Latest.php",
			source:     latestSource,
			wantSuite:  "LatestTest",
			wantResult: domain.RunResult{Tests: 1, Passed: 1, Succeeded: true},
			wantCode:   exitcode.Success,
		},
		{
			name:       "incomplete skeleton",
			file:       "Latest.php",
			source:     incompleteSource,
			wantSuite:  "Latest",
			wantResult: domain.RunResult{Tests: 1, Failed: 1},
			wantCode:   exitcode.Failure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			php := &scriptedPHPUnit{reports: map[string]string{
				"FooTest.php":    fooReport,
				"BarTest.php":    barReport,
				"QuxTest.php":    erroredReport,
				"LatestTest.php": latestReport,
			}}
			h, dir := newHarness(t, php)
			src := writeSource(t, dir, tt.file, tt.source)
			report := filepath.Join(dir, "reports", "out.xml")

			out, err := h.Run(context.Background(), src, report)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuite, out.Suite.Name)
			assert.Equal(t, tt.wantResult, out.Result)
			assert.Equal(t, tt.wantCode, out.Code)
			assert.Equal(t, src, out.Args.SourcePath)
			assert.Equal(t, report, out.Args.ReportPath)
			assert.FileExists(t, report)
		})
	}
}

func TestRun_FallbackSuite(t *testing.T) {
	php := &scriptedPHPUnit{reports: map[string]string{"LatestTest.php": latestReport}}
	h, dir := newHarness(t, php)
	src := writeSource(t, dir, "Latest.php", latestSource)

	out, err := h.Run(context.Background(), src, filepath.Join(dir, "Latest.xml"))
	require.NoError(t, err)

	assert.Equal(t, "Latest", out.Args.TestEntity)
	assert.Equal(t, []string{"testAdd"}, out.Suite.Cases)
	require.Len(t, php.files, 1)
	assert.Equal(t, "LatestTest.php", filepath.Base(php.files[0]))
	assert.NoFileExists(t, php.files[0], "skeleton work dir must be removed")
}

func TestRun_IncompleteSkeletonDoesNotRunPHPUnit(t *testing.T) {
	php := &scriptedPHPUnit{}
	h, dir := newHarness(t, php)
	src := writeSource(t, dir, "Latest.php", incompleteSource)
	report := filepath.Join(dir, "Latest.xml")

	out, err := h.Run(context.Background(), src, report)
	require.NoError(t, err)
	assert.True(t, out.Suite.IsWarning())
	assert.Empty(t, php.files)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "No tests found in class")
}

func TestRun_Idempotent(t *testing.T) {
	php := &scriptedPHPUnit{reports: map[string]string{"FooTest.php": fooReport}}
	h, dir := newHarness(t, php)
	src := writeSource(t, dir, "FooTest.php", fooSource)
	report := filepath.Join(dir, "FooTest.xml")

	first, err := h.Run(context.Background(), src, report)
	require.NoError(t, err)
	second, err := h.Run(context.Background(), src, report)
	require.NoError(t, err)

	assert.Equal(t, first.Result, second.Result)
	assert.Equal(t, first.Code, second.Code)
}

func TestRun_SelectsLastTestEntity(t *testing.T) {
	php := &scriptedPHPUnit{reports: map[string]string{"Both.php": fooReport}}
	h, dir := newHarness(t, php)
	writeSource(t, dir, "helper.php", "<?php\nabstract class BaseTest extends \\PHPUnit\\Framework\\TestCase {}\n")
	src := writeSource(t, dir, "Both.php", "<?php\nrequire_once __DIR__ . '/helper.php';\n"+fooSource[len("<?php\n"):])

	out, err := h.Run(context.Background(), src, filepath.Join(dir, "Both.xml"))
	require.NoError(t, err)
	assert.Equal(t, "FooTest", out.Args.TestEntity)
}

func TestRun_InheritedCases(t *testing.T) {
	php := &scriptedPHPUnit{reports: map[string]string{"FooTest.php": `<testsuites><testsuite name="FooTest">
<testcase name="testShared"/>
</testsuite></testsuites>`}}
	h, dir := newHarness(t, php)
	src := writeSource(t, dir, "FooTest.php", `<?php
abstract class SharedCases extends \PHPUnit\Framework\TestCase
{
    public function testShared() { $this->assertTrue(true); }
}
class FooTest extends SharedCases {}
`)

	out, err := h.Run(context.Background(), src, filepath.Join(dir, "FooTest.xml"))
	require.NoError(t, err)
	assert.False(t, out.Suite.IsWarning())
	assert.Equal(t, []string{"testShared"}, out.Suite.Cases)
	assert.Equal(t, domain.RunResult{Tests: 1, Passed: 1, Succeeded: true}, out.Result)
	assert.Equal(t, exitcode.Success, out.Code)
	assert.Equal(t, []string{src}, php.files)
}

func TestRun_SkeletonForIncludedClass(t *testing.T) {
	php := &scriptedPHPUnit{reports: map[string]string{"CalcTestTest.php": `<testsuites><testsuite name="CalcTestTest">
<testcase name="testAdd"/>
</testsuite></testsuites>`}}
	h, dir := newHarness(t, php)
	writeSource(t, dir, "calc.php", `<?php
class CalcTest
{
    /**
     * @assert (1, 2) == 3
     */
    public function add($a, $b) { return $a + $b; }
}
`)
	src := writeSource(t, dir, "run.php", "<?php\nrequire_once __DIR__ . '/calc.php';\n")

	out, err := h.Run(context.Background(), src, filepath.Join(dir, "run.xml"))
	require.NoError(t, err)
	assert.Equal(t, "CalcTest", out.Args.TestEntity)
	assert.Equal(t, "CalcTestTest", out.Suite.Name)
	assert.Equal(t, exitcode.Success, out.Code)
}

func TestRun_HarnessFailures(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		reports   map[string]string
		wantStage Stage
		wantIs    error
	}{
		{
			name:      "no test entity",
			source:    "<?php class Helper {}",
			wantStage: StageSelect,
			wantIs:    discovery.ErrNoTestEntity,
		},
		{
			name:      "parse error",
			source:    "class FooTest {}",
			wantStage: StageLoad,
		},
		{
			name:      "phpunit writes no report",
			source:    fooSource,
			reports:   map[string]string{},
			wantStage: StageRun,
			wantIs:    phpunit.ErrNoReport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, dir := newHarness(t, &scriptedPHPUnit{reports: tt.reports})
			src := writeSource(t, dir, "FooTest.php", tt.source)

			_, err := h.Run(context.Background(), src, filepath.Join(dir, "FooTest.xml"))
			var herr *HarnessError
			require.ErrorAs(t, err, &herr)
			assert.Equal(t, tt.wantStage, herr.Stage)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestRun_Lint(t *testing.T) {
	h, dir := newHarness(t, &scriptedPHPUnit{})
	h.config.Lint = true
	src := writeSource(t, dir, "FooTest.php", fooSource)

	_, err := h.Run(context.Background(), src, filepath.Join(dir, "FooTest.xml"))
	var herr *HarnessError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, StageLint, herr.Stage)
}
