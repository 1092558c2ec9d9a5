package config

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultTestPath is the default test path
	DefaultTestPath = "."
	// DefaultConfigFile is looked up in the working directory when no --config is given
	DefaultConfigFile = "pth.yaml"
	// DefaultPHPUnitPath is the PHPUnit binary relative to the project
	DefaultPHPUnitPath = "vendor/bin/phpunit"
	// DefaultReportDir is where scan writes one JUnit report per test file
	DefaultReportDir = "target/surefire-reports"
	// DefaultOutputJSONFile is the default scan summary file name
	DefaultOutputJSONFile = "pth-results.json"
	// DefaultOutputJSONDir is the default scan summary directory
	DefaultOutputJSONDir = "storage"
	// DefaultSkeletonBaseClass is the parent class of generated skeleton tests
	DefaultSkeletonBaseClass = `\PHPUnit\Framework\TestCase`
	// DefaultDatabaseName is used when neither config nor environment name a test database
	DefaultDatabaseName = "testing"
)

// DefaultPathsToIgnore are the default directories to ignore when scanning for tests
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"public",
	"storage",
	"bootstrap",
	"config",
	"database",
	"resources",
	"routes",
	"target",
}
