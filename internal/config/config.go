package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"project_path"`
	TestPath    string `yaml:"test_path"`

	// PHP toolchain
	PHPBinary    string   `yaml:"php"`
	PHPUnitPath  string   `yaml:"phpunit"`
	IncludePaths []string `yaml:"include_paths"`
	Bootstrap    string   `yaml:"bootstrap"`
	Lint         bool     `yaml:"lint"`

	// Base class for generated skeleton tests
	SkeletonBaseClass string `yaml:"skeleton_base_class"`

	// Output settings
	ReportDir      string `yaml:"report_dir"`
	OutputJSONFile string `yaml:"output_file"`
	OutputJSONDir  string `yaml:"output_dir"`

	// Paths to ignore when scanning
	PathsToIgnore []string `yaml:"paths_to_ignore"`

	// Extra environment for the PHPUnit process
	Env map[string]string `yaml:"env"`

	Database Database `yaml:"database"`

	// Command flags
	Flags Flags `yaml:"-"`
}

// Database holds the MySQL connection used to prepare the test database
type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Flags holds command-line flags
type Flags struct {
	ConfigFile string
	Verbose    bool
	TestPath   string
	NameFilter string
	ReportDir  string
	FailFast   bool
	PrepareDB  bool
	Plain      bool
	Partial    bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:       DefaultProjectPath,
		TestPath:          DefaultTestPath,
		PHPUnitPath:       DefaultPHPUnitPath,
		SkeletonBaseClass: DefaultSkeletonBaseClass,
		ReportDir:         DefaultReportDir,
		OutputJSONFile:    DefaultOutputJSONFile,
		OutputJSONDir:     DefaultOutputJSONDir,
		Env:               map[string]string{},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config from defaults, the YAML config file and flags
func Load(flags Flags) (*Config, error) {
	cfg := New()

	path := flags.ConfigFile
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.Flags = flags
	if flags.ReportDir != "" {
		cfg.ReportDir = flags.ReportDir
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if c.Env == nil {
		c.Env = map[string]string{}
	}
	return nil
}

// GetTestPath returns the test path, using flag if provided
func (c *Config) GetTestPath() string {
	if c.Flags.TestPath != "" {
		// If TestPath is provided, make it relative to the project path if it's not absolute
		if filepath.IsAbs(c.Flags.TestPath) {
			return c.Flags.TestPath
		}
		return filepath.Join(c.ProjectPath, c.Flags.TestPath)
	}

	return filepath.Join(c.ProjectPath, c.TestPath)
}

// GetOutputPath returns the absolute path of the scan summary file
func (c *Config) GetOutputPath() string {
	p := c.projectRelative(filepath.Join(c.OutputJSONDir, c.OutputJSONFile))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetReportDir returns the directory scan writes JUnit reports to
func (c *Config) GetReportDir() string {
	return c.projectRelative(c.ReportDir)
}

// GetPHPUnitPath returns the path to PHPUnit binary
func (c *Config) GetPHPUnitPath() string {
	return c.projectRelative(c.PHPUnitPath)
}

// GetBootstrapPath returns the bootstrap file, or "" when none is configured
func (c *Config) GetBootstrapPath() string {
	if c.Bootstrap == "" {
		return ""
	}
	return c.projectRelative(c.Bootstrap)
}

// GetIncludePaths returns the configured include paths resolved against the project
func (c *Config) GetIncludePaths() []string {
	paths := make([]string, 0, len(c.IncludePaths))
	for _, p := range c.IncludePaths {
		paths = append(paths, c.projectRelative(p))
	}
	return paths
}

// GetIncludePath returns the include_path value passed to php -d
func (c *Config) GetIncludePath() string {
	return strings.Join(c.GetIncludePaths(), string(os.PathListSeparator))
}

func (c *Config) projectRelative(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectPath, p)
}

// EnvMap returns the process environment merged with the project .env file
// and the configured env section. Existing variables win over .env values;
// the env section wins over both.
func (c *Config) EnvMap() (map[string]string, error) {
	env := make(map[string]string)

	dotenv, err := godotenv.Read(filepath.Join(c.ProjectPath, ".env"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	for k, v := range dotenv {
		env[k] = v
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	for k, v := range c.Env {
		env[k] = v
	}
	return env, nil
}

// Environ returns EnvMap as a sorted KEY=VALUE list suitable for exec.Cmd.Env
func (c *Config) Environ() ([]string, error) {
	env, err := c.EnvMap()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out, nil
}

// GetDatabase resolves the database settings, falling back to the Laravel-style
// DB_* variables and then to local defaults
func (c *Config) GetDatabase() (Database, error) {
	env, err := c.EnvMap()
	if err != nil {
		return Database{}, err
	}
	pick := func(configured, key, def string) string {
		if configured != "" {
			return configured
		}
		if v := env[key]; v != "" {
			return v
		}
		return def
	}
	return Database{
		Host:     pick(c.Database.Host, "DB_HOST", "127.0.0.1"),
		Port:     pick(c.Database.Port, "DB_PORT", "3306"),
		User:     pick(c.Database.User, "DB_USERNAME", "root"),
		Password: pick(c.Database.Password, "DB_PASSWORD", ""),
		Name:     pick(c.Database.Name, "DB_DATABASE", DefaultDatabaseName),
	}, nil
}
