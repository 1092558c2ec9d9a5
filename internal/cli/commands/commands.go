package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/config"
	"pth/internal/discovery"
	"pth/internal/logging"
	"pth/internal/phpunit"
	"pth/internal/ui"
)

// Options holds the dependencies shared by all commands. Zero values select
// the real process runner, the TUI viewer and the standard streams.
type Options struct {
	Commander phpunit.Commander
	Viewer    ui.Viewer
	Stdout    io.Writer
	Stderr    io.Writer
}

func (o Options) withDefaults() Options {
	if o.Commander == nil {
		o.Commander = phpunit.ExecCommander{}
	}
	if o.Viewer == nil {
		o.Viewer = ui.NewErrorViewer()
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	return o
}

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Skeleton *SkeletonCommand
	Scan     *ScanCommand
	View     *ViewCommand
	DB       *DBCommand
}

// NewCommands creates all commands with dependencies. cfg is filled in when
// the root command's flags have been parsed.
func NewCommands(cfg *config.Config, opts Options) *Commands {
	opts = opts.withDefaults()
	return &Commands{
		Run:      NewRunCommand(cfg, opts.Commander, opts.Stdout, opts.Stderr),
		List:     NewListCommand(cfg, opts.Stdout, opts.Stderr),
		Skeleton: NewSkeletonCommand(cfg, opts.Stdout, opts.Stderr),
		Scan:     NewScanCommand(cfg, opts.Commander, opts.Stdout, opts.Stderr),
		View:     NewViewCommand(cfg, opts.Viewer, opts.Stdout, opts.Stderr),
		DB:       NewDBCommand(cfg, opts.Stdout, opts.Stderr),
	}
}

// Register wires the commands into rootCmd. The root command itself runs a
// single test source.
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.Use = "pth <source> <report>"
	rootCmd.Args = cobra.ExactArgs(2)
	rootCmd.RunE = c.Run.Execute
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(flags.ToConfigFlags())
		if err != nil {
			return cli.Fail(err)
		}
		*cfg = *loaded
		return nil
	}
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Path to the YAML config file (default pth.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log what the harness is doing to stderr")

	listCmd := &cobra.Command{
		Use:   "list <source>",
		Short: "List the classes and test cases of a test source",
		Long:  "Load a PHP test source with its includes and show every class, its test cases and the selected test entity",
		Args:  cobra.ExactArgs(1),
		RunE:  c.List.Execute,
	}
	rootCmd.AddCommand(listCmd)

	skeletonCmd := &cobra.Command{
		Use:   "skeleton <source> [class]",
		Short: "Print a generated test class",
		Long:  "Generate a PHPUnit test class from the @assert annotations of a class (by default the last class declared in source)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  c.Skeleton.Execute,
	}
	skeletonCmd.Flags().BoolVar(&flags.Partial, "partial", false, "Print only the test methods")
	rootCmd.AddCommand(skeletonCmd)

	scanCmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Run every test source under a directory",
		Long:  "Discover *Test.php files and run them one after another, writing one JUnit report per file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.Scan.Execute,
	}
	scanCmd.Flags().StringVarP(&flags.TestPath, "test-path", "t", "", "Path to the folder where test detection should start")
	scanCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., '*UserTest.php' or '*Payment*')")
	scanCmd.Flags().StringVar(&flags.ReportDir, "report-dir", "", "Directory for JUnit reports (default target/surefire-reports)")
	scanCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop after the first test source that does not pass")
	scanCmd.Flags().BoolVar(&flags.PrepareDB, "prepare-db", false, "Create the test database before running")
	rootCmd.AddCommand(scanCmd)

	viewCmd := &cobra.Command{
		Use:   "view [report.xml]",
		Short: "View test failures",
		Long:  "Browse the failed and errored test cases of a JUnit report, or of every report written by the last scan",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.View.Execute,
	}
	viewCmd.Flags().BoolVar(&flags.Plain, "plain", false, "Print failures instead of opening the interactive viewer")
	rootCmd.AddCommand(viewCmd)

	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Create the test database if it does not exist",
		Args:  cobra.NoArgs,
		RunE:  c.DB.Execute,
	}
	rootCmd.AddCommand(dbCmd)
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return logging.New(w, cfg.Flags.Verbose)
}

// loadSource loads the bootstrap file (if any) and source into a fresh registry
func loadSource(cfg *config.Config, logger *slog.Logger, source string) (*discovery.Loader, *discovery.Unit, error) {
	loader := discovery.NewLoader(discovery.NewRegistry(), cfg.GetIncludePaths(), logger)
	if bootstrap := cfg.GetBootstrapPath(); bootstrap != "" {
		if _, err := loader.Load(bootstrap); err != nil {
			return nil, nil, err
		}
	}
	unit, err := loader.Load(source)
	if err != nil {
		return nil, nil, err
	}
	return loader, unit, nil
}
