package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pth/internal/cli"
	"pth/internal/cli/commands"
	"pth/internal/config"
	"pth/internal/exitcode"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Short:   "PHPUnit test harness",
		Long:    `Run the test class of a PHP source file with PHPUnit, generating a test class from @assert annotations when the class has no tests, and exit with PHPUnit's status codes.`,
		Version: version,
	}

	// Filled in after flags are parsed
	cfg := config.New()
	var flags cli.Flags

	cmds := commands.NewCommands(cfg, commands.Options{})
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
		}
		os.Exit(int(exitErr.Code))
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(int(exitcode.Exception))
}
