// Package cli implements the cobra-based CLI commands for vnlaunch.
//
// Each subcommand (launch, install, doctor) is defined in its own file
// within this package. This file defines the root command that serves as
// the parent for all subcommands and handles global flags.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/vnlaunch/internal/model"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	// When true, summaries use structured JSON for machine consumption.
	// When false (default), output uses human-readable banners.
	jsonOutput bool

	// verbose enables debug logging to stderr.
	verbose bool

	// configPath is the explicit configuration file path (--config).
	// Empty means "vnlaunch.yaml in the working directory, if present".
	configPath string
)

// logger is the package-wide structured logger. It defaults to disabled
// and is reconfigured in the root command's PersistentPreRun once the
// --verbose flag value is known.
var logger = zerolog.Nop()

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by
// subcommands (launch, install, doctor).
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vnlaunch",
		Short: "Bootstrap and launch the VeighNa trader",
		Long: `vnlaunch prepares an isolated Python environment for the VeighNa trading
platform and supervises its launch: it locates or creates the virtual
environment, installs any missing platform packages, applies host-specific
rendering hints, and runs the trader as a foreground process, reporting
its exit status.

The trader itself is treated as a black box — vnlaunch never parses its
output; it only propagates the exit code.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		// We handle error output ourselves for cleaner UX.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		// Version is displayed when --version flag is used.
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		// PersistentPreRun fires before any subcommand, once flags are
		// parsed. Logging is configured here so every subcommand gets
		// the same logger behavior.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging()
		},
	}

	// PersistentFlags are inherited by all subcommands.
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output summaries in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ./vnlaunch.yaml if present)")

	// Register subcommands. Each subcommand is defined in its own file
	// (launch.go, install.go, doctor.go) and returns a *cobra.Command.
	rootCmd.AddCommand(NewLaunchCommand())
	rootCmd.AddCommand(NewInstallCommand())
	rootCmd.AddCommand(NewDoctorCommand())

	return rootCmd
}

// configureLogging sets up the zerolog logger according to --verbose.
// Debug output goes to stderr so stdout stays reserved for command
// output (banners or JSON).
func configureLogging() {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger().Level(level)
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// Three error shapes reach this function:
//   - *model.ChildExitError: the trader ran and exited non-zero. The
//     failure banner was already printed by the launch command, so the
//     child's own exit code is propagated silently.
//   - *model.CLIError: a pipeline stage failed. Its message is printed
//     and its stage-specific exit code used.
//   - anything else: printed and mapped to the general error code.
func Execute(rootCmd *cobra.Command) {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	// Child failures were already reported by the launch command, so
	// they exit silently; everything else prints first.
	var childErr *model.ChildExitError
	if !errors.As(err, &childErr) {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			printError(cliErr.Message, cliErr.Err)
		} else {
			printError(err.Error(), nil)
		}
	}

	os.Exit(exitCodeFor(err))
}

// exitCodeFor maps an error from the command layer to the launcher's
// process exit code. A ChildExitError carries the trader's own exit
// code, which becomes the launcher's code unchanged; a CLIError carries
// its stage-specific code; anything else is a general error.
func exitCodeFor(err error) int {
	var childErr *model.ChildExitError
	if errors.As(err, &childErr) {
		return childErr.Code
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return int(cliErr.Code)
	}

	return int(model.ExitGeneralError)
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		if underlying != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %s\n", message)
		}
	}
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// progressWriter returns the stream progress banners go to. In JSON
// mode stdout must carry exactly one JSON document, so progress moves
// to stderr; in text mode progress and results share stdout.
func progressWriter() io.Writer {
	if jsonOutput {
		return os.Stderr
	}
	return os.Stdout
}
