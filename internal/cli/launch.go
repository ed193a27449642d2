// Package cli — launch.go implements the "vnlaunch launch" command.
//
// Launch is the primary user-facing operation: the full pipeline from a
// bare checkout to a running trader. Control flows strictly forward
// through four stages with no backtracking:
//
//	LOCATING    → find, activate, or create the virtual environment
//	ADJUSTING   → compute host-specific environment overrides
//	RECONCILING → probe and install the required package set
//	LAUNCHING   → run the trader and propagate its exit code
//
// Failures in the first three stages terminate the run with a
// stage-specific exit code before the trader ever starts. Once the
// trader runs, its own exit code becomes the launcher's exit code.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/vnlaunch/internal/banner"
	"github.com/mmr-tortoise/vnlaunch/internal/config"
	"github.com/mmr-tortoise/vnlaunch/internal/execx"
	"github.com/mmr-tortoise/vnlaunch/internal/model"
	"github.com/mmr-tortoise/vnlaunch/internal/platform"
	"github.com/mmr-tortoise/vnlaunch/internal/pyenv"
	"github.com/mmr-tortoise/vnlaunch/internal/reconcile"
	"github.com/mmr-tortoise/vnlaunch/internal/settings"
	"github.com/mmr-tortoise/vnlaunch/internal/supervisor"
)

// launchFlags holds the flag values for the launch command.
type launchFlags struct {
	yes      bool   // --yes: answer yes to all confirmation prompts
	skipDeps bool   // --skip-deps: skip dependency reconciliation
	envDir   string // --env-dir: virtual environment path override
	appDir   string // --app-dir: application directory override
}

// NewLaunchCommand creates the "launch" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewLaunchCommand() *cobra.Command {
	flags := &launchFlags{}

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Bootstrap the environment and run the trader",
		Long: `Run the full pipeline: locate or create the virtual environment, apply
platform rendering hints, reconcile the required packages, and launch the
trader as a foreground process.

The trader inherits the terminal while it runs. vnlaunch's exit code
equals the trader's exit code; bootstrap failures use dedicated non-zero
codes (see vnlaunch launch --help for the full pipeline description).

Examples:
  vnlaunch launch
  vnlaunch launch --yes
  vnlaunch launch --env-dir ~/venvs/trader --app-dir ~/trader
  vnlaunch launch --skip-deps`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Assume yes for all prompts")
	cmd.Flags().BoolVar(&flags.skipDeps, "skip-deps", false, "Skip dependency reconciliation")
	cmd.Flags().StringVar(&flags.envDir, "env-dir", "", "Virtual environment directory (overrides config)")
	cmd.Flags().StringVar(&flags.appDir, "app-dir", "", "Application directory (overrides config)")

	return cmd
}

// runLaunch is the main orchestration function for the launch command.
func runLaunch(ctx context.Context, flags *launchFlags) error {
	cfg, err := loadConfig(flags.envDir, flags.appDir)
	if err != nil {
		return err
	}

	printer := banner.New(progressWriter())

	// Stage 1: locate (or create) the virtual environment.
	env, err := locateEnvironment(ctx, cfg, printer, flags.yes)
	if err != nil {
		return err
	}

	// Seed the trader's settings file on a fresh checkout. Failure here
	// is a warning, not a stage failure — the trader falls back to its
	// own built-in defaults.
	if path, created, seedErr := settings.EnsureDefaults(cfg.AppDir, runtime.GOOS); seedErr != nil {
		printer.Warn("could not seed trader settings: %v", seedErr)
	} else if created {
		printer.Info("Seeded default trader settings at %s", path)
	}

	// Stage 2: platform adjustment. Pure computation — cannot fail.
	overrides := platform.HostOverrides()
	for _, kv := range overrides {
		logger.Debug().Str("override", kv).Msg("platform adjustment")
	}

	// Stage 3: dependency reconciliation.
	report, err := reconcileRequirements(ctx, cfg, env, printer, flags)
	if err != nil {
		return err
	}

	// Stage 4: launch the trader and propagate its exit code.
	printer.Info("Launching trader from %s", cfg.AppDir)
	result, err := supervisor.Launch(supervisor.Options{
		Dir:         cfg.AppDir,
		Interpreter: env.Interpreter,
		Script:      cfg.EntryScript,
		ExtraEnv:    overrides,
	})
	if err != nil {
		return err
	}

	printLaunchResult(env, report, result, printer)

	if !result.Succeeded {
		return &model.ChildExitError{Code: result.ExitCode}
	}
	return nil
}

// loadConfig resolves the effective configuration: file (or defaults)
// plus command-line overrides.
func loadConfig(envDir, appDir string) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}
	if envDir != "" {
		cfg.EnvDir = envDir
	}
	if appDir != "" {
		cfg.AppDir = appDir
	}
	logger.Debug().
		Str("env_dir", cfg.EnvDir).
		Str("app_dir", cfg.AppDir).
		Int("requirements", len(cfg.Requirements)).
		Msg("configuration resolved")
	return cfg, nil
}

// locateEnvironment runs the environment locator with the interactive
// (or assume-yes) confirmer and reports the outcome to the operator.
func locateEnvironment(ctx context.Context, cfg *config.Config, printer *banner.Printer, assumeYes bool) (model.RuntimeEnvironment, error) {
	locator := pyenv.NewLocator(execx.NewCommandRunner(), newConfirmer(assumeYes))
	locator.Interpreters = cfg.Interpreters
	locator.Warn = printer.Warn
	locator.Info = printer.Info

	env, err := locator.Locate(ctx, cfg.EnvDir)
	if err != nil {
		return env, err
	}

	switch {
	case env.Active:
		printer.Info("Using active virtual environment at %s", env.Root)
	case env.Created:
		printer.Success("Created virtual environment at %s", env.Root)
	default:
		printer.Info("Using virtual environment at %s", env.Root)
	}
	logger.Debug().Str("interpreter", env.Interpreter).Msg("interpreter resolved")

	return env, nil
}

// newConfirmer picks the confirmation provider for this invocation.
func newConfirmer(assumeYes bool) pyenv.Confirmer {
	if assumeYes {
		return assumeYesConfirmer{}
	}
	return newStdinConfirmer(os.Stdin, os.Stdout)
}

// reconcileRequirements runs stage 3 and translates a fatal report into
// a stage error. A freshly created environment prompts before installing
// (unless --yes); declining skips reconciliation and proceeds degraded.
func reconcileRequirements(ctx context.Context, cfg *config.Config, env model.RuntimeEnvironment, printer *banner.Printer, flags *launchFlags) (model.Report, error) {
	var report model.Report

	if flags.skipDeps {
		printer.Warn("Skipping dependency reconciliation (--skip-deps)")
		return report, nil
	}

	if env.Created && !flags.yes {
		confirmed, err := newConfirmer(false).Confirm(
			fmt.Sprintf("Install the %d trader packages now?", len(cfg.Requirements)))
		if err != nil || !confirmed {
			printer.Warn("Skipping dependency reconciliation; the trader may fail to start")
			return report, nil
		}
	}

	reconciler := reconcile.NewReconciler(execx.NewCommandRunner())
	reconciler.Observe = func(result model.RequirementResult) {
		reportRequirement(result, printer)
	}

	report = reconciler.Reconcile(ctx, env.Interpreter, cfg.Requirements)

	if fatal := report.Fatal(); fatal != nil {
		return report, model.WrapCLIError(model.ExitDependencyInstallFailed,
			fmt.Sprintf("required package %s failed to install", fatal.Requirement.Name), fatal.Err)
	}
	return report, nil
}

// reportRequirement prints one reconciliation outcome as it happens.
func reportRequirement(result model.RequirementResult, printer *banner.Printer) {
	name := result.Requirement.Name
	switch result.Status {
	case model.StatusSatisfied:
		printer.Info("  %-24s already installed", name)
	case model.StatusInstalled:
		printer.Success("  %-24s installed", name)
	case model.StatusFailedOptional:
		printer.Warn("  %-24s failed to install (optional, continuing): %v", name, result.Err)
	case model.StatusFailedRequired:
		printer.Error("  %-24s failed to install (required): %v", name, result.Err)
	case model.StatusSkipped:
		logger.Debug().Str("package", name).Msg("skipped after required failure")
	}
}

// printLaunchResult outputs the terminal outcome in text or JSON format.
func printLaunchResult(env model.RuntimeEnvironment, report model.Report, result model.LaunchResult, printer *banner.Printer) {
	if IsJSONOutput() {
		printLaunchResultJSON(env, report, result)
		return
	}

	if result.Succeeded {
		printer.Success("Trader exited cleanly")
		return
	}
	printer.Error("Trader exited with status %d — check its output above for details", result.ExitCode)
}

// printLaunchResultJSON outputs the launch summary as structured JSON.
func printLaunchResultJSON(env model.RuntimeEnvironment, report model.Report, result model.LaunchResult) {
	type reconcileJSON struct {
		Satisfied int      `json:"satisfied"`
		Installed int      `json:"installed"`
		Warnings  []string `json:"warnings,omitempty"`
	}

	type resultJSON struct {
		Environment model.RuntimeEnvironment `json:"environment"`
		Reconcile   reconcileJSON            `json:"reconcile"`
		Launch      model.LaunchResult       `json:"launch"`
	}

	summary := resultJSON{
		Environment: env,
		Reconcile: reconcileJSON{
			Satisfied: report.Satisfied(),
			Installed: report.Installed(),
		},
		Launch: result,
	}
	for _, warning := range report.Warnings() {
		summary.Reconcile.Warnings = append(summary.Reconcile.Warnings, warning.Requirement.Name)
	}

	data, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(data))
}
