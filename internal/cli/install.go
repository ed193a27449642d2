// Package cli — install.go implements the "vnlaunch install" command.
//
// Install performs the bootstrap half of the pipeline without launching:
// locate or create the virtual environment, seed the trader settings,
// and reconcile the full package set. It replaces the one-shot installer
// scripts that traditionally accompany a trader checkout.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/vnlaunch/internal/banner"
	"github.com/mmr-tortoise/vnlaunch/internal/execx"
	"github.com/mmr-tortoise/vnlaunch/internal/model"
	"github.com/mmr-tortoise/vnlaunch/internal/reconcile"
	"github.com/mmr-tortoise/vnlaunch/internal/settings"
)

// installFlags holds the flag values for the install command.
type installFlags struct {
	yes    bool   // --yes: answer yes to all confirmation prompts
	envDir string // --env-dir: virtual environment path override
	appDir string // --app-dir: application directory override
}

// NewInstallCommand creates the "install" cobra command.
func NewInstallCommand() *cobra.Command {
	flags := &installFlags{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Create the environment and install packages without launching",
		Long: `Prepare a trader checkout end to end: create the virtual environment if
needed, seed default settings, and install every configured package.

Unlike launch, install always reconciles the full requirement list and
never starts the trader. Use it for provisioning a machine ahead of time.

Examples:
  vnlaunch install
  vnlaunch install --yes --env-dir ~/venvs/trader`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.Context(), flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Assume yes for all prompts")
	cmd.Flags().StringVar(&flags.envDir, "env-dir", "", "Virtual environment directory (overrides config)")
	cmd.Flags().StringVar(&flags.appDir, "app-dir", "", "Application directory (overrides config)")

	return cmd
}

// runInstall is the main logic function for the install command.
func runInstall(ctx context.Context, flags *installFlags) error {
	cfg, err := loadConfig(flags.envDir, flags.appDir)
	if err != nil {
		return err
	}

	printer := banner.New(progressWriter())

	env, err := locateEnvironment(ctx, cfg, printer, flags.yes)
	if err != nil {
		return err
	}

	if path, created, seedErr := settings.EnsureDefaults(cfg.AppDir, runtime.GOOS); seedErr != nil {
		printer.Warn("could not seed trader settings: %v", seedErr)
	} else if created {
		printer.Info("Seeded default trader settings at %s", path)
	}

	reconciler := reconcile.NewReconciler(execx.NewCommandRunner())
	reconciler.Observe = func(result model.RequirementResult) {
		reportRequirement(result, printer)
	}

	report := reconciler.Reconcile(ctx, env.Interpreter, cfg.Requirements)
	if fatal := report.Fatal(); fatal != nil {
		return model.WrapCLIError(model.ExitDependencyInstallFailed,
			fmt.Sprintf("required package %s failed to install", fatal.Requirement.Name), fatal.Err)
	}

	printInstallResult(env, report, printer)
	return nil
}

// printInstallResult outputs the install summary in text or JSON format.
func printInstallResult(env model.RuntimeEnvironment, report model.Report, printer *banner.Printer) {
	if IsJSONOutput() {
		type resultJSON struct {
			Environment model.RuntimeEnvironment `json:"environment"`
			Satisfied   int                      `json:"satisfied"`
			Installed   int                      `json:"installed"`
			Warnings    []string                 `json:"warnings,omitempty"`
		}

		summary := resultJSON{
			Environment: env,
			Satisfied:   report.Satisfied(),
			Installed:   report.Installed(),
		}
		for _, warning := range report.Warnings() {
			summary.Warnings = append(summary.Warnings, warning.Requirement.Name)
		}

		data, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(data))
		return
	}

	warnings := report.Warnings()
	if len(warnings) > 0 {
		printer.Warn("Install finished with %d optional package(s) missing", len(warnings))
	} else {
		printer.Success("Install finished: %d already present, %d installed",
			report.Satisfied(), report.Installed())
	}
}
