// Package cli — doctor.go implements the "vnlaunch doctor" command.
//
// Doctor diagnoses a checkout without mutating anything: it reports the
// environment's state, probes every configured requirement, and checks
// the trader settings file. It never creates the environment and never
// installs packages, so it is safe to run on a box you don't own.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/vnlaunch/internal/banner"
	"github.com/mmr-tortoise/vnlaunch/internal/execx"
	"github.com/mmr-tortoise/vnlaunch/internal/model"
	"github.com/mmr-tortoise/vnlaunch/internal/platform"
	"github.com/mmr-tortoise/vnlaunch/internal/pyenv"
	"github.com/mmr-tortoise/vnlaunch/internal/reconcile"
	"github.com/mmr-tortoise/vnlaunch/internal/settings"
)

// doctorFlags holds the flag values for the doctor command.
type doctorFlags struct {
	envDir string // --env-dir: virtual environment path override
	appDir string // --app-dir: application directory override
}

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the environment without changing anything",
		Long: `Check whether a trader checkout is ready to launch: environment presence,
interpreter resolution, package availability, and settings file state.

Doctor is strictly read-only — it never creates the environment or
installs packages. The exit code is non-zero when a required package is
missing or the environment does not exist.

Examples:
  vnlaunch doctor
  vnlaunch doctor --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.envDir, "env-dir", "", "Virtual environment directory (overrides config)")
	cmd.Flags().StringVar(&flags.appDir, "app-dir", "", "Application directory (overrides config)")

	return cmd
}

// runDoctor is the main logic function for the doctor command.
func runDoctor(ctx context.Context, flags *doctorFlags) error {
	cfg, err := loadConfig(flags.envDir, flags.appDir)
	if err != nil {
		return err
	}

	printer := banner.New(progressWriter())

	// The assume-no confirmer guarantees Locate can never create the
	// environment during diagnosis.
	locator := pyenv.NewLocator(execx.NewCommandRunner(), assumeNoConfirmer{})
	locator.Interpreters = cfg.Interpreters
	locator.Warn = printer.Warn
	locator.Info = printer.Info

	env, err := locator.Locate(ctx, cfg.EnvDir)
	if err != nil {
		// A missing environment is a diagnosis, not a crash: report it
		// and exit with the environment-missing code. Activation
		// failures carry their own codes and propagate as-is.
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) && cliErr.Code == model.ExitEnvMissing {
			printDoctorMissingEnv(cfg.EnvDir, printer)
			return model.NewCLIError(model.ExitEnvMissing,
				fmt.Sprintf("no virtual environment at %s — run `vnlaunch install` to create one", cfg.EnvDir))
		}
		return err
	}

	probes := reconcile.NewReconciler(execx.NewCommandRunner()).
		Probe(ctx, env.Interpreter, cfg.Requirements)

	settingsPath := settings.Path(cfg.AppDir)
	_, settingsErr := settings.Load(settingsPath)
	overrides := platform.Overrides(runtime.GOOS, os.Getenv)

	printDoctorResult(env, probes, settingsPath, settingsErr == nil, overrides, printer)

	if missing := missingRequired(probes); len(missing) > 0 {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("required package(s) missing: %v — run `vnlaunch install`", missing))
	}
	return nil
}

// missingRequired returns the names of unavailable required packages.
func missingRequired(probes []reconcile.ProbeResult) []string {
	var missing []string
	for _, probe := range probes {
		if !probe.Available && !probe.Requirement.Optional {
			missing = append(missing, probe.Requirement.Name)
		}
	}
	return missing
}

// printDoctorMissingEnv reports the missing-environment diagnosis.
func printDoctorMissingEnv(envDir string, printer *banner.Printer) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]interface{}{
			"environment": map[string]interface{}{"root": envDir, "exists": false},
		}, "", "  ")
		fmt.Println(string(data))
		return
	}
	printer.Error("No virtual environment at %s", envDir)
}

// printDoctorResult outputs the full diagnosis in text or JSON format.
func printDoctorResult(env model.RuntimeEnvironment, probes []reconcile.ProbeResult, settingsPath string, settingsOK bool, overrides []string, printer *banner.Printer) {
	if IsJSONOutput() {
		printDoctorResultJSON(env, probes, settingsPath, settingsOK, overrides)
		return
	}

	printer.Info("Environment:  %s", env.Root)
	printer.Info("Interpreter:  %s", env.Interpreter)
	if env.Active {
		printer.Info("Activation:   inherited from shell (VIRTUAL_ENV)")
	}

	fmt.Println()
	fmt.Println("  Packages:")
	for _, probe := range probes {
		kind := "required"
		if probe.Requirement.Optional {
			kind = "optional"
		}
		if probe.Available {
			printer.Success("    %-24s %-8s available", probe.Requirement.Name, kind)
		} else if probe.Requirement.Optional {
			printer.Warn("    %-24s %-8s missing", probe.Requirement.Name, kind)
		} else {
			printer.Error("    %-24s %-8s missing", probe.Requirement.Name, kind)
		}
	}

	fmt.Println()
	if settingsOK {
		printer.Info("Settings:     %s", settingsPath)
	} else {
		printer.Warn("Settings:     %s not found (will be seeded on first launch)", settingsPath)
	}

	for _, kv := range overrides {
		printer.Info("Platform:     would set %s", kv)
	}
}

// printDoctorResultJSON outputs the diagnosis as structured JSON.
func printDoctorResultJSON(env model.RuntimeEnvironment, probes []reconcile.ProbeResult, settingsPath string, settingsOK bool, overrides []string) {
	type packageJSON struct {
		Name      string `json:"name"`
		Optional  bool   `json:"optional"`
		Available bool   `json:"available"`
	}

	type resultJSON struct {
		Environment      model.RuntimeEnvironment `json:"environment"`
		Packages         []packageJSON            `json:"packages"`
		SettingsPath     string                   `json:"settingsPath"`
		SettingsPresent  bool                     `json:"settingsPresent"`
		PlatformOverride []string                 `json:"platformOverrides,omitempty"`
	}

	result := resultJSON{
		Environment:      env,
		SettingsPath:     settingsPath,
		SettingsPresent:  settingsOK,
		PlatformOverride: overrides,
	}
	for _, probe := range probes {
		result.Packages = append(result.Packages, packageJSON{
			Name:      probe.Requirement.Name,
			Optional:  probe.Requirement.Optional,
			Available: probe.Available,
		})
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}
