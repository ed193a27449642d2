package supervisor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mmr-tortoise/vnlaunch/internal/model"
)

// DefaultEntryScript is the trader's entry point inside the application
// directory.
const DefaultEntryScript = "run.py"

// Options configures a single launch.
type Options struct {
	// Dir is the application root directory. The child runs with this as
	// its working directory; the entry script resolves paths relative to
	// it. A missing directory is fatal before anything is spawned.
	Dir string

	// Interpreter is the absolute path to the environment's Python
	// executable, resolved by the locator.
	Interpreter string

	// Script is the entry script relative to Dir. Defaults to
	// DefaultEntryScript.
	Script string

	// ExtraEnv holds KEY=VALUE overrides appended after everything else,
	// so they win over both the inherited environment and .env values.
	// The platform adjustment stage feeds this.
	ExtraEnv []string

	// Stdin, Stdout, Stderr default to the launcher's own streams.
	// Tests substitute buffers.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Launch runs the trader and blocks until it exits.
//
// A LaunchResult is returned whenever the child actually ran, including
// when it exited non-zero — a failed trading session is a completed run,
// not a launcher crash. Errors are reserved for the launcher's own
// failures: an unavailable working directory or a child that could not
// be spawned at all.
func Launch(opts Options) (model.LaunchResult, error) {
	var result model.LaunchResult

	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return result, model.WrapCLIError(model.ExitWorkdirUnavailable,
			fmt.Sprintf("failed to resolve application directory %q", opts.Dir), err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return result, model.WrapCLIError(model.ExitWorkdirUnavailable,
			fmt.Sprintf("application directory %s is not available", dir), err)
	}

	script := opts.Script
	if script == "" {
		script = DefaultEntryScript
	}

	// #nosec G204 — interpreter and script paths are resolved internally
	cmd := exec.Command(opts.Interpreter, script)
	cmd.Dir = dir
	cmd.Env = buildEnv(dir, opts.ExtraEnv)

	// Full stream inheritance: the trader owns the terminal while it runs.
	cmd.Stdin = opts.Stdin
	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			if code < 0 {
				// Terminated by a signal rather than exiting; report the
				// generic failure code since no exit status exists.
				code = 1
			}
			return model.NewLaunchResult(code), nil
		}
		return result, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to start %s %s", opts.Interpreter, script), err)
	}

	return model.NewLaunchResult(0), nil
}

// buildEnv assembles the child environment: the launcher's inherited
// environment, then .env values from the application directory (which
// never shadow inherited variables), then the explicit overrides (which
// shadow everything — os/exec keeps the last value for duplicate keys).
func buildEnv(dir string, extra []string) []string {
	env := os.Environ()

	if dotenv, err := godotenv.Read(filepath.Join(dir, ".env")); err == nil {
		existing := make(map[string]bool, len(env))
		for _, kv := range env {
			if key, _, ok := strings.Cut(kv, "="); ok {
				existing[key] = true
			}
		}
		for key, value := range dotenv {
			if !existing[key] {
				env = append(env, key+"="+value)
			}
		}
	}
	// A missing or unreadable .env is fine — gateway credentials are
	// commonly supplied through the real environment instead.

	return append(env, extra...)
}
