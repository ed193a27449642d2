package pyenv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/mmr-tortoise/vnlaunch/internal/execx"
	"github.com/mmr-tortoise/vnlaunch/internal/model"
)

// DefaultInterpreters is the base-interpreter preference order used to
// create new environments. The trader is validated against Python 3.10,
// so that version is preferred; anything after the first entry is a
// fallback that triggers an operator warning.
var DefaultInterpreters = []string{"python3.10", "python3", "python"}

// Confirmer answers yes/no questions posed to the operator.
//
// The locator never reads standard input itself; the CLI layer injects
// an implementation backed by stdin (or an assume-yes implementation for
// --yes), which keeps the decision logic testable without a terminal.
type Confirmer interface {
	// Confirm presents the prompt and returns the operator's answer.
	// An error means the answer could not be read at all (closed stdin),
	// which callers treat the same as "no".
	Confirm(prompt string) (bool, error)
}

// Locator discovers or creates the trader's virtual environment.
type Locator struct {
	// Runner executes interpreter commands (venv creation, lookups).
	Runner execx.Runner

	// Confirmer answers the environment-creation prompt.
	Confirmer Confirmer

	// Interpreters is the base-interpreter preference order for creating
	// new environments. Defaults to DefaultInterpreters.
	Interpreters []string

	// Getenv reads process environment variables. Defaults to os.Getenv;
	// tests substitute a map lookup.
	Getenv func(string) string

	// GOOS selects the platform-specific interpreter layout inside the
	// environment. Defaults to runtime.GOOS.
	GOOS string

	// Warn receives operator-facing warnings (e.g. interpreter fallback).
	// Optional; nil disables warnings.
	Warn func(format string, args ...interface{})

	// Info receives informational progress messages (e.g. environment
	// creation). Optional; nil disables them.
	Info func(format string, args ...interface{})
}

// NewLocator creates a Locator with production defaults.
func NewLocator(runner execx.Runner, confirmer Confirmer) *Locator {
	return &Locator{
		Runner:       runner,
		Confirmer:    confirmer,
		Interpreters: DefaultInterpreters,
		Getenv:       os.Getenv,
		GOOS:         runtime.GOOS,
	}
}

// Locate resolves the runtime environment for this run.
//
// Resolution order, per the launcher's contract:
//  1. If the launcher itself was started inside an activated virtual
//     environment (VIRTUAL_ENV is set), that environment is returned
//     unchanged with no filesystem interaction at all.
//  2. If a directory exists at root, it is activated: the environment's
//     interpreter path is resolved and verified. A directory without a
//     usable interpreter is a fatal activation failure.
//  3. Otherwise the operator is asked to confirm creation. Declining is
//     fatal (the run cannot proceed without an environment); confirming
//     creates a fresh venv with the best available base interpreter.
//
// Locate is idempotent: calling it again for an already-active or
// already-existing environment performs no filesystem mutation.
func (l *Locator) Locate(ctx context.Context, root string) (model.RuntimeEnvironment, error) {
	var env model.RuntimeEnvironment

	// Case 1: the shell already activated an environment for us.
	// We trust VIRTUAL_ENV as-is — re-activating would be a no-op, and
	// probing the filesystem here would break idempotence guarantees.
	if active := l.Getenv("VIRTUAL_ENV"); active != "" {
		return model.RuntimeEnvironment{
			Root:        active,
			Interpreter: l.interpreterPath(active),
			Exists:      true,
			Active:      true,
		}, nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return env, model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to resolve environment path %q", root), err)
	}

	// Case 2: a directory exists at the configured path.
	if info, statErr := os.Stat(absRoot); statErr == nil && info.IsDir() {
		return l.activate(absRoot)
	}

	// Case 3: no environment anywhere — ask before touching the disk.
	confirmed, err := l.Confirmer.Confirm(
		fmt.Sprintf("Virtual environment not found at %s. Create it now?", absRoot))
	if err != nil || !confirmed {
		return env, model.NewCLIError(model.ExitEnvMissing,
			fmt.Sprintf("no virtual environment at %s and creation was declined", absRoot))
	}

	return l.create(ctx, absRoot)
}

// activate resolves the interpreter inside an existing environment
// directory. The directory must look like a venv: it needs a pyvenv.cfg
// marker and a platform-appropriate interpreter binary.
func (l *Locator) activate(root string) (model.RuntimeEnvironment, error) {
	var env model.RuntimeEnvironment

	cfgPath := filepath.Join(root, "pyvenv.cfg")
	if _, err := os.Stat(cfgPath); err != nil {
		return env, model.WrapCLIError(model.ExitEnvActivateFailed,
			fmt.Sprintf("%s exists but is not a virtual environment (missing pyvenv.cfg)", root), err)
	}

	interpreter := l.interpreterPath(root)
	if _, err := os.Stat(interpreter); err != nil {
		return env, model.WrapCLIError(model.ExitEnvActivateFailed,
			fmt.Sprintf("virtual environment at %s has no usable interpreter", root), err)
	}

	return model.RuntimeEnvironment{
		Root:        root,
		Interpreter: interpreter,
		Exists:      true,
	}, nil
}

// create builds a fresh virtual environment at root using the best
// available base interpreter, holding the creation lock for the duration.
func (l *Locator) create(ctx context.Context, root string) (model.RuntimeEnvironment, error) {
	var env model.RuntimeEnvironment

	unlock, err := l.acquireLock(root)
	if err != nil {
		return env, err
	}
	defer unlock()

	base, err := l.findBaseInterpreter()
	if err != nil {
		return env, err
	}

	l.infof("Creating virtual environment at %s using %s", root, base)
	if _, err := l.Runner.Run(ctx, base, "-m", "venv", root); err != nil {
		return env, model.WrapCLIError(model.ExitEnvCreateFailed,
			fmt.Sprintf("failed to create virtual environment at %s", root), err)
	}

	interpreter := l.interpreterPath(root)
	if _, err := os.Stat(interpreter); err != nil {
		return env, model.WrapCLIError(model.ExitEnvActivateFailed,
			fmt.Sprintf("freshly created environment at %s has no usable interpreter", root), err)
	}

	return model.RuntimeEnvironment{
		Root:        root,
		Interpreter: interpreter,
		Created:     true,
	}, nil
}

// findBaseInterpreter walks the preference list and returns the first
// interpreter found on PATH. A fallback past the preferred entry is
// reported as a warning because the trader is only validated against
// the preferred version.
func (l *Locator) findBaseInterpreter() (string, error) {
	candidates := l.Interpreters
	if len(candidates) == 0 {
		candidates = DefaultInterpreters
	}

	for i, name := range candidates {
		path, err := l.Runner.LookPath(name)
		if err != nil {
			continue
		}
		if i > 0 {
			l.warnf("%s not found, falling back to %s", candidates[0], name)
		}
		return path, nil
	}

	return "", model.NewCLIError(model.ExitEnvCreateFailed,
		fmt.Sprintf("no Python interpreter found on PATH (tried: %v)", candidates))
}

// acquireLock takes the environment creation lock. The lock is a sibling
// file created with O_EXCL, so exactly one invocation can be creating a
// given environment at a time. The returned function releases the lock.
func (l *Locator) acquireLock(root string) (func(), error) {
	lockPath := root + ".lock"

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, model.NewCLIError(model.ExitEnvCreateFailed,
				fmt.Sprintf("another vnlaunch invocation is creating %s (lock file %s exists; remove it if stale)", root, lockPath))
		}
		return nil, model.WrapCLIError(model.ExitEnvCreateFailed,
			fmt.Sprintf("failed to create lock file %s", lockPath), err)
	}

	// Record the owning PID for operators debugging a stale lock.
	fmt.Fprintf(f, "%d\n", os.Getpid())
	_ = f.Close()

	return func() { _ = os.Remove(lockPath) }, nil
}

// interpreterPath returns the interpreter location inside an environment
// root, following the venv module's platform layout.
func (l *Locator) interpreterPath(root string) string {
	if l.GOOS == "windows" {
		return filepath.Join(root, "Scripts", "python.exe")
	}
	return filepath.Join(root, "bin", "python")
}

// warnf forwards a warning to the configured sink, if any.
func (l *Locator) warnf(format string, args ...interface{}) {
	if l.Warn != nil {
		l.Warn(format, args...)
	}
}

// infof forwards an informational message to the configured sink, if any.
func (l *Locator) infof(format string, args ...interface{}) {
	if l.Info != nil {
		l.Info(format, args...)
	}
}
