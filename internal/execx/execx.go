package execx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts external command execution for the pipeline stages.
//
// Implementations must be safe for sequential reuse; the launcher never
// runs commands concurrently.
type Runner interface {
	// Run executes the named command with the given arguments and blocks
	// until it exits. It returns the command's stdout on success. On a
	// non-zero exit the returned error includes the command's stderr.
	Run(ctx context.Context, name string, args ...string) (string, error)

	// LookPath searches the system PATH for an executable, returning its
	// absolute path. It mirrors exec.LookPath so interpreter discovery
	// can be faked in tests.
	LookPath(name string) (string, error)
}

// CommandRunner is the production Runner backed by os/exec.
type CommandRunner struct{}

// NewCommandRunner creates a new CommandRunner.
//
// There is no initialization logic today; the constructor exists so a
// custom environment or logging middleware can be added later without
// breaking callers.
func NewCommandRunner() *CommandRunner {
	return &CommandRunner{}
}

// Run executes a command and captures its output.
//
// Stdout and stderr are captured separately so stderr can be folded
// into the error message while stdout is returned on success. Package
// installs can take minutes, so no timeout is imposed here — the
// context allows the caller (or an operator interrupt) to cancel.
func (r *CommandRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	// #nosec G204 — command names and args are constructed internally,
	// not from untrusted input
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s %s failed", name, strings.Join(args, " "))
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", fmt.Errorf("%s: %w", message, err)
	}

	return stdout.String(), nil
}

// LookPath searches PATH for the named executable.
func (r *CommandRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
