package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/vnlaunch/internal/banner"
	"github.com/mmr-tortoise/vnlaunch/internal/model"
)

// TestExitCodeFor verifies the error-to-exit-code mapping: the trader's
// own exit code passes through unchanged, stage failures use their
// dedicated codes, and anything else is a general error.
func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, 42, exitCodeFor(&model.ChildExitError{Code: 42}))
	assert.Equal(t, 1, exitCodeFor(&model.ChildExitError{Code: 1}))

	assert.Equal(t, int(model.ExitEnvMissing),
		exitCodeFor(model.NewCLIError(model.ExitEnvMissing, "creation declined")))
	assert.Equal(t, int(model.ExitWorkdirUnavailable),
		exitCodeFor(model.NewCLIError(model.ExitWorkdirUnavailable, "no such directory")))

	// Wrapped stage errors still resolve to their stage code.
	wrapped := fmt.Errorf("reconciliation: %w",
		model.NewCLIError(model.ExitDependencyInstallFailed, "pip failed"))
	assert.Equal(t, int(model.ExitDependencyInstallFailed), exitCodeFor(wrapped))

	assert.Equal(t, int(model.ExitGeneralError), exitCodeFor(errors.New("boom")))
}

// TestProgressWriter verifies progress banners leave stdout alone in
// JSON mode and share it in text mode.
func TestProgressWriter(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()
	assert.Same(t, os.Stderr, progressWriter())

	jsonOutput = false
	assert.Same(t, os.Stdout, progressWriter())
}

// TestInstallJSONStdoutStaysClean verifies that in JSON mode the
// per-package progress banners go to stderr, leaving stdout as a single
// parseable JSON document.
func TestInstallJSONStdoutStaysClean(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	stdout, stderr := captureOutput(t, func() {
		printer := banner.New(progressWriter())

		reportRequirement(model.RequirementResult{
			Requirement: model.Requirement{Name: "vnpy"},
			Status:      model.StatusInstalled,
		}, printer)

		var report model.Report
		report.Append(model.RequirementResult{
			Requirement: model.Requirement{Name: "vnpy"},
			Status:      model.StatusInstalled,
		})
		printInstallResult(model.RuntimeEnvironment{Root: ".venv"}, report, printer)
	})

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary),
		"stdout must be exactly one JSON document, got: %q", stdout)
	assert.Contains(t, summary, "environment")

	assert.Contains(t, stderr, "vnpy", "progress should still reach the operator on stderr")
}

// TestLaunchJSONStdoutStaysClean verifies the same for the launch
// summary alongside its stage banners.
func TestLaunchJSONStdoutStaysClean(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	stdout, _ := captureOutput(t, func() {
		printer := banner.New(progressWriter())
		printer.Info("Launching trader from %s", ".")

		printLaunchResult(model.RuntimeEnvironment{Root: ".venv"},
			model.Report{}, model.NewLaunchResult(0), printer)
	})

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary),
		"stdout must be exactly one JSON document, got: %q", stdout)
	assert.Contains(t, summary, "launch")
}

// captureOutput runs fn with os.Stdout and os.Stderr redirected to
// pipes and returns what was written to each.
func captureOutput(t *testing.T, fn func()) (string, string) {
	t.Helper()

	origOut, origErr := os.Stdout, os.Stderr
	defer func() {
		os.Stdout, os.Stderr = origOut, origErr
	}()

	outR, outW, err := os.Pipe()
	require.NoError(t, err)
	errR, errW, err := os.Pipe()
	require.NoError(t, err)

	os.Stdout, os.Stderr = outW, errW
	fn()
	os.Stdout, os.Stderr = origOut, origErr

	require.NoError(t, outW.Close())
	require.NoError(t, errW.Close())

	stdout, err := io.ReadAll(outR)
	require.NoError(t, err)
	stderr, err := io.ReadAll(errR)
	require.NoError(t, err)
	return string(stdout), string(stderr)
}
