// Package model defines the domain types for the vnlaunch CLI.
//
// All entities in this package are process-lifetime values passed between
// the pipeline stages (locate, adjust, reconcile, launch). Nothing here is
// persisted: the launcher reconstructs its view of the world from the
// filesystem and the interpreter on every invocation.
package model

import (
	"fmt"
	"strings"
)

// RequirementStatus represents the outcome of reconciling a single
// package requirement. Every requirement receives exactly one status
// per run:
//
//	Satisfied       → import probe succeeded, nothing to do
//	Installed       → probe failed, pip install succeeded
//	Skipped         → never probed because a required install failed earlier
//	FailedOptional  → install failed, requirement is optional, run continues
//	FailedRequired  → install failed, requirement is required, run aborts
type RequirementStatus string

const (
	// StatusSatisfied indicates the package was already importable.
	StatusSatisfied RequirementStatus = "satisfied"

	// StatusInstalled indicates the package was missing and was
	// installed successfully during this run.
	StatusInstalled RequirementStatus = "installed"

	// StatusSkipped indicates the requirement was never processed
	// because an earlier required requirement failed to install.
	StatusSkipped RequirementStatus = "skipped"

	// StatusFailedOptional indicates installation failed but the
	// requirement is optional; the run proceeds in a degraded state.
	StatusFailedOptional RequirementStatus = "failed-optional"

	// StatusFailedRequired indicates installation failed for a required
	// requirement. This aborts the run before the application launches.
	StatusFailedRequired RequirementStatus = "failed-required"
)

// String returns the string representation of RequirementStatus.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s RequirementStatus) String() string {
	return string(s)
}

// IsValid checks whether the RequirementStatus value is one of the
// predefined valid states.
func (s RequirementStatus) IsValid() bool {
	switch s {
	case StatusSatisfied, StatusInstalled, StatusSkipped, StatusFailedOptional, StatusFailedRequired:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the status represents an installation failure
// (optional or required). Skipped is not a failure: it carries no verdict
// about the package itself.
func (s RequirementStatus) IsFailure() bool {
	return s == StatusFailedOptional || s == StatusFailedRequired
}

// ParseRequirementStatus converts a string to a RequirementStatus.
// Returns an error if the string does not match any valid status.
func ParseRequirementStatus(s string) (RequirementStatus, error) {
	status := RequirementStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid requirement status: %q (valid: satisfied, installed, skipped, failed-optional, failed-required)", s)
	}
	return status, nil
}

// Requirement describes a single Python package the trader needs before
// it can start. Requirements are reconciled strictly in list order, and
// the order is load-bearing: the GUI toolkit (PySide6) must appear before
// any package that imports it at install time.
type Requirement struct {
	// Name is the display name used in operator-facing output.
	Name string `yaml:"name" json:"name"`

	// Module is the import name probed via `python -c "import <Module>"`.
	// When empty, Name is used.
	Module string `yaml:"module,omitempty" json:"module,omitempty"`

	// Spec is the pip requirement specifier passed to `pip install`
	// (e.g. "vnpy>=3.0"). When empty, Name is used.
	Spec string `yaml:"spec,omitempty" json:"spec,omitempty"`

	// Optional marks requirements whose installation failure must not
	// abort the run. The trader degrades gracefully without them
	// (individual app modules), unlike the core platform packages.
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// ImportModule returns the module name used for the import probe,
// defaulting to the requirement name.
func (r Requirement) ImportModule() string {
	if r.Module != "" {
		return r.Module
	}
	return r.Name
}

// InstallSpec returns the pip requirement specifier used for installation,
// defaulting to the requirement name.
func (r Requirement) InstallSpec() string {
	if r.Spec != "" {
		return r.Spec
	}
	return r.Name
}

// Validate checks that the requirement is well-formed.
func (r Requirement) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("requirement: name must not be empty")
	}
	return nil
}

// RequirementResult records the reconciliation outcome for one requirement.
type RequirementResult struct {
	// Requirement is the requirement this result belongs to.
	Requirement Requirement `json:"requirement"`

	// Status is the terminal reconciliation status.
	Status RequirementStatus `json:"status"`

	// Err is the underlying probe/install error, if any. It is kept for
	// diagnostics; the status alone decides control flow.
	Err error `json:"-"`
}

// Report aggregates the per-requirement results of a reconciliation run.
// The orchestrator branches on the aggregate report rather than on
// scattered conditional continuation: a report either carries a fatal
// result or it does not.
type Report struct {
	// Results holds one entry per requirement, in the same order the
	// requirements were supplied.
	Results []RequirementResult `json:"results"`
}

// Append adds a result to the report.
func (rp *Report) Append(result RequirementResult) {
	rp.Results = append(rp.Results, result)
}

// Fatal returns the required-install failure that aborted the run,
// or nil if every required requirement reconciled successfully.
// By construction at most one fatal result exists per run.
func (rp *Report) Fatal() *RequirementResult {
	for i := range rp.Results {
		if rp.Results[i].Status == StatusFailedRequired {
			return &rp.Results[i]
		}
	}
	return nil
}

// Warnings returns the optional requirements whose installation failed.
// These are surfaced to the operator but do not abort the run.
func (rp *Report) Warnings() []RequirementResult {
	var warnings []RequirementResult
	for _, result := range rp.Results {
		if result.Status == StatusFailedOptional {
			warnings = append(warnings, result)
		}
	}
	return warnings
}

// Installed returns how many requirements were installed during this run.
func (rp *Report) Installed() int {
	return rp.count(StatusInstalled)
}

// Satisfied returns how many requirements were already importable.
func (rp *Report) Satisfied() int {
	return rp.count(StatusSatisfied)
}

func (rp *Report) count(status RequirementStatus) int {
	n := 0
	for _, result := range rp.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// RuntimeEnvironment describes the isolated Python environment the
// trader runs in. The interpreter path is resolved once by the locator
// and threaded explicitly through the later stages — there is no
// process-global "activation" state.
type RuntimeEnvironment struct {
	// Root is the absolute path to the virtual environment directory.
	Root string `json:"root"`

	// Interpreter is the absolute path to the environment's Python
	// executable (bin/python on Unix, Scripts/python.exe on Windows).
	Interpreter string `json:"interpreter"`

	// Exists indicates the environment directory was already present
	// before this run. False only when the environment was created (or
	// would need to be created) by the current invocation.
	Exists bool `json:"exists"`

	// Active indicates the launcher process was itself started inside
	// this environment (VIRTUAL_ENV inherited from the shell). When
	// true, Locate performed no filesystem interaction.
	Active bool `json:"active"`

	// Created indicates the environment was created during this run.
	Created bool `json:"created"`
}

// LaunchResult captures the outcome of supervising the trader process.
// It is created once, when the child terminates, and never mutated.
type LaunchResult struct {
	// ExitCode is the child process's numeric exit status.
	ExitCode int `json:"exitCode"`

	// Succeeded is true when ExitCode is zero.
	Succeeded bool `json:"succeeded"`
}

// NewLaunchResult builds a LaunchResult from a child exit code.
func NewLaunchResult(exitCode int) LaunchResult {
	return LaunchResult{ExitCode: exitCode, Succeeded: exitCode == 0}
}

// ExitCode defines the launcher's process exit codes. These codes allow
// scripts to programmatically distinguish which stage failed. When the
// child process itself exits non-zero, the launcher propagates the
// child's own code instead (see ChildExitError).
type ExitCode int

const (
	// ExitSuccess indicates the full pipeline completed and the trader
	// exited zero.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitEnvMissing indicates no environment exists and the operator
	// declined to create one.
	ExitEnvMissing ExitCode = 2

	// ExitEnvCreateFailed indicates virtual environment creation failed
	// (interpreter missing, venv module failure, or a concurrent
	// invocation holds the creation lock).
	ExitEnvCreateFailed ExitCode = 3

	// ExitEnvActivateFailed indicates an environment directory exists
	// but its interpreter could not be resolved.
	ExitEnvActivateFailed ExitCode = 4

	// ExitDependencyInstallFailed indicates a required package failed
	// to install during reconciliation.
	ExitDependencyInstallFailed ExitCode = 5

	// ExitWorkdirUnavailable indicates the application directory does
	// not exist or is not a directory.
	ExitWorkdirUnavailable ExitCode = 6

	// ExitUserCancelled indicates the operator cancelled an interactive
	// prompt other than environment creation.
	ExitUserCancelled ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate stage failures into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ChildExitError reports that the supervised trader process exited with
// a non-zero status. Unlike stage failures this is not a launcher crash:
// the run completed, and the launcher's job is to propagate the child's
// code and point the operator at the child's own output.
type ChildExitError struct {
	// Code is the child's numeric exit status.
	Code int
}

// Error satisfies the error interface.
func (e *ChildExitError) Error() string {
	return fmt.Sprintf("application exited with status %d", e.Code)
}
