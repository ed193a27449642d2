package reconcile

import (
	"context"
	"fmt"

	"github.com/mmr-tortoise/vnlaunch/internal/execx"
	"github.com/mmr-tortoise/vnlaunch/internal/model"
)

// Reconciler probes and installs Python package requirements against a
// specific interpreter. The interpreter path comes from the environment
// locator; the reconciler itself holds no environment state.
type Reconciler struct {
	// Runner executes the probe and install commands.
	Runner execx.Runner

	// Observe, when set, receives each requirement result as soon as it
	// is known. The CLI uses this for per-package progress output; the
	// reconciliation logic never depends on it.
	Observe func(model.RequirementResult)
}

// NewReconciler creates a Reconciler using the given runner.
func NewReconciler(runner execx.Runner) *Reconciler {
	return &Reconciler{Runner: runner}
}

// Reconcile processes the requirements in order and returns the
// aggregate report.
//
// For each requirement: if the import probe succeeds the requirement is
// satisfied and no install command runs (the probe is idempotent — an
// available package is never reinstalled). Otherwise pip installs it.
// A failed install of a required package halts reconciliation: the
// failing requirement is recorded as FailedRequired and everything after
// it as Skipped. A failed install of an optional package is recorded as
// FailedOptional and reconciliation continues — the trader runs without
// that app module.
func (r *Reconciler) Reconcile(ctx context.Context, interpreter string, requirements []model.Requirement) model.Report {
	var report model.Report

	halted := false
	for _, req := range requirements {
		if halted {
			r.record(&report, model.RequirementResult{Requirement: req, Status: model.StatusSkipped})
			continue
		}

		result := r.reconcileOne(ctx, interpreter, req)
		r.record(&report, result)

		if result.Status == model.StatusFailedRequired {
			halted = true
		}
	}

	return report
}

// reconcileOne resolves a single requirement: probe, then install on miss.
func (r *Reconciler) reconcileOne(ctx context.Context, interpreter string, req model.Requirement) model.RequirementResult {
	if err := r.probe(ctx, interpreter, req); err == nil {
		return model.RequirementResult{Requirement: req, Status: model.StatusSatisfied}
	}

	if err := r.install(ctx, interpreter, req); err != nil {
		status := model.StatusFailedRequired
		if req.Optional {
			status = model.StatusFailedOptional
		}
		return model.RequirementResult{Requirement: req, Status: status, Err: err}
	}

	return model.RequirementResult{Requirement: req, Status: model.StatusInstalled}
}

// Probe checks availability only, installing nothing. The doctor command
// uses this to diagnose an environment without mutating it.
func (r *Reconciler) Probe(ctx context.Context, interpreter string, requirements []model.Requirement) []ProbeResult {
	results := make([]ProbeResult, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, ProbeResult{
			Requirement: req,
			Available:   r.probe(ctx, interpreter, req) == nil,
		})
	}
	return results
}

// ProbeResult reports whether a single requirement is importable.
type ProbeResult struct {
	// Requirement is the probed requirement.
	Requirement model.Requirement `json:"requirement"`

	// Available is true when the import probe succeeded.
	Available bool `json:"available"`
}

// probe attempts to import the requirement's module with the target
// interpreter. A zero exit means the package is available.
func (r *Reconciler) probe(ctx context.Context, interpreter string, req model.Requirement) error {
	_, err := r.Runner.Run(ctx, interpreter, "-c", fmt.Sprintf("import %s", req.ImportModule()))
	return err
}

// install runs pip for the requirement with the target interpreter.
// Using `python -m pip` rather than a bare pip binary guarantees the
// install lands in the located environment, not whatever pip happens
// to be first on PATH.
func (r *Reconciler) install(ctx context.Context, interpreter string, req model.Requirement) error {
	_, err := r.Runner.Run(ctx, interpreter, "-m", "pip", "install", req.InstallSpec())
	return err
}

// record appends the result and forwards it to the observer.
func (r *Reconciler) record(report *model.Report, result model.RequirementResult) {
	report.Append(result)
	if r.Observe != nil {
		r.Observe(result)
	}
}
