package reconcile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/vnlaunch/internal/model"
)

// fakeRunner scripts probe and install outcomes per module name.
// Probe commands look like `<python> -c "import X"`; install commands
// like `<python> -m pip install X`.
type fakeRunner struct {
	// importable lists modules whose import probe succeeds.
	importable map[string]bool

	// installFails lists specs whose pip install fails.
	installFails map[string]bool

	// installs records the specs passed to pip install, in order.
	installs []string

	// probes records the modules probed, in order.
	probes []string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) (string, error) {
	switch {
	case len(args) == 2 && args[0] == "-c":
		module := strings.TrimPrefix(args[1], "import ")
		f.probes = append(f.probes, module)
		if f.importable[module] {
			return "", nil
		}
		return "", errors.New("ModuleNotFoundError: No module named " + module)

	case len(args) == 4 && args[0] == "-m" && args[1] == "pip" && args[2] == "install":
		spec := args[3]
		f.installs = append(f.installs, spec)
		if f.installFails[spec] {
			return "", errors.New("pip install failed for " + spec)
		}
		return "", nil

	default:
		return "", errors.New("unexpected command: " + strings.Join(args, " "))
	}
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	return name, nil
}

func requirements() []model.Requirement {
	return []model.Requirement{
		{Name: "PySide6"},
		{Name: "vnpy"},
		{Name: "vnpy_futu"},
		{Name: "vnpy_ctastrategy", Optional: true},
		{Name: "vnpy_webtrader", Optional: true},
	}
}

// TestReconcileAllSatisfied verifies that already-importable packages
// never trigger an install command.
func TestReconcileAllSatisfied(t *testing.T) {
	runner := &fakeRunner{importable: map[string]bool{
		"PySide6": true, "vnpy": true, "vnpy_futu": true,
		"vnpy_ctastrategy": true, "vnpy_webtrader": true,
	}}
	r := NewReconciler(runner)

	report := r.Reconcile(context.Background(), "python", requirements())

	assert.Nil(t, report.Fatal())
	assert.Empty(t, runner.installs, "satisfied requirements must not be installed")
	assert.Equal(t, 5, report.Satisfied())
	for _, result := range report.Results {
		assert.Equal(t, model.StatusSatisfied, result.Status)
	}
}

// TestReconcileInstallsMissing verifies that missing packages are
// installed in requirement order.
func TestReconcileInstallsMissing(t *testing.T) {
	runner := &fakeRunner{importable: map[string]bool{"PySide6": true}}
	r := NewReconciler(runner)

	report := r.Reconcile(context.Background(), "python", requirements())

	assert.Nil(t, report.Fatal())
	assert.Equal(t, []string{"vnpy", "vnpy_futu", "vnpy_ctastrategy", "vnpy_webtrader"}, runner.installs)
	assert.Equal(t, 1, report.Satisfied())
	assert.Equal(t, 4, report.Installed())
}

// TestReconcileRequiredFailureHalts verifies the fatal short-circuit:
// a required install failure stops reconciliation and marks everything
// after it as skipped.
func TestReconcileRequiredFailureHalts(t *testing.T) {
	runner := &fakeRunner{
		importable:   map[string]bool{"PySide6": true},
		installFails: map[string]bool{"vnpy": true},
	}
	r := NewReconciler(runner)

	report := r.Reconcile(context.Background(), "python", requirements())

	fatal := report.Fatal()
	require.NotNil(t, fatal)
	assert.Equal(t, "vnpy", fatal.Requirement.Name)
	require.Error(t, fatal.Err)

	// Nothing after the fatal failure is probed or installed.
	assert.Equal(t, []string{"vnpy"}, runner.installs)
	assert.Equal(t, []string{"PySide6", "vnpy"}, runner.probes)

	require.Len(t, report.Results, 5)
	assert.Equal(t, model.StatusSatisfied, report.Results[0].Status)
	assert.Equal(t, model.StatusFailedRequired, report.Results[1].Status)
	for _, result := range report.Results[2:] {
		assert.Equal(t, model.StatusSkipped, result.Status)
	}
}

// TestReconcileOptionalFailureContinues verifies partial-failure
// semantics: an optional install failure is a warning, and every
// remaining requirement is still processed.
func TestReconcileOptionalFailureContinues(t *testing.T) {
	runner := &fakeRunner{
		importable:   map[string]bool{"PySide6": true, "vnpy": true, "vnpy_futu": true},
		installFails: map[string]bool{"vnpy_ctastrategy": true},
	}
	r := NewReconciler(runner)

	report := r.Reconcile(context.Background(), "python", requirements())

	assert.Nil(t, report.Fatal())

	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "vnpy_ctastrategy", warnings[0].Requirement.Name)

	// The requirement after the failed optional one was still installed.
	assert.Contains(t, runner.installs, "vnpy_webtrader")
	assert.Equal(t, model.StatusInstalled, report.Results[4].Status)
}

// TestReconcileOrderPreserved verifies that the report order matches the
// supplied requirement order exactly.
func TestReconcileOrderPreserved(t *testing.T) {
	runner := &fakeRunner{}
	r := NewReconciler(runner)

	reqs := requirements()
	report := r.Reconcile(context.Background(), "python", reqs)

	require.Len(t, report.Results, len(reqs))
	for i, req := range reqs {
		assert.Equal(t, req.Name, report.Results[i].Requirement.Name)
	}
}

// TestReconcileObserver verifies that each result is forwarded to the
// observer as it is produced.
func TestReconcileObserver(t *testing.T) {
	runner := &fakeRunner{importable: map[string]bool{"PySide6": true}}
	r := NewReconciler(runner)

	var seen []string
	r.Observe = func(result model.RequirementResult) {
		seen = append(seen, result.Requirement.Name+":"+result.Status.String())
	}

	r.Reconcile(context.Background(), "python", requirements()[:2])

	assert.Equal(t, []string{"PySide6:satisfied", "vnpy:installed"}, seen)
}

// TestReconcileCustomModuleAndSpec verifies that probe and install use
// the requirement's explicit module and spec when present.
func TestReconcileCustomModuleAndSpec(t *testing.T) {
	runner := &fakeRunner{}
	r := NewReconciler(runner)

	reqs := []model.Requirement{{Name: "PySide6", Module: "PySide6.QtCore", Spec: "PySide6>=6.3"}}
	r.Reconcile(context.Background(), "python", reqs)

	assert.Equal(t, []string{"PySide6.QtCore"}, runner.probes)
	assert.Equal(t, []string{"PySide6>=6.3"}, runner.installs)
}

// TestProbeOnly verifies the doctor-style probe never installs anything.
func TestProbeOnly(t *testing.T) {
	runner := &fakeRunner{importable: map[string]bool{"PySide6": true, "vnpy": true}}
	r := NewReconciler(runner)

	results := r.Probe(context.Background(), "python", requirements())

	require.Len(t, results, 5)
	assert.True(t, results[0].Available)
	assert.True(t, results[1].Available)
	assert.False(t, results[2].Available)
	assert.Empty(t, runner.installs, "probe-only mode must not install")
}
