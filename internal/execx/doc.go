// Package execx provides the command execution layer shared by the
// environment locator and the dependency reconciler.
//
// All interpreter interactions (venv creation, import probes, pip
// installs) go through the Runner interface rather than os/exec
// directly, so stage logic can be tested with a scripted fake instead
// of a real Python installation. The one place that bypasses this
// package is the process supervisor, which deliberately inherits the
// launcher's standard streams instead of capturing output.
package execx
