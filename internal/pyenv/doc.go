// Package pyenv locates, activates, and creates the Python virtual
// environment the trader runs in.
//
// "Activation" here never mutates process-global state. The locator
// resolves the environment's interpreter path once and returns it in a
// model.RuntimeEnvironment, which the reconciler and supervisor receive
// as an explicit parameter. This keeps every later stage a pure function
// of its inputs and makes the locator trivially idempotent.
//
// Environment creation shells out to `<python> -m venv` via execx.Runner
// rather than reimplementing venv layout, for the same reason the git
// integration in comparable tools shells out to the git binary: the
// interpreter's own venv module is the only authoritative implementation.
//
// Creation is guarded by a lock file (<root>.lock) so two launcher
// invocations racing on the same directory fail fast instead of
// interleaving writes into a half-built environment.
package pyenv
