// Package supervisor spawns the trader as a foreground child process,
// waits for it to terminate, and captures its exit status.
//
// The child fully inherits the launcher's standard streams — its own
// output is the operator's only window into its behavior, and the
// launcher never parses it. The only structured signal crossing the
// process boundary is the numeric exit code, which is returned in a
// model.LaunchResult and interpreted purely observationally.
//
// No timeout is imposed and no restart is attempted: a trading session
// runs until the operator closes it. Interrupt signals reach the child
// through normal terminal delivery (same foreground process group); the
// supervisor does not install its own signal handling.
package supervisor
