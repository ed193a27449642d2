// Package model defines the domain types and value objects for the
// vnlaunch CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (RuntimeEnvironment, Requirement, Report, LaunchResult)
// live for a single launcher invocation — there are no persistent state
// files and no sharing across invocations.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
// ChildExitError is the one deliberate exception to the CLIError scheme:
// the supervised application's own exit code is propagated untouched.
package model
