// Package cli — confirm.go implements the yes/no confirmation providers.
//
// Stage logic never reads standard input directly: the pyenv.Confirmer
// interface is satisfied here by a stdin-backed implementation for
// interactive runs and an assume-yes implementation for --yes, which is
// what makes the decision paths testable without a terminal.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// stdinConfirmer asks yes/no questions on an input/output stream pair.
type stdinConfirmer struct {
	in  io.Reader
	out io.Writer
}

// newStdinConfirmer creates a confirmer reading answers from in and
// writing prompts to out.
func newStdinConfirmer(in io.Reader, out io.Writer) *stdinConfirmer {
	return &stdinConfirmer{in: in, out: out}
}

// Confirm presents the prompt and reads a single line from the input.
// Only "y" or "yes" (case-insensitive) count as confirmation; anything
// else, including a closed input stream, is "no" — the conservative
// default for questions that lead to filesystem mutation.
func (c *stdinConfirmer) Confirm(prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)

	// bufio.Scanner handles different line endings across platforms
	// (LF on Unix, CRLF on Windows).
	scanner := bufio.NewScanner(c.in)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}

	if err := scanner.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// assumeYesConfirmer answers yes to every prompt without printing it.
// Used for --yes and for non-interactive automation.
type assumeYesConfirmer struct{}

func (assumeYesConfirmer) Confirm(string) (bool, error) {
	return true, nil
}

// assumeNoConfirmer answers no to every prompt. The doctor command uses
// it so diagnosis can never trigger environment creation.
type assumeNoConfirmer struct{}

func (assumeNoConfirmer) Confirm(string) (bool, error) {
	return false, nil
}
