// Package banner prints the launcher's color-coded operator messages.
//
// Four severities map to the conventional ANSI colors: info (cyan),
// success (green), warning (yellow), error (red). Color is cosmetic —
// it is enabled only when the target stream is a terminal, and NO_COLOR
// disables it outright, so piped output stays clean.
package banner

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ANSI escape sequences for the four severities.
const (
	colorReset  = "\033[0m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

// Printer writes severity-tagged messages to a single stream.
type Printer struct {
	out   io.Writer
	color bool
}

// New creates a Printer for the given stream, enabling color when the
// stream is a terminal and NO_COLOR is unset.
func New(out io.Writer) *Printer {
	return &Printer{out: out, color: detectColor(out)}
}

// NewPlain creates a Printer that never emits color, regardless of the
// stream. Tests and --json flows use this.
func NewPlain(out io.Writer) *Printer {
	return &Printer{out: out}
}

// detectColor decides whether the stream supports ANSI color.
func detectColor(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Info prints an informational message.
func (p *Printer) Info(format string, args ...interface{}) {
	p.print(colorCyan, "", format, args...)
}

// Success prints a success banner.
func (p *Printer) Success(format string, args ...interface{}) {
	p.print(colorGreen, "", format, args...)
}

// Warn prints a warning.
func (p *Printer) Warn(format string, args ...interface{}) {
	p.print(colorYellow, "warning: ", format, args...)
}

// Error prints an error banner.
func (p *Printer) Error(format string, args ...interface{}) {
	p.print(colorRed, "error: ", format, args...)
}

// print writes one line with optional color and severity prefix.
func (p *Printer) print(color, prefix, format string, args ...interface{}) {
	message := prefix + fmt.Sprintf(format, args...)
	if p.color {
		fmt.Fprintf(p.out, "%s%s%s\n", color, message, colorReset)
		return
	}
	fmt.Fprintln(p.out, message)
}
