// Package platform applies host-specific runtime configuration for the
// launched application.
//
// Qt applications on macOS render noticeably better with layer-backed
// views, which Qt only enables when QT_MAC_WANTS_LAYER is set. The
// trader consumes this variable itself; the launcher never reads it
// back. Adjustments are expressed as explicit KEY=VALUE overrides
// applied to the child process environment rather than process-global
// os.Setenv calls, so the stage is a pure function and cannot fail.
package platform

import (
	"os"
	"runtime"
)

// qtMacWantsLayer is the rendering hint consumed by Qt on macOS.
const qtMacWantsLayer = "QT_MAC_WANTS_LAYER"

// Overrides returns the environment variable overrides to apply to the
// child process for the given platform.
//
// On darwin, QT_MAC_WANTS_LAYER=1 is added unless the operator already
// set it — an explicit value always wins. Every other platform gets no
// overrides. The goos and getenv parameters exist so tests can exercise
// all branches on any host.
func Overrides(goos string, getenv func(string) string) []string {
	if goos != "darwin" {
		return nil
	}
	if getenv(qtMacWantsLayer) != "" {
		return nil
	}
	return []string{qtMacWantsLayer + "=1"}
}

// HostOverrides returns the overrides for the machine the launcher is
// actually running on.
func HostOverrides() []string {
	return Overrides(runtime.GOOS, os.Getenv)
}
