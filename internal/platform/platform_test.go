package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func getenvFrom(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

// TestOverridesDarwinUnset verifies the rendering hint is added on macOS
// when the operator has not set it.
func TestOverridesDarwinUnset(t *testing.T) {
	overrides := Overrides("darwin", getenvFrom(nil))
	assert.Equal(t, []string{"QT_MAC_WANTS_LAYER=1"}, overrides)
}

// TestOverridesDarwinAlreadySet verifies an explicit operator value is
// never overridden, whatever it is.
func TestOverridesDarwinAlreadySet(t *testing.T) {
	overrides := Overrides("darwin", getenvFrom(map[string]string{"QT_MAC_WANTS_LAYER": "0"}))
	assert.Empty(t, overrides)
}

// TestOverridesOtherPlatforms verifies the stage is a no-op everywhere
// except macOS.
func TestOverridesOtherPlatforms(t *testing.T) {
	for _, goos := range []string{"linux", "windows", "freebsd"} {
		assert.Empty(t, Overrides(goos, getenvFrom(nil)), "expected no overrides on %s", goos)
	}
}
