package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadPlainJSON verifies standard JSON settings load.
func TestLoadPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"font.family": "Noto Sans", "font.size": 10}`), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Noto Sans", settings["font.family"])
	assert.Equal(t, float64(10), settings["font.size"])
}

// TestLoadTolerantOfComments verifies JSONC annotations survive: operators
// comment their settings files and the launcher must not choke on that.
func TestLoadTolerantOfComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	content := `{
	// locale for the trader UI
	"language": "english",
	"font.size": 12, /* bumped for the 4k monitor */
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "english", settings["language"])
	assert.Equal(t, float64(12), settings["font.size"])
}

// TestLoadMissingFile verifies a missing settings file is an error the
// caller can decide to ignore.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), FileName))
	assert.Error(t, err)
}

// TestDefaultsPerPlatform verifies the per-platform font selection.
func TestDefaultsPerPlatform(t *testing.T) {
	assert.Equal(t, "Segoe UI", Defaults("windows")["font.family"])
	assert.Equal(t, "SF Pro Display", Defaults("darwin")["font.family"])
	assert.Equal(t, "Noto Sans", Defaults("linux")["font.family"])
}

// TestEnsureDefaultsCreates verifies first-run seeding writes a loadable
// settings file under .vntrader.
func TestEnsureDefaultsCreates(t *testing.T) {
	appDir := t.TempDir()

	path, created, err := EnsureDefaults(appDir, "linux")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, filepath.Join(appDir, ".vntrader", FileName), path)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Noto Sans", settings["font.family"])
	assert.Equal(t, "dark", settings["ui.theme"])
}

// TestEnsureDefaultsPreservesExisting verifies operator customizations
// are never overwritten.
func TestEnsureDefaultsPreservesExisting(t *testing.T) {
	appDir := t.TempDir()
	path := Path(appDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"font.family": "Custom"}`), 0o644))

	_, created, err := EnsureDefaults(appDir, "linux")
	require.NoError(t, err)
	assert.False(t, created)

	settings, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Custom", settings["font.family"])
}
