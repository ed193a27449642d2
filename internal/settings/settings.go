// Package settings reads and seeds the trader's global settings file
// (vt_setting.json).
//
// VeighNa resolves its settings from a .vntrader directory under the
// working directory it is launched from. Operators routinely annotate
// the file with comments, so parsing tolerates JSONC — comments are
// stripped with github.com/tidwall/jsonc before standard JSON decoding.
// Writes always emit plain JSON, and an existing file is never
// overwritten: seeding only fills the gap on a first run.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// FileName is the trader's global settings file name.
const FileName = "vt_setting.json"

// dirName is the per-checkout settings directory the trader looks in
// before falling back to the home directory.
const dirName = ".vntrader"

// Path returns the settings file location for an application directory.
func Path(appDir string) string {
	return filepath.Join(appDir, dirName, FileName)
}

// Load parses a settings file, tolerating JSONC comments and trailing
// commas. The trader's settings are a flat string-keyed object
// ("font.family", "font.size", ...), so a generic map is the honest
// representation.
func Load(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(jsonc.ToJSON(data), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, nil
}

// Defaults returns the UI settings seeded on first launch for the given
// platform. The font choices mirror what the trader's entry script
// selects per platform; everything else is left for the trader's own
// defaults.
func Defaults(goos string) map[string]interface{} {
	return map[string]interface{}{
		"font.family": defaultFont(goos),
		"font.size":   10,
		"ui.theme":    "dark",
	}
}

// defaultFont picks the platform UI font.
func defaultFont(goos string) string {
	switch goos {
	case "windows":
		return "Segoe UI"
	case "darwin":
		return "SF Pro Display"
	default:
		return "Noto Sans"
	}
}

// EnsureDefaults seeds the settings file for appDir when none exists.
// It returns the settings path and whether a file was created. An
// existing file is left untouched — operator customizations win.
func EnsureDefaults(appDir, goos string) (string, bool, error) {
	path := Path(appDir)

	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return path, false, fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(Defaults(goos), "", "    ")
	if err != nil {
		return path, false, fmt.Errorf("failed to encode default settings: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return path, false, fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return path, true, nil
}
