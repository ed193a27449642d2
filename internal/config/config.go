// Package config exposes the launcher's strongly typed configuration,
// loaded from a YAML file with sensible defaults for a standard VeighNa
// trader checkout.
//
// Configuration is deliberately optional: running vnlaunch with no file
// at all behaves like the classic launch script, using ./.venv and the
// built-in requirement list. A vnlaunch.yaml in the application
// directory overrides whichever fields it names.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/vnlaunch/internal/model"
	"github.com/mmr-tortoise/vnlaunch/internal/pyenv"
)

// DefaultFileName is the configuration file looked up in the application
// directory when --config is not given.
const DefaultFileName = "vnlaunch.yaml"

// Config captures everything the pipeline needs to run.
type Config struct {
	// EnvDir is the virtual environment directory. Relative paths are
	// resolved against the working directory at startup.
	EnvDir string `yaml:"env_dir"`

	// AppDir is the application root containing the entry script. The
	// supervisor uses it as the child's working directory.
	AppDir string `yaml:"app_dir"`

	// EntryScript is the trader entry point relative to AppDir.
	EntryScript string `yaml:"entry_script"`

	// Interpreters is the base-interpreter preference order used when a
	// new environment must be created, most preferred first.
	Interpreters []string `yaml:"interpreters"`

	// Requirements is the ordered package list reconciled before launch.
	// Order matters: the GUI toolkit must precede packages that import
	// it at install time.
	Requirements []model.Requirement `yaml:"requirements"`
}

// Default returns the configuration equivalent to running the classic
// launch script from a trader checkout.
func Default() *Config {
	return &Config{
		EnvDir:       ".venv",
		AppDir:       ".",
		EntryScript:  "run.py",
		Interpreters: append([]string(nil), pyenv.DefaultInterpreters...),
		Requirements: DefaultRequirements(),
	}
}

// DefaultRequirements returns the package set the trader entry script
// imports, in reconciliation order. The core platform (toolkit, vnpy,
// the brokerage gateway) is required; the individual app modules are
// optional — the trader starts without any of them, just with fewer
// features.
func DefaultRequirements() []model.Requirement {
	required := []string{"PySide6", "vnpy", "vnpy_futu"}
	optional := []string{
		"vnpy_paperaccount",
		"vnpy_ctastrategy",
		"vnpy_ctabacktester",
		"vnpy_spreadtrading",
		"vnpy_algotrading",
		"vnpy_optionmaster",
		"vnpy_portfoliostrategy",
		"vnpy_scripttrader",
		"vnpy_chartwizard",
		"vnpy_rpcservice",
		"vnpy_datamanager",
		"vnpy_datarecorder",
		"vnpy_riskmanager",
		"vnpy_webtrader",
		"vnpy_portfoliomanager",
	}

	reqs := make([]model.Requirement, 0, len(required)+len(optional))
	for _, name := range required {
		reqs = append(reqs, model.Requirement{Name: name})
	}
	for _, name := range optional {
		reqs = append(reqs, model.Requirement{Name: name, Optional: true})
	}
	return reqs
}

// Load reads the configuration file at path, layered over Default().
// Fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the named file when path is non-empty, otherwise
// tries DefaultFileName in the working directory, otherwise falls back
// to Default(). Only an explicitly named file is required to exist.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return Load(DefaultFileName)
	}
	return Default(), nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if c.EnvDir == "" {
		return fmt.Errorf("env_dir must not be empty")
	}
	if c.AppDir == "" {
		return fmt.Errorf("app_dir must not be empty")
	}
	if c.EntryScript == "" {
		return fmt.Errorf("entry_script must not be empty")
	}
	for i, req := range c.Requirements {
		if err := req.Validate(); err != nil {
			return fmt.Errorf("requirements[%d]: %w", i, err)
		}
	}
	return nil
}
