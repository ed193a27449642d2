package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/vnlaunch/internal/model"
	"github.com/mmr-tortoise/vnlaunch/internal/reconcile"
)

// TestMissingRequired verifies that only unavailable required packages
// are reported; optional gaps and available packages are not.
func TestMissingRequired(t *testing.T) {
	probes := []reconcile.ProbeResult{
		{Requirement: model.Requirement{Name: "PySide6"}, Available: true},
		{Requirement: model.Requirement{Name: "vnpy"}, Available: false},
		{Requirement: model.Requirement{Name: "vnpy_ctp", Optional: true}, Available: false},
		{Requirement: model.Requirement{Name: "vnpy_futu"}, Available: false},
	}

	missing := missingRequired(probes)

	assert.Equal(t, []string{"vnpy", "vnpy_futu"}, missing)
}

// TestMissingRequiredAllPresent verifies the healthy case returns nil.
func TestMissingRequiredAllPresent(t *testing.T) {
	probes := []reconcile.ProbeResult{
		{Requirement: model.Requirement{Name: "PySide6"}, Available: true},
		{Requirement: model.Requirement{Name: "vnpy_ctp", Optional: true}, Available: false},
	}

	assert.Nil(t, missingRequired(probes))
}
