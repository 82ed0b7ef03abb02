package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Strategy != "brownian" {
		t.Errorf("expected strategy brownian, got %s", cfg.Strategy)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if cfg.Duration <= 0 {
		t.Error("duration should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("brownian", "metre_scale")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Particles.Radii) != 3 {
		t.Errorf("expected 3 radii, got %d", len(cfg.Particles.Radii))
	}

	cfg.Particles.Radii[0] = 42
	if GetPreset("brownian", "metre_scale").Particles.Radii[0] != 1 {
		t.Error("preset was modified through a returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("brownian", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "urban") != nil {
		t.Error("expected nil for nonexistent strategy")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("brownian")
	if len(presets) == 0 {
		t.Error("expected presets for brownian")
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent strategy")
	}
	if len(ListStrategies()) != len(Presets) {
		t.Error("strategy list incomplete")
	}
}

func TestPresetsValid(t *testing.T) {
	for _, strategy := range ListStrategies() {
		for _, name := range ListPresets(strategy) {
			cfg := GetPreset(strategy, name)
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s/%s: %v", strategy, name, err)
			}
			if _, err := cfg.BuildParticles(false); err != nil {
				t.Errorf("%s/%s particles: %v", strategy, name, err)
			}
			if _, err := cfg.Atmosphere(); err != nil {
				t.Errorf("%s/%s atmosphere: %v", strategy, name, err)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"no strategy", func(c *Config) { c.Strategy = "" }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"adaptive without min dt", func(c *Config) { c.Adaptive = true }},
		{"mismatched grid", func(c *Config) { c.Particles.Radii = []float64{1, 2} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if cfg.Validate() == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".yaml", ".toml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scenario"+ext)
			want := GetPreset("charged", "flame")
			require.NoError(t, Save(path, want))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, want.Strategy, got.Strategy)
			assert.Equal(t, want.Charged.Approximation, got.Charged.Approximation)
			assert.InDelta(t, want.Particles.ModeRadius, got.Particles.ModeRadius, 1e-20)
			assert.Equal(t, want.Particles.Bins, got.Particles.Bins)
			assert.Equal(t, want.Environment.Temperature, got.Environment.Temperature)
			assert.Equal(t, want.Metrics, got.Metrics)
		})
	}
}

func TestLoadPartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	data := []byte("strategy: turbulent_shear\nenvironment:\n  temperature: 25\n  temperature_units: degC\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "turbulent_shear", cfg.Strategy)
	assert.Equal(t, DefaultDt, cfg.Dt)

	atm, err := cfg.Atmosphere()
	require.NoError(t, err)
	assert.InDelta(t, 298.15, atm.Temperature(), 1e-9)
	assert.Equal(t, DefaultPressure, atm.Pressure())
}

func TestLoadPartialTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	data := []byte("strategy = \"charged\"\n\n[particles]\nradii = [1e-8, 2e-8]\nconcentrations = [1e12, 1e11]\ncharge = 2.0\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	p, err := cfg.BuildParticles(false)
	require.NoError(t, err)
	assert.Equal(t, []float64{1e-8, 2e-8}, p.Distribution())
	assert.Equal(t, 2.0, p.Charge())
	assert.Equal(t, DefaultDensity, p.Density())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("strategy = ["), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
