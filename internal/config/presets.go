package config

import "sort"

func preset(strategy string, edit func(*Config)) *Config {
	c := DefaultConfig()
	c.Strategy = strategy
	edit(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"brownian": {
		"urban": preset("brownian", func(c *Config) {
			c.Particles.ModeRadius = 50e-9
			c.Particles.GSD = 1.8
			c.Particles.Number = 1e11
			c.Duration = 3600
			c.Dt = 10
		}),
		"nucleation": preset("brownian", func(c *Config) {
			c.Particles.ModeRadius = 5e-9
			c.Particles.GSD = 1.3
			c.Particles.Number = 1e13
			c.Particles.MaxRadius = 1e-6
			c.Integrator = "rk4"
			c.Duration = 600
			c.Dt = 0.5
		}),
		"marine": preset("brownian", func(c *Config) {
			c.Particles.ModeRadius = 200e-9
			c.Particles.GSD = 2.0
			c.Particles.Number = 1e8
			c.Particles.Density = 2160
			c.Duration = 86400
			c.Dt = 60
		}),
		"metre_scale": preset("brownian", func(c *Config) {
			c.Particles.Radii = []float64{1, 2, 3}
			c.Particles.Concentrations = []float64{10, 20, 30}
			c.Particles.Density = 1
			c.Particles.Charge = 1
			c.Duration = 10
			c.Dt = 1
		}),
	},
	"turbulent_shear": {
		"cloud": preset("turbulent_shear", func(c *Config) {
			c.Particles.ModeRadius = 5e-6
			c.Particles.GSD = 1.5
			c.Particles.Number = 1e8
			c.Particles.MinRadius = 1e-7
			c.Particles.MaxRadius = 1e-4
			c.Turbulence.Dissipation = 0.1
			c.Duration = 600
			c.Dt = 1
		}),
	},
	"charged": {
		"flame": preset("charged", func(c *Config) {
			c.Particles.ModeRadius = 10e-9
			c.Particles.GSD = 1.5
			c.Particles.Number = 1e14
			c.Particles.MaxRadius = 1e-6
			c.Particles.Charge = 1
			c.Charged.Approximation = "gopalakrishnan2012"
			c.Environment.Temperature = 1500
			c.Integrator = "rk4"
			c.Duration = 1
			c.Dt = 1e-3
		}),
	},
	"brownian+turbulent_shear": {
		"convective": preset("brownian+turbulent_shear", func(c *Config) {
			c.Particles.ModeRadius = 1e-6
			c.Particles.GSD = 2.0
			c.Particles.Number = 1e10
			c.Particles.MaxRadius = 1e-4
			c.Turbulence.Dissipation = 0.05
			c.Duration = 3600
			c.Dt = 10
		}),
	},
}

// GetPreset returns a copy of a preset, or nil.
func GetPreset(strategy, preset string) *Config {
	strategyPresets, ok := Presets[strategy]
	if !ok {
		return nil
	}
	cfg, ok := strategyPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(strategy string) []string {
	strategyPresets, ok := Presets[strategy]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(strategyPresets))
	for name := range strategyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListStrategies() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
