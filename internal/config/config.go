package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0
	DefaultDuration    = 600.0
	DefaultTemperature = 298.15
	DefaultPressure    = 101325.0
	DefaultModeRadius  = 100e-9
	DefaultGSD         = 1.4
	DefaultNumber      = 1e11
	DefaultBins        = 100
	DefaultDensity     = 1000.0
)

type Config struct {
	Strategy     string   `yaml:"strategy" toml:"strategy"`
	Distribution string   `yaml:"distribution" toml:"distribution"`
	MergePolicy  string   `yaml:"merge_policy" toml:"merge_policy"`
	Integrator   string   `yaml:"integrator" toml:"integrator"`
	Dt           float64  `yaml:"dt" toml:"dt"`
	Duration     float64  `yaml:"duration" toml:"duration"`
	Adaptive     bool     `yaml:"adaptive" toml:"adaptive"`
	MinDt        float64  `yaml:"min_dt" toml:"min_dt"`
	Metrics      []string `yaml:"metrics" toml:"metrics"`

	Environment EnvironmentConfig `yaml:"environment" toml:"environment"`
	Particles   ParticleConfig    `yaml:"particles" toml:"particles"`
	Turbulence  TurbulenceConfig  `yaml:"turbulence" toml:"turbulence"`
	Charged     ChargedConfig     `yaml:"charged" toml:"charged"`
}

type EnvironmentConfig struct {
	Temperature      float64 `yaml:"temperature" toml:"temperature"`
	TemperatureUnits string  `yaml:"temperature_units" toml:"temperature_units"`
	Pressure         float64 `yaml:"pressure" toml:"pressure"`
	PressureUnits    string  `yaml:"pressure_units" toml:"pressure_units"`
}

// ParticleConfig is either an explicit grid (Radii and Concentrations) or
// a lognormal mode evaluated on Bins log-spaced radii.
type ParticleConfig struct {
	Radii          []float64 `yaml:"radii,omitempty" toml:"radii,omitempty"`
	Concentrations []float64 `yaml:"concentrations,omitempty" toml:"concentrations,omitempty"`

	ModeRadius float64 `yaml:"mode_radius" toml:"mode_radius"`
	GSD        float64 `yaml:"gsd" toml:"gsd"`
	Number     float64 `yaml:"number" toml:"number"`
	MinRadius  float64 `yaml:"min_radius" toml:"min_radius"`
	MaxRadius  float64 `yaml:"max_radius" toml:"max_radius"`
	Bins       int     `yaml:"bins" toml:"bins"`

	Density float64 `yaml:"density" toml:"density"`
	Charge  float64 `yaml:"charge" toml:"charge"`
}

type TurbulenceConfig struct {
	Dissipation  float64 `yaml:"dissipation" toml:"dissipation"`
	FluidDensity float64 `yaml:"fluid_density" toml:"fluid_density"`
}

type ChargedConfig struct {
	Approximation string `yaml:"approximation" toml:"approximation"`
}

func DefaultConfig() *Config {
	return &Config{
		Strategy:     "brownian",
		Distribution: "discrete",
		MergePolicy:  "fractional",
		Integrator:   "euler",
		Dt:           DefaultDt,
		Duration:     DefaultDuration,
		Metrics:      []string{"total_number", "total_mass", "lost_mass", "mean_radius", "stability"},
		Environment: EnvironmentConfig{
			Temperature: DefaultTemperature,
			Pressure:    DefaultPressure,
		},
		Particles: ParticleConfig{
			ModeRadius: DefaultModeRadius,
			GSD:        DefaultGSD,
			Number:     DefaultNumber,
			MinRadius:  1e-9,
			MaxRadius:  1e-5,
			Bins:       DefaultBins,
			Density:    DefaultDensity,
		},
		Turbulence: TurbulenceConfig{Dissipation: 0.01},
		Charged:    ChargedConfig{Approximation: "hard_sphere"},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file on top of the
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(cfg)
		data = []byte(b.String())
	default:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Strategy == "" {
		return fmt.Errorf("config: strategy is required")
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("config: dt must be positive, got %g", c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("config: duration must be positive, got %g", c.Duration)
	}
	if c.Adaptive && (c.MinDt <= 0 || c.MinDt > c.Dt) {
		return fmt.Errorf("config: min_dt must be in (0, dt] when adaptive, got %g", c.MinDt)
	}
	if len(c.Particles.Radii) != len(c.Particles.Concentrations) {
		return fmt.Errorf("config: %d radii but %d concentrations",
			len(c.Particles.Radii), len(c.Particles.Concentrations))
	}
	return nil
}

// Atmosphere builds dry air at the configured conditions.
func (c *Config) Atmosphere() (*gas.Atmosphere, error) {
	return gas.NewAtmosphereBuilder().
		Temperature(c.Environment.Temperature, c.Environment.TemperatureUnits).
		TotalPressure(c.Environment.Pressure, c.Environment.PressureUnits).
		AddSpecies(gas.Species{Name: "air", MolarMass: gas.MolecularWeightAir}).
		Build()
}

// BuildParticles returns the initial distribution. continuous selects
// dN/dr concentrations for the lognormal form; explicit concentrations
// are used as given.
func (c *Config) BuildParticles(continuous bool) (*particle.Representation, error) {
	pc := c.Particles
	if len(pc.Radii) > 0 {
		return particle.New(pc.Radii, pc.Concentrations, pc.Density, pc.Charge)
	}
	return particle.Lognormal{
		ModeRadius:    pc.ModeRadius,
		GSD:           pc.GSD,
		Number:        pc.Number,
		MinRadius:     pc.MinRadius,
		MaxRadius:     pc.MaxRadius,
		Bins:          pc.Bins,
		Density:       pc.Density,
		Charge:        pc.Charge,
		ProbabilityDF: continuous,
	}.Build()
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Metrics = append([]string(nil), c.Metrics...)
	out.Particles.Radii = append([]float64(nil), c.Particles.Radii...)
	out.Particles.Concentrations = append([]float64(nil), c.Particles.Concentrations...)
	return &out
}
