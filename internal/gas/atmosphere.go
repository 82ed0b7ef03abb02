package gas

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ctessum/unit"
	"github.com/sirupsen/logrus"
)

// Species is a gas-phase constituent of an Atmosphere.
type Species struct {
	Name          string
	MolarMass     float64 // [kg mol-1]
	Concentration float64 // [kg m-3]
	Condensable   bool
}

// Atmosphere is an Environment plus the gas species present in it.
type Atmosphere struct {
	Environment
	species []Species
}

// NewAtmosphere returns an Atmosphere at the given conditions holding
// a copy of species.
func NewAtmosphere(temperature, totalPressure float64, species []Species) (*Atmosphere, error) {
	env, err := NewEnvironment(temperature, totalPressure)
	if err != nil {
		return nil, err
	}
	return newAtmosphere(env, species)
}

func newAtmosphere(env Environment, species []Species) (*Atmosphere, error) {
	for _, s := range species {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	return &Atmosphere{Environment: env, species: append([]Species(nil), species...)}, nil
}

func (a *Atmosphere) TotalPressure() float64 { return a.Pressure() }

// Species returns a copy of the species list.
func (a *Atmosphere) Species() []Species {
	return append([]Species(nil), a.species...)
}

func (a *Atmosphere) AddSpecies(s Species) error {
	if err := s.validate(); err != nil {
		return err
	}
	a.species = append(a.species, s)
	return nil
}

// RemoveSpecies drops the species at index i.
func (a *Atmosphere) RemoveSpecies(i int) error {
	if i < 0 || i >= len(a.species) {
		return fmt.Errorf("gas: species index %d out of range [0, %d)", i, len(a.species))
	}
	a.species = append(a.species[:i], a.species[i+1:]...)
	return nil
}

func (s Species) validate() error {
	if s.Name == "" {
		return fmt.Errorf("gas: species name is empty")
	}
	if !positive(s.MolarMass) {
		return fmt.Errorf("gas: species %s: molar mass must be positive, got %g", s.Name, s.MolarMass)
	}
	if s.Concentration < 0 {
		return fmt.Errorf("gas: species %s: concentration must be non-negative, got %g", s.Name, s.Concentration)
	}
	return nil
}

// AtmosphereBuilder assembles an Atmosphere. Setters record the first
// error; Build reports it.
type AtmosphereBuilder struct {
	temperature   *unit.Unit
	totalPressure *unit.Unit
	species       []Species
	err           error
	log           logrus.FieldLogger
}

func NewAtmosphereBuilder() *AtmosphereBuilder {
	return &AtmosphereBuilder{log: logrus.StandardLogger()}
}

// WithLogger replaces the logger used for unit warnings.
func (b *AtmosphereBuilder) WithLogger(l logrus.FieldLogger) *AtmosphereBuilder {
	b.log = l
	return b
}

// Temperature sets the temperature in the given units ("K" when empty).
func (b *AtmosphereBuilder) Temperature(value float64, units string) *AtmosphereBuilder {
	t, err := toKelvin(value, units)
	if err != nil {
		b.fail(err)
		return b
	}
	b.temperature = t
	return b
}

// TotalPressure sets the pressure in the given units ("Pa" when empty).
func (b *AtmosphereBuilder) TotalPressure(value float64, units string) *AtmosphereBuilder {
	p, err := toPascal(value, units)
	if err != nil {
		b.fail(err)
		return b
	}
	b.totalPressure = p
	return b
}

func (b *AtmosphereBuilder) AddSpecies(s Species) *AtmosphereBuilder {
	b.species = append(b.species, s)
	return b
}

var atmosphereParameters = []string{"temperature", "total_pressure"}

// SetParameters sets every required parameter from params. A key may be
// paired with "<key>_units"; when it is not, SI units are assumed and a
// warning is logged. Unknown or missing keys are errors.
func (b *AtmosphereBuilder) SetParameters(params map[string]any) *AtmosphereBuilder {
	valid := make(map[string]bool)
	var missing []string
	for _, key := range atmosphereParameters {
		valid[key] = true
		valid[key+"_units"] = true
		if _, ok := params[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		b.fail(fmt.Errorf("gas: missing required parameter(s): %s", strings.Join(missing, ", ")))
		return b
	}
	var invalid []string
	for key := range params {
		if !valid[key] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		sort.Strings(invalid)
		b.fail(fmt.Errorf("gas: invalid parameter(s): %s", strings.Join(invalid, ", ")))
		return b
	}

	for _, key := range atmosphereParameters {
		value, err := toFloat(params[key])
		if err != nil {
			b.fail(fmt.Errorf("gas: parameter %s: %w", key, err))
			return b
		}
		units, _ := params[key+"_units"].(string)
		if units == "" {
			b.log.WithField("parameter", key).Warn("using default units")
		}
		switch key {
		case "temperature":
			b.Temperature(value, units)
		case "total_pressure":
			b.TotalPressure(value, units)
		}
	}
	return b
}

// Build validates the collected parameters and returns the Atmosphere.
func (b *AtmosphereBuilder) Build() (*Atmosphere, error) {
	if b.err != nil {
		return nil, b.err
	}
	var missing []string
	if b.temperature == nil {
		missing = append(missing, "temperature")
	}
	if b.totalPressure == nil {
		missing = append(missing, "total_pressure")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("gas: required parameter(s) not set: %s", strings.Join(missing, ", "))
	}
	if len(b.species) == 0 {
		return nil, fmt.Errorf("gas: at least one gas species must be added")
	}
	env, err := NewEnvironmentFromUnits(b.temperature, b.totalPressure)
	if err != nil {
		return nil, err
	}
	return newAtmosphere(env, b.species)
}

func (b *AtmosphereBuilder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func toKelvin(v float64, units string) (*unit.Unit, error) {
	switch strings.ToLower(units) {
	case "", "k", "kelvin":
	case "degc", "c", "celsius":
		v += 273.15
	case "degf", "f", "fahrenheit":
		v = (v-32)*5/9 + 273.15
	default:
		return nil, fmt.Errorf("gas: unsupported temperature units %q", units)
	}
	return unit.New(v, unit.Kelvin), nil
}

func toPascal(v float64, units string) (*unit.Unit, error) {
	scale := 1.0
	switch strings.ToLower(units) {
	case "", "pa", "pascal":
	case "hpa", "mbar":
		scale = 100
	case "kpa":
		scale = 1000
	case "bar":
		scale = 1e5
	case "atm":
		scale = 101325
	default:
		return nil, fmt.Errorf("gas: unsupported pressure units %q", units)
	}
	return unit.New(v*scale, unit.Pascal), nil
}
