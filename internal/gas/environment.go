package gas

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
)

const (
	// BoltzmannConstant [J K-1]
	BoltzmannConstant = 1.380649e-23
	// GasConstant [J K-1 mol-1]
	GasConstant = 8.314462618
	// MolecularWeightAir [kg mol-1]
	MolecularWeightAir = 0.0289644

	// Sutherland's law reference values for air.
	referenceViscosity   = 1.716e-5 // [Pa s]
	referenceTemperature = 273.15   // [K]
	sutherlandConstant   = 110.4    // [K]
)

// Environment holds the ambient conditions of a simulation scenario.
// It is immutable and safe to share between goroutines.
type Environment struct {
	temperature float64
	pressure    float64
}

// NewEnvironment returns an Environment at temperature [K] and
// pressure [Pa]. Both must be finite and strictly positive.
func NewEnvironment(temperature, pressure float64) (Environment, error) {
	if !positive(temperature) {
		return Environment{}, fmt.Errorf("%w: temperature must be positive, got %g K", ErrInvalidPhysicalState, temperature)
	}
	if !positive(pressure) {
		return Environment{}, fmt.Errorf("%w: pressure must be positive, got %g Pa", ErrInvalidPhysicalState, pressure)
	}
	return Environment{temperature: temperature, pressure: pressure}, nil
}

// NewEnvironmentFromUnits is like NewEnvironment but takes unit-tagged
// values, which must carry kelvin and pascal dimensions.
func NewEnvironmentFromUnits(temperature, pressure *unit.Unit) (Environment, error) {
	if temperature == nil || pressure == nil {
		return Environment{}, fmt.Errorf("%w: missing temperature or pressure", ErrInvalidPhysicalState)
	}
	if err := temperature.Check(unit.Kelvin); err != nil {
		return Environment{}, fmt.Errorf("%w: temperature: %v", ErrInvalidPhysicalState, err)
	}
	if err := pressure.Check(unit.Pascal); err != nil {
		return Environment{}, fmt.Errorf("%w: pressure: %v", ErrInvalidPhysicalState, err)
	}
	return NewEnvironment(temperature.Value(), pressure.Value())
}

func (e Environment) Temperature() float64 { return e.temperature }
func (e Environment) Pressure() float64    { return e.pressure }

// Valid reports whether e was built by NewEnvironment; the zero value is not.
func (e Environment) Valid() bool {
	return positive(e.temperature) && positive(e.pressure)
}

// DynamicViscosityAir returns the dynamic viscosity of air [Pa s]
// from Sutherland's law.
func (e Environment) DynamicViscosityAir() float64 {
	return DynamicViscosity(e.temperature)
}

// MeanFreePathAir returns the mean free path of air molecules [m],
// Seinfeld and Pandis (2006) eq. 9.6.
func (e Environment) MeanFreePathAir() float64 {
	return MeanFreePath(e.temperature, e.pressure, e.DynamicViscosityAir())
}

// DensityAir returns the ideal-gas density of dry air [kg m-3].
func (e Environment) DensityAir() float64 {
	return e.pressure * MolecularWeightAir / (GasConstant * e.temperature)
}

// KinematicViscosityAir returns mu / rho [m2 s-1] for the given fluid
// density [kg m-3]. A non-positive density falls back to DensityAir.
func (e Environment) KinematicViscosityAir(fluidDensity float64) float64 {
	if !positive(fluidDensity) {
		fluidDensity = e.DensityAir()
	}
	return e.DynamicViscosityAir() / fluidDensity
}

func (e Environment) String() string {
	return fmt.Sprintf("T=%.2f K, P=%.1f Pa", e.temperature, e.pressure)
}

// DynamicViscosity returns the dynamic viscosity of air [Pa s] at
// temperature [K].
func DynamicViscosity(temperature float64) float64 {
	return referenceViscosity *
		math.Pow(temperature/referenceTemperature, 1.5) *
		(referenceTemperature + sutherlandConstant) / (temperature + sutherlandConstant)
}

// MeanFreePath returns the mean free path of air [m] at temperature [K],
// pressure [Pa] and dynamic viscosity mu [Pa s].
func MeanFreePath(temperature, pressure, mu float64) float64 {
	return 2 * mu / pressure / math.Sqrt(8*MolecularWeightAir/(math.Pi*GasConstant*temperature))
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
