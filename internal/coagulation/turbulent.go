package coagulation

import (
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/particle"
	"gonum.org/v1/gonum/mat"
)

// TurbulentShearStrategy coagulates particles carried together by small
// scale turbulent shear (Saffman and Turner, 1956).
type TurbulentShearStrategy struct {
	base
	dissipation  float64 // turbulent kinetic energy dissipation rate [m2 s-3]
	fluidDensity float64 // [kg m-3]
}

// NewTurbulentShear returns a turbulent shear strategy. A zero fluid
// density means the ideal-gas density of air at the step conditions.
func NewTurbulentShear(d DistributionType, dissipation, fluidDensity float64, opts ...Option) (*TurbulentShearStrategy, error) {
	if dissipation < 0 || math.IsNaN(dissipation) || math.IsInf(dissipation, 0) {
		return nil, fmt.Errorf("coagulation: turbulent dissipation must be finite and non-negative, got %g", dissipation)
	}
	if fluidDensity < 0 || math.IsNaN(fluidDensity) || math.IsInf(fluidDensity, 0) {
		return nil, fmt.Errorf("coagulation: fluid density must be finite and non-negative, got %g", fluidDensity)
	}
	return &TurbulentShearStrategy{
		base:         newBase(d, opts),
		dissipation:  dissipation,
		fluidDensity: fluidDensity,
	}, nil
}

func (t *TurbulentShearStrategy) Name() string { return "turbulent_shear" }

func (t *TurbulentShearStrategy) Dissipation() float64  { return t.dissipation }
func (t *TurbulentShearStrategy) FluidDensity() float64 { return t.fluidDensity }

// Kernel returns sqrt(8 pi / 15) (r_i + r_j)^3 sqrt(eps / nu).
func (t *TurbulentShearStrategy) Kernel(p *particle.Representation, temperature, pressure float64) (*mat.SymDense, error) {
	if err := checkDistributionType(t.distribution); err != nil {
		return nil, err
	}
	env, err := checkInputs(p, temperature, pressure)
	if err != nil {
		return nil, err
	}

	shear := math.Sqrt(8*math.Pi/15) * math.Sqrt(t.dissipation/env.KinematicViscosityAir(t.fluidDensity))
	radii := p.Distribution()
	n := len(radii)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r := radii[i] + radii[j]
			k.SetSym(i, j, shear*r*r*r)
		}
	}
	if err := checkKernel(k); err != nil {
		return nil, err
	}
	return k, nil
}

func (t *TurbulentShearStrategy) Step(p *particle.Representation, temperature, pressure, dt float64) (StepReport, error) {
	return Apply(t, p, temperature, pressure, dt)
}
