package coagulation

import (
	"fmt"

	"github.com/san-kum/coagsim/internal/particle"
	"gonum.org/v1/gonum/mat"
)

// ChargedStrategy is Brownian coagulation corrected for the Coulomb
// interaction between particles, evaluated through a dimensionless kernel
// H(Kn_D, phi_E).
type ChargedStrategy struct {
	base
	approximation Approximation
}

func NewCharged(d DistributionType, a Approximation, opts ...Option) (*ChargedStrategy, error) {
	if _, err := ParseApproximation(string(a)); err != nil {
		return nil, err
	}
	return &ChargedStrategy{base: newBase(d, opts), approximation: a}, nil
}

func (c *ChargedStrategy) Name() string { return "charged" }

func (c *ChargedStrategy) Approximation() Approximation { return c.approximation }

func (c *ChargedStrategy) Kernel(p *particle.Representation, temperature, pressure float64) (*mat.SymDense, error) {
	if err := checkDistributionType(c.distribution); err != nil {
		return nil, err
	}
	env, err := checkInputs(p, temperature, pressure)
	if err != nil {
		return nil, err
	}

	classes := sizeClasses(p.Distribution(), p.Density(), env)
	q := p.Charge()
	n := len(classes)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			a, b := classes[i], classes[j]
			sum := a.radius + b.radius
			phi := CoulombPotentialRatio(q, q, sum, temperature)
			mass := reduced(a.mass, b.mass)
			friction := reduced(a.friction, b.friction)

			kn := DiffusiveKnudsenNumber(temperature, mass, friction, sum, phi)
			h, err := c.approximation.Eval(kn, phi)
			if err != nil {
				return nil, fmt.Errorf("pair (%d, %d): %w", i, j, err)
			}
			k.SetSym(i, j, DimensionalKernel(h, phi, sum, mass, friction))
		}
	}
	if err := checkKernel(k); err != nil {
		return nil, err
	}
	return k, nil
}

func (c *ChargedStrategy) Step(p *particle.Representation, temperature, pressure, dt float64) (StepReport, error) {
	return Apply(c, p, temperature, pressure, dt)
}
