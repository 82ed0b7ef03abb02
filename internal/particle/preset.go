package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Lognormal describes a single-mode lognormal number distribution.
type Lognormal struct {
	ModeRadius    float64 // geometric mean radius [m]
	GSD           float64 // geometric standard deviation (> 1)
	Number        float64 // total number concentration [m-3]
	MinRadius     float64 // [m]
	MaxRadius     float64 // [m]
	Bins          int
	Density       float64 // [kg m-3]
	Charge        float64
	ProbabilityDF bool // concentration as dN/dr instead of counts per bin
}

// DefaultLognormal is a 100 nm accumulation mode on a 250 bin grid
// spanning 1 nm to 10 um.
func DefaultLognormal() Lognormal {
	return Lognormal{
		ModeRadius: 100e-9,
		GSD:        1.4,
		Number:     1e11,
		MinRadius:  1e-9,
		MaxRadius:  1e-5,
		Bins:       250,
		Density:    1000,
	}
}

// Build evaluates the distribution on a log-spaced radius grid.
func (l Lognormal) Build() (*Representation, error) {
	if l.Bins < 1 {
		return nil, fmt.Errorf("%w: lognormal needs at least one bin", ErrInvalidParticleState)
	}
	if !(l.ModeRadius > 0) || !(l.GSD > 1) || l.Number < 0 {
		return nil, fmt.Errorf("%w: lognormal mode %g, gsd %g, number %g", ErrInvalidParticleState, l.ModeRadius, l.GSD, l.Number)
	}
	if !(l.MinRadius > 0) || l.MaxRadius <= l.MinRadius {
		return nil, fmt.Errorf("%w: lognormal radius range [%g, %g]", ErrInvalidParticleState, l.MinRadius, l.MaxRadius)
	}

	if l.Bins == 1 {
		return New([]float64{l.ModeRadius}, []float64{l.Number}, l.Density, l.Charge)
	}

	radii := make([]float64, l.Bins)
	floats.LogSpan(radii, l.MinRadius, l.MaxRadius)

	dist := distuv.LogNormal{Mu: math.Log(l.ModeRadius), Sigma: math.Log(l.GSD)}
	conc := make([]float64, l.Bins)
	for i, r := range radii {
		conc[i] = l.Number * dist.Prob(r)
	}
	if !l.ProbabilityDF {
		floats.Mul(conc, BinWidths(radii))
	}
	return New(radii, conc, l.Density, l.Charge)
}
