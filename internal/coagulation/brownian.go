package coagulation

import (
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/particle"
	"gonum.org/v1/gonum/mat"
)

// BrownianStrategy coagulates particles by thermal diffusion using the
// Fuchs interpolation between the continuum and free-molecular regimes.
type BrownianStrategy struct {
	base
}

func NewBrownian(d DistributionType, opts ...Option) *BrownianStrategy {
	return &BrownianStrategy{base: newBase(d, opts)}
}

func (b *BrownianStrategy) Name() string { return "brownian" }

// Kernel evaluates Seinfeld and Pandis (2006) Table 13.1 for every pair.
func (b *BrownianStrategy) Kernel(p *particle.Representation, temperature, pressure float64) (*mat.SymDense, error) {
	if err := checkDistributionType(b.distribution); err != nil {
		return nil, err
	}
	env, err := checkInputs(p, temperature, pressure)
	if err != nil {
		return nil, err
	}

	classes := sizeClasses(p.Distribution(), p.Density(), env)
	n := len(classes)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			k.SetSym(i, j, brownianPair(classes[i], classes[j]))
		}
	}
	if err := checkKernel(k); err != nil {
		return nil, err
	}
	return k, nil
}

func brownianPair(a, b sizeClass) float64 {
	r := a.radius + b.radius
	d := a.diffusivity + b.diffusivity
	g := math.Hypot(a.g, b.g)
	c := math.Hypot(a.speed, b.speed)
	return 4 * math.Pi * d * r / (r/(r+g) + 4*d/(r*c))
}

func (b *BrownianStrategy) Step(p *particle.Representation, temperature, pressure, dt float64) (StepReport, error) {
	return Apply(b, p, temperature, pressure, dt)
}

func checkKernel(k *mat.SymDense) error {
	n := k.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := k.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: entry (%d, %d) = %g", ErrNonFiniteKernel, i, j, v)
			}
		}
	}
	return nil
}
