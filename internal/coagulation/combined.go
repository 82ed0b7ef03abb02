package coagulation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/san-kum/coagsim/internal/particle"
	"gonum.org/v1/gonum/mat"
)

// CombinedStrategy adds the kernels of several mechanisms that act on the
// same distribution at once.
type CombinedStrategy struct {
	base
	members []Strategy
}

// NewCombined requires at least one member and a single distribution
// type across all of them. Options apply to the combined step only.
func NewCombined(members []Strategy, opts ...Option) (*CombinedStrategy, error) {
	if len(members) == 0 {
		return nil, errors.New("coagulation: combined strategy needs at least one member")
	}
	d := members[0].DistributionType()
	for _, m := range members[1:] {
		if m.DistributionType() != d {
			return nil, fmt.Errorf("%w: combined members disagree on distribution type (%v, %v)",
				ErrInvalidParticleState, d, m.DistributionType())
		}
	}
	out := &CombinedStrategy{base: newBase(d, opts), members: append([]Strategy(nil), members...)}
	return out, nil
}

func (c *CombinedStrategy) Name() string {
	names := make([]string, len(c.members))
	for i, m := range c.members {
		names[i] = m.Name()
	}
	return strings.Join(names, "+")
}

func (c *CombinedStrategy) Members() []Strategy { return append([]Strategy(nil), c.members...) }

func (c *CombinedStrategy) Kernel(p *particle.Representation, temperature, pressure float64) (*mat.SymDense, error) {
	var sum *mat.SymDense
	for _, m := range c.members {
		k, err := m.Kernel(p, temperature, pressure)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m.Name(), err)
		}
		if sum == nil {
			sum = k
			continue
		}
		sum.AddSym(sum, k)
	}
	return sum, nil
}

func (c *CombinedStrategy) Step(p *particle.Representation, temperature, pressure, dt float64) (StepReport, error) {
	return Apply(c, p, temperature, pressure, dt)
}
