// Package integrators advances a particle population along the
// coagulation rate equations dC/dt = f(C).
//
// Every integrator proposes the concentration after dt without touching
// the particles it is given; committing is left to the caller. Stage
// values are clipped at zero before each rate evaluation and the final
// proposal is clamped the same way Strategy.Step clamps, with the clamped
// bins listed in the report.
package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
)

// rateFunc evaluates dC/dt and the mass loss rate at a trial concentration.
type rateFunc func(conc []float64) ([]float64, float64, error)

func ratesAt(s coagulation.Strategy, p *particle.Representation, env gas.Environment) rateFunc {
	stage := p.Clone()
	clipped := make([]float64, p.Len())
	return func(conc []float64) ([]float64, float64, error) {
		for i, c := range conc {
			clipped[i] = math.Max(c, 0)
		}
		if err := stage.SetConcentration(clipped); err != nil {
			return nil, 0, err
		}
		return coagulation.RatesWithLoss(s, stage, env.Temperature(), env.Pressure())
	}
}

func checkStep(dt float64) error {
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: time step must be finite and non-negative, got %g", coagulation.ErrInvalidParticleState, dt)
	}
	return nil
}

// clamp zeroes negative entries of next in place and records them.
func clamp(next []float64, report *coagulation.StepReport) {
	for i, v := range next {
		if v < 0 {
			next[i] = 0
			report.Clamped = append(report.Clamped, i)
		}
	}
}
