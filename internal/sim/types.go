package sim

import (
	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
)

// Integrator proposes the concentration after dt without modifying p.
type Integrator interface {
	Name() string
	Advance(s coagulation.Strategy, p *particle.Representation, env gas.Environment, dt float64) ([]float64, coagulation.StepReport, error)
}

type Metric interface {
	Name() string
	Observe(p *particle.Representation, report coagulation.StepReport, t float64)
	Value() float64
	Reset()
}

// Starter is implemented by metrics that need the state a run begins
// from. Run calls Start after Reset and before the first step.
type Starter interface {
	Start(p *particle.Representation)
}

type Observer interface {
	OnStep(p *particle.Representation, report coagulation.StepReport, t float64)
}

type Config struct {
	Dt       float64 // [s]
	Duration float64 // [s]

	// Adaptive halves the step, down to MinDt, while a trial step has to
	// clamp negative concentrations.
	Adaptive bool
	MinDt    float64
}

type Result struct {
	Times          []float64
	Concentrations [][]float64
	Reports        []coagulation.StepReport
	Metrics        map[string]float64

	StepsTaken int // committed sub-steps, including adaptive ones
	LostMass   float64
	Unstable   int // committed sub-steps that clamped
}

// Final returns the last recorded concentration.
func (r *Result) Final() []float64 {
	if len(r.Concentrations) == 0 {
		return nil
	}
	return r.Concentrations[len(r.Concentrations)-1]
}
