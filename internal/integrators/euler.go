package integrators

import (
	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
)

// Euler is the explicit scheme Strategy.Step uses.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Advance(s coagulation.Strategy, p *particle.Representation, env gas.Environment, dt float64) ([]float64, coagulation.StepReport, error) {
	return coagulation.Advance(s, p, env.Temperature(), env.Pressure(), dt)
}
