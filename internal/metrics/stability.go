package metrics

import (
	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/particle"
)

// Stability is the fraction of steps that needed no clamping.
type Stability struct {
	name       string
	violations int
	samples    int
}

func NewStability() *Stability {
	return &Stability{
		name: "stability",
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(_ *particle.Representation, report coagulation.StepReport, _ float64) {
	s.samples++
	if report.Unstable() {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Violations() int { return s.violations }

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
