package coagulation

import (
	"fmt"
	"strings"

	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// DistributionType selects how a concentration array is interpreted.
type DistributionType int

const (
	// Discrete concentrations are particle counts per bin [m-3].
	Discrete DistributionType = iota + 1
	// ContinuousPDF concentrations are number densities in radius [m-4].
	ContinuousPDF
)

func (d DistributionType) String() string {
	switch d {
	case Discrete:
		return "discrete"
	case ContinuousPDF:
		return "continuous_pdf"
	default:
		return fmt.Sprintf("DistributionType(%d)", int(d))
	}
}

func (d DistributionType) Valid() bool {
	return d == Discrete || d == ContinuousPDF
}

// ParseDistributionType accepts "discrete", "continuous_pdf" and
// "continuous".
func ParseDistributionType(s string) (DistributionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "discrete":
		return Discrete, nil
	case "continuous_pdf", "continuous":
		return ContinuousPDF, nil
	default:
		return 0, fmt.Errorf("%w: unknown distribution type %q", ErrInvalidParticleState, s)
	}
}

// Strategy is a coagulation mechanism.
type Strategy interface {
	Name() string
	DistributionType() DistributionType

	// Kernel returns the N x N collision rate coefficients [m3 s-1]. It
	// does not modify p.
	Kernel(p *particle.Representation, temperature, pressure float64) (*mat.SymDense, error)

	// Step advances p's concentration by dt seconds in place.
	Step(p *particle.Representation, temperature, pressure, dt float64) (StepReport, error)
}

// StepReport describes one committed or proposed step.
type StepReport struct {
	Dt       float64
	LostMass float64 // mass carried past the largest bin [kg m-3]
	Clamped  []int   // bins that went negative and were set to zero
}

// Unstable reports whether any bin had to be clamped.
func (r StepReport) Unstable() bool { return len(r.Clamped) > 0 }

// Option configures the behavior shared by all strategies.
type Option func(*base)

// WithMergePolicy sets how collision products are placed on the grid.
func WithMergePolicy(p MergePolicy) Option {
	return func(b *base) { b.merge = p }
}

// WithLogger sets the logger used for instability warnings.
func WithLogger(l logrus.FieldLogger) Option {
	return func(b *base) { b.log = l }
}

type base struct {
	distribution DistributionType
	merge        MergePolicy
	log          logrus.FieldLogger
}

func newBase(d DistributionType, opts []Option) base {
	b := base{distribution: d, merge: Fractional, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) DistributionType() DistributionType { return b.distribution }
func (b *base) MergePolicy() MergePolicy           { return b.merge }
func (b *base) Logger() logrus.FieldLogger         { return b.log }

type merger interface {
	MergePolicy() MergePolicy
}

type logged interface {
	Logger() logrus.FieldLogger
}

func mergePolicyOf(s Strategy) MergePolicy {
	if m, ok := s.(merger); ok {
		return m.MergePolicy()
	}
	return Fractional
}

func loggerOf(s Strategy) logrus.FieldLogger {
	if l, ok := s.(logged); ok && l.Logger() != nil {
		return l.Logger()
	}
	return logrus.StandardLogger()
}

// checkInputs validates everything a kernel needs and returns the
// Environment for the given conditions.
func checkInputs(p *particle.Representation, temperature, pressure float64) (gas.Environment, error) {
	env, err := gas.NewEnvironment(temperature, pressure)
	if err != nil {
		return gas.Environment{}, err
	}
	if err := p.Validate(); err != nil {
		return gas.Environment{}, err
	}
	return env, nil
}

func checkDistributionType(d DistributionType) error {
	if !d.Valid() {
		return fmt.Errorf("%w: unknown distribution type %v", ErrInvalidParticleState, d)
	}
	return nil
}
