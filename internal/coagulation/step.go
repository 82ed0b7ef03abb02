package coagulation

import (
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/particle"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Rates returns dC/dt for p's concentration in the units of the
// strategy's distribution type. p is not modified.
func Rates(s Strategy, p *particle.Representation, temperature, pressure float64) ([]float64, error) {
	dcdt, _, err := RatesWithLoss(s, p, temperature, pressure)
	return dcdt, err
}

// RatesWithLoss is Rates plus the rate at which mass leaves the top of
// the grid [kg m-3 s-1].
func RatesWithLoss(s Strategy, p *particle.Representation, temperature, pressure float64) ([]float64, float64, error) {
	if err := checkDistributionType(s.DistributionType()); err != nil {
		return nil, 0, err
	}
	k, err := s.Kernel(p, temperature, pressure)
	if err != nil {
		return nil, 0, err
	}
	counts, widths := toCounts(s.DistributionType(), p)
	dndt, lost := countRates(k, counts, p.Masses(), mergePolicyOf(s))
	if widths != nil {
		floats.Div(dndt, widths)
	}
	return dndt, lost, nil
}

// Advance computes one explicit Euler step of length dt and returns the
// proposed concentration. p is not modified. dt == 0 returns the current
// concentration unchanged.
func Advance(s Strategy, p *particle.Representation, temperature, pressure, dt float64) ([]float64, StepReport, error) {
	report := StepReport{Dt: dt}
	if err := checkDistributionType(s.DistributionType()); err != nil {
		return nil, report, err
	}
	if dt < 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, report, fmt.Errorf("%w: time step must be finite and non-negative, got %g", ErrInvalidParticleState, dt)
	}
	if _, err := checkInputs(p, temperature, pressure); err != nil {
		return nil, report, err
	}
	if dt == 0 {
		return p.Concentration(), report, nil
	}

	k, err := s.Kernel(p, temperature, pressure)
	if err != nil {
		return nil, report, err
	}

	counts, widths := toCounts(s.DistributionType(), p)
	dndt, lostRate := countRates(k, counts, p.Masses(), mergePolicyOf(s))

	next := make([]float64, len(counts))
	for i := range counts {
		next[i] = counts[i] + dt*dndt[i]
		if next[i] < 0 {
			next[i] = 0
			report.Clamped = append(report.Clamped, i)
		}
	}
	report.LostMass = dt * lostRate

	if widths != nil {
		floats.Div(next, widths)
	}
	return next, report, nil
}

// Apply advances p by dt in place. Either the whole concentration is
// replaced or, on error, nothing changes.
func Apply(s Strategy, p *particle.Representation, temperature, pressure, dt float64) (StepReport, error) {
	next, report, err := Advance(s, p, temperature, pressure, dt)
	if err != nil {
		return report, err
	}
	if report.Unstable() {
		loggerOf(s).WithFields(logrus.Fields{
			"strategy": s.Name(),
			"dt":       dt,
			"clamped":  report.Clamped,
		}).Warn("negative concentration clamped to zero; reduce the time step")
	}
	if err := p.SetConcentration(next); err != nil {
		return report, err
	}
	return report, nil
}

// countRates returns dn/dt for per-bin counts and the rate at which mass
// leaves the top of the grid.
func countRates(k mat.Symmetric, counts, masses []float64, policy MergePolicy) ([]float64, float64) {
	n := len(counts)
	dndt := make([]float64, n)
	lost := 0.0
	for i := 0; i < n; i++ {
		if counts[i] == 0 {
			continue
		}
		for j := i; j < n; j++ {
			rate := k.At(i, j) * counts[i] * counts[j]
			if rate == 0 {
				continue
			}
			if i == j {
				rate *= 0.5
			}
			dndt[i] -= rate
			dndt[j] -= rate

			merged := masses[i] + masses[j]
			at, ok := policy.Place(masses, merged)
			if !ok {
				lost += rate * merged
				continue
			}
			dndt[at.Lo] += rate * (1 - at.Frac)
			dndt[at.Hi] += rate * at.Frac
		}
	}
	return dndt, lost
}

// toCounts converts p's concentration to counts per bin. widths is nil
// for discrete distributions.
func toCounts(d DistributionType, p *particle.Representation) (counts, widths []float64) {
	counts = p.Concentration()
	if d != ContinuousPDF {
		return counts, nil
	}
	widths = particle.BinWidths(p.Distribution())
	floats.Mul(counts, widths)
	return counts, widths
}
