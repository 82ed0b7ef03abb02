package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Representation is a size-resolved particle population.
type Representation struct {
	distribution  []float64 // radii [m]
	concentration []float64 // [m-3], or [m-4] for a continuous pdf
	density       float64   // [kg m-3]
	charge        float64   // [elementary charges]
}

// New validates and copies its inputs. Radii must be strictly increasing
// and positive; concentrations non-negative and aligned with the radii.
func New(distribution, concentration []float64, density, charge float64) (*Representation, error) {
	if err := validateDistribution(distribution); err != nil {
		return nil, err
	}
	if err := validateConcentration(concentration, len(distribution)); err != nil {
		return nil, err
	}
	if !(density > 0) || math.IsInf(density, 0) {
		return nil, fmt.Errorf("%w: density must be positive, got %g", ErrInvalidParticleState, density)
	}
	if math.IsNaN(charge) || math.IsInf(charge, 0) {
		return nil, fmt.Errorf("%w: charge must be finite, got %g", ErrInvalidParticleState, charge)
	}
	return &Representation{
		distribution:  append([]float64(nil), distribution...),
		concentration: append([]float64(nil), concentration...),
		density:       density,
		charge:        charge,
	}, nil
}

func (r *Representation) Len() int         { return len(r.distribution) }
func (r *Representation) Density() float64 { return r.density }
func (r *Representation) Charge() float64  { return r.charge }

// Distribution returns a copy of the radius grid.
func (r *Representation) Distribution() []float64 {
	return append([]float64(nil), r.distribution...)
}

// Concentration returns a copy of the concentration array.
func (r *Representation) Concentration() []float64 {
	return append([]float64(nil), r.concentration...)
}

// SetConcentration replaces the concentration with a copy of c after
// validating it. On error the representation is unchanged.
func (r *Representation) SetConcentration(c []float64) error {
	if err := validateConcentration(c, len(r.distribution)); err != nil {
		return err
	}
	copy(r.concentration, c)
	return nil
}

// Masses returns the mass of one particle in each size class [kg].
func (r *Representation) Masses() []float64 {
	m := make([]float64, len(r.distribution))
	for i, radius := range r.distribution {
		m[i] = SphereMass(radius, r.density)
	}
	return m
}

// TotalNumber is the sum of the concentration array.
func (r *Representation) TotalNumber() float64 {
	return floats.Sum(r.concentration)
}

// TotalMass is the concentration-weighted particle mass.
func (r *Representation) TotalMass() float64 {
	return floats.Dot(r.concentration, r.Masses())
}

// MeanRadius is the number-weighted mean radius, or zero for an empty
// population.
func (r *Representation) MeanRadius() float64 {
	n := r.TotalNumber()
	if n == 0 {
		return 0
	}
	return floats.Dot(r.concentration, r.distribution) / n
}

func (r *Representation) Clone() *Representation {
	return &Representation{
		distribution:  r.Distribution(),
		concentration: r.Concentration(),
		density:       r.density,
		charge:        r.charge,
	}
}

// Validate re-checks the representation invariants. It is useful for
// values that were not built with New.
func (r *Representation) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil representation", ErrInvalidParticleState)
	}
	if err := validateDistribution(r.distribution); err != nil {
		return err
	}
	if err := validateConcentration(r.concentration, len(r.distribution)); err != nil {
		return err
	}
	if !(r.density > 0) {
		return fmt.Errorf("%w: density must be positive, got %g", ErrInvalidParticleState, r.density)
	}
	return nil
}

// SphereMass returns the mass [kg] of a sphere of radius [m] and density
// [kg m-3].
func SphereMass(radius, density float64) float64 {
	return 4.0 / 3.0 * math.Pi * radius * radius * radius * density
}

// BinWidths returns the width of each radius bin: central differences in
// the interior and one-sided differences at the ends. A single bin has
// width 1, so counts and densities coincide.
func BinWidths(radii []float64) []float64 {
	n := len(radii)
	w := make([]float64, n)
	switch n {
	case 0:
		return w
	case 1:
		w[0] = 1
		return w
	}
	w[0] = radii[1] - radii[0]
	w[n-1] = radii[n-1] - radii[n-2]
	for i := 1; i < n-1; i++ {
		w[i] = (radii[i+1] - radii[i-1]) / 2
	}
	return w
}

func validateDistribution(d []float64) error {
	if len(d) == 0 {
		return fmt.Errorf("%w: empty distribution", ErrInvalidParticleState)
	}
	for i, v := range d {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: radius %d must be positive and finite, got %g", ErrInvalidParticleState, i, v)
		}
		if i > 0 && v <= d[i-1] {
			return fmt.Errorf("%w: radii must be strictly increasing at index %d", ErrInvalidParticleState, i)
		}
	}
	return nil
}

func validateConcentration(c []float64, n int) error {
	if len(c) != n {
		return fmt.Errorf("%w: concentration length %d does not match distribution length %d", ErrInvalidParticleState, len(c), n)
	}
	for i, v := range c {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: concentration %d must be non-negative and finite, got %g", ErrInvalidParticleState, i, v)
		}
	}
	return nil
}
