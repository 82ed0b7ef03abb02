package coagulation

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// MergePolicy places the product of a collision back on the mass grid.
type MergePolicy int

const (
	// Fractional splits the new particle between the two bins that
	// bracket its mass so that both number and mass are conserved.
	Fractional MergePolicy = iota
	// Nearest moves the new particle to the bin with the closest radius.
	// Number is conserved, mass only approximately.
	Nearest
)

func (m MergePolicy) String() string {
	switch m {
	case Fractional:
		return "fractional"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("MergePolicy(%d)", int(m))
	}
}

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fractional":
		return Fractional, nil
	case "nearest":
		return Nearest, nil
	default:
		return 0, fmt.Errorf("coagulation: unknown merge policy %q", s)
	}
}

// Placement is where a merged particle lands: a weight of 1-Frac on bin
// Lo and Frac on bin Hi.
type Placement struct {
	Lo, Hi int
	Frac   float64
}

// Place finds the bins for a particle of mass merged on the ascending
// grid masses. It reports false when merged is heavier than the last bin;
// such particles are truncated from the grid.
func (m MergePolicy) Place(masses []float64, merged float64) (Placement, bool) {
	n := len(masses)
	if n == 0 || merged > masses[n-1] {
		return Placement{}, false
	}
	k := sort.SearchFloat64s(masses, merged)
	if masses[k] == merged || k == 0 {
		return Placement{Lo: k, Hi: k}, true
	}

	lo, hi := k-1, k
	switch m {
	case Nearest:
		// Radius goes as the cube root of mass at fixed density.
		rm := math.Cbrt(merged)
		if rm-math.Cbrt(masses[lo]) <= math.Cbrt(masses[hi])-rm {
			return Placement{Lo: lo, Hi: lo}, true
		}
		return Placement{Lo: hi, Hi: hi}, true
	default:
		frac := (merged - masses[lo]) / (masses[hi] - masses[lo])
		return Placement{Lo: lo, Hi: hi, Frac: frac}, true
	}
}
