package coagulation

import (
	"math"

	"github.com/san-kum/coagsim/internal/gas"
)

const (
	ElementaryCharge   = 1.602176634e-19  // [C]
	VacuumPermittivity = 8.8541878128e-12 // [F m-1]
)

// CoulombPotentialRatio is the ratio of the electrostatic potential energy
// at contact to the thermal energy, phi_E. It is positive for attraction
// and negative for repulsion.
func CoulombPotentialRatio(chargeA, chargeB, sumOfRadii, temperature float64) float64 {
	return -chargeA * chargeB * ElementaryCharge * ElementaryCharge /
		(4 * math.Pi * VacuumPermittivity * sumOfRadii * gas.BoltzmannConstant * temperature)
}

// CoulombKineticLimit is the Coulomb enhancement in the free-molecular
// regime, eta_k.
func CoulombKineticLimit(phi float64) float64 {
	if phi >= 0 {
		return 1 + phi
	}
	return math.Exp(phi)
}

// CoulombContinuumLimit is the Coulomb enhancement in the continuum
// regime, eta_c.
func CoulombContinuumLimit(phi float64) float64 {
	switch {
	case phi == 0:
		return 1
	case phi > 0:
		return phi / -math.Expm1(-phi)
	default:
		return -phi * math.Exp(phi) / -math.Expm1(phi)
	}
}

// coulombRatio is eta_k / eta_c, finite for any phi.
func coulombRatio(phi float64) float64 {
	switch {
	case phi == 0:
		return 1
	case phi > 0:
		return (1 + phi) * -math.Expm1(-phi) / phi
	default:
		return math.Expm1(phi) / phi
	}
}

// coulombEnhancement is eta_k^2 / eta_c. It underflows to zero for
// strongly repulsive pairs instead of becoming 0/0.
func coulombEnhancement(phi float64) float64 {
	if phi >= 0 {
		return CoulombKineticLimit(phi) * coulombRatio(phi)
	}
	return math.Exp(phi) * coulombRatio(phi)
}

// DiffusiveKnudsenNumber is Kn_D of Gopalakrishnan and Hogan (2011)
// for a particle pair with the given reduced mass [kg] and reduced
// friction factor [kg s-1].
func DiffusiveKnudsenNumber(temperature, reducedMass, reducedFriction, sumOfRadii, phi float64) float64 {
	return math.Sqrt(temperature*gas.BoltzmannConstant*reducedMass) / reducedFriction /
		(sumOfRadii * coulombRatio(phi))
}

// DimensionalKernel converts a dimensionless kernel H into a rate
// coefficient [m3 s-1] (Chahl and Gopalakrishnan, 2019).
func DimensionalKernel(h, phi, sumOfRadii, reducedMass, reducedFriction float64) float64 {
	return h * reducedFriction * sumOfRadii * sumOfRadii * sumOfRadii * coulombEnhancement(phi) /
		reducedMass
}

func reduced(a, b float64) float64 {
	return a * b / (a + b)
}
