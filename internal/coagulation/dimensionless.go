package coagulation

import (
	"fmt"
	"math"
	"strings"
)

// Approximation names a dimensionless kernel H(Kn_D, phi_E).
type Approximation string

const (
	HardSphere         Approximation = "hard_sphere"
	Dyachkov2007       Approximation = "dyachkov2007"
	Gatti2008          Approximation = "gatti2008"
	Gopalakrishnan2012 Approximation = "gopalakrishnan2012"
	Chahl2019          Approximation = "chahl2019"
)

// Approximations lists every supported dimensionless kernel.
var Approximations = []Approximation{HardSphere, Dyachkov2007, Gatti2008, Gopalakrishnan2012, Chahl2019}

func ParseApproximation(s string) (Approximation, error) {
	a := Approximation(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Approximations {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("coagulation: unknown kernel approximation %q", s)
}

// Eval returns H for the given diffusive Knudsen number and Coulomb
// potential ratio.
func (a Approximation) Eval(kn, phi float64) (float64, error) {
	if kn < 0 || math.IsNaN(kn) || math.IsInf(kn, 0) {
		return 0, fmt.Errorf("coagulation: invalid diffusive Knudsen number %g", kn)
	}
	switch a {
	case HardSphere:
		return hardSphere(kn), nil
	case Dyachkov2007:
		return dyachkov2007(kn, phi), nil
	case Gatti2008:
		return gatti2008(kn, phi), nil
	case Gopalakrishnan2012:
		return gopalakrishnan2012(kn, phi), nil
	case Chahl2019:
		return chahl2019(kn, phi), nil
	default:
		return 0, fmt.Errorf("coagulation: unknown kernel approximation %q", string(a))
	}
}

// hardSphere is the uncharged fit of Dyachkov et al. (2007).
func hardSphere(kn float64) float64 {
	const (
		c0 = 25.836
		c1 = 11.211
		c2 = 3.502
		c3 = 7.211
	)
	kn2 := kn * kn
	kn3 := kn2 * kn
	num := 4*math.Pi*kn2 + c0*kn3 + math.Sqrt(8*math.Pi)*c1*kn3*kn
	den := 1 + c2*kn + c3*kn2 + c1*kn3
	return num / den
}

// dyachkov2007 follows Dyachkov, Kustova and Kustov (2007). Repulsive
// potentials are floored at zero.
func dyachkov2007(kn, phi float64) float64 {
	phi = math.Max(phi, 1e-16)
	kinetic := CoulombKineticLimit(phi)
	x := kn * coulombRatio(phi)
	adjust := 1 + x

	decay := math.Exp(-phi / adjust)
	t1 := math.Sqrt(2*math.Pi) * kn * kinetic * decay
	// (1+x)^2 - (2+x)x e^a, written without the cancellation at large x
	t2 := 1 - (2+x)*x*math.Expm1(-phi/(adjust*(2+x)))
	t3 := -math.Expm1(-phi / adjust)
	t4 := -math.Expm1(-phi)
	return 4 * math.Pi * kn * kn / (t1/t2 + t3/t4)
}

// gatti2008 follows Gatti and Kortshagen (2008) for attractive pairs and
// falls back to the hard sphere kernel otherwise.
func gatti2008(kn, phi float64) float64 {
	if phi <= 0 {
		return hardSphere(kn)
	}
	kinetic := CoulombKineticLimit(phi)
	continuum := CoulombContinuumLimit(phi)
	sqrtPi := math.Sqrt(math.Pi)

	factored := sqrtPi * continuum * phi * 1.22 / (2 * kinetic * kn)
	decay := safeExp(-factored)
	t1 := 4 * math.Pi * kn * kn * (1 - (1+factored)*decay)
	t2 := math.Sqrt(8*math.Pi) * kn *
		(1 + 2*sqrtPi*math.Pow(1.22, 3)*continuum*phi*phi*phi/(9*kinetic*kinetic*kn)) *
		decay
	return t1 + t2
}

// gopalakrishnan2012 follows Gopalakrishnan and Hogan (2012) in the
// strongly attractive transition regime.
func gopalakrishnan2012(kn, phi float64) float64 {
	m := kn
	if phi > 0 {
		m = math.Min(kn, 3*kn/(2*phi))
	}
	m = math.Max(m, 1e-16)
	if phi > 0.5 && m < 2.5 {
		return 4 * math.Pi * kn * kn / (1 + 1.598*math.Pow(m, 1.1709))
	}
	return hardSphere(kn)
}

// chahl2019 corrects the hard sphere kernel for attractive potentials
// (Chahl and Gopalakrishnan, 2019).
func chahl2019(kn, phi float64) float64 {
	hs := hardSphere(kn)
	if phi <= 0 || kn == 0 {
		return hs
	}
	phi = math.Max(phi, 1e-12)

	const c0 = 2.5
	c1 := 4.528*math.Exp(-1.088*phi) + 0.7091*math.Log(1+1.527*phi)
	c2 := 11.36*math.Pow(phi, 0.272) - 10.33
	c3 := -0.003533*phi + 0.05971

	b := 1 + c3*(math.Log(kn)-c1)/c0
	if b <= 0 {
		return hs
	}
	mu := (c2 / c0) * math.Pow(b, -1/c3-1) * math.Exp(-math.Pow(b, -1/c3))
	return safeExp(mu) * hs
}

// maxExpArg keeps exp below the largest float64.
var maxExpArg = math.Log(math.MaxFloat64)

func safeExp(x float64) float64 {
	return math.Exp(math.Min(x, maxExpArg))
}
