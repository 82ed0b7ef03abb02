package coagulation

import (
	"math"

	"github.com/san-kum/coagsim/internal/gas"
)

// Cunningham slip correction coefficients, Seinfeld and Pandis (2006) eq. 9.34.
const (
	slipA = 1.257
	slipB = 0.4
	slipC = 1.1
)

// KnudsenNumber is the gas mean free path over particle radius, which
// equals 2 lambda / d.
func KnudsenNumber(meanFreePath, radius float64) float64 {
	return meanFreePath / radius
}

// CunninghamSlipCorrection is a single smooth function of Kn. It tends
// to 1 in the continuum limit and grows like (slipA + slipB) Kn in the
// free-molecular limit.
func CunninghamSlipCorrection(kn float64) float64 {
	return 1 + kn*(slipA+slipB*math.Exp(-slipC/kn))
}

// FrictionFactor is the slip-corrected Stokes drag coefficient [kg s-1].
func FrictionFactor(radius, viscosity, slip float64) float64 {
	return 6 * math.Pi * viscosity * radius / slip
}

// Diffusivity is the Stokes-Einstein particle diffusion coefficient [m2 s-1].
func Diffusivity(temperature, friction float64) float64 {
	return gas.BoltzmannConstant * temperature / friction
}

// MeanThermalSpeed of a particle of mass [kg] at temperature [K] [m s-1].
func MeanThermalSpeed(mass, temperature float64) float64 {
	return math.Sqrt(8 * gas.BoltzmannConstant * temperature / (math.Pi * mass))
}

// ParticleMeanFreePath is the apparent mean free path of a diffusing
// particle [m], Seinfeld and Pandis (2006) Table 13.1.
func ParticleMeanFreePath(diffusivity, speed float64) float64 {
	return 8 * diffusivity / (math.Pi * speed)
}

// fuchsG is the Fuchs transition-regime distance term for one particle.
func fuchsG(radius, particleMFP float64) float64 {
	d := 2 * radius
	l := particleMFP
	return (math.Pow(d+l, 3)-math.Pow(d*d+l*l, 1.5))/(3*d*l) - d
}

// sizeClass collects the per-bin quantities the kernels share.
type sizeClass struct {
	radius      float64
	mass        float64
	slip        float64
	friction    float64
	diffusivity float64
	speed       float64
	g           float64
}

func sizeClasses(radii []float64, density float64, env gas.Environment) []sizeClass {
	mu := env.DynamicViscosityAir()
	lambda := env.MeanFreePathAir()
	t := env.Temperature()

	out := make([]sizeClass, len(radii))
	for i, r := range radii {
		c := sizeClass{radius: r}
		c.mass = 4.0 / 3.0 * math.Pi * r * r * r * density
		c.slip = CunninghamSlipCorrection(KnudsenNumber(lambda, r))
		c.friction = FrictionFactor(r, mu, c.slip)
		c.diffusivity = Diffusivity(t, c.friction)
		c.speed = MeanThermalSpeed(c.mass, t)
		c.g = fuchsG(r, ParticleMeanFreePath(c.diffusivity, c.speed))
		out[i] = c
	}
	return out
}
