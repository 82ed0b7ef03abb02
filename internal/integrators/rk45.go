package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
)

// Dormand-Prince coefficients (RK45)
var (
	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 covers dt with as many embedded Dormand-Prince sub-steps as the
// tolerance requires.
type RK45 struct {
	tol      float64
	safety   float64
	minScale float64
	maxScale float64
	maxSteps int
}

func NewRK45() *RK45 {
	return &RK45{
		tol:      1e-6,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		maxSteps: 100000,
	}
}

// WithTolerance sets the relative error target per sub-step.
func (r *RK45) WithTolerance(tol float64) *RK45 {
	if tol > 0 {
		r.tol = tol
	}
	return r
}

func (r *RK45) Name() string { return "rk45" }

func (r *RK45) Advance(s coagulation.Strategy, p *particle.Representation, env gas.Environment, dt float64) ([]float64, coagulation.StepReport, error) {
	report := coagulation.StepReport{Dt: dt}
	if err := checkStep(dt); err != nil {
		return nil, report, err
	}
	x := p.Concentration()
	if dt == 0 {
		return x, report, nil
	}

	f := ratesAt(s, p, env)
	t, h := 0.0, dt
	for step := 0; t < dt; step++ {
		if step == r.maxSteps {
			return nil, report, fmt.Errorf("integrators: rk45 did not converge within %d sub-steps", r.maxSteps)
		}
		h = math.Min(h, dt-t)

		next, lost, errRatio, err := r.trial(f, x, h)
		if err != nil {
			return nil, report, err
		}
		if errRatio <= 1 {
			x = next
			report.LostMass += lost
			t += h
			if dt-t <= dt*1e-12 {
				break
			}
		}
		h *= r.scale(errRatio)
	}
	clamp(x, &report)
	return x, report, nil
}

func (r *RK45) scale(errRatio float64) float64 {
	switch {
	case errRatio > 1:
		return math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		return math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		return r.maxScale
	}
}

// trial takes one Dormand-Prince step of length h from x and returns the
// fifth order solution, the mass lost, and the error relative to tol.
func (r *RK45) trial(f rateFunc, x []float64, h float64) ([]float64, float64, float64, error) {
	n := len(x)
	stage := make([]float64, n)

	k1, l1, err := f(x)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*b21*k1[i]
	}
	k2, _, err := f(stage)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b31*k1[i]+b32*k2[i])
	}
	k3, l3, err := f(stage)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4, l4, err := f(stage)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5, l5, err := f(stage)
	if err != nil {
		return nil, 0, 0, err
	}
	for i := 0; i < n; i++ {
		stage[i] = x[i] + h*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6, l6, err := f(stage)
	if err != nil {
		return nil, 0, 0, err
	}

	next := make([]float64, n)
	for i := 0; i < n; i++ {
		next[i] = x[i] + h*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}
	lost := h * (c1*l1 + c3*l3 + c4*l4 + c5*l5 + c6*l6)

	k7, _, err := f(next)
	if err != nil {
		return nil, 0, 0, err
	}

	floor := 0.0
	for _, v := range x {
		floor = math.Max(floor, math.Abs(v))
	}
	floor = floor*1e-12 + math.SmallestNonzeroFloat64

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := h * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := math.Abs(x[i]) + math.Abs(h*k1[i]) + floor
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}
	return next, lost, errMax / r.tol, nil
}
