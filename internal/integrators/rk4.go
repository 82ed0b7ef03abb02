package integrators

import (
	"sync"

	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
)

// RK4 is the classical fourth-order Runge-Kutta scheme. It is safe for
// concurrent use.
type RK4 struct {
	mu    sync.Mutex
	pools map[int]*bufferPool
}

func NewRK4() *RK4 {
	return &RK4{pools: make(map[int]*bufferPool)}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) pool(n int) *bufferPool {
	r.mu.Lock()
	defer r.mu.Unlock()
	bp, ok := r.pools[n]
	if !ok {
		bp = newBufferPool(n)
		r.pools[n] = bp
	}
	return bp
}

func (r *RK4) Advance(s coagulation.Strategy, p *particle.Representation, env gas.Environment, dt float64) ([]float64, coagulation.StepReport, error) {
	report := coagulation.StepReport{Dt: dt}
	if err := checkStep(dt); err != nil {
		return nil, report, err
	}
	x := p.Concentration()
	if dt == 0 {
		return x, report, nil
	}

	n := len(x)
	f := ratesAt(s, p, env)
	bp := r.pool(n)
	scratch := bp.get()
	defer bp.put(scratch)

	k1, l1, err := f(x)
	if err != nil {
		return nil, report, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2, l2, err := f(scratch)
	if err != nil {
		return nil, report, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3, l3, err := f(scratch)
	if err != nil {
		return nil, report, err
	}

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*k3[i]
	}
	k4, l4, err := f(scratch)
	if err != nil {
		return nil, report, err
	}

	result := make([]float64, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	report.LostMass = dt6 * (l1 + 2*l2 + 2*l3 + l4)
	clamp(result, &report)

	return result, report, nil
}
