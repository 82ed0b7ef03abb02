package optim

import (
	"context"
	"fmt"
	"sort"

	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/sirupsen/logrus"
)

// TimestepTrial is the outcome of running a scenario at one dt.
type TimestepTrial struct {
	Dt        float64
	Unstable  int
	MassDrift float64
	Err       error
}

// Stable reports whether the run finished without clamping.
func (t TimestepTrial) Stable() bool { return t.Err == nil && t.Unstable == 0 }

// LargestStableDt runs cfg at every candidate time step and returns the
// largest one that never clamped a concentration, along with every trial
// in ascending dt order.
func LargestStableDt(ctx context.Context, cfg *config.Config, r *experiment.Registry, candidates []float64, log logrus.FieldLogger) (float64, []TimestepTrial, error) {
	dts := append([]float64(nil), candidates...)
	sort.Float64s(dts)

	trials := make([]TimestepTrial, 0, len(dts))
	best := 0.0
	for _, dt := range dts {
		if err := ctx.Err(); err != nil {
			return best, trials, err
		}

		c := cfg.Clone()
		c.Dt = dt
		c.Adaptive = false
		c.Metrics = []string{"mass_drift"}

		trial := TimestepTrial{Dt: dt}
		exp := experiment.New(c, log)
		if err := exp.Setup(r); err != nil {
			trial.Err = err
		} else if res, err := exp.Run(ctx); err != nil {
			trial.Err = err
		} else {
			trial.Unstable = res.Unstable
			trial.MassDrift = res.Metrics["mass_drift"]
		}
		trials = append(trials, trial)

		if trial.Stable() {
			best = dt
		}
	}
	if best == 0 {
		return 0, trials, fmt.Errorf("optim: no stable time step among %v", dts)
	}
	return best, trials, nil
}
