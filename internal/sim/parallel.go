package sim

import (
	"context"

	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Scenario is one independent run of an Ensemble.
type Scenario struct {
	Name      string
	Particles *particle.Representation
	Env       gas.Environment
	Config    Config
}

// Ensemble runs scenarios concurrently. Each run gets its own particles
// and metrics; the strategy and integrator are shared read-only.
type Ensemble struct {
	strategy   coagulation.Strategy
	integrator Integrator
	metrics    func() []Metric
	log        logrus.FieldLogger
	limit      int
}

func NewEnsemble(strategy coagulation.Strategy, integrator Integrator, metrics func() []Metric, limit int) *Ensemble {
	return &Ensemble{
		strategy:   strategy,
		integrator: integrator,
		metrics:    metrics,
		log:        logrus.StandardLogger(),
		limit:      limit,
	}
}

func (e *Ensemble) SetLogger(l logrus.FieldLogger) { e.log = l }

// Run returns results in scenario order. The first error cancels the
// remaining runs. Scenario particles are cloned, never modified.
func (e *Ensemble) Run(ctx context.Context, scenarios []Scenario) ([]*Result, error) {
	results := make([]*Result, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}
	for i, sc := range scenarios {
		g.Go(func() error {
			s := New(e.strategy, e.integrator, WithLogger(e.log.WithField("scenario", sc.Name)))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(ctx, sc.Particles.Clone(), sc.Env, sc.Config)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
