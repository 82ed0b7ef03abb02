package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
	"github.com/san-kum/coagsim/internal/sim"
	"github.com/sirupsen/logrus"
)

// Experiment is one configured scenario ready to run.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
	particles *particle.Representation
	env       gas.Environment
	dist      coagulation.DistributionType
	log       logrus.FieldLogger
}

func New(cfg *config.Config, log logrus.FieldLogger) *Experiment {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Experiment{cfg: cfg, log: log}
}

// Setup resolves every name in the config and builds the initial state.
func (e *Experiment) Setup(r *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	d, err := coagulation.ParseDistributionType(e.cfg.Distribution)
	if err != nil {
		return err
	}
	strategy, err := r.GetStrategy(e.cfg, e.log)
	if err != nil {
		return err
	}
	integrator, err := r.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}
	ms, err := r.GetMetrics(e.cfg.Metrics, d)
	if err != nil {
		return err
	}
	atm, err := e.cfg.Atmosphere()
	if err != nil {
		return err
	}
	p, err := e.cfg.BuildParticles(d == coagulation.ContinuousPDF)
	if err != nil {
		return err
	}

	e.simulator = sim.New(strategy, integrator, sim.WithLogger(e.log))
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	e.particles = p
	e.env = atm.Environment
	e.dist = d
	return nil
}

// Run advances a copy of the initial particles, so Run may be called
// repeatedly.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.particles.Clone(), e.env, e.SimConfig())
}

func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Dt:       e.cfg.Dt,
		Duration: e.cfg.Duration,
		Adaptive: e.cfg.Adaptive,
		MinDt:    e.cfg.MinDt,
	}
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config                     { return e.cfg }
func (e *Experiment) Particles() *particle.Representation        { return e.particles.Clone() }
func (e *Experiment) Environment() gas.Environment               { return e.env }
func (e *Experiment) Distribution() coagulation.DistributionType { return e.dist }
