package experiment

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/integrators"
	"github.com/san-kum/coagsim/internal/metrics"
	"github.com/san-kum/coagsim/internal/sim"
	"github.com/sirupsen/logrus"
)

// StrategyFactory builds a strategy from a scenario config.
type StrategyFactory func(cfg *config.Config, d coagulation.DistributionType, opts ...coagulation.Option) (coagulation.Strategy, error)

type Registry struct {
	strategies  map[string]StrategyFactory
	integrators map[string]func() sim.Integrator
	metrics     map[string]func(coagulation.DistributionType) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		strategies:  make(map[string]StrategyFactory),
		integrators: make(map[string]func() sim.Integrator),
		metrics:     make(map[string]func(coagulation.DistributionType) sim.Metric),
	}

	r.strategies["brownian"] = func(_ *config.Config, d coagulation.DistributionType, opts ...coagulation.Option) (coagulation.Strategy, error) {
		return coagulation.NewBrownian(d, opts...), nil
	}
	r.strategies["turbulent_shear"] = func(cfg *config.Config, d coagulation.DistributionType, opts ...coagulation.Option) (coagulation.Strategy, error) {
		return coagulation.NewTurbulentShear(d, cfg.Turbulence.Dissipation, cfg.Turbulence.FluidDensity, opts...)
	}
	r.strategies["charged"] = func(cfg *config.Config, d coagulation.DistributionType, opts ...coagulation.Option) (coagulation.Strategy, error) {
		a, err := coagulation.ParseApproximation(cfg.Charged.Approximation)
		if err != nil {
			return nil, err
		}
		return coagulation.NewCharged(d, a, opts...)
	}

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() sim.Integrator { return integrators.NewRK45() }

	r.metrics["total_number"] = func(d coagulation.DistributionType) sim.Metric { return metrics.NewTotalNumber(d) }
	r.metrics["total_mass"] = func(d coagulation.DistributionType) sim.Metric { return metrics.NewTotalMass(d) }
	r.metrics["mean_radius"] = func(d coagulation.DistributionType) sim.Metric { return metrics.NewMeanRadius(d) }
	r.metrics["lost_mass"] = func(coagulation.DistributionType) sim.Metric { return metrics.NewLostMass() }
	r.metrics["mass_drift"] = func(d coagulation.DistributionType) sim.Metric { return metrics.NewMassDrift(d) }
	r.metrics["stability"] = func(coagulation.DistributionType) sim.Metric { return metrics.NewStability() }

	return r
}

// GetStrategy accepts a single name or several joined with "+", which
// builds a combined strategy.
func (r *Registry) GetStrategy(cfg *config.Config, log logrus.FieldLogger) (coagulation.Strategy, error) {
	d, err := coagulation.ParseDistributionType(cfg.Distribution)
	if err != nil {
		return nil, err
	}
	policy, err := coagulation.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		return nil, err
	}
	opts := []coagulation.Option{coagulation.WithMergePolicy(policy)}
	if log != nil {
		opts = append(opts, coagulation.WithLogger(log))
	}

	names := strings.Split(cfg.Strategy, "+")
	members := make([]coagulation.Strategy, 0, len(names))
	for _, name := range names {
		fn, ok := r.strategies[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("unknown strategy: %s", name)
		}
		s, err := fn(cfg, d, opts...)
		if err != nil {
			return nil, err
		}
		members = append(members, s)
	}
	if len(members) == 1 {
		return members[0], nil
	}
	return coagulation.NewCombined(members, opts...)
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetMetrics(names []string, d coagulation.DistributionType) ([]sim.Metric, error) {
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		fn, ok := r.metrics[name]
		if !ok {
			return nil, fmt.Errorf("unknown metric: %s", name)
		}
		out = append(out, fn(d))
	}
	return out, nil
}

func (r *Registry) ListStrategies() []string  { return keys(r.strategies) }
func (r *Registry) ListIntegrators() []string { return keys(r.integrators) }
func (r *Registry) ListMetrics() []string     { return keys(r.metrics) }

func keys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
