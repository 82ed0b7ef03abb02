package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/coagulation"
	"github.com/san-kum/coagsim/internal/gas"
	"github.com/san-kum/coagsim/internal/particle"
	"github.com/sirupsen/logrus"
)

type Simulator struct {
	strategy   coagulation.Strategy
	integrator Integrator
	metrics    []Metric
	observers  []Observer
	log        logrus.FieldLogger
}

type Option func(*Simulator)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Simulator) { s.log = l }
}

func New(strategy coagulation.Strategy, integrator Integrator, opts ...Option) *Simulator {
	s := &Simulator{
		strategy:   strategy,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Strategy() coagulation.Strategy { return s.strategy }
func (s *Simulator) Integrator() Integrator         { return s.integrator }

// Run advances p in place for cfg.Duration and records a snapshot after
// every step. On error the partial result is returned along with it.
func (s *Simulator) Run(ctx context.Context, p *particle.Representation, env gas.Environment, cfg Config) (*Result, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if !env.Valid() {
		return nil, fmt.Errorf("%w: %v", gas.ErrInvalidPhysicalState, env)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	steps := StepCount(cfg)
	result := &Result{
		Times:          make([]float64, 0, steps+1),
		Concentrations: make([][]float64, 0, steps+1),
		Reports:        make([]coagulation.StepReport, 0, steps),
		Metrics:        make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
		if st, ok := m.(Starter); ok {
			st.Start(p)
		}
	}

	result.Times = append(result.Times, 0)
	result.Concentrations = append(result.Concentrations, p.Concentration())

	t := 0.0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		h := math.Min(cfg.Dt, cfg.Duration-t)
		report, err := s.advance(p, env, h, cfg, result)
		if err != nil {
			s.collect(result)
			return result, &StepError{Step: i, Time: t, Err: err}
		}

		t = math.Min(float64(i+1)*cfg.Dt, cfg.Duration)
		for _, m := range s.metrics {
			m.Observe(p, report, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(p, report, t)
		}

		result.Times = append(result.Times, t)
		result.Concentrations = append(result.Concentrations, p.Concentration())
		result.Reports = append(result.Reports, report)
	}

	s.collect(result)
	s.log.WithFields(logrus.Fields{
		"strategy":   s.strategy.Name(),
		"integrator": s.integrator.Name(),
		"steps":      result.StepsTaken,
		"unstable":   result.Unstable,
	}).Debug("run complete")
	return result, nil
}

// RunWithCallback steps p until cfg.Duration or until callback returns
// false. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, p *particle.Representation, env gas.Environment, cfg Config, callback func(*particle.Representation, float64) bool) error {
	if err := ValidateConfig(cfg); err != nil {
		return err
	}
	if !env.Valid() {
		return fmt.Errorf("%w: %v", gas.ErrInvalidPhysicalState, env)
	}

	scratch := &Result{}
	t := 0.0
	for i := 0; i < StepCount(cfg); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(p, t) {
			return nil
		}

		h := math.Min(cfg.Dt, cfg.Duration-t)
		if _, err := s.advance(p, env, h, cfg, scratch); err != nil {
			return &StepError{Step: i, Time: t, Err: err}
		}
		t = math.Min(float64(i+1)*cfg.Dt, cfg.Duration)
	}
	callback(p, t)
	return nil
}

// Step commits a single interval h to p, splitting it the same way Run does.
func (s *Simulator) Step(p *particle.Representation, env gas.Environment, h float64, cfg Config) (coagulation.StepReport, error) {
	return s.advance(p, env, h, cfg, &Result{})
}

// advance covers one output interval h, splitting it into halved
// sub-steps when adaptive stepping is on.
func (s *Simulator) advance(p *particle.Representation, env gas.Environment, h float64, cfg Config, result *Result) (coagulation.StepReport, error) {
	total := coagulation.StepReport{Dt: h}
	remaining := h
	for remaining > 0 {
		dt := remaining
		next, report, err := s.integrator.Advance(s.strategy, p, env, dt)
		for err == nil && cfg.Adaptive && report.Unstable() && dt/2 >= cfg.MinDt {
			dt /= 2
			next, report, err = s.integrator.Advance(s.strategy, p, env, dt)
		}
		if err != nil {
			return total, err
		}
		if err := p.SetConcentration(next); err != nil {
			return total, err
		}

		result.StepsTaken++
		result.LostMass += report.LostMass
		total.LostMass += report.LostMass
		if report.Unstable() {
			result.Unstable++
			total.Clamped = mergeIndices(total.Clamped, report.Clamped)
			s.log.WithFields(logrus.Fields{
				"strategy": s.strategy.Name(),
				"dt":       dt,
				"clamped":  report.Clamped,
			}).Warn("negative concentration clamped to zero; reduce the time step")
		}
		remaining -= dt
		if remaining < h*1e-12 {
			break
		}
	}
	return total, nil
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func ValidateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.Adaptive && (cfg.MinDt <= 0 || cfg.MinDt > cfg.Dt) {
		return fmt.Errorf("%w: min dt must be in (0, dt] for adaptive stepping, got %g", ErrInvalidConfig, cfg.MinDt)
	}
	return nil
}

// StepCount is the number of output intervals in a run. The last one is
// shortened when Duration is not a multiple of Dt.
func StepCount(cfg Config) int {
	return int(math.Ceil(cfg.Duration/cfg.Dt - 1e-9))
}

func mergeIndices(a, b []int) []int {
	seen := make(map[int]bool, len(a))
	for _, i := range a {
		seen[i] = true
	}
	for _, i := range b {
		if !seen[i] {
			a = append(a, i)
			seen[i] = true
		}
	}
	return a
}
