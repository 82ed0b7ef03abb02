package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/san-kum/coagsim/internal/sim"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Campaign is a set of scenarios loaded from one YAML file.
type Campaign struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parallelism int            `yaml:"parallelism"`
	Steps       []CampaignStep `yaml:"steps"`
}

// CampaignStep is one scenario. It starts from a preset when one is
// named, otherwise from the defaults, and Config overrides on top.
type CampaignStep struct {
	Name     string    `yaml:"name"`
	Strategy string    `yaml:"strategy"`
	Preset   string    `yaml:"preset"`
	Config   yaml.Node `yaml:"config"`
	SaveAs   string    `yaml:"save_as"`
}

// StepResult pairs a finished step with its resolved config.
type StepResult struct {
	Name   string
	SaveAs string
	Config *config.Config
	Result *sim.Result
}

// LoadCampaign loads a campaign from a YAML file
func LoadCampaign(path string) (*Campaign, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var campaign Campaign
	if err := yaml.Unmarshal(data, &campaign); err != nil {
		return nil, fmt.Errorf("automation: %s: %w", path, err)
	}
	return &campaign, nil
}

// Resolve builds the config of one step.
func (s CampaignStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		cfg = config.GetPreset(s.Strategy, s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %s/%s", s.Strategy, s.Preset)
		}
	} else if s.Strategy != "" {
		cfg.Strategy = s.Strategy
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunCampaign executes every step concurrently and returns the results in
// step order. The first failure cancels the remaining steps.
func RunCampaign(ctx context.Context, campaign *Campaign, registry *experiment.Registry, log logrus.FieldLogger) ([]StepResult, error) {
	results := make([]StepResult, len(campaign.Steps))

	g, ctx := errgroup.WithContext(ctx)
	if campaign.Parallelism > 0 {
		g.SetLimit(campaign.Parallelism)
	}
	for i, step := range campaign.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		g.Go(func() error {
			cfg, err := step.Resolve()
			if err != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, name, err)
			}

			stepLog := log.WithField("step", name)
			exp := experiment.New(cfg, stepLog)
			if err := exp.Setup(registry); err != nil {
				return fmt.Errorf("step %d (%s) setup: %w", i+1, name, err)
			}
			start := time.Now()
			result, err := exp.Run(ctx)
			if err != nil {
				return fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
			}
			stepLog.WithFields(logrus.Fields{
				"strategy": cfg.Strategy,
				"elapsed":  time.Since(start).Round(time.Millisecond),
			}).Info("step complete")

			results[i] = StepResult{Name: name, SaveAs: step.SaveAs, Config: cfg, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ParameterSweep runs one scenario across evenly spaced values of a
// single parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue  float64
	FinalNumber float64
	FinalMass   float64
	LostMass    float64
	Unstable    int
}

// SetParam applies a named scalar to cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "temperature":
		cfg.Environment.Temperature = v
	case "pressure":
		cfg.Environment.Pressure = v
	case "dt":
		cfg.Dt = v
	case "duration":
		cfg.Duration = v
	case "number":
		cfg.Particles.Number = v
	case "mode_radius":
		cfg.Particles.ModeRadius = v
	case "gsd":
		cfg.Particles.GSD = v
	case "density":
		cfg.Particles.Density = v
	case "charge":
		cfg.Particles.Charge = v
	case "dissipation":
		cfg.Turbulence.Dissipation = v
	default:
		return fmt.Errorf("automation: unknown parameter %q", name)
	}
	return nil
}

// RunSweep executes a parameter sweep concurrently.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log logrus.FieldLogger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("automation: sweep needs at least one step")
	}
	if err := SetParam(sweep.Base.Clone(), sweep.ParamName, sweep.ParamMin); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}
	results := make([]SweepResult, sweep.NumSteps)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		g.Go(func() error {
			cfg := sweep.Base.Clone()
			_ = SetParam(cfg, sweep.ParamName, paramVal)
			result, err := runOne(ctx, cfg, registry, log.WithField(sweep.ParamName, paramVal))
			if err != nil {
				return fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
			}
			results[i] = SweepResult{
				ParamValue:  paramVal,
				FinalNumber: result.Metrics["total_number"],
				FinalMass:   result.Metrics["total_mass"],
				LostMass:    result.LostMass,
				Unstable:    result.Unstable,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloConfig perturbs the initial number concentration and mode
// radius of Base by a relative amount.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

// MonteCarloResult holds statistics from Monte Carlo runs
type MonteCarloResult struct {
	TrialID     int
	Number      float64
	ModeRadius  float64
	FinalNumber float64
	Stable      bool // no concentration was clamped
}

// RunMonteCarlo executes the trials concurrently. Perturbations are drawn
// up front so results depend only on Seed.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, registry *experiment.Registry, log logrus.FieldLogger) ([]MonteCarloResult, error) {
	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfgs := make([]*config.Config, mc.NumTrials)
	for i := range cfgs {
		cfg := mc.Base.Clone()
		cfg.Particles.Number *= 1 + (rng.Float64()-0.5)*2*mc.Perturbation
		cfg.Particles.ModeRadius *= 1 + (rng.Float64()-0.5)*2*mc.Perturbation
		cfgs[i] = cfg
	}

	results := make([]MonteCarloResult, mc.NumTrials)
	g, ctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			result, err := runOne(ctx, cfg, registry, log.WithField("trial", i))
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			results[i] = MonteCarloResult{
				TrialID:     i,
				Number:      cfg.Particles.Number,
				ModeRadius:  cfg.Particles.ModeRadius,
				FinalNumber: result.Metrics["total_number"],
				Stable:      result.Unstable == 0,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) (stableCount, unstableCount int, meanFinal, stdFinal float64) {
	finals := make([]float64, len(results))
	for i, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
		finals[i] = r.FinalNumber
	}
	if len(finals) > 1 {
		meanFinal, stdFinal = stat.MeanStdDev(finals, nil)
	} else if len(finals) == 1 {
		meanFinal = finals[0]
	}
	return
}

func runOne(ctx context.Context, cfg *config.Config, registry *experiment.Registry, log logrus.FieldLogger) (*sim.Result, error) {
	cfg.Metrics = ensure(cfg.Metrics, "total_number", "total_mass")
	exp := experiment.New(cfg, log)
	if err := exp.Setup(registry); err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

func ensure(names []string, want ...string) []string {
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, w := range want {
		if !have[w] {
			names = append(names, w)
		}
	}
	return names
}
