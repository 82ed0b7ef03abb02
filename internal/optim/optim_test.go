package optim

import (
	"context"
	"io"
	"testing"

	"github.com/san-kum/coagsim/internal/config"
	"github.com/san-kum/coagsim/internal/experiment"
	"github.com/sirupsen/logrus"
)

func quiet() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func nucleation() *config.Config {
	cfg := config.GetPreset("brownian", "nucleation")
	cfg.Integrator = "euler"
	cfg.Particles.Bins = 30
	cfg.Duration = 10
	return cfg
}

func TestLargestStableDt(t *testing.T) {
	dt, trials, err := LargestStableDt(context.Background(), nucleation(), experiment.NewRegistry(),
		[]float64{1e4, 1e-2, 100, 1}, quiet())
	if err != nil {
		t.Fatalf("tune failed: %v", err)
	}
	if len(trials) != 4 || trials[0].Dt != 1e-2 {
		t.Fatalf("expected 4 trials in ascending order, got %+v", trials)
	}
	if trials[3].Stable() {
		t.Error("expected dt=1e4 to be unstable")
	}
	if !trials[0].Stable() {
		t.Error("expected dt=1e-2 to be stable")
	}
	if dt < 1e-2 || dt >= 1e4 {
		t.Errorf("unexpected largest stable dt %g", dt)
	}
}

func TestLargestStableDtNone(t *testing.T) {
	_, _, err := LargestStableDt(context.Background(), nucleation(), experiment.NewRegistry(), []float64{1e5}, quiet())
	if err == nil {
		t.Error("expected error when nothing is stable")
	}
}

func TestGridSearch(t *testing.T) {
	g := NewGridSearch([]string{"temperature"}, [][]float64{{250, 300, 350}})
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.DefaultConfig()
		cfg.Particles.Bins = 30
		cfg.Particles.Number = 1e12
		cfg.Duration = 10
		cfg.Environment.Temperature = params["temperature"]
		cfg.Metrics = []string{"total_number"}
		e := experiment.New(cfg, quiet())
		return e, e.Setup(experiment.NewRegistry())
	}

	best, val, err := g.Search(context.Background(), build, "total_number")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	// hotter gas coagulates faster and leaves fewer particles
	if best["temperature"] != 350 {
		t.Errorf("expected 350 K, got %v (%g)", best, val)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"x"}, [][]float64{{1}})
	_, _, err := g.Search(ctx, func(map[string]float64) (*experiment.Experiment, error) {
		t.Fatal("build should not run")
		return nil, nil
	}, "total_number")
	if err == nil {
		t.Error("expected cancellation error")
	}
}
