package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/coagsim/internal/experiment"
)

// BuildFunc builds a ready-to-run experiment for one parameter point.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search returns the point that minimizes the named metric. Points whose
// build or run fails are skipped; an error is returned only when every
// point failed or ctx was cancelled.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("optim: %d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64
	var lastErr error

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		exp, err := build(params)
		if err != nil {
			lastErr = err
			return
		}
		result, err := exp.Run(ctx)
		if err != nil {
			lastErr = err
			return
		}
		val, ok := result.Metrics[metricName]
		if !ok {
			lastErr = fmt.Errorf("optim: metric %q not recorded", metricName)
			return
		}
		if val < best {
			best = val
			bestParams = copyParams(params)
		}
	})
	if err != nil {
		return bestParams, best, err
	}
	if bestParams == nil {
		if lastErr == nil {
			lastErr = errors.New("optim: empty grid")
		}
		return nil, best, lastErr
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := copyParams(current)
		newParams[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}

func copyParams(p map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
