package optim

import (
	"context"
	"fmt"
	"log"
	"math"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/experiment"
)

// GridSearch evaluates every combination of parameter values and keeps the
// one minimizing a metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d value lists", len(params), len(ranges))
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Evaluation is the metric value reached at one grid point. Failed points
// carry the error and an infinite value.
type Evaluation struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// Search runs one simulation per grid point starting from base. It returns
// the best point and every evaluation in visiting order.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (Evaluation, []Evaluation, error) {
	best := Evaluation{Value: math.Inf(1)}
	all := make([]Evaluation, 0)

	var visit func(depth int, current map[string]float64) error
	visit = func(depth int, current map[string]float64) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if depth == len(g.paramNames) {
			ev := g.evaluate(ctx, base, current, metricName)
			all = append(all, ev)
			if ev.Err == nil && ev.Value < best.Value {
				best = ev
			}
			return nil
		}
		for _, v := range g.ranges[depth] {
			next := make(map[string]float64, len(current)+1)
			for k, cv := range current {
				next[k] = cv
			}
			next[g.paramNames[depth]] = v
			if err := visit(depth+1, next); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visit(0, map[string]float64{}); err != nil {
		return best, all, err
	}
	if best.Params == nil {
		return best, all, fmt.Errorf("no grid point produced %q", metricName)
	}
	return best, all, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base *config.Config, params map[string]float64, metricName string) Evaluation {
	ev := Evaluation{Params: params, Value: math.Inf(1)}
	cfg := base.Clone()
	for name, v := range params {
		if ev.Err = cfg.Set(name, v); ev.Err != nil {
			return ev
		}
	}

	exp := experiment.New(cfg)
	if ev.Err = exp.Setup(); ev.Err != nil {
		return ev
	}
	result, err := exp.Run(ctx)
	if err != nil {
		ev.Err = err
		return ev
	}
	if len(result.Errors) > 0 {
		ev.Err = result.Errors[0]
		return ev
	}
	v, ok := result.Metrics[metricName]
	if !ok {
		ev.Err = fmt.Errorf("unknown metric %q", metricName)
		return ev
	}
	ev.Value = v
	log.Printf("grid search: %v -> %s=%.6g", params, metricName, v)
	return ev
}
