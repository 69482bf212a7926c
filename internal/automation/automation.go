package automation

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults), overlays an optional
// config file and then applies Set overrides.
type ScenarioStep struct {
	Preset string             `yaml:"preset"`
	Config string             `yaml:"config"`
	Set    map[string]float64 `yaml:"set"`
	SaveAs string             `yaml:"save_as"`
}

type StepResult struct {
	Name   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &scenario, nil
}

// Resolve builds the config a step describes.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %v)", s.Preset, config.ListPresets())
		}
	}
	if s.Config != "" {
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	for name, v := range s.Set {
		if err := cfg.Set(name, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func (s ScenarioStep) name(i int) string {
	switch {
	case s.SaveAs != "":
		return s.SaveAs
	case s.Preset != "":
		return s.Preset
	}
	return fmt.Sprintf("step%d", i+1)
}

// RunScenario runs every step in order. Steps with save_as are stored when
// store is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.name(i)
		log.Printf("scenario %s: step %d/%d (%s)", scenario.Name, i+1, len(scenario.Steps), name)

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Result: result}
		if store != nil && step.SaveAs != "" {
			if sr.RunID, err = store.Save(step.SaveAs, cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs one simulation per value of a named parameter,
// spaced evenly over [Min, Max].
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min, Max float64
	NumSteps int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	Tip        metrics.Summary
	Stable     bool
	Err        error
}

func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

// RunSweep executes the sweep. A point that fails validation or diverges is
// recorded with Stable false rather than aborting the sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	values := sweep.Values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.Param, v); err != nil {
			return nil, err
		}

		sr := SweepResult{ParamValue: v}
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			sr.Err = err
			results = append(results, sr)
			continue
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}
		sr.Metrics = result.Metrics
		sr.Tip = metrics.Summarize(result.Series("tip"))
		sr.Stable = len(result.Errors) == 0 && result.Metrics["stability"] == 1
		if len(result.Errors) > 0 {
			sr.Err = result.Errors[0]
		}
		results = append(results, sr)

		log.Printf("sweep %d/%d: %s=%.4g stable=%v", i+1, len(values), sweep.Param, v, sr.Stable)
	}

	return results, nil
}

// MonteCarloResult is one seeded member of an ensemble.
type MonteCarloResult struct {
	Seed   int64
	Result *sim.Result
	Stable bool
}

// RunMonteCarlo runs trials copies of cfg concurrently with seeds
// seedStart, seedStart+1, ... Seeds only matter to random controllers.
func RunMonteCarlo(ctx context.Context, cfg *config.Config, trials int, seedStart int64) ([]MonteCarloResult, error) {
	exp := experiment.New(cfg)
	results, err := sim.NewEnsemble(exp.Factory(), trials, seedStart).Run(ctx, cfg.SimConfig())
	if err != nil {
		return nil, err
	}

	out := make([]MonteCarloResult, len(results))
	for i, r := range results {
		out[i] = MonteCarloResult{
			Seed:   seedStart + int64(i),
			Result: r,
			Stable: len(r.Errors) == 0 && r.Metrics["stability"] == 1,
		}
	}
	return out, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
