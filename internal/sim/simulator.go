package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// MaxSteps bounds the number of steps a single Run may take.
const MaxSteps = math.MaxInt32

type Simulator struct {
	grid       *cloth.Grid
	scene      Scene
	initial    Scene
	controller Controller
	metrics    []Metric
	observers  []Observer
	t          float64
}

// New builds a simulator over grid. A nil controller leaves the scene untouched.
func New(grid *cloth.Grid, scene Scene, controller Controller) *Simulator {
	return &Simulator{
		grid:       grid,
		scene:      scene,
		initial:    scene.Clone(),
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Grid() *cloth.Grid { return s.grid }
func (s *Simulator) Scene() *Scene     { return &s.scene }
func (s *Simulator) Time() float64     { return s.t }

// Reset returns the grid and scene to their initial state and rewinds time.
func (s *Simulator) Reset() {
	s.grid.Reset()
	s.scene = s.initial.Clone()
	s.t = 0
	if s.controller != nil {
		s.controller.Reset()
	}
}

// Step advances the cloth by dt: controller, external fields, springs, self
// collision, spheres in order, integration. A non-positive dt is a paused
// frame and does nothing.
func (s *Simulator) Step(dt float64) error {
	if dt <= 0 {
		return nil
	}
	if s.controller != nil {
		s.controller.Update(&s.scene, s.t, dt)
	}

	g := s.grid
	g.ApplyExternalForce(s.scene.Gravity)
	g.ApplyExternalForce(s.scene.Wind)
	for _, f := range s.scene.Fields {
		g.ApplyExternalForce(f)
	}
	if err := g.ApplyInternalForces(dt); err != nil {
		return err
	}
	if s.scene.Self != nil {
		if err := g.ResolveSelfCollision(s.scene.Self); err != nil {
			return err
		}
	}
	for i, sphere := range s.scene.Spheres {
		if err := g.ResolveSphereCollision(sphere, dt); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	if err := g.Integrate(dt); err != nil {
		return err
	}

	s.t += dt
	return nil
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	every := cfg.SampleEvery
	if every <= 0 {
		every = 1
	}
	steps := int(cfg.Duration/cfg.Dt + 0.5)
	result := &Result{
		MetricNames: make([]string, len(s.metrics)),
		Samples:     make([]Sample, 0, steps/every+2),
		Metrics:     make(map[string]float64),
		Errors:      make([]error, 0),
	}
	for i, m := range s.metrics {
		m.Reset()
		result.MetricNames[i] = m.Name()
	}

	s.observe()
	result.Samples = append(result.Samples, s.sample())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if err := s.Step(cfg.Dt); err != nil {
			return result, &dynamo.SimError{Step: i, Time: s.t, Err: err}
		}
		result.StepsTaken++

		if cfg.ValidateState && !s.grid.Valid() {
			err := &dynamo.SimError{Step: i, Time: s.t, Err: dynamo.ErrUnstable}
			result.Errors = append(result.Errors, err)
			break
		}

		s.observe()
		if (i+1)%every == 0 || i == steps-1 {
			result.Samples = append(result.Samples, s.sample())
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Final = s.grid.Positions()

	return result, nil
}

func (s *Simulator) observe() {
	for _, m := range s.metrics {
		m.Observe(s.grid, s.t)
	}
	for _, obs := range s.observers {
		obs.OnStep(s.grid, s.t)
	}
}

func (s *Simulator) sample() Sample {
	values := make([]float64, len(s.metrics))
	for i, m := range s.metrics {
		values[i] = m.Value()
	}
	return Sample{Time: s.t, Tip: s.grid.TipDisplacement(), Metrics: values}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if err := CheckDuration(cfg.Dt, cfg.Duration); err != nil {
		return err
	}
	for i, sp := range s.scene.Spheres {
		if err := sp.Validate(); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	if s.scene.Self != nil {
		if err := s.scene.Self.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CheckDuration rejects a non-positive or non-finite dt or duration and runs
// longer than MaxSteps.
func CheckDuration(dt, duration float64) error {
	if !(dt > 0) || math.IsInf(dt, 1) {
		return fmt.Errorf("%w: dt must be positive and finite, got %g", dynamo.ErrInvalidTimeStep, dt)
	}
	if !(duration > 0) || math.IsInf(duration, 1) {
		return fmt.Errorf("%w: duration must be positive and finite, got %g", dynamo.ErrParameterBounds, duration)
	}
	if duration/dt > MaxSteps {
		return fmt.Errorf("%w: duration %g at dt %g exceeds %d steps", dynamo.ErrParameterBounds, duration, dt, MaxSteps)
	}
	return nil
}
