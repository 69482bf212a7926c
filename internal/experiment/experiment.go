package experiment

import (
	"context"
	"fmt"
	"log"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/control"
	"github.com/san-kum/clothsim/internal/sim"
)

// Experiment wires a config into a ready simulator.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	simulator *sim.Simulator
	manual    *control.Manual
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: NewRegistry()}
}

// Setup validates the config and builds the grid, scene, controller and
// metrics. The configured controller is chained with a Manual controller
// so interactive front ends can nudge the scene.
func (e *Experiment) Setup() error {
	s, manual, err := e.build(e.cfg)
	if err != nil {
		return err
	}
	e.simulator, e.manual = s, manual
	log.Printf("experiment: %dx%d grid, %d springs, integrator=%s controller=%s",
		e.cfg.Cloth.GridW, e.cfg.Cloth.GridH, s.Grid().SpringCount(),
		s.Grid().Integrator().Name(), e.cfg.Controller)
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

// Manual returns the controller that queues interactive nudges.
func (e *Experiment) Manual() *control.Manual { return e.manual }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Factory builds independent simulators for an ensemble; each member gets
// its own copy of the config with the seed replaced.
func (e *Experiment) Factory() sim.Factory {
	return func(seed int64) (*sim.Simulator, error) {
		cfg := e.cfg.Clone()
		cfg.Seed = seed
		s, _, err := e.build(cfg)
		return s, err
	}
}

func (e *Experiment) build(cfg *config.Config) (*sim.Simulator, *control.Manual, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	integ, err := e.registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, nil, err
	}
	ctrl, err := e.registry.GetController(cfg.Controller, cfg)
	if err != nil {
		return nil, nil, err
	}

	grid, err := cloth.New(cfg.Cloth.Mass, cfg.Cloth.Width, cfg.Cloth.Height, cfg.Cloth.GridW, cfg.Cloth.GridH,
		cloth.WithSprings(cfg.SpringParams()),
		cloth.WithAnchor(cloth.Anchor(cfg.Cloth.Anchor)),
		cloth.WithIntegrator(integ),
	)
	if err != nil {
		return nil, nil, err
	}

	manual := control.NewManual()
	s := sim.New(grid, BuildScene(cfg, grid), control.Chain{ctrl, manual})
	for _, m := range e.registry.DefaultMetrics() {
		s.AddMetric(m)
	}
	return s, manual, nil
}

// BuildScene turns the force and collider sections of cfg into a scene for grid.
func BuildScene(cfg *config.Config, grid *cloth.Grid) sim.Scene {
	scene := sim.Scene{
		Gravity: cfg.Forces.Gravity,
		Wind:    cfg.Forces.Wind,
		Fields:  append(cfg.Forces.Fields[:0:0], cfg.Forces.Fields...),
	}
	for _, s := range cfg.Spheres {
		scene.Spheres = append(scene.Spheres, s.Sphere())
	}
	if cfg.SelfCollision.Enabled {
		sep := cfg.SelfCollision.MinSeparation
		if sep == 0 {
			sep = grid.DefaultSeparation()
		}
		scene.Self = cloth.NewSelfCollision(sep)
	}
	return scene
}
