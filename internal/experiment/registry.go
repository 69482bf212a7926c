package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/control"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

// StabilityBound is the distance from the origin beyond which a particle
// counts as blown up.
const StabilityBound = 100.0

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	controllers map[string]func(cfg *config.Config) sim.Controller
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		controllers: make(map[string]func(cfg *config.Config) sim.Controller),
	}

	r.integrators["symplectic"] = func() dynamo.Integrator { return integrators.NewSymplecticEuler() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }

	r.controllers["none"] = func(cfg *config.Config) sim.Controller { return control.NewNone() }
	r.controllers["gust"] = func(cfg *config.Config) sim.Controller {
		p := cfg.ControllerParams
		return control.NewGust(p.GustStrength, p.GustInterval, cfg.Seed)
	}
	r.controllers["drive"] = func(cfg *config.Config) sim.Controller {
		p := cfg.ControllerParams
		return control.NewSphereDriver(p.DriveSphere, p.DriveAxis, p.DriveAmplitude, p.DrivePeriod)
	}

	return r
}

// GetIntegrator resolves an integrator name; the empty name is the default.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	if name == "" {
		return integrators.Default(), nil
	}
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownComponent, name)
	}
	return fn(), nil
}

func (r *Registry) GetController(name string, cfg *config.Config) (sim.Controller, error) {
	if name == "" {
		name = "none"
	}
	fn, ok := r.controllers[name]
	if !ok {
		return nil, fmt.Errorf("%w: controller %q", dynamo.ErrUnknownComponent, name)
	}
	return fn(cfg), nil
}

func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListControllers() []string { return sortedKeys(r.controllers) }

func (r *Registry) DefaultMetrics() []sim.Metric {
	return []sim.Metric{
		metrics.NewKineticEnergy(),
		metrics.NewSpringEnergy(),
		metrics.NewEnergyDrift(),
		metrics.NewSag(),
		metrics.NewPeakStrain(),
		metrics.NewStability(StabilityBound),
	}
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
