package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/sim"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Cloth.GridW, cfg.Cloth.GridH = 6, 4
	cfg.Duration = 0.5
	return cfg
}

func TestRegistryUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.GetIntegrator("rk4"); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("GetIntegrator(rk4) = %v", err)
	}
	if _, err := r.GetController("pid", config.DefaultConfig()); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("GetController(pid) = %v", err)
	}
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()
	if got := r.ListIntegrators(); len(got) != 2 || got[0] != "euler" || got[1] != "symplectic" {
		t.Errorf("ListIntegrators() = %v", got)
	}
	if got := r.ListControllers(); len(got) != 3 {
		t.Errorf("ListControllers() = %v", got)
	}
	integ, err := r.GetIntegrator("")
	if err != nil || integ.Name() != "symplectic" {
		t.Errorf("default integrator = %v, %v", integ, err)
	}
}

func TestExperimentRun(t *testing.T) {
	e := New(smallConfig())
	if err := e.Setup(); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.StepsTaken != 30 {
		t.Errorf("expected 30 steps, got %d", result.StepsTaken)
	}
	if len(result.MetricNames) != 6 {
		t.Errorf("expected 6 metrics, got %v", result.MetricNames)
	}
	if _, ok := result.Metrics["stability"]; !ok {
		t.Errorf("missing stability metric in %v", result.Metrics)
	}
}

func TestExperimentRunBeforeSetup(t *testing.T) {
	if _, err := New(smallConfig()).Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
}

func TestExperimentInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Integrator = "leapfrog"
	if err := New(cfg).Setup(); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("Setup() = %v", err)
	}

	cfg = smallConfig()
	cfg.Cloth.GridH = 1
	if err := New(cfg).Setup(); !errors.Is(err, dynamo.ErrInvalidGridDimension) {
		t.Errorf("Setup() = %v", err)
	}
}

func TestBuildScene(t *testing.T) {
	cfg := smallConfig()
	cfg.SelfCollision.Enabled = true
	e := New(cfg)
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}
	grid := e.Simulator().Grid()

	scene := BuildScene(cfg, grid)
	if scene.Wind != cfg.Forces.Wind || scene.Gravity != cfg.Forces.Gravity {
		t.Errorf("forces not copied: %+v", scene)
	}
	if len(scene.Spheres) != 1 || scene.Spheres[0].Radius != 1 {
		t.Errorf("spheres = %+v", scene.Spheres)
	}
	if scene.Self == nil || scene.Self.MinSeparation != grid.DefaultSeparation() {
		t.Errorf("self collision = %+v", scene.Self)
	}
}

func TestManualReachesScene(t *testing.T) {
	cfg := smallConfig()
	cfg.Forces.Wind = mgl64.Vec3{}
	e := New(cfg)
	if err := e.Setup(); err != nil {
		t.Fatal(err)
	}

	e.Manual().NudgeWind(mgl64.Vec3{0, 0, 0.1})
	if err := e.Simulator().Step(cfg.Dt); err != nil {
		t.Fatal(err)
	}
	if got := e.Simulator().Scene().Wind; got != (mgl64.Vec3{0, 0, 0.1}) {
		t.Errorf("wind = %v", got)
	}
}

func TestFactoryEnsemble(t *testing.T) {
	cfg := smallConfig()
	cfg.Controller = "gust"
	e := New(cfg)

	results, err := sim.NewEnsemble(e.Factory(), 3, 10).Run(context.Background(), cfg.SimConfig())
	if err != nil {
		t.Fatalf("ensemble: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Final[len(results[0].Final)-1] == results[1].Final[len(results[1].Final)-1] {
		t.Error("different seeds produced identical gusts")
	}
}
