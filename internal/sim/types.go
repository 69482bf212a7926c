package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/cloth"
)

// Scene holds the control parameters a controller may change between steps.
type Scene struct {
	Gravity mgl64.Vec3
	Wind    mgl64.Vec3
	Fields  []mgl64.Vec3
	Spheres []cloth.Sphere
	Self    *cloth.SelfCollision
}

// Clone copies the scene so the copy can be mutated independently.
func (s Scene) Clone() Scene {
	c := s
	c.Fields = append([]mgl64.Vec3(nil), s.Fields...)
	c.Spheres = append([]cloth.Sphere(nil), s.Spheres...)
	if s.Self != nil {
		c.Self = cloth.NewSelfCollision(s.Self.MinSeparation)
	}
	return c
}

// Controller mutates scene parameters before each step.
type Controller interface {
	Update(scene *Scene, t, dt float64)
	Reset()
}

type Metric interface {
	Name() string
	Observe(g *cloth.Grid, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(g *cloth.Grid, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      10.0,
		SampleEvery:   1,
		ValidateState: true,
	}
}

// Sample is one recorded row of a run's time series.
type Sample struct {
	Time    float64
	Tip     float64
	Metrics []float64
}

type Result struct {
	MetricNames []string
	Samples     []Sample
	Metrics     map[string]float64
	Final       []mgl64.Vec3
	StepsTaken  int
	Errors      []error
}

// Series returns the values of one recorded metric over time, or the tip
// displacement for name "tip".
func (r *Result) Series(name string) []float64 {
	col := -1
	for i, n := range r.MetricNames {
		if n == name {
			col = i
		}
	}
	if col < 0 && name != "tip" {
		return nil
	}
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		if col < 0 {
			out[i] = s.Tip
		} else {
			out[i] = s.Metrics[col]
		}
	}
	return out
}
