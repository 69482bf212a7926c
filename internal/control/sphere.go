package control

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/sim"
)

// SphereDriver swings one sphere of the scene back and forth along Axis.
// The target flips between +Amplitude and -Amplitude every half Period and
// the center follows it through a damped harmonica spring.
type SphereDriver struct {
	Index     int
	Axis      mgl64.Vec3
	Amplitude float64
	Period    float64
	Frequency float64
	Damping   float64

	origin   mgl64.Vec3
	started  bool
	offset   float64
	velocity float64
	spring   harmonica.Spring
	springDt float64
}

func NewSphereDriver(index int, axis mgl64.Vec3, amplitude, period float64) *SphereDriver {
	if axis.Len() > 0 {
		axis = axis.Normalize()
	}
	return &SphereDriver{
		Index:     index,
		Axis:      axis,
		Amplitude: amplitude,
		Period:    period,
		Frequency: 4.0,
		Damping:   1.0,
	}
}

// Target is the offset along Axis the sphere is heading for at time t.
func (d *SphereDriver) Target(t float64) float64 {
	if d.Period <= 0 {
		return 0
	}
	if int(math.Floor(2*t/d.Period))%2 == 0 {
		return d.Amplitude
	}
	return -d.Amplitude
}

func (d *SphereDriver) Update(scene *sim.Scene, t, dt float64) {
	if d.Index < 0 || d.Index >= len(scene.Spheres) || dt <= 0 {
		return
	}
	if !d.started {
		d.origin = scene.Spheres[d.Index].Center
		d.started = true
	}
	if dt != d.springDt {
		d.spring = harmonica.NewSpring(dt, d.Frequency, d.Damping)
		d.springDt = dt
	}

	d.offset, d.velocity = d.spring.Update(d.offset, d.velocity, d.Target(t))
	scene.Spheres[d.Index].Center = d.origin.Add(d.Axis.Mul(d.offset))
}

// Reset forgets the captured origin; the next Update re-reads it from the scene.
func (d *SphereDriver) Reset() {
	d.started = false
	d.offset, d.velocity = 0, 0
}
