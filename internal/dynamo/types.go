package dynamo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particles is the state of a particle system stored as parallel arrays.
// Index k addresses the same particle in every slice.
type Particles struct {
	Position []mgl64.Vec3
	Velocity []mgl64.Vec3
	Force    []mgl64.Vec3
	Mass     []float64
	Movable  []bool
}

// NewParticles allocates n particles at the origin with the given mass each,
// all movable and at rest.
func NewParticles(n int, mass float64) *Particles {
	p := &Particles{
		Position: make([]mgl64.Vec3, n),
		Velocity: make([]mgl64.Vec3, n),
		Force:    make([]mgl64.Vec3, n),
		Mass:     make([]float64, n),
		Movable:  make([]bool, n),
	}
	for k := 0; k < n; k++ {
		p.Mass[k] = mass
		p.Movable[k] = true
	}
	return p
}

func (p *Particles) Len() int { return len(p.Position) }

// AddForce accumulates f on particle k unless it is fixed.
func (p *Particles) AddForce(k int, f mgl64.Vec3) {
	if !p.Movable[k] {
		return
	}
	p.Force[k] = p.Force[k].Add(f)
}

// ClearForces zeroes the accumulator of every particle, fixed ones included.
func (p *Particles) ClearForces() {
	for k := range p.Force {
		p.Force[k] = mgl64.Vec3{}
	}
}

// IsValid reports whether every position and velocity is finite.
func (p *Particles) IsValid() bool {
	for k := range p.Position {
		if !finite(p.Position[k]) || !finite(p.Velocity[k]) {
			return false
		}
	}
	return true
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Integrator advances velocities and positions of the movable particles from
// the accumulated forces. It must not touch fixed particles and must not
// clear the force accumulator; the caller owns that.
type Integrator interface {
	Name() string
	Step(p *Particles, dt float64)
}
