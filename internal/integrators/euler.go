package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// Euler is the explicit forward Euler scheme: positions advance with the
// velocity from the start of the step. Kept for comparison runs; it gains
// energy on undamped springs.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Step(p *dynamo.Particles, dt float64) {
	for k := range p.Position {
		if !p.Movable[k] {
			continue
		}
		v := p.Velocity[k]
		p.Position[k] = p.Position[k].Add(v.Mul(dt))
		p.Velocity[k] = v.Add(p.Force[k].Mul(dt / p.Mass[k]))
	}
}
