package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// SymplecticEuler is semi-implicit Euler: the velocity is updated from the
// current force first and the new velocity then advances the position.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return "symplectic" }

func (s *SymplecticEuler) Step(p *dynamo.Particles, dt float64) {
	for k := range p.Position {
		if !p.Movable[k] {
			continue
		}
		p.Velocity[k] = p.Velocity[k].Add(p.Force[k].Mul(dt / p.Mass[k]))
		p.Position[k] = p.Position[k].Add(p.Velocity[k].Mul(dt))
	}
}

// Default returns the integrator used when none is configured.
func Default() dynamo.Integrator {
	return NewSymplecticEuler()
}

// ByName returns a fresh integrator for a registered name.
func ByName(name string) (dynamo.Integrator, bool) {
	switch name {
	case "", "symplectic", "semi-implicit":
		return NewSymplecticEuler(), true
	case "euler":
		return NewEuler(), true
	}
	return nil, false
}

// Names lists the registered integrator names.
func Names() []string {
	return []string{"symplectic", "euler"}
}
