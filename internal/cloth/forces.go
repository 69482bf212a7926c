package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// hookForce is the elastic pull on p1 toward rest length l. A stretched
// spring pulls p1 toward p2, a compressed one pushes it away.
func hookForce(k, l, epsilon float64, p1, p2 mgl64.Vec3) mgl64.Vec3 {
	d := p2.Sub(p1)
	dist := math.Max(d.Len(), epsilon)
	return d.Mul(k * (1 - l/dist))
}

// brakeForce damps the relative velocity of the two endpoints.
func brakeForce(v, dt float64, v1, v2 mgl64.Vec3) mgl64.Vec3 {
	return v2.Sub(v1).Mul(v / dt)
}

// ApplyInternalForces accumulates the elastic and damping force of every
// spring. The force on A is added to A and subtracted from B; fixed
// endpoints receive nothing. A zero dt is a no-op.
func (g *Grid) ApplyInternalForces(dt float64) error {
	if err := dynamo.CheckTimeStep(dt); err != nil {
		return err
	}
	if dt == 0 {
		return nil
	}

	params := g.topo.Params
	pos, vel := g.p.Position, g.p.Velocity
	for _, s := range g.springs {
		c := params.coefficients(s.Class)
		f := hookForce(c.Stiffness, s.Rest, params.Epsilon, pos[s.A], pos[s.B])
		if c.Damping != 0 {
			f = f.Add(brakeForce(c.Damping, dt, vel[s.A], vel[s.B]))
		}
		g.p.AddForce(s.A, f)
		g.p.AddForce(s.B, f.Mul(-1))
	}
	return nil
}
