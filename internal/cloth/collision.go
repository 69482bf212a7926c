package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// fallbackNormal is the push direction for a particle exactly at a sphere center.
var fallbackNormal = mgl64.Vec3{0, 0, 1}

// Sphere is a static collision primitive. Friction in [0,1] scales down the
// tangential velocity of contacting particles; zero is frictionless.
type Sphere struct {
	Center   mgl64.Vec3
	Radius   float64
	Friction float64
}

func (s Sphere) Validate() error {
	if !(s.Radius > 0) {
		return fmt.Errorf("%w: sphere radius must be positive, got %g", dynamo.ErrParameterBounds, s.Radius)
	}
	if s.Friction < 0 || s.Friction > 1 {
		return fmt.Errorf("%w: sphere friction must be in [0,1], got %g", dynamo.ErrParameterBounds, s.Friction)
	}
	return nil
}

// Contains reports whether p lies strictly inside the sphere.
func (s Sphere) Contains(p mgl64.Vec3) bool {
	d := p.Sub(s.Center)
	return d.Dot(d) < s.Radius*s.Radius
}

// contactTolerance is the relative depth below which a particle counts as
// resting on the surface. Projection rounding stays well inside it.
const contactTolerance = 1e-12

// penetrates reports whether p is inside the sphere by more than rounding.
func (s Sphere) penetrates(p mgl64.Vec3) bool {
	d := p.Sub(s.Center)
	r2 := s.Radius * s.Radius
	return r2-d.Dot(d) > contactTolerance*r2
}

// ResolveSphereCollision moves every movable particle that penetrated the
// sphere onto its surface and removes the inward normal velocity. Each call
// is a single pass; overlapping spheres can leave residual penetration.
func (g *Grid) ResolveSphereCollision(s Sphere, dt float64) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := dynamo.CheckTimeStep(dt); err != nil {
		return err
	}

	for k, p := range g.p.Position {
		if !g.p.Movable[k] || !s.penetrates(p) {
			continue
		}

		n := fallbackNormal
		if d := p.Sub(s.Center); d.Len() > 0 {
			n = d.Normalize()
		}
		g.p.Position[k] = s.Center.Add(n.Mul(s.Radius))

		v := g.p.Velocity[k]
		vn := v.Dot(n)
		if vn < 0 {
			v = v.Sub(n.Mul(vn))
			vn = 0
		}
		if s.Friction > 0 {
			normal := n.Mul(vn)
			v = normal.Add(v.Sub(normal).Mul(1 - s.Friction))
		}
		g.p.Velocity[k] = v
	}
	return nil
}
