package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// KineticEnergy is Σ ½mv² over all particles.
func (g *Grid) KineticEnergy() float64 {
	e := 0.0
	for k, v := range g.p.Velocity {
		e += 0.5 * g.p.Mass[k] * v.Dot(v)
	}
	return e
}

// SpringEnergy is Σ ½K(d−L)² over every spring.
func (g *Grid) SpringEnergy() float64 {
	e := 0.0
	for _, s := range g.springs {
		k := g.topo.Params.coefficients(s.Class).Stiffness
		d := g.p.Position[s.B].Sub(g.p.Position[s.A]).Len() - s.Rest
		e += 0.5 * k * d * d
	}
	return e
}

// MaxStrain is the largest relative elongation (d−L)/L of any structural
// spring. Negative values mean every structural spring is compressed.
func (g *Grid) MaxStrain() float64 {
	strain := math.Inf(-1)
	for _, s := range g.springs {
		if s.Class != Structural {
			continue
		}
		d := g.p.Position[s.B].Sub(g.p.Position[s.A]).Len()
		strain = math.Max(strain, (d-s.Rest)/s.Rest)
	}
	return strain
}

// Centroid is the mean particle position.
func (g *Grid) Centroid() mgl64.Vec3 {
	var c mgl64.Vec3
	for _, p := range g.p.Position {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(g.p.Position)))
}

// TipDisplacement is the distance of the free corner farthest from the
// anchor from its initial position; it tracks flapping.
func (g *Grid) TipDisplacement() float64 {
	k := g.tipIndex()
	return g.p.Position[k].Sub(g.rest[k]).Len()
}

func (g *Grid) tipIndex() int {
	switch g.anchor {
	case AnchorTopEdge, AnchorTopCorners:
		return g.Index(g.width-1, 0)
	}
	return g.Index(g.width-1, g.height-1)
}
