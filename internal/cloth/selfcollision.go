package cloth

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// SelfCollision keeps particles at least MinSeparation apart.
type SelfCollision struct {
	MinSeparation float64

	hash *spatialHash
}

func NewSelfCollision(minSeparation float64) *SelfCollision {
	return &SelfCollision{MinSeparation: minSeparation}
}

func (sc *SelfCollision) Validate() error {
	if !(sc.MinSeparation > 0) {
		return fmt.Errorf("%w: self collision separation must be positive, got %g",
			dynamo.ErrParameterBounds, sc.MinSeparation)
	}
	return nil
}

// DefaultSeparation is half the shortest structural rest length.
func (g *Grid) DefaultSeparation() float64 {
	return 0.5 * math.Min(g.topo.L0.X(), g.topo.L0.Y())
}

// ResolveSelfCollision pushes apart every pair of particles closer than the
// minimum separation, each pair once per call. Both partners move half the
// overlap; if one is fixed the other takes all of it.
func (g *Grid) ResolveSelfCollision(sc *SelfCollision) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	if sc.hash == nil || sc.hash.cell != sc.MinSeparation {
		sc.hash = newSpatialHash(sc.MinSeparation)
	}
	sc.hash.build(g.p.Position)

	min2 := sc.MinSeparation * sc.MinSeparation
	pos := g.p.Position
	for a := range pos {
		sc.hash.neighbors(pos[a], func(b int) {
			if b <= a {
				return
			}
			d := pos[b].Sub(pos[a])
			if d.Dot(d) >= min2 {
				return
			}
			g.separate(a, b, d, sc.MinSeparation)
		})
	}
	return nil
}

func (g *Grid) separate(a, b int, d mgl64.Vec3, minSep float64) {
	ma, mb := g.p.Movable[a], g.p.Movable[b]
	if !ma && !mb {
		return
	}

	n := fallbackNormal
	dist := d.Len()
	if dist > 0 {
		n = d.Mul(1 / dist)
	}
	correction := n.Mul(minSep - dist)

	switch {
	case ma && mb:
		half := correction.Mul(0.5)
		g.p.Position[a] = g.p.Position[a].Sub(half)
		g.p.Position[b] = g.p.Position[b].Add(half)
	case ma:
		g.p.Position[a] = g.p.Position[a].Sub(correction)
	default:
		g.p.Position[b] = g.p.Position[b].Add(correction)
	}
}
