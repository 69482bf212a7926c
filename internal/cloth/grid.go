package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
)

// Anchor selects which particles are fixed in place.
type Anchor string

const (
	AnchorLeftEdge   Anchor = "left"
	AnchorTopEdge    Anchor = "top"
	AnchorTopCorners Anchor = "corners"
	AnchorNone       Anchor = "none"
)

// Fixed reports whether lattice cell (i,j) of a w×h grid is anchored.
func (a Anchor) Fixed(i, j, w, h int) bool {
	switch a {
	case AnchorLeftEdge, "":
		return i == 0
	case AnchorTopEdge:
		return j == h-1
	case AnchorTopCorners:
		return j == h-1 && (i == 0 || i == w-1)
	}
	return false
}

func (a Anchor) Valid() bool {
	switch a {
	case "", AnchorLeftEdge, AnchorTopEdge, AnchorTopCorners, AnchorNone:
		return true
	}
	return false
}

// Grid is a W×H lattice of point masses and the springs between them.
type Grid struct {
	width, height int
	extent        mgl64.Vec2
	topo          Topology
	springs       []Spring
	anchor        Anchor
	integrator    dynamo.Integrator
	p             *dynamo.Particles
	rest          []mgl64.Vec3
}

// Option customizes a Grid at construction.
type Option func(*Grid)

func WithSprings(params SpringParams) Option {
	return func(g *Grid) { g.topo.Params = params }
}

func WithAnchor(a Anchor) Option {
	return func(g *Grid) { g.anchor = a }
}

func WithIntegrator(integ dynamo.Integrator) Option {
	return func(g *Grid) {
		if integ != nil {
			g.integrator = integ
		}
	}
}

// New builds a flat width×height rectangle centered at the origin in the z=0
// plane, sampled by gridW×gridH particles sharing mass evenly.
func New(mass, width, height float64, gridW, gridH int, opts ...Option) (*Grid, error) {
	if gridW < 2 || gridH < 2 {
		return nil, fmt.Errorf("%w: got %dx%d", dynamo.ErrInvalidGridDimension, gridW, gridH)
	}
	if !(mass > 0) || !(width > 0) || !(height > 0) {
		return nil, fmt.Errorf("%w: mass, width and height must be positive (mass=%g, size=%gx%g)",
			dynamo.ErrParameterBounds, mass, width, height)
	}

	g := &Grid{
		width:      gridW,
		height:     gridH,
		extent:     mgl64.Vec2{width, height},
		anchor:     AnchorLeftEdge,
		integrator: integrators.Default(),
	}
	g.topo = NewTopology(width, height, gridW, gridH, DefaultSpringParams())
	for _, opt := range opts {
		opt(g)
	}
	if err := g.topo.Params.Validate(); err != nil {
		return nil, err
	}
	if !g.anchor.Valid() {
		return nil, fmt.Errorf("%w: unknown anchor %q", dynamo.ErrParameterBounds, g.anchor)
	}

	n := gridW * gridH
	g.p = dynamo.NewParticles(n, mass/float64(n))
	g.springs = g.topo.Springs(gridW, gridH)
	g.rest = make([]mgl64.Vec3, n)

	origin := mgl64.Vec3{-0.5 * width, -0.5 * height, 0}
	for j := 0; j < gridH; j++ {
		for i := 0; i < gridW; i++ {
			k := i + j*gridW
			g.rest[k] = origin.Add(mgl64.Vec3{float64(i) * g.topo.Scale.X(), float64(j) * g.topo.Scale.Y(), 0})
			g.p.Movable[k] = !g.anchor.Fixed(i, j, gridW, gridH)
		}
	}
	copy(g.p.Position, g.rest)

	return g, nil
}

// Reset puts every particle back at its initial position at rest.
func (g *Grid) Reset() {
	copy(g.p.Position, g.rest)
	for k := range g.p.Velocity {
		g.p.Velocity[k] = mgl64.Vec3{}
	}
	g.p.ClearForces()
}

func (g *Grid) Width() int                    { return g.width }
func (g *Grid) Height() int                   { return g.height }
func (g *Grid) Len() int                      { return g.width * g.height }
func (g *Grid) Extent() mgl64.Vec2            { return g.extent }
func (g *Grid) Topology() Topology            { return g.topo }
func (g *Grid) Anchor() Anchor                { return g.anchor }
func (g *Grid) Integrator() dynamo.Integrator { return g.integrator }
func (g *Grid) SpringCount() int              { return len(g.springs) }

// Index maps lattice coordinates to the flat row-major index.
func (g *Grid) Index(i, j int) int { return i + j*g.width }

func (g *Grid) Position(i, j int) mgl64.Vec3 { return g.p.Position[g.Index(i, j)] }
func (g *Grid) Velocity(i, j int) mgl64.Vec3 { return g.p.Velocity[g.Index(i, j)] }
func (g *Grid) Movable(i, j int) bool        { return g.p.Movable[g.Index(i, j)] }
func (g *Grid) Mass(i, j int) float64        { return g.p.Mass[g.Index(i, j)] }

// Positions returns a copy of the position array in row-major order.
func (g *Grid) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(g.p.Position))
	copy(out, g.p.Position)
	return out
}

// CopyPositions fills dst with the current positions and returns the number
// of particles copied.
func (g *Grid) CopyPositions(dst []mgl64.Vec3) int {
	return copy(dst, g.p.Position)
}

// Valid reports whether all positions and velocities are finite.
func (g *Grid) Valid() bool { return g.p.IsValid() }

// ApplyExternalForce adds a uniform field to every movable particle.
// Calls superpose until the next Integrate.
func (g *Grid) ApplyExternalForce(f mgl64.Vec3) {
	for k := range g.p.Force {
		g.p.AddForce(k, f)
	}
}

// Integrate advances movable particles by dt and clears every force
// accumulator. A zero step only clears forces.
func (g *Grid) Integrate(dt float64) error {
	if err := dynamo.CheckTimeStep(dt); err != nil {
		return err
	}
	if dt > 0 {
		g.integrator.Step(g.p, dt)
	}
	g.p.ClearForces()
	return nil
}
