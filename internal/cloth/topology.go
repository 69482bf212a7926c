package cloth

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// SpringClass identifies one of the three spring families.
type SpringClass uint8

const (
	Structural SpringClass = iota
	Shear
	Bend
)

func (c SpringClass) String() string {
	switch c {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	}
	return fmt.Sprintf("SpringClass(%d)", uint8(c))
}

// DefaultEpsilon floors spring length in the elastic term so coincident
// endpoints do not divide by zero.
const DefaultEpsilon = 1e-4

// Coefficients is the stiffness K and damping V of one spring family.
type Coefficients struct {
	Stiffness float64
	Damping   float64
}

// SpringParams holds the per-family coefficients and the distance floor.
type SpringParams struct {
	Structural Coefficients
	Shear      Coefficients
	Bend       Coefficients
	Epsilon    float64
}

// DefaultSpringParams returns K=1 and V=0.1 for every family.
func DefaultSpringParams() SpringParams {
	c := Coefficients{Stiffness: 1.0, Damping: 0.1}
	return SpringParams{
		Structural: c,
		Shear:      c,
		Bend:       c,
		Epsilon:    DefaultEpsilon,
	}
}

func (p SpringParams) Validate() error {
	for _, c := range []struct {
		class SpringClass
		co    Coefficients
	}{{Structural, p.Structural}, {Shear, p.Shear}, {Bend, p.Bend}} {
		if !(c.co.Stiffness >= 0) || !(c.co.Damping >= 0) || math.IsInf(c.co.Stiffness, 1) || math.IsInf(c.co.Damping, 1) {
			return fmt.Errorf("%w: %s stiffness and damping must be non-negative (K=%g, V=%g)",
				dynamo.ErrParameterBounds, c.class, c.co.Stiffness, c.co.Damping)
		}
	}
	if !(p.Epsilon > 0) || math.IsInf(p.Epsilon, 1) {
		return fmt.Errorf("%w: epsilon must be positive, got %g", dynamo.ErrParameterBounds, p.Epsilon)
	}
	return nil
}

func (p SpringParams) coefficients(c SpringClass) Coefficients {
	switch c {
	case Shear:
		return p.Shear
	case Bend:
		return p.Bend
	}
	return p.Structural
}

// Topology is derived once from the lattice spacing. L0 and L2 are
// anisotropic (x along rows, y along columns); L1 is the cell diagonal.
type Topology struct {
	Scale  mgl64.Vec2
	L0     mgl64.Vec2
	L1     float64
	L2     mgl64.Vec2
	Params SpringParams
}

// NewTopology derives rest lengths from the physical extent and the lattice size.
func NewTopology(width, height float64, gridW, gridH int, params SpringParams) Topology {
	scale := mgl64.Vec2{width / float64(gridW-1), height / float64(gridH-1)}
	return Topology{
		Scale:  scale,
		L0:     scale,
		L1:     scale.Len(),
		L2:     scale.Mul(2),
		Params: params,
	}
}

// Spring is one edge between particles A and B.
type Spring struct {
	A, B  int
	Rest  float64
	Class SpringClass
}

type offset struct {
	di, dj int
	class  SpringClass
}

// An edge exists between (i,j) and (i+di,j+dj) iff both endpoints are in range.
var offsets = [...]offset{
	{1, 0, Structural},
	{0, 1, Structural},
	{1, 1, Shear},
	{-1, 1, Shear},
	{2, 0, Bend},
	{0, 2, Bend},
}

func (t Topology) rest(o offset) float64 {
	switch o.class {
	case Shear:
		return t.L1
	case Bend:
		if o.dj == 0 {
			return t.L2.X()
		}
		return t.L2.Y()
	}
	if o.dj == 0 {
		return t.L0.X()
	}
	return t.L0.Y()
}

// Springs enumerates every edge of the lattice exactly once.
func (t Topology) Springs(gridW, gridH int) []Spring {
	springs := make([]Spring, 0, 6*gridW*gridH)
	for j := 0; j < gridH; j++ {
		for i := 0; i < gridW; i++ {
			for _, o := range offsets {
				ni, nj := i+o.di, j+o.dj
				if ni < 0 || ni >= gridW || nj >= gridH {
					continue
				}
				springs = append(springs, Spring{
					A:     i + j*gridW,
					B:     ni + nj*gridW,
					Rest:  t.rest(o),
					Class: o.class,
				})
			}
		}
	}
	return springs
}
