package cloth

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
)

const tol = 1e-9

func expectVec(got, want mgl64.Vec3) {
	GinkgoHelper()
	for c := 0; c < 3; c++ {
		Expect(got[c]).To(BeNumerically("~", want[c], tol), "component %d of %v", c, got)
	}
}

var _ = Describe("Grid construction", func() {
	It("rejects lattices narrower than 2 in either direction", func() {
		for _, dims := range [][2]int{{1, 3}, {3, 1}, {0, 0}, {-2, 5}} {
			_, err := New(1, 1, 1, dims[0], dims[1])
			Expect(errors.Is(err, dynamo.ErrInvalidGridDimension)).To(BeTrue(), "dims %v", dims)
		}
	})

	It("rejects non-positive mass and extents", func() {
		_, err := New(0, 1, 1, 2, 2)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
		_, err = New(1, -1, 1, 2, 2)
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects negative spring coefficients", func() {
		params := DefaultSpringParams()
		params.Shear.Damping = -1
		_, err := New(1, 1, 1, 3, 3, WithSprings(params))
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("rejects NaN spring coefficients and epsilon", func() {
		mutations := []func(*SpringParams){
			func(p *SpringParams) { p.Structural.Stiffness = math.NaN() },
			func(p *SpringParams) { p.Bend.Damping = math.NaN() },
			func(p *SpringParams) { p.Epsilon = math.NaN() },
		}
		for i, mutate := range mutations {
			params := DefaultSpringParams()
			mutate(&params)
			_, err := New(1, 1, 1, 3, 3, WithSprings(params))
			Expect(err).To(MatchError(dynamo.ErrParameterBounds), "mutation %d", i)
		}
	})

	It("lays out a flat rectangle centered at the origin", func() {
		g, err := New(12, 2, 1, 4, 3)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Len()).To(Equal(12))
		expectVec(g.Position(0, 0), mgl64.Vec3{-1, -0.5, 0})
		expectVec(g.Position(3, 2), mgl64.Vec3{1, 0.5, 0})
		expectVec(g.Position(1, 1), mgl64.Vec3{-1 + 2.0/3, 0, 0})
		expectVec(g.Centroid(), mgl64.Vec3{})

		for j := 0; j < 3; j++ {
			for i := 0; i < 4; i++ {
				Expect(g.Mass(i, j)).To(Equal(1.0))
				Expect(g.Velocity(i, j)).To(Equal(mgl64.Vec3{}))
				Expect(g.Movable(i, j)).To(Equal(i != 0))
			}
		}
	})

	It("derives rest lengths from the lattice spacing", func() {
		g, err := New(1, 4, 3, 5, 4)
		Expect(err).NotTo(HaveOccurred())

		topo := g.Topology()
		Expect(topo.L0.X()).To(BeNumerically("~", 1.0, tol))
		Expect(topo.L0.Y()).To(BeNumerically("~", 1.0, tol))
		Expect(topo.L1).To(BeNumerically("~", 1.4142135623730951, tol))
		Expect(topo.L2.X()).To(BeNumerically("~", 2.0, tol))
	})

	It("enumerates every edge exactly once", func() {
		w, h := 4, 3
		g, err := New(1, 1, 1, w, h)
		Expect(err).NotTo(HaveOccurred())

		structural := (w-1)*h + w*(h-1)
		shear := 2 * (w - 1) * (h - 1)
		bend := (w-2)*h + w*(h-2)
		Expect(g.SpringCount()).To(Equal(structural + shear + bend))

		seen := map[[2]int]bool{}
		for _, s := range g.springs {
			key := [2]int{min(s.A, s.B), max(s.A, s.B)}
			Expect(seen[key]).To(BeFalse(), "duplicate edge %v", key)
			seen[key] = true
		}
	})

	It("supports other anchors", func() {
		g, err := New(1, 1, 1, 3, 3, WithAnchor(AnchorTopCorners))
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Movable(0, 2)).To(BeFalse())
		Expect(g.Movable(2, 2)).To(BeFalse())
		Expect(g.Movable(1, 2)).To(BeTrue())
		Expect(g.Movable(0, 0)).To(BeTrue())

		_, err = New(1, 1, 1, 3, 3, WithAnchor("diagonal"))
		Expect(err).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("hands out copies of the positions", func() {
		g, err := New(1, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())

		pos := g.Positions()
		pos[1] = mgl64.Vec3{9, 9, 9}
		Expect(g.Position(1, 0)).NotTo(Equal(mgl64.Vec3{9, 9, 9}))

		buf := make([]mgl64.Vec3, g.Len())
		Expect(g.CopyPositions(buf)).To(Equal(4))
		Expect(buf).To(Equal(g.Positions()))
	})
})

var _ = Describe("External forces and integration", func() {
	It("moves every free particle by the applied field in one unit step", func() {
		g, err := New(12, 2, 1, 4, 3)
		Expect(err).NotTo(HaveOccurred())
		initial := g.Positions()

		g.ApplyExternalForce(mgl64.Vec3{0, -0.01, 0})
		Expect(g.Integrate(1)).To(Succeed())

		for j := 0; j < 3; j++ {
			for i := 0; i < 4; i++ {
				k := g.Index(i, j)
				if i == 0 {
					Expect(g.Position(i, j)).To(Equal(initial[k]))
					Expect(g.Velocity(i, j)).To(Equal(mgl64.Vec3{}))
					continue
				}
				expectVec(g.Velocity(i, j), mgl64.Vec3{0, -0.01, 0})
				expectVec(g.Position(i, j), initial[k].Add(mgl64.Vec3{0, -0.01, 0}))
			}
		}
	})

	It("never accumulates force on fixed particles", func() {
		g, err := New(1, 1, 1, 3, 3)
		Expect(err).NotTo(HaveOccurred())

		g.ApplyExternalForce(mgl64.Vec3{1, 2, 3})
		for k, f := range g.p.Force {
			if g.p.Movable[k] {
				Expect(f).To(Equal(mgl64.Vec3{1, 2, 3}))
			} else {
				Expect(f).To(Equal(mgl64.Vec3{}))
			}
		}
	})

	It("superposes repeated fields", func() {
		g, err := New(1, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())

		g.ApplyExternalForce(mgl64.Vec3{0, -1, 0})
		g.ApplyExternalForce(mgl64.Vec3{2, 0, 0})
		Expect(g.p.Force[1]).To(Equal(mgl64.Vec3{2, -1, 0}))
	})

	It("clears every force accumulator after integrating", func() {
		g, err := New(1, 1, 1, 4, 4)
		Expect(err).NotTo(HaveOccurred())

		g.p.Position[5] = g.p.Position[5].Add(mgl64.Vec3{0.1, 0, 0.2})
		g.ApplyExternalForce(mgl64.Vec3{0, -1, 0})
		Expect(g.ApplyInternalForces(0.01)).To(Succeed())
		Expect(g.Integrate(0.01)).To(Succeed())

		for _, f := range g.p.Force {
			Expect(f).To(Equal(mgl64.Vec3{}))
		}
	})

	It("treats a zero step as clearing forces only", func() {
		g, err := New(1, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		before := g.Positions()

		g.ApplyExternalForce(mgl64.Vec3{1, 0, 0})
		Expect(g.ApplyInternalForces(0)).To(Succeed())
		Expect(g.Integrate(0)).To(Succeed())

		Expect(g.Positions()).To(Equal(before))
		Expect(g.p.Force[1]).To(Equal(mgl64.Vec3{}))
	})

	It("rejects negative time steps", func() {
		g, err := New(1, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())

		Expect(g.Integrate(-0.1)).To(MatchError(dynamo.ErrInvalidTimeStep))
		Expect(g.ApplyInternalForces(-0.1)).To(MatchError(dynamo.ErrInvalidTimeStep))
		Expect(g.ResolveSphereCollision(Sphere{Radius: 1}, -1)).To(MatchError(dynamo.ErrInvalidTimeStep))
	})

	It("uses the configured integrator", func() {
		g, err := New(4, 1, 1, 2, 2, WithIntegrator(integrators.NewEuler()))
		Expect(err).NotTo(HaveOccurred())
		start := g.Position(1, 0)

		g.ApplyExternalForce(mgl64.Vec3{1, 0, 0})
		Expect(g.Integrate(1)).To(Succeed())

		Expect(g.Position(1, 0)).To(Equal(start))
		expectVec(g.Velocity(1, 0), mgl64.Vec3{1, 0, 0})
	})

	It("restores the initial state on reset", func() {
		g, err := New(1, 1, 1, 3, 3)
		Expect(err).NotTo(HaveOccurred())
		initial := g.Positions()

		g.ApplyExternalForce(mgl64.Vec3{0, -1, 0})
		Expect(g.Integrate(0.5)).To(Succeed())
		g.Reset()

		Expect(g.Positions()).To(Equal(initial))
		Expect(g.KineticEnergy()).To(BeZero())
	})
})
