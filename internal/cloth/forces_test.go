package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// structuralOnly disables shear and bend springs and all damping.
func structuralOnly(k float64) SpringParams {
	return SpringParams{
		Structural: Coefficients{Stiffness: k},
		Epsilon:    DefaultEpsilon,
	}
}

var _ = Describe("Spring forces", func() {
	It("produces no force at rest length with equal velocities", func() {
		g, err := New(9, 2, 2, 3, 3)
		Expect(err).NotTo(HaveOccurred())
		for k := range g.p.Velocity {
			g.p.Velocity[k] = mgl64.Vec3{0.3, -0.2, 0.1}
		}

		Expect(g.ApplyInternalForces(0.01)).To(Succeed())
		for _, f := range g.p.Force {
			Expect(f.Len()).To(BeNumerically("<", 1e-12))
		}
	})

	It("pulls a stretched spring back toward its anchor", func() {
		g, err := New(4, 1, 1, 2, 2, WithSprings(structuralOnly(2)))
		Expect(err).NotTo(HaveOccurred())

		k := g.Index(1, 0)
		g.p.Position[k] = g.p.Position[k].Add(mgl64.Vec3{0.5, 0, 0})
		Expect(g.ApplyInternalForces(0.1)).To(Succeed())

		// horizontal spring: K(1 - L/d)(A - B) = 2 * (1 - 1/1.5) * -1.5
		// vertical spring to (1,1) is stretched to sqrt(1.25) diagonally
		f := g.p.Force[k]
		Expect(f.X()).To(BeNumerically("<", 0))
		d := math.Sqrt(1.25)
		wantX := -2*(1-1/1.5)*1.5 - 2*(1-1/d)*0.5
		Expect(f.X()).To(BeNumerically("~", wantX, tol))
	})

	It("pushes a compressed spring apart", func() {
		g, err := New(4, 1, 1, 2, 2, WithSprings(structuralOnly(1)))
		Expect(err).NotTo(HaveOccurred())

		for _, i := range []int{g.Index(1, 0), g.Index(1, 1)} {
			g.p.Position[i] = g.p.Position[i].Sub(mgl64.Vec3{0.5, 0, 0})
		}
		Expect(g.ApplyInternalForces(0.1)).To(Succeed())

		Expect(g.p.Force[g.Index(1, 0)].X()).To(BeNumerically(">", 0))
		Expect(g.p.Force[g.Index(1, 1)].X()).To(BeNumerically(">", 0))
	})

	It("applies equal and opposite forces between free particles", func() {
		g, err := New(9, 2, 2, 3, 3)
		Expect(err).NotTo(HaveOccurred())

		g.p.Position[g.Index(2, 1)] = g.p.Position[g.Index(2, 1)].Add(mgl64.Vec3{0.2, -0.1, 0.3})
		g.p.Velocity[g.Index(1, 2)] = mgl64.Vec3{0, 0, 1}
		Expect(g.ApplyInternalForces(0.05)).To(Succeed())

		// the sum over free particles balances the reactions lost at the anchor
		var free, reaction mgl64.Vec3
		for _, f := range g.p.Force {
			free = free.Add(f)
		}
		for _, s := range g.springs {
			aFixed, bFixed := !g.p.Movable[s.A], !g.p.Movable[s.B]
			if aFixed == bFixed {
				continue
			}
			c := g.topo.Params.coefficients(s.Class)
			f := hookForce(c.Stiffness, s.Rest, g.topo.Params.Epsilon, g.p.Position[s.A], g.p.Position[s.B]).
				Add(brakeForce(c.Damping, 0.05, g.p.Velocity[s.A], g.p.Velocity[s.B]))
			if aFixed {
				reaction = reaction.Sub(f)
			} else {
				reaction = reaction.Add(f)
			}
		}
		expectVec(free, reaction)
	})

	It("floors the spring length for coincident particles", func() {
		g, err := New(4, 1, 1, 2, 2, WithSprings(structuralOnly(1)))
		Expect(err).NotTo(HaveOccurred())

		g.p.Position[g.Index(1, 1)] = g.p.Position[g.Index(1, 0)]
		Expect(g.ApplyInternalForces(0.1)).To(Succeed())
		Expect(g.Valid()).To(BeTrue())
		for _, f := range g.p.Force {
			Expect(math.IsNaN(f.Len())).To(BeFalse())
		}
	})

	It("damps relative velocity along a spring", func() {
		params := SpringParams{Structural: Coefficients{Damping: 0.5}, Epsilon: DefaultEpsilon}
		g, err := New(4, 1, 1, 2, 2, WithSprings(params))
		Expect(err).NotTo(HaveOccurred())

		a, b := g.Index(1, 0), g.Index(1, 1)
		g.p.Velocity[b] = mgl64.Vec3{0, 1, 0}
		Expect(g.ApplyInternalForces(0.1)).To(Succeed())

		// V * (vB - vA) / dt = 0.5 * 1 / 0.1
		expectVec(g.p.Force[a], mgl64.Vec3{0, 5, 0})
		// b also brakes against its fixed left neighbor
		expectVec(g.p.Force[b], mgl64.Vec3{0, -10, 0})
	})

	It("keeps a free oscillator's energy bounded", func() {
		g, err := New(4, 1, 1, 2, 2, WithSprings(structuralOnly(1)))
		Expect(err).NotTo(HaveOccurred())

		for _, i := range []int{g.Index(1, 0), g.Index(1, 1)} {
			g.p.Position[i] = g.p.Position[i].Add(mgl64.Vec3{0.2, 0, 0})
		}
		energy := func() float64 { return g.KineticEnergy() + g.SpringEnergy() }
		e0 := energy()
		Expect(e0).To(BeNumerically(">", 0))

		maxE, maxStretch := e0, 0.0
		for step := 0; step < 5000; step++ {
			Expect(g.ApplyInternalForces(0.01)).To(Succeed())
			Expect(g.Integrate(0.01)).To(Succeed())
			maxE = math.Max(maxE, energy())
			maxStretch = math.Max(maxStretch, math.Abs(g.Position(1, 0).X()-0.5))
		}

		Expect(maxE).To(BeNumerically("<", e0*1.05))
		Expect(maxStretch).To(BeNumerically("<", 0.21))
	})
})
