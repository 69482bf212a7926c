package cloth

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// place puts free particle (1,0) of a 2x2 grid at p with velocity v.
func place(p, v mgl64.Vec3) (*Grid, int) {
	GinkgoHelper()
	g, err := New(4, 1, 1, 2, 2)
	Expect(err).NotTo(HaveOccurred())
	k := g.Index(1, 0)
	g.p.Position[k] = p
	g.p.Velocity[k] = v
	return g, k
}

var unitSphere = Sphere{Center: mgl64.Vec3{0, 0, 0}, Radius: 1}

var _ = Describe("Sphere collision", func() {
	It("projects a penetrating particle onto the surface", func() {
		g, k := place(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{})
		// keep the other free particle outside
		g.p.Position[g.Index(1, 1)] = mgl64.Vec3{5, 5, 5}

		Expect(g.ResolveSphereCollision(unitSphere, 0.01)).To(Succeed())
		expectVec(g.p.Position[k], mgl64.Vec3{1, 0, 0})
	})

	It("removes the inward velocity and keeps the tangential part", func() {
		g, k := place(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{0.3, -2, 0.4})

		Expect(g.ResolveSphereCollision(unitSphere, 0.01)).To(Succeed())
		expectVec(g.p.Position[k], mgl64.Vec3{0, 1, 0})
		expectVec(g.p.Velocity[k], mgl64.Vec3{0.3, 0, 0.4})
	})

	It("keeps an outward velocity", func() {
		g, k := place(mgl64.Vec3{0, 0, -0.2}, mgl64.Vec3{0, 0, -1})

		Expect(g.ResolveSphereCollision(unitSphere, 0.01)).To(Succeed())
		expectVec(g.p.Position[k], mgl64.Vec3{0, 0, -1})
		expectVec(g.p.Velocity[k], mgl64.Vec3{0, 0, -1})
	})

	It("leaves a non-negative radial velocity for arbitrary penetrations", func() {
		s := Sphere{Center: mgl64.Vec3{0.2, -0.1, 0.4}, Radius: 0.75}
		points := []mgl64.Vec3{{0.3, 0, 0.4}, {0.2, -0.5, 0.1}, {-0.1, 0.2, 0.6}}
		for _, p := range points {
			g, k := place(p, mgl64.Vec3{-1, 2, -3})
			Expect(g.ResolveSphereCollision(s, 0.01)).To(Succeed())

			d := g.p.Position[k].Sub(s.Center)
			Expect(d.Len()).To(BeNumerically("~", s.Radius, 1e-12))
			Expect(g.p.Velocity[k].Dot(d.Normalize())).To(BeNumerically(">=", -1e-12))
		}
	})

	It("is idempotent without integration in between", func() {
		g, k := place(mgl64.Vec3{0.1, 0.2, -0.3}, mgl64.Vec3{1, 1, 1})

		Expect(g.ResolveSphereCollision(unitSphere, 0.01)).To(Succeed())
		first, firstV := g.p.Position[k], g.p.Velocity[k]
		Expect(g.ResolveSphereCollision(unitSphere, 0.01)).To(Succeed())

		expectVec(g.p.Position[k], first)
		expectVec(g.p.Velocity[k], firstV)
	})

	It("leaves resolved particles bitwise unchanged on a second pass", func() {
		rng := rand.New(rand.NewSource(7))
		s := Sphere{Center: mgl64.Vec3{0.3, -0.2, 0.1}, Radius: 0.8, Friction: 0.25}
		for i := 0; i < 1000; i++ {
			offset := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
			if offset.Len() == 0 {
				continue
			}
			p := s.Center.Add(offset.Normalize().Mul(s.Radius * rng.Float64() * 0.99))
			g, k := place(p, mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()})
			g.p.Position[g.Index(1, 1)] = mgl64.Vec3{5, 5, 5}

			Expect(g.ResolveSphereCollision(s, 0.01)).To(Succeed())
			first, firstV := g.p.Position[k], g.p.Velocity[k]
			Expect(g.ResolveSphereCollision(s, 0.01)).To(Succeed())

			Expect(g.p.Position[k]).To(Equal(first), "penetration %d", i)
			Expect(g.p.Velocity[k]).To(Equal(firstV), "penetration %d", i)
		}
	})

	It("picks a direction when the particle sits on the center", func() {
		g, k := place(mgl64.Vec3{}, mgl64.Vec3{})

		Expect(g.ResolveSphereCollision(unitSphere, 0.01)).To(Succeed())
		Expect(g.p.Position[k].Len()).To(BeNumerically("~", 1, tol))
		Expect(g.Valid()).To(BeTrue())
	})

	It("never moves fixed particles", func() {
		g, err := New(4, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		fixed := g.Position(0, 0)

		Expect(g.ResolveSphereCollision(Sphere{Center: fixed, Radius: 0.3}, 0.01)).To(Succeed())
		Expect(g.Position(0, 0)).To(Equal(fixed))
	})

	It("slows tangential motion with friction", func() {
		g, k := place(mgl64.Vec3{0, 0.5, 0}, mgl64.Vec3{2, -1, 0})
		s := unitSphere
		s.Friction = 0.25

		Expect(g.ResolveSphereCollision(s, 0.01)).To(Succeed())
		expectVec(g.p.Velocity[k], mgl64.Vec3{1.5, 0, 0})
	})

	It("validates sphere parameters", func() {
		g, _ := place(mgl64.Vec3{}, mgl64.Vec3{})
		Expect(g.ResolveSphereCollision(Sphere{Radius: 0}, 0.01)).To(MatchError(dynamo.ErrParameterBounds))
		Expect(g.ResolveSphereCollision(Sphere{Radius: 1, Friction: 2}, 0.01)).To(MatchError(dynamo.ErrParameterBounds))
	})

	It("keeps the anchor fixed through a full flag run", func() {
		g, err := New(4096, 4, 3, 16, 8)
		Expect(err).NotTo(HaveOccurred())
		anchor := make([]mgl64.Vec3, g.Height())
		for j := range anchor {
			anchor[j] = g.Position(0, j)
		}

		dt := 1.0 / 60
		for step := 0; step < 300; step++ {
			g.ApplyExternalForce(mgl64.Vec3{0, -0.001, 0})
			g.ApplyExternalForce(mgl64.Vec3{0.02, 0, 0})
			Expect(g.ApplyInternalForces(dt)).To(Succeed())
			Expect(g.ResolveSphereCollision(unitSphere, dt)).To(Succeed())
			Expect(g.Integrate(dt)).To(Succeed())
		}

		Expect(g.Valid()).To(BeTrue())
		for j := range anchor {
			Expect(g.Position(0, j)).To(Equal(anchor[j]))
			Expect(g.Velocity(0, j)).To(Equal(mgl64.Vec3{}))
		}
		for _, p := range g.Positions() {
			Expect(math.IsNaN(p.Len())).To(BeFalse())
		}
	})
})

var _ = Describe("Self collision", func() {
	It("separates a coincident pair to the minimum distance", func() {
		g, err := New(4, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		a, b := g.Index(1, 0), g.Index(1, 1)
		g.p.Position[b] = g.p.Position[a].Add(mgl64.Vec3{0, 0.02, 0})

		sc := NewSelfCollision(0.1)
		Expect(g.ResolveSelfCollision(sc)).To(Succeed())
		Expect(g.p.Position[b].Sub(g.p.Position[a]).Len()).To(BeNumerically("~", 0.1, tol))
	})

	It("moves only the free partner next to a fixed particle", func() {
		g, err := New(4, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		fixed, free := g.Index(0, 0), g.Index(1, 0)
		anchor := g.p.Position[fixed]
		g.p.Position[free] = anchor.Add(mgl64.Vec3{0.05, 0, 0})

		Expect(g.ResolveSelfCollision(NewSelfCollision(0.2))).To(Succeed())
		Expect(g.p.Position[fixed]).To(Equal(anchor))
		expectVec(g.p.Position[free], anchor.Add(mgl64.Vec3{0.2, 0, 0}))
	})

	It("leaves a grid at rest alone with the default separation", func() {
		g, err := New(1, 2, 1, 8, 5)
		Expect(err).NotTo(HaveOccurred())
		before := g.Positions()

		Expect(g.ResolveSelfCollision(NewSelfCollision(g.DefaultSeparation()))).To(Succeed())
		Expect(g.Positions()).To(Equal(before))
	})

	It("rejects a non-positive separation", func() {
		g, err := New(1, 1, 1, 2, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(g.ResolveSelfCollision(NewSelfCollision(0))).To(MatchError(dynamo.ErrParameterBounds))
	})
})
