package control

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/sim"
)

// Gust perturbs the scene wind by a random vector of length Strength,
// resampled every Interval seconds. A non-positive Interval resamples every
// step. Only the perturbation is swapped, so other changes to the wind made
// by earlier controllers survive.
type Gust struct {
	Strength float64
	Interval float64

	seed    int64
	rng     *rand.Rand
	applied mgl64.Vec3
	next    float64
}

func NewGust(strength, interval float64, seed int64) *Gust {
	g := &Gust{Strength: strength, Interval: interval, seed: seed}
	g.Reset()
	return g
}

func (g *Gust) Update(scene *sim.Scene, t, dt float64) {
	if t < g.next {
		return
	}
	current := sphericalRand(g.rng, g.Strength)
	scene.Wind = scene.Wind.Sub(g.applied).Add(current)
	g.applied = current
	g.next = t + g.Interval
}

// Current is the perturbation presently added to the wind.
func (g *Gust) Current() mgl64.Vec3 {
	return g.applied
}

func (g *Gust) Reset() {
	g.rng = rand.New(rand.NewSource(g.seed))
	g.applied = mgl64.Vec3{}
	g.next = 0
}

// sphericalRand returns a uniformly distributed point on the sphere of the
// given radius.
func sphericalRand(rng *rand.Rand, radius float64) mgl64.Vec3 {
	for {
		v := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		if l := v.Len(); l > 1e-9 {
			return v.Mul(radius / l)
		}
	}
}
