// Package cloth implements a mass-spring cloth on a rectangular lattice.
//
// A [Grid] owns W×H particles connected by three spring families described by
// its [Topology]:
//
//   - structural springs to the right and lower neighbor
//   - shear springs to both lower diagonal neighbors
//   - bend springs two cells to the right and two cells below
//
// One simulation step applies external fields, spring forces, collisions and
// finally integrates:
//
//	g.ApplyExternalForce(gravity)
//	g.ApplyExternalForce(wind)
//	_ = g.ApplyInternalForces(dt)
//	_ = g.ResolveSphereCollision(sphere, dt)
//	_ = g.Integrate(dt)
//
// Anchored particles (by default the first column, a flagpole) never move and
// never accumulate force.
package cloth
