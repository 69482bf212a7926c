// Package dynamo provides the shared primitives of the cloth simulator.
//
// The package holds the per-particle state arrays and the contracts that the
// force, collision and integration code agree on:
//
//   - [Particles]: position, velocity, force, mass and movable flag per particle
//   - [Integrator]: advances [Particles] by one time step
//   - [SimError]: wraps a failure with the step and simulated time
//
// # Example
//
//	g, _ := cloth.New(4096, 4, 3, 32, 16)
//	g.ApplyExternalForce(mgl64.Vec3{0, -0.001, 0})
//	_ = g.ApplyInternalForces(dt)
//	_ = g.Integrate(dt)
//
// # Thread Safety
//
// Particles are owned by a single simulation. Renderers receive copies of the
// position array and never hold a reference into it.
package dynamo
