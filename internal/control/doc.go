// Package control provides scene controllers for the cloth simulation.
//
// Controllers implement [sim.Controller] and change scene parameters between
// steps, never during one:
//
//   - [Gust]: seeded random wind perturbations
//   - [SphereDriver]: smooth sphere motion driven by a damped spring
//   - [Manual]: user nudges queued by an interactive front end
//   - [None]: leaves the scene untouched
//
// # Usage
//
//	gust := control.NewGust(0.04, 0.5, seed)
//	s := sim.New(grid, scene, control.Chain{gust, control.NewManual()})
package control
