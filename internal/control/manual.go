package control

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/sim"
)

// Manual queues adjustments from an interactive front end and applies them
// once, at the start of the next step. It is safe to nudge from another
// goroutine.
type Manual struct {
	mu     sync.Mutex
	wind   mgl64.Vec3
	sphere mgl64.Vec3
	index  int
}

func NewManual() *Manual {
	return &Manual{}
}

// NudgeWind adds dw to the scene wind from the next step on.
func (m *Manual) NudgeWind(dw mgl64.Vec3) {
	m.mu.Lock()
	m.wind = m.wind.Add(dw)
	m.mu.Unlock()
}

// NudgeSphere moves sphere idx by dc on the next step.
func (m *Manual) NudgeSphere(idx int, dc mgl64.Vec3) {
	m.mu.Lock()
	if idx != m.index {
		m.sphere = mgl64.Vec3{}
		m.index = idx
	}
	m.sphere = m.sphere.Add(dc)
	m.mu.Unlock()
}

// Update applies and clears the pending nudges.
func (m *Manual) Update(scene *sim.Scene, t, dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scene.Wind = scene.Wind.Add(m.wind)
	if m.index >= 0 && m.index < len(scene.Spheres) {
		scene.Spheres[m.index].Center = scene.Spheres[m.index].Center.Add(m.sphere)
	}
	m.wind, m.sphere = mgl64.Vec3{}, mgl64.Vec3{}
}

func (m *Manual) Reset() {
	m.mu.Lock()
	m.wind, m.sphere = mgl64.Vec3{}, mgl64.Vec3{}
	m.mu.Unlock()
}
