package sim

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// FramePool recycles position snapshots handed to renderers.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(particles int) *FramePool {
	return &FramePool{
		size: particles,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]mgl64.Vec3, particles)
			},
		},
	}
}

func (p *FramePool) Get() []mgl64.Vec3 {
	return p.pool.Get().([]mgl64.Vec3)
}

func (p *FramePool) Put(f []mgl64.Vec3) {
	if len(f) == p.size {
		p.pool.Put(f)
	}
}

// Snapshot copies the simulator's current positions into a pooled frame.
func (p *FramePool) Snapshot(s *Simulator) []mgl64.Vec3 {
	dst := p.Get()
	s.grid.CopyPositions(dst)
	return dst
}
