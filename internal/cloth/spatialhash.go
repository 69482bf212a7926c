package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type cellKey [3]int

// spatialHash buckets particle indices into cubic cells so neighbor queries
// only scan the 27 cells around a point.
type spatialHash struct {
	cell  float64
	cells map[cellKey][]int
}

func newSpatialHash(cell float64) *spatialHash {
	return &spatialHash{cell: cell, cells: make(map[cellKey][]int)}
}

func (h *spatialHash) key(p mgl64.Vec3) cellKey {
	return cellKey{
		int(math.Floor(p[0] / h.cell)),
		int(math.Floor(p[1] / h.cell)),
		int(math.Floor(p[2] / h.cell)),
	}
}

func (h *spatialHash) build(points []mgl64.Vec3) {
	for k, bucket := range h.cells {
		h.cells[k] = bucket[:0]
	}
	for i, p := range points {
		k := h.key(p)
		h.cells[k] = append(h.cells[k], i)
	}
}

// neighbors calls fn for every index bucketed within one cell of p.
func (h *spatialHash) neighbors(p mgl64.Vec3, fn func(int)) {
	c := h.key(p)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				for _, idx := range h.cells[cellKey{c[0] + dx, c[1] + dy, c[2] + dz}] {
					fn(idx)
				}
			}
		}
	}
}
