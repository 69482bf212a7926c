package control

import "github.com/san-kum/clothsim/internal/sim"

type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Update(scene *sim.Scene, t, dt float64) {}
func (n *None) Reset()                                  {}

// Chain runs several controllers in order.
type Chain []sim.Controller

func (c Chain) Update(scene *sim.Scene, t, dt float64) {
	for _, ctrl := range c {
		ctrl.Update(scene, t, dt)
	}
}

func (c Chain) Reset() {
	for _, ctrl := range c {
		ctrl.Reset()
	}
}
