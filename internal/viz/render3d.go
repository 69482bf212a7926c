package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/cloth"
)

// Camera is an orbiting perspective camera looking at Center from Distance.
type Camera struct {
	Center     mgl64.Vec3
	Yaw, Pitch float64
	Distance   float64
	Near       float64
	Zoom       float64
	// Unit is the number of dots one world unit spans at zoom 1, as a
	// fraction of the smaller canvas side.
	Unit float64
}

func NewCamera() *Camera {
	return &Camera{Distance: 12, Near: 0.1, Zoom: 1, Unit: 1.0 / 6}
}

func (c *Camera) Rotate(dyaw, dpitch float64) {
	c.Yaw += dyaw
	c.Pitch = mgl64.Clamp(c.Pitch+dpitch, -math.Pi/2, math.Pi/2)
}

func (c *Camera) ZoomIn()  { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) view() mgl64.Mat3 {
	return mgl64.Rotate3DX(c.Pitch).Mul3(mgl64.Rotate3DY(c.Yaw))
}

// Project maps a world point onto a w x h dot canvas. It returns the screen
// coordinates, the view depth and whether the point is in front of the
// camera and on screen.
func (c *Camera) Project(p mgl64.Vec3, w, h int) (int, int, float64, bool) {
	r := c.view().Mul3x1(p.Sub(c.Center)).Mul(c.Zoom)
	if r.Z() >= c.Distance-c.Near {
		return 0, 0, r.Z(), false
	}
	scale := c.Distance / (c.Distance - r.Z())
	unit := float64(min(w, h)) * c.Unit
	sx := int(math.Round(r.X()*scale*unit)) + w/2
	sy := int(math.Round(-r.Y()*scale*unit)) + h/2
	return sx, sy, r.Z(), sx >= 0 && sx < w && sy >= 0 && sy < h
}

type Edge struct {
	A, B mgl64.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe            { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(a, b mgl64.Vec3) { w.Edges = append(w.Edges, Edge{a, b}) }
func (w *Wireframe) Clear()                 { w.Edges = w.Edges[:0] }

// AddCloth adds the structural edges of a gridW x gridH particle frame.
func (w *Wireframe) AddCloth(pos []mgl64.Vec3, gridW, gridH int) {
	for j := 0; j < gridH; j++ {
		for i := 0; i < gridW; i++ {
			k := i + j*gridW
			if i+1 < gridW {
				w.AddEdge(pos[k], pos[k+1])
			}
			if j+1 < gridH {
				w.AddEdge(pos[k], pos[k+gridW])
			}
		}
	}
}

// AddSphere outlines a sphere with its three axis-aligned great circles.
func (w *Wireframe) AddSphere(s cloth.Sphere, segments int) {
	ring := func(u, v mgl64.Vec3) {
		prev := s.Center.Add(u.Mul(s.Radius))
		for i := 1; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			p := s.Center.Add(u.Mul(s.Radius * math.Cos(a))).Add(v.Mul(s.Radius * math.Sin(a)))
			w.AddEdge(prev, p)
			prev = p
		}
	}
	x, y, z := mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0, 1}
	ring(x, y)
	ring(x, z)
	ring(y, z)
}

func (w *Wireframe) AddAxes(l float64) {
	o := mgl64.Vec3{}
	w.AddEdge(o, mgl64.Vec3{l, 0, 0})
	w.AddEdge(o, mgl64.Vec3{0, l, 0})
	w.AddEdge(o, mgl64.Vec3{0, 0, l})
}

// Render3D draws every edge whose endpoints both lie in front of the camera.
// Dots falling off the canvas are clipped by Set; edges reaching far past
// it are dropped.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	cw, ch := c.Size()
	limit := cam.Distance - cam.Near
	for _, e := range w.Edges {
		x1, y1, d1, _ := cam.Project(e.A, cw, ch)
		x2, y2, d2, _ := cam.Project(e.B, cw, ch)
		if !(d1 < limit && d2 < limit) {
			continue
		}
		if !nearCanvas(x1, y1, cw, ch) || !nearCanvas(x2, y2, cw, ch) {
			continue
		}
		c.DrawLine(x1, y1, x2, y2)
	}
}

func nearCanvas(x, y, w, h int) bool {
	return x > -4*w && x < 5*w && y > -4*h && y < 5*h
}
