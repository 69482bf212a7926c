package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// Sag is how far the cloth's centroid has dropped below where it was first
// observed, along -y.
type Sag struct {
	name    string
	start   float64
	current float64
	seen    bool
}

func NewSag() *Sag {
	return &Sag{name: "sag"}
}

func (s *Sag) Name() string { return s.name }

func (s *Sag) Observe(g *cloth.Grid, t float64) {
	y := g.Centroid().Y()
	if !s.seen {
		s.start = y
		s.seen = true
	}
	s.current = s.start - y
}

func (s *Sag) Value() float64 { return s.current }

func (s *Sag) Reset() {
	s.start, s.current, s.seen = 0, 0, false
}
