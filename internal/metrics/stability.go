package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Stability is the fraction of observations in which every particle stayed
// within threshold of the origin and the state was finite.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(g *cloth.Grid, t float64) {
	s.samples++
	if !g.Valid() {
		s.violations++
		return
	}
	limit := s.threshold * s.threshold
	for _, p := range g.Positions() {
		if p.Dot(p) > limit {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakStrain is the largest structural strain seen during the run.
type PeakStrain struct {
	name string
	peak float64
}

func NewPeakStrain() *PeakStrain {
	return &PeakStrain{name: "peak_strain", peak: math.Inf(-1)}
}

func (p *PeakStrain) Name() string { return p.name }

func (p *PeakStrain) Observe(g *cloth.Grid, t float64) {
	p.peak = math.Max(p.peak, g.MaxStrain())
}

func (p *PeakStrain) Value() float64 {
	if math.IsInf(p.peak, -1) {
		return 0
	}
	return p.peak
}

func (p *PeakStrain) Reset() { p.peak = math.Inf(-1) }
