package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// KineticEnergy reports the most recently observed Σ ½mv².
type KineticEnergy struct {
	name  string
	value float64
}

func NewKineticEnergy() *KineticEnergy {
	return &KineticEnergy{name: "kinetic"}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(g *cloth.Grid, t float64) {
	e.value = g.KineticEnergy()
}

func (e *KineticEnergy) Value() float64 { return e.value }
func (e *KineticEnergy) Reset()         { e.value = 0 }

// SpringEnergy reports the most recently observed elastic energy of all springs.
type SpringEnergy struct {
	name  string
	value float64
}

func NewSpringEnergy() *SpringEnergy {
	return &SpringEnergy{name: "spring"}
}

func (e *SpringEnergy) Name() string { return e.name }

func (e *SpringEnergy) Observe(g *cloth.Grid, t float64) {
	e.value = g.SpringEnergy()
}

func (e *SpringEnergy) Value() float64 { return e.value }
func (e *SpringEnergy) Reset()         { e.value = 0 }

// EnergyDrift tracks the largest relative change of kinetic plus spring
// energy from the first observation. External fields add energy, so this is
// only meaningful for unforced runs.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(g *cloth.Grid, t float64) {
	energy := g.KineticEnergy() + g.SpringEnergy()
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
