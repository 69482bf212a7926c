package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// setters address scalar fields by dotted name for sweeps and tuning.
var setters = map[string]func(c *Config, v float64){
	"dt":            func(c *Config, v float64) { c.Dt = v },
	"duration":      func(c *Config, v float64) { c.Duration = v },
	"mass":          func(c *Config, v float64) { c.Cloth.Mass = v },
	"structural.k":  func(c *Config, v float64) { c.Springs.Structural.K = v },
	"structural.v":  func(c *Config, v float64) { c.Springs.Structural.V = v },
	"shear.k":       func(c *Config, v float64) { c.Springs.Shear.K = v },
	"shear.v":       func(c *Config, v float64) { c.Springs.Shear.V = v },
	"bend.k":        func(c *Config, v float64) { c.Springs.Bend.K = v },
	"bend.v":        func(c *Config, v float64) { c.Springs.Bend.V = v },
	"gravity.y":     func(c *Config, v float64) { c.Forces.Gravity[1] = v },
	"wind.x":        func(c *Config, v float64) { c.Forces.Wind[0] = v },
	"wind.z":        func(c *Config, v float64) { c.Forces.Wind[2] = v },
	"gust.strength": func(c *Config, v float64) { c.ControllerParams.GustStrength = v },
	"sphere.radius": func(c *Config, v float64) {
		if len(c.Spheres) > 0 {
			c.Spheres[0].Radius = v
		}
	},
	"sphere.friction": func(c *Config, v float64) {
		if len(c.Spheres) > 0 {
			c.Spheres[0].Friction = v
		}
	},
}

// Set assigns a named scalar parameter, e.g. "bend.k" or "wind.x".
func (c *Config) Set(name string, v float64) error {
	set, ok := setters[name]
	if !ok {
		return fmt.Errorf("%w: parameter %q", dynamo.ErrUnknownComponent, name)
	}
	set(c, v)
	return nil
}

// ParamNames lists the names accepted by Set.
func ParamNames() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
