package config

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

var Presets = map[string]*Config{
	"flag": DefaultConfig(),
	"curtain": func() *Config {
		c := DefaultConfig()
		c.Cloth.Anchor = "top"
		c.Cloth.GridW, c.Cloth.GridH = 24, 24
		c.Cloth.Width, c.Cloth.Height = 3, 3
		c.Forces.Wind = mgl64.Vec3{0, 0, 0.005}
		c.Controller = "gust"
		c.ControllerParams.GustStrength = 0.01
		c.Spheres = nil
		return c
	}(),
	"drape": func() *Config {
		c := DefaultConfig()
		c.Cloth.Anchor = "none"
		c.Cloth.Width, c.Cloth.Height = 3, 3
		c.Cloth.GridW, c.Cloth.GridH = 20, 20
		c.Forces.Wind = mgl64.Vec3{}
		c.Spheres = []SphereConfig{{Center: mgl64.Vec3{0, -2.5, 0}, Radius: 1, Friction: 0.3}}
		c.SelfCollision.Enabled = true
		c.Duration = 20
		return c
	}(),
	"still": func() *Config {
		c := DefaultConfig()
		c.Forces.Gravity = mgl64.Vec3{}
		c.Forces.Wind = mgl64.Vec3{}
		c.Spheres = nil
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
