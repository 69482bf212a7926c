package config

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMass     = 4096.0
	DefaultWidth    = 4.0
	DefaultHeight   = 3.0
	DefaultGridW    = 32
	DefaultGridH    = 16
	DefaultDt       = 1.0 / 60
	DefaultDuration = 10.0
	DefaultK        = 1.0
	DefaultV        = 0.1
)

type Config struct {
	Cloth            ClothConfig         `yaml:"cloth"`
	Springs          SpringsConfig       `yaml:"springs"`
	Integrator       string              `yaml:"integrator"`
	Controller       string              `yaml:"controller"`
	ControllerParams ControllerConfig    `yaml:"controller_params"`
	Dt               float64             `yaml:"dt"`
	Duration         float64             `yaml:"duration"`
	Seed             int64               `yaml:"seed"`
	SampleEvery      int                 `yaml:"sample_every"`
	Forces           ForcesConfig        `yaml:"forces"`
	Spheres          []SphereConfig      `yaml:"spheres"`
	SelfCollision    SelfCollisionConfig `yaml:"self_collision"`
}

type ClothConfig struct {
	Mass   float64 `yaml:"mass"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	GridW  int     `yaml:"grid_w"`
	GridH  int     `yaml:"grid_h"`
	Anchor string  `yaml:"anchor"`
}

type SpringConfig struct {
	K float64 `yaml:"k"`
	V float64 `yaml:"v"`
}

type SpringsConfig struct {
	Structural SpringConfig `yaml:"structural"`
	Shear      SpringConfig `yaml:"shear"`
	Bend       SpringConfig `yaml:"bend"`
	Epsilon    float64      `yaml:"epsilon"`
}

type ForcesConfig struct {
	Gravity mgl64.Vec3   `yaml:"gravity,flow"`
	Wind    mgl64.Vec3   `yaml:"wind,flow"`
	Fields  []mgl64.Vec3 `yaml:"fields,omitempty,flow"`
}

type SphereConfig struct {
	Center   mgl64.Vec3 `yaml:"center,flow"`
	Radius   float64    `yaml:"radius"`
	Friction float64    `yaml:"friction"`
}

// SelfCollisionConfig enables particle-particle repulsion. A zero
// MinSeparation uses half the smaller rest spacing of the grid.
type SelfCollisionConfig struct {
	Enabled       bool    `yaml:"enabled"`
	MinSeparation float64 `yaml:"min_separation"`
}

type ControllerConfig struct {
	GustStrength   float64    `yaml:"gust_strength"`
	GustInterval   float64    `yaml:"gust_interval"`
	DriveSphere    int        `yaml:"drive_sphere"`
	DriveAxis      mgl64.Vec3 `yaml:"drive_axis,flow"`
	DriveAmplitude float64    `yaml:"drive_amplitude"`
	DrivePeriod    float64    `yaml:"drive_period"`
}

// DefaultConfig is a 4x3 flag of 32x16 particles pinned on its left edge,
// blown along +x past a unit sphere at the origin.
func DefaultConfig() *Config {
	return &Config{
		Cloth: ClothConfig{
			Mass:   DefaultMass,
			Width:  DefaultWidth,
			Height: DefaultHeight,
			GridW:  DefaultGridW,
			GridH:  DefaultGridH,
			Anchor: string(cloth.AnchorLeftEdge),
		},
		Springs: SpringsConfig{
			Structural: SpringConfig{K: DefaultK, V: DefaultV},
			Shear:      SpringConfig{K: DefaultK, V: DefaultV},
			Bend:       SpringConfig{K: DefaultK, V: DefaultV},
			Epsilon:    cloth.DefaultEpsilon,
		},
		Integrator: "symplectic",
		Controller: "none",
		ControllerParams: ControllerConfig{
			GustStrength:   0.04,
			GustInterval:   0.5,
			DriveAxis:      mgl64.Vec3{0, 0, 1},
			DriveAmplitude: 0.5,
			DrivePeriod:    4.0,
		},
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		SampleEvery: 1,
		Forces: ForcesConfig{
			Gravity: mgl64.Vec3{0, -0.001, 0},
			Wind:    mgl64.Vec3{0.02, 0, 0},
		},
		Spheres: []SphereConfig{{Radius: 1}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets can be modified safely.
func (c *Config) Clone() *Config {
	out := *c
	out.Spheres = append([]SphereConfig(nil), c.Spheres...)
	out.Forces.Fields = append([]mgl64.Vec3(nil), c.Forces.Fields...)
	return &out
}

func (c *Config) Validate() error {
	if c.Cloth.GridW < 2 || c.Cloth.GridH < 2 {
		return fmt.Errorf("%w: grid %dx%d", dynamo.ErrInvalidGridDimension, c.Cloth.GridW, c.Cloth.GridH)
	}
	if !(c.Cloth.Mass > 0) || !(c.Cloth.Width > 0) || !(c.Cloth.Height > 0) {
		return fmt.Errorf("%w: cloth mass and size must be positive", dynamo.ErrParameterBounds)
	}
	if !cloth.Anchor(c.Cloth.Anchor).Valid() {
		return fmt.Errorf("%w: unknown anchor %q", dynamo.ErrParameterBounds, c.Cloth.Anchor)
	}
	if err := c.SpringParams().Validate(); err != nil {
		return err
	}
	if err := sim.CheckDuration(c.Dt, c.Duration); err != nil {
		return err
	}
	if c.SampleEvery < 1 {
		return fmt.Errorf("%w: sample_every must be at least 1", dynamo.ErrParameterBounds)
	}
	for i, s := range c.Spheres {
		if err := s.Sphere().Validate(); err != nil {
			return fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	if c.SelfCollision.MinSeparation < 0 {
		return fmt.Errorf("%w: negative self-collision separation", dynamo.ErrParameterBounds)
	}
	return nil
}

func (c *Config) SpringParams() cloth.SpringParams {
	return cloth.SpringParams{
		Structural: cloth.Coefficients{Stiffness: c.Springs.Structural.K, Damping: c.Springs.Structural.V},
		Shear:      cloth.Coefficients{Stiffness: c.Springs.Shear.K, Damping: c.Springs.Shear.V},
		Bend:       cloth.Coefficients{Stiffness: c.Springs.Bend.K, Damping: c.Springs.Bend.V},
		Epsilon:    c.Springs.Epsilon,
	}
}

func (s SphereConfig) Sphere() cloth.Sphere {
	return cloth.Sphere{Center: s.Center, Radius: s.Radius, Friction: s.Friction}
}

func (c *Config) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Dt = c.Dt
	cfg.Duration = c.Duration
	cfg.Seed = c.Seed
	cfg.SampleEvery = c.SampleEvery
	return cfg
}
