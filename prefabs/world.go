package prefabs

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec is wrapped by every validation failure.
var ErrInvalidSpec = errors.New("prefabs: invalid spec")

const WorldSpecFile = "world.yaml"

type ShapeKind string

const (
	ShapeCapsule ShapeKind = "capsule"
	ShapeBox     ShapeKind = "box"
)

type GroundedMode string

const (
	// GroundedToggle keeps a single flag; the latest begin or end touch wins.
	GroundedToggle GroundedMode = "toggle"
	// GroundedCounted keeps a contact count and is grounded while it is positive.
	GroundedCounted GroundedMode = "counted"
)

type WorldSpec struct {
	Physics  PhysicsSpec `yaml:"physics"`
	Player   PlayerSpec  `yaml:"player"`
	Platform SurfaceSpec `yaml:"platform"`
	Wall     SurfaceSpec `yaml:"wall"`
}

// PhysicsSpec is read once when a world is created. Later reloads only
// touch PlayerSpec's movement fields.
type PhysicsSpec struct {
	PixelsPerMeter float64 `yaml:"pixels_per_meter"`
	Gravity        float64 `yaml:"gravity"`
	TimeStep       float64 `yaml:"time_step"`
	SubSteps       int     `yaml:"sub_steps"`
	Iterations     int     `yaml:"iterations"`
	KillMargin     float64 `yaml:"kill_margin"`
}

type PlayerSpec struct {
	Width         float64        `yaml:"width"`
	Height        float64        `yaml:"height"`
	Shape         ShapeKind      `yaml:"shape"`
	Density       float64        `yaml:"density"`
	Friction      float64        `yaml:"friction"`
	Restitution   float64        `yaml:"restitution"`
	LinearDamping float64        `yaml:"linear_damping"`
	MoveImpulse   float64        `yaml:"move_impulse"`
	JumpImpulse   float64        `yaml:"jump_impulse"`
	GroundedMode  GroundedMode   `yaml:"grounded_mode"`
	FootSensor    FootSensorSpec `yaml:"foot_sensor"`
}

type FootSensorSpec struct {
	WidthRatio float64 `yaml:"width_ratio"`
	Height     float64 `yaml:"height"`
}

type SurfaceSpec struct {
	Friction    float64 `yaml:"friction"`
	Restitution float64 `yaml:"restitution"`
}

func DefaultWorldSpec() WorldSpec {
	return WorldSpec{
		Physics: PhysicsSpec{
			PixelsPerMeter: 100,
			Gravity:        10,
			TimeStep:       1.0 / 60.0,
			SubSteps:       4,
			Iterations:     10,
			KillMargin:     200,
		},
		Player: PlayerSpec{
			Width:         40,
			Height:        60,
			Shape:         ShapeCapsule,
			Density:       0.05,
			Friction:      0.4,
			LinearDamping: 5,
			MoveImpulse:   1,
			JumpImpulse:   6,
			GroundedMode:  GroundedToggle,
			FootSensor:    FootSensorSpec{WidthRatio: 0.9, Height: 2},
		},
		Platform: SurfaceSpec{Friction: 5},
	}
}

// applyDefaults fills zero values that have no meaningful zero setting.
func (s *WorldSpec) applyDefaults() {
	def := DefaultWorldSpec()
	if s.Physics.PixelsPerMeter == 0 {
		s.Physics.PixelsPerMeter = def.Physics.PixelsPerMeter
	}
	if s.Physics.TimeStep == 0 {
		s.Physics.TimeStep = def.Physics.TimeStep
	}
	if s.Physics.SubSteps == 0 {
		s.Physics.SubSteps = def.Physics.SubSteps
	}
	if s.Physics.Iterations == 0 {
		s.Physics.Iterations = def.Physics.Iterations
	}
	if s.Player.Width == 0 {
		s.Player.Width = def.Player.Width
	}
	if s.Player.Height == 0 {
		s.Player.Height = def.Player.Height
	}
	if s.Player.Shape == "" {
		s.Player.Shape = def.Player.Shape
	}
	if s.Player.Density == 0 {
		s.Player.Density = def.Player.Density
	}
	if s.Player.GroundedMode == "" {
		s.Player.GroundedMode = def.Player.GroundedMode
	}
	if s.Player.FootSensor.WidthRatio == 0 {
		s.Player.FootSensor.WidthRatio = def.Player.FootSensor.WidthRatio
	}
	if s.Player.FootSensor.Height == 0 {
		s.Player.FootSensor.Height = def.Player.FootSensor.Height
	}
}

func (s WorldSpec) Validate() error {
	p := s.Physics
	switch {
	case p.PixelsPerMeter <= 0:
		return fmt.Errorf("%w: pixels_per_meter must be positive", ErrInvalidSpec)
	case p.TimeStep <= 0:
		return fmt.Errorf("%w: time_step must be positive", ErrInvalidSpec)
	case p.SubSteps < 1:
		return fmt.Errorf("%w: sub_steps must be at least 1", ErrInvalidSpec)
	case p.Iterations < 1:
		return fmt.Errorf("%w: iterations must be at least 1", ErrInvalidSpec)
	case p.KillMargin < 0:
		return fmt.Errorf("%w: kill_margin must not be negative", ErrInvalidSpec)
	}

	pl := s.Player
	if pl.Width <= 0 || pl.Height <= 0 {
		return fmt.Errorf("%w: player size must be positive, got %vx%v", ErrInvalidSpec, pl.Width, pl.Height)
	}
	switch pl.Shape {
	case ShapeBox:
	case ShapeCapsule:
		if pl.Height <= pl.Width {
			return fmt.Errorf("%w: capsule player must be taller than wide", ErrInvalidSpec)
		}
	default:
		return fmt.Errorf("%w: unknown player shape %q", ErrInvalidSpec, pl.Shape)
	}
	switch pl.GroundedMode {
	case GroundedToggle, GroundedCounted:
	default:
		return fmt.Errorf("%w: unknown grounded_mode %q", ErrInvalidSpec, pl.GroundedMode)
	}
	if pl.Density <= 0 {
		return fmt.Errorf("%w: player density must be positive", ErrInvalidSpec)
	}
	if pl.LinearDamping < 0 || pl.Friction < 0 || pl.Restitution < 0 {
		return fmt.Errorf("%w: player damping, friction and restitution must not be negative", ErrInvalidSpec)
	}
	if pl.FootSensor.WidthRatio <= 0 || pl.FootSensor.WidthRatio > 1 {
		return fmt.Errorf("%w: foot_sensor.width_ratio must be in (0, 1]", ErrInvalidSpec)
	}
	if pl.FootSensor.Height <= 0 {
		return fmt.Errorf("%w: foot_sensor.height must be positive", ErrInvalidSpec)
	}

	for name, surf := range map[string]SurfaceSpec{"platform": s.Platform, "wall": s.Wall} {
		if surf.Friction < 0 || surf.Restitution < 0 {
			return fmt.Errorf("%w: %s friction and restitution must not be negative", ErrInvalidSpec, name)
		}
	}
	return nil
}

// ParseWorldSpec decodes, defaults and validates a world spec.
func ParseWorldSpec(data []byte) (*WorldSpec, error) {
	var spec WorldSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal world spec: %w", err)
	}
	spec.applyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// LoadWorldSpec loads world.yaml from ./prefabs or the embedded copy.
func LoadWorldSpec() (*WorldSpec, error) {
	data, err := Load(WorldSpecFile)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", WorldSpecFile, err)
	}
	spec, err := ParseWorldSpec(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", WorldSpecFile, err)
	}
	return spec, nil
}

// LoadWorldSpecFile loads a world spec from an explicit path. An empty path
// falls back to LoadWorldSpec.
func LoadWorldSpecFile(path string) (*WorldSpec, error) {
	if path == "" {
		return LoadWorldSpec()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", path, err)
	}
	spec, err := ParseWorldSpec(data)
	if err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", path, err)
	}
	return spec, nil
}
