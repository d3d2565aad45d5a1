package obj

import (
	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/levels"
	"github.com/milk9111/platformer/physics"
	"github.com/milk9111/platformer/prefabs"
)

type State uint8

const (
	StateUninitialized State = iota
	StateRunning
	StateUnloaded
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateUnloaded:
		return "unloaded"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of the player after a frame.
type Snapshot struct {
	Frame    uint64
	Position cp.Vector
	Velocity cp.Vector
	Grounded bool
	Contacts int
}

// World owns the physics world, the player and the level geometry.
type World struct {
	state  State
	logger *log.Logger

	spec  prefabs.WorldSpec
	units common.Units
	level *levels.Level

	physics   *physics.World
	player    *Player
	platforms []*Body
	walls     []*Body

	frame uint64
	killY float64
	jumps uint64

	// set by a respawn until the next step
	teleported bool
}

// NewWorld builds the level and the player and starts running. The physics
// section of spec is fixed for the life of the world.
func NewWorld(spec prefabs.WorldSpec, level *levels.Level, logger *log.Logger) *World {
	if logger == nil {
		logger = log.Default()
	}
	units := common.NewUnits(spec.Physics.PixelsPerMeter)

	w := &World{
		logger: logger,
		spec:   spec,
		units:  units,
		level:  level,
	}

	w.physics = physics.NewWorld(physics.WorldDef{
		Gravity:    cp.Vector{X: 0, Y: units.Pixels(spec.Physics.Gravity)},
		Iterations: uint(spec.Physics.Iterations),
	})

	for _, r := range level.Platforms {
		w.platforms = append(w.platforms, NewPlatform(w.physics, r, spec.Platform))
	}
	for _, r := range level.Walls {
		w.walls = append(w.walls, NewWall(w.physics, r, spec.Wall))
	}
	w.player = NewPlayer(w.physics, w.spawn(), spec.Player, units)

	bounds := level.Bounds()
	w.killY = bounds.Y + bounds.H + spec.Physics.KillMargin

	w.state = StateRunning
	w.logger.Info("world created",
		"level", level.Name,
		"platforms", len(w.platforms),
		"walls", len(w.walls),
		"mass", w.player.Mass(),
	)
	return w
}

func (w *World) spawn() cp.Vector {
	return cp.Vector{X: w.level.Spawn.X, Y: w.level.Spawn.Y}
}

// Update runs one fixed-step frame. It does nothing unless the world is
// running.
//
// A respawn, requested or from falling past the kill line, happens first.
// Jumps stay blocked until a step has run after the teleport, so the foot
// sensor has reported the contacts at the new position.
func (w *World) Update(in Input) {
	if w.state != StateRunning {
		return
	}

	if in.RespawnPressed || w.player.Position().Y > w.killY {
		w.RespawnPlayer()
	}

	switch in.Direction() {
	case 1:
		w.player.MoveRight()
	case -1:
		w.player.MoveLeft()
	}

	if in.JumpPressed && !w.teleported && w.player.Jump() {
		w.jumps++
	}

	w.physics.Step(w.spec.Physics.TimeStep, w.spec.Physics.SubSteps)
	w.teleported = false
	w.dispatchSensorEvents()
	w.player.Update()
	w.frame++
}

func (w *World) dispatchSensorEvents() {
	foot := w.player.FootSensor()
	for _, evt := range w.physics.SensorEvents() {
		if !evt.Sensor.Equal(foot) {
			continue
		}
		switch evt.Kind {
		case physics.SensorBeginTouch:
			w.player.touchFoot(evt.Visitor, true)
		case physics.SensorEndTouch:
			w.player.touchFoot(evt.Visitor, false)
		}
	}
}

// RespawnPlayer moves the player back to the level spawn. The next Update
// does not jump; its step settles the grounded flag first.
func (w *World) RespawnPlayer() {
	if w.state != StateRunning {
		return
	}
	w.player.Respawn(w.spawn())
	w.teleported = true
	w.logger.Debug("player respawned", "frame", w.frame)
}

// ApplyTuning hot-swaps the player's movement tuning.
func (w *World) ApplyTuning(spec prefabs.WorldSpec) {
	if w.state != StateRunning {
		return
	}
	w.spec.Player.MoveImpulse = spec.Player.MoveImpulse
	w.spec.Player.JumpImpulse = spec.Player.JumpImpulse
	w.spec.Player.LinearDamping = spec.Player.LinearDamping
	w.spec.Player.GroundedMode = spec.Player.GroundedMode
	w.player.ApplyTuning(w.spec.Player, w.units)
	w.logger.Info("tuning applied",
		"move_impulse", spec.Player.MoveImpulse,
		"jump_impulse", spec.Player.JumpImpulse,
		"linear_damping", spec.Player.LinearDamping,
		"grounded_mode", spec.Player.GroundedMode,
	)
}

// Unload releases the player, every platform, every wall and finally the
// physics world. It reports false after the first call.
func (w *World) Unload() bool {
	if w.state != StateRunning {
		return false
	}
	w.player.Unload()
	for _, p := range w.platforms {
		p.Unload()
	}
	for _, wall := range w.walls {
		wall.Unload()
	}
	w.physics.Destroy()
	w.state = StateUnloaded
	w.logger.Info("world unloaded", "frames", w.frame)
	return true
}

func (w *World) State() State {
	return w.state
}

func (w *World) Frame() uint64 {
	return w.frame
}

// Jumps counts the jump impulses actually applied.
func (w *World) Jumps() uint64 {
	return w.jumps
}

func (w *World) Player() *Player {
	return w.player
}

func (w *World) Platforms() []*Body {
	return w.platforms
}

func (w *World) Walls() []*Body {
	return w.walls
}

func (w *World) Physics() *physics.World {
	return w.physics
}

func (w *World) Level() *levels.Level {
	return w.level
}

func (w *World) Spec() prefabs.WorldSpec {
	return w.spec
}

func (w *World) KillY() float64 {
	return w.killY
}

func (w *World) Snapshot() Snapshot {
	return Snapshot{
		Frame:    w.frame,
		Position: w.player.Position(),
		Velocity: w.player.Velocity(),
		Grounded: w.player.Grounded(),
		Contacts: w.player.Contacts(),
	}
}
