package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/physics"
	"github.com/milk9111/platformer/prefabs"
)

// Player is the controllable body. A sensor box under its feet feeds the
// grounded flag through SetFootStatus.
type Player struct {
	*Body

	foot     physics.ShapeID
	grounded bool
	contacts int
	mode     prefabs.GroundedMode
	// shapes the foot sensor overlaps, kept in both modes
	touching map[physics.ShapeID]struct{}

	// pixels per second of velocity change per unit mass
	moveImpulse float64
	jumpImpulse float64
}

// NewPlayer creates the player centered on center. Tuning values in spec
// are in meters and converted with units.
func NewPlayer(world *physics.World, center cp.Vector, spec prefabs.PlayerSpec, units common.Units) *Player {
	body := NewBody(world, KindPlayer, center, cp.Vector{X: spec.Width, Y: spec.Height}, BodyDef{
		Shape:         spec.Shape,
		Density:       units.AreaDensity(spec.Density),
		Friction:      spec.Friction,
		Restitution:   spec.Restitution,
		LinearDamping: spec.LinearDamping,
	})

	p := &Player{Body: body, touching: make(map[physics.ShapeID]struct{})}
	p.applyTuning(spec, units)

	half := body.Size()
	footHalfHeight := spec.FootSensor.Height / 2
	p.foot = world.CreateShape(body.BodyID(), physics.ShapeDef{Sensor: true}, physics.Box{
		HalfWidth:  half.X * spec.FootSensor.WidthRatio,
		HalfHeight: footHalfHeight,
		Center:     cp.Vector{X: 0, Y: half.Y + footHalfHeight},
	})
	return p
}

// applyTuning converts the impulses to pixels. Entering counted mode seeds
// the contact count from the shapes the sensor overlaps right now.
func (p *Player) applyTuning(spec prefabs.PlayerSpec, units common.Units) {
	p.moveImpulse = units.Pixels(spec.MoveImpulse)
	p.jumpImpulse = units.Pixels(spec.JumpImpulse)
	if p.mode != spec.GroundedMode {
		p.mode = spec.GroundedMode
		p.contacts = 0
		if p.mode == prefabs.GroundedCounted {
			p.contacts = len(p.touching)
			p.grounded = p.contacts > 0
		}
	}
}

// ApplyTuning swaps the movement impulses, damping and grounded mode. Size,
// shape and density stay as created.
func (p *Player) ApplyTuning(spec prefabs.PlayerSpec, units common.Units) {
	if p == nil || p.Unloaded() {
		return
	}
	p.applyTuning(spec, units)
	p.world.SetLinearDamping(p.body, spec.LinearDamping)
}

// FootSensor returns the handle of the ground sensor shape.
func (p *Player) FootSensor() physics.ShapeID {
	return p.foot
}

func (p *Player) Grounded() bool {
	return p.grounded
}

// Contacts is the number of shapes the foot sensor overlaps. It is only
// tracked in counted mode.
func (p *Player) Contacts() int {
	return p.contacts
}

func (p *Player) GroundedMode() prefabs.GroundedMode {
	return p.mode
}

func (p *Player) Mass() float64 {
	return p.world.BodyMass(p.body)
}

func (p *Player) Velocity() cp.Vector {
	return p.world.BodyVelocity(p.body)
}

func (p *Player) MoveRight() {
	p.move(1)
}

func (p *Player) MoveLeft() {
	p.move(-1)
}

func (p *Player) move(dir float64) {
	if p.Unloaded() {
		return
	}
	mass := p.Mass()
	impulse := cp.Vector{X: dir * mass / 2 * p.moveImpulse, Y: 0}
	p.world.ApplyLinearImpulse(p.body, impulse, p.world.BodyWorldCenter(p.body))
}

// Jump applies an upward impulse when grounded and reports whether it did.
func (p *Player) Jump() bool {
	if p.Unloaded() || !p.grounded {
		return false
	}
	mass := p.Mass()
	impulse := cp.Vector{X: 0, Y: -mass * p.jumpImpulse}
	p.world.ApplyLinearImpulse(p.body, impulse, p.world.BodyWorldCenter(p.body))
	return true
}

// Update copies the body position from the physics world.
func (p *Player) Update() {
	if p.Unloaded() {
		return
	}
	p.position = p.world.BodyPosition(p.body)
}

// SetFootStatus records a begin (true) or end (false) touch of the foot
// sensor.
func (p *Player) SetFootStatus(touching bool) {
	if p.mode == prefabs.GroundedCounted {
		if touching {
			p.contacts++
		} else if p.contacts > 0 {
			p.contacts--
		}
		p.grounded = p.contacts > 0
		return
	}
	if p.grounded != touching {
		p.grounded = touching
	}
}

// touchFoot records a begin or end touch between the foot sensor and
// visitor and forwards it to SetFootStatus.
func (p *Player) touchFoot(visitor physics.ShapeID, touching bool) {
	if touching {
		p.touching[visitor] = struct{}{}
	} else {
		delete(p.touching, visitor)
	}
	p.SetFootStatus(touching)
}

// Respawn teleports the player to center and stops it. The grounded state
// is left to the sensor events of the next step.
func (p *Player) Respawn(center cp.Vector) {
	if p.Unloaded() {
		return
	}
	p.world.SetBodyTransform(p.body, center)
	p.Update()
}
