package obj

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/physics"
	"github.com/milk9111/platformer/prefabs"
)

type Kind uint8

const (
	KindPlatform Kind = iota + 1
	KindWall
	KindPlayer
)

func (k Kind) String() string {
	switch k {
	case KindPlatform:
		return "platform"
	case KindWall:
		return "wall"
	case KindPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// Static reports whether bodies of this kind never move.
func (k Kind) Static() bool {
	return k != KindPlayer
}

// BodyDef describes the primary shape of a Body. Density is per square
// pixel; it is ignored for static kinds.
type BodyDef struct {
	Shape         prefabs.ShapeKind
	Density       float64
	Friction      float64
	Restitution   float64
	LinearDamping float64
}

// Body binds a physics body and its primary shape to a game object. Position
// is the cached center; Player refreshes it after every step.
type Body struct {
	kind     Kind
	world    *physics.World
	halfSize cp.Vector
	position cp.Vector
	body     physics.BodyID
	shape    physics.ShapeID
	unloaded bool
}

// NewBody creates a body centered on center with the given full size in
// pixels. Platforms and walls are static boxes; players are dynamic with a
// fixed rotation.
func NewBody(world *physics.World, kind Kind, center, size cp.Vector, def BodyDef) *Body {
	if world == nil || world.Destroyed() {
		panic("obj: NewBody needs a live physics world")
	}

	b := &Body{
		kind:     kind,
		world:    world,
		halfSize: size.Mult(0.5),
		position: center,
	}

	bodyDef := physics.BodyDef{Type: physics.StaticBody, Position: center}
	if !kind.Static() {
		bodyDef.Type = physics.DynamicBody
		bodyDef.FixedRotation = true
		bodyDef.LinearDamping = def.LinearDamping
	}
	b.body = world.CreateBody(bodyDef)

	var geom physics.Geometry = physics.Box{HalfWidth: b.halfSize.X, HalfHeight: b.halfSize.Y}
	if def.Shape == prefabs.ShapeCapsule {
		geom = physics.VerticalCapsule(b.halfSize.X, b.halfSize.Y)
	}
	shapeDef := physics.ShapeDef{
		Friction:    def.Friction,
		Restitution: def.Restitution,
	}
	if !kind.Static() {
		shapeDef.Density = def.Density
	}
	b.shape = world.CreateShape(b.body, shapeDef, geom)
	return b
}

// NewPlatform creates a static box covering rect.
func NewPlatform(world *physics.World, rect common.Rect, surface prefabs.SurfaceSpec) *Body {
	return newStaticBox(world, KindPlatform, rect, surface)
}

// NewWall creates an invisible static box covering rect.
func NewWall(world *physics.World, rect common.Rect, surface prefabs.SurfaceSpec) *Body {
	return newStaticBox(world, KindWall, rect, surface)
}

func newStaticBox(world *physics.World, kind Kind, rect common.Rect, surface prefabs.SurfaceSpec) *Body {
	cx, cy := rect.Center()
	return NewBody(world, kind, cp.Vector{X: cx, Y: cy}, cp.Vector{X: rect.W, Y: rect.H}, BodyDef{
		Shape:       prefabs.ShapeBox,
		Friction:    surface.Friction,
		Restitution: surface.Restitution,
	})
}

func (b *Body) Kind() Kind {
	return b.kind
}

func (b *Body) Static() bool {
	return b.kind.Static()
}

// Size returns the half extents.
func (b *Body) Size() cp.Vector {
	return b.halfSize
}

// Position returns the cached center.
func (b *Body) Position() cp.Vector {
	return b.position
}

// Rect returns the cached bounds in pixels.
func (b *Body) Rect() common.Rect {
	return common.Rect{
		X: b.position.X - b.halfSize.X,
		Y: b.position.Y - b.halfSize.Y,
		W: 2 * b.halfSize.X,
		H: 2 * b.halfSize.Y,
	}
}

func (b *Body) BodyID() physics.BodyID {
	return b.body
}

func (b *Body) ShapeID() physics.ShapeID {
	return b.shape
}

func (b *Body) Unloaded() bool {
	return b.unloaded
}

// Unload destroys the physics body together with every shape attached to
// it. Only the first call does anything.
func (b *Body) Unload() bool {
	if b == nil || b.unloaded {
		return false
	}
	b.unloaded = true
	return b.world.DestroyBody(b.body)
}
