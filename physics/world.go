package physics

import (
	"math"
	"sync/atomic"

	"github.com/jakecoffman/cp"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeSensor
)

type BodyType uint8

const (
	StaticBody BodyType = iota
	DynamicBody
)

func (t BodyType) String() string {
	switch t {
	case StaticBody:
		return "static"
	case DynamicBody:
		return "dynamic"
	default:
		return "unknown"
	}
}

// WorldDef configures a new World. Gravity is in simulation units per
// second squared.
type WorldDef struct {
	Gravity    cp.Vector
	Iterations uint
}

func DefaultWorldDef() WorldDef {
	return WorldDef{Gravity: cp.Vector{X: 0, Y: 10}, Iterations: 10}
}

// BodyDef configures a new body. LinearDamping follows the usual rigid-body
// convention: velocity is scaled by 1/(1+dt*LinearDamping) every step.
type BodyDef struct {
	Type          BodyType
	Position      cp.Vector
	FixedRotation bool
	LinearDamping float64
}

// ShapeDef configures a new shape. Density is mass per square simulation
// unit and only contributes to dynamic bodies.
type ShapeDef struct {
	Density     float64
	Friction    float64
	Restitution float64
	Sensor      bool
}

func DefaultShapeDef() ShapeDef {
	return ShapeDef{Density: 1, Friction: 0.6}
}

var nextWorldID atomic.Uint32

// World owns a Chipmunk space and every body and shape in it. Bodies and
// shapes are handed out as value handles; destroying a handle twice is a
// no-op.
type World struct {
	id        uint16
	space     *cp.Space
	destroyed bool

	bodies     []bodySlot
	shapes     []shapeSlot
	freeBodies []int32
	freeShapes []int32
	shapeIndex map[*cp.Shape]ShapeID

	events   []SensorEvent
	pending  []SensorEvent
	stepping bool

	onBodyDestroyed func(BodyID)
}

type bodySlot struct {
	body          *cp.Body
	typ           BodyType
	revision      uint16
	alive         bool
	fixedRotation bool
	linearDamping float64
	mass          float64
	moment        float64
	shapes        []ShapeID
}

type shapeSlot struct {
	shape    *cp.Shape
	body     BodyID
	geometry Geometry
	sensor   bool
	revision uint16
	alive    bool
}

// NewWorld creates a world with its own space and sensor handlers.
func NewWorld(def WorldDef) *World {
	space := cp.NewSpace()
	if def.Iterations > 0 {
		space.Iterations = def.Iterations
	}
	space.SetGravity(def.Gravity)

	w := &World{
		id:         uint16(nextWorldID.Add(1)),
		space:      space,
		shapeIndex: make(map[*cp.Shape]ShapeID),
	}
	w.setupHandlers()
	return w
}

// Space returns the underlying Chipmunk space, or nil once destroyed.
func (w *World) Space() *cp.Space {
	if w == nil || w.destroyed {
		return nil
	}
	return w.space
}

func (w *World) Destroyed() bool {
	return w == nil || w.destroyed
}

// OnBodyDestroyed registers a callback invoked after each body is released.
func (w *World) OnBodyDestroyed(fn func(BodyID)) {
	if w == nil {
		return
	}
	w.onBodyDestroyed = fn
}

func (w *World) setupHandlers() {
	sensorHandler := w.space.NewCollisionHandler(collisionTypeSensor, collisionTypeSolid)
	sensorHandler.UserData = w
	sensorHandler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if ok && world != nil {
			world.recordSensorEvent(arb, SensorBeginTouch)
		}
		return true
	}
	sensorHandler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		world, ok := userData.(*World)
		if ok && world != nil {
			world.recordSensorEvent(arb, SensorEndTouch)
		}
	}

	// sensors never report each other
	sensorPair := w.space.NewCollisionHandler(collisionTypeSensor, collisionTypeSensor)
	sensorPair.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		return false
	}
}

// CreateBody adds a body to the world. Dynamic bodies start with unit mass
// until their first shape with density is attached.
func (w *World) CreateBody(def BodyDef) BodyID {
	if w == nil || w.destroyed {
		return NullBody
	}

	slot := bodySlot{
		typ:           def.Type,
		fixedRotation: def.FixedRotation,
		linearDamping: def.LinearDamping,
		alive:         true,
	}

	var body *cp.Body
	switch def.Type {
	case DynamicBody:
		moment := 1.0
		if def.FixedRotation {
			moment = math.Inf(1)
		}
		body = cp.NewBody(1, moment)
	default:
		body = cp.NewStaticBody()
	}
	body.SetPosition(def.Position)
	slot.body = body

	index := w.allocBody()
	slot.revision = w.bodies[index-1].revision
	w.bodies[index-1] = slot
	id := BodyID{world: w.id, index: index, revision: slot.revision}

	if def.Type == DynamicBody {
		body.SetVelocityUpdateFunc(func(b *cp.Body, gravity cp.Vector, damping float64, dt float64) {
			c := w.bodies[index-1].linearDamping
			if c > 0 {
				damping /= 1 + dt*c
			}
			cp.BodyUpdateVelocity(b, gravity, damping, dt)
		})
	}

	w.space.AddBody(body)
	return id
}

func (w *World) allocBody() int32 {
	if n := len(w.freeBodies); n > 0 {
		index := w.freeBodies[n-1]
		w.freeBodies = w.freeBodies[:n-1]
		return index
	}
	w.bodies = append(w.bodies, bodySlot{})
	return int32(len(w.bodies))
}

func (w *World) allocShape() int32 {
	if n := len(w.freeShapes); n > 0 {
		index := w.freeShapes[n-1]
		w.freeShapes = w.freeShapes[:n-1]
		return index
	}
	w.shapes = append(w.shapes, shapeSlot{})
	return int32(len(w.shapes))
}

func (w *World) body(id BodyID) *bodySlot {
	if w == nil || w.destroyed || id.world != w.id || id.index <= 0 || int(id.index) > len(w.bodies) {
		return nil
	}
	slot := &w.bodies[id.index-1]
	if !slot.alive || slot.revision != id.revision {
		return nil
	}
	return slot
}

func (w *World) shape(id ShapeID) *shapeSlot {
	if w == nil || w.destroyed || id.world != w.id || id.index <= 0 || int(id.index) > len(w.shapes) {
		return nil
	}
	slot := &w.shapes[id.index-1]
	if !slot.alive || slot.revision != id.revision {
		return nil
	}
	return slot
}

// CreateShape attaches a shape to a live body and adds it to the space.
func (w *World) CreateShape(bodyID BodyID, def ShapeDef, geom Geometry) ShapeID {
	owner := w.body(bodyID)
	if owner == nil || geom == nil {
		return NullShape
	}

	shape := geom.build(owner.body)
	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Restitution)
	if def.Sensor {
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypeSensor)
	} else {
		shape.SetCollisionType(collisionTypeSolid)
	}

	index := w.allocShape()
	revision := w.shapes[index-1].revision
	w.shapes[index-1] = shapeSlot{
		shape:    shape,
		body:     bodyID,
		geometry: geom,
		sensor:   def.Sensor,
		revision: revision,
		alive:    true,
	}
	id := ShapeID{world: w.id, index: index, revision: revision}

	w.space.AddShape(shape)
	w.shapeIndex[shape] = id

	// the slice may have grown in allocShape; re-resolve the owner
	owner = w.body(bodyID)
	owner.shapes = append(owner.shapes, id)
	if owner.typ == DynamicBody && def.Density > 0 {
		mass := def.Density * geom.area()
		owner.mass += mass
		owner.moment += geom.moment(mass)
		owner.body.SetMass(owner.mass)
		if !owner.fixedRotation {
			owner.body.SetMoment(owner.moment)
		}
	}
	return id
}

// DestroyShape removes a single shape. It reports false for stale handles.
func (w *World) DestroyShape(id ShapeID) bool {
	slot := w.shape(id)
	if slot == nil {
		return false
	}
	if owner := w.body(slot.body); owner != nil {
		for i, sid := range owner.shapes {
			if sid == id {
				owner.shapes = append(owner.shapes[:i], owner.shapes[i+1:]...)
				break
			}
		}
	}
	w.releaseShape(id, slot)
	return true
}

func (w *World) releaseShape(id ShapeID, slot *shapeSlot) {
	// removal may fire separate callbacks, which still need the index
	w.space.RemoveShape(slot.shape)
	delete(w.shapeIndex, slot.shape)
	slot.shape = nil
	slot.geometry = nil
	slot.alive = false
	slot.revision++
	w.freeShapes = append(w.freeShapes, id.index)
}

// DestroyBody removes every shape of the body, then the body itself. It
// reports false when the handle is stale or the world is gone.
func (w *World) DestroyBody(id BodyID) bool {
	slot := w.body(id)
	if slot == nil {
		return false
	}
	shapes := slot.shapes
	slot.shapes = nil
	for _, sid := range shapes {
		if s := w.shape(sid); s != nil {
			w.releaseShape(sid, s)
		}
	}

	slot = w.body(id)
	w.space.RemoveBody(slot.body)
	slot.body = nil
	slot.alive = false
	slot.revision++
	w.freeBodies = append(w.freeBodies, id.index)

	if w.onBodyDestroyed != nil {
		w.onBodyDestroyed(id)
	}
	return true
}

// Destroy releases every remaining body in slot order, which stops matching
// creation order once a slot has been recycled, and then the space. Callers
// that need a particular order destroy those bodies first. It reports false
// if the world was already destroyed.
func (w *World) Destroy() bool {
	if w == nil || w.destroyed {
		return false
	}
	for i := range w.bodies {
		slot := w.bodies[i]
		if !slot.alive {
			continue
		}
		w.DestroyBody(BodyID{world: w.id, index: int32(i + 1), revision: slot.revision})
	}
	w.destroyed = true
	w.space = nil
	w.events = nil
	w.pending = nil
	w.shapeIndex = nil
	return true
}

// Step advances the simulation by dt, split into subSteps equal steps.
// Sensor events from earlier steps are discarded.
func (w *World) Step(dt float64, subSteps int) {
	if w == nil || w.destroyed || dt <= 0 {
		return
	}
	if subSteps < 1 {
		subSteps = 1
	}

	w.events = append(w.events[:0], w.pending...)
	w.pending = w.pending[:0]

	w.stepping = true
	h := dt / float64(subSteps)
	for i := 0; i < subSteps; i++ {
		w.space.Step(h)
	}
	w.stepping = false
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int {
	if w == nil || w.destroyed {
		return 0
	}
	n := 0
	for i := range w.bodies {
		if w.bodies[i].alive {
			n++
		}
	}
	return n
}

func (w *World) IsValidBody(id BodyID) bool {
	return w.body(id) != nil
}

func (w *World) IsValidShape(id ShapeID) bool {
	return w.shape(id) != nil
}

func (w *World) BodyType(id BodyID) BodyType {
	if slot := w.body(id); slot != nil {
		return slot.typ
	}
	return StaticBody
}

// BodyShapes returns a copy of the body's shape handles in creation order.
func (w *World) BodyShapes(id BodyID) []ShapeID {
	slot := w.body(id)
	if slot == nil {
		return nil
	}
	return append([]ShapeID(nil), slot.shapes...)
}

func (w *World) BodyShapeCount(id BodyID) int {
	if slot := w.body(id); slot != nil {
		return len(slot.shapes)
	}
	return 0
}

func (w *World) BodyPosition(id BodyID) cp.Vector {
	if slot := w.body(id); slot != nil {
		return slot.body.Position()
	}
	return cp.Vector{}
}

func (w *World) BodyVelocity(id BodyID) cp.Vector {
	if slot := w.body(id); slot != nil {
		return slot.body.Velocity()
	}
	return cp.Vector{}
}

func (w *World) BodyAngle(id BodyID) float64 {
	if slot := w.body(id); slot != nil {
		return slot.body.Angle()
	}
	return 0
}

// BodyMass returns the mass accumulated from the body's shapes. Static
// bodies and bodies without dense shapes report zero.
func (w *World) BodyMass(id BodyID) float64 {
	if slot := w.body(id); slot != nil && slot.typ == DynamicBody {
		return slot.mass
	}
	return 0
}

// BodyWorldCenter returns the center of mass in world space.
func (w *World) BodyWorldCenter(id BodyID) cp.Vector {
	if slot := w.body(id); slot != nil {
		return slot.body.LocalToWorld(slot.body.CenterOfGravity())
	}
	return cp.Vector{}
}

// SetBodyTransform teleports a dynamic body and clears its velocity.
func (w *World) SetBodyTransform(id BodyID, position cp.Vector) {
	slot := w.body(id)
	if slot == nil || slot.typ != DynamicBody {
		return
	}
	slot.body.SetPosition(position)
	slot.body.SetVelocity(0, 0)
}

func (w *World) SetBodyVelocity(id BodyID, velocity cp.Vector) {
	if slot := w.body(id); slot != nil && slot.typ == DynamicBody {
		slot.body.SetVelocityVector(velocity)
	}
}

func (w *World) LinearDamping(id BodyID) float64 {
	if slot := w.body(id); slot != nil {
		return slot.linearDamping
	}
	return 0
}

func (w *World) SetLinearDamping(id BodyID, damping float64) {
	if slot := w.body(id); slot != nil {
		slot.linearDamping = damping
	}
}

// ApplyLinearImpulse applies an impulse at a world point of a dynamic body.
func (w *World) ApplyLinearImpulse(id BodyID, impulse, point cp.Vector) {
	slot := w.body(id)
	if slot == nil || slot.typ != DynamicBody {
		return
	}
	slot.body.ApplyImpulseAtWorldPoint(impulse, point)
}

func (w *World) ShapeBody(id ShapeID) BodyID {
	if slot := w.shape(id); slot != nil {
		return slot.body
	}
	return NullBody
}

func (w *World) ShapeIsSensor(id ShapeID) bool {
	if slot := w.shape(id); slot != nil {
		return slot.sensor
	}
	return false
}

// ShapeOutline returns the shape's outline in world space.
func (w *World) ShapeOutline(id ShapeID) (Outline, bool) {
	slot := w.shape(id)
	if slot == nil {
		return Outline{}, false
	}
	owner := w.body(slot.body)
	if owner == nil {
		return Outline{}, false
	}
	return slot.geometry.outline().transform(owner.body), true
}
