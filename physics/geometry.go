package physics

import (
	"math"

	"github.com/jakecoffman/cp"
)

// Geometry describes the collision outline of a shape in body-local space.
// Box and Capsule are the only implementations.
type Geometry interface {
	area() float64
	moment(mass float64) float64
	build(body *cp.Body) *cp.Shape
	outline() Outline
}

// Box is an axis-aligned box centered on Center.
type Box struct {
	HalfWidth  float64
	HalfHeight float64
	Center     cp.Vector
}

func (b Box) area() float64 {
	return 4 * b.HalfWidth * b.HalfHeight
}

func (b Box) moment(mass float64) float64 {
	return cp.MomentForBox(mass, 2*b.HalfWidth, 2*b.HalfHeight) + mass*b.Center.LengthSq()
}

func (b Box) bb() cp.BB {
	return cp.BB{
		L: b.Center.X - b.HalfWidth,
		B: b.Center.Y - b.HalfHeight,
		R: b.Center.X + b.HalfWidth,
		T: b.Center.Y + b.HalfHeight,
	}
}

func (b Box) build(body *cp.Body) *cp.Shape {
	return cp.NewBox2(body, b.bb(), 0)
}

func (b Box) outline() Outline {
	bb := b.bb()
	return Outline{
		Kind: OutlinePolygon,
		Verts: []cp.Vector{
			{X: bb.L, Y: bb.B},
			{X: bb.R, Y: bb.B},
			{X: bb.R, Y: bb.T},
			{X: bb.L, Y: bb.T},
		},
	}
}

// Capsule is a segment from A to B swept by Radius.
type Capsule struct {
	A      cp.Vector
	B      cp.Vector
	Radius float64
}

// VerticalCapsule fits an upright capsule inside a box with the given half
// extents. The radius is the half width; a box wider than it is tall
// degenerates to a circle.
func VerticalCapsule(halfWidth, halfHeight float64) Capsule {
	r := math.Min(halfWidth, halfHeight)
	h := halfHeight - r
	return Capsule{A: cp.Vector{X: 0, Y: -h}, B: cp.Vector{X: 0, Y: h}, Radius: r}
}

func (c Capsule) area() float64 {
	return 2*c.Radius*c.A.Distance(c.B) + math.Pi*c.Radius*c.Radius
}

func (c Capsule) moment(mass float64) float64 {
	length := c.A.Distance(c.B)
	center := c.A.Add(c.B).Mult(0.5)
	return cp.MomentForBox(mass, 2*c.Radius, length+2*c.Radius) + mass*center.LengthSq()
}

func (c Capsule) build(body *cp.Body) *cp.Shape {
	return cp.NewSegment(body, c.A, c.B, c.Radius)
}

func (c Capsule) outline() Outline {
	return Outline{Kind: OutlineCapsule, A: c.A, B: c.B, Radius: c.Radius}
}

type OutlineKind uint8

const (
	OutlinePolygon OutlineKind = iota + 1
	OutlineCapsule
)

// Outline is a drawable description of a shape. Verts is set for polygons,
// A, B and Radius for capsules.
type Outline struct {
	Kind   OutlineKind
	Verts  []cp.Vector
	A      cp.Vector
	B      cp.Vector
	Radius float64
}

func (o Outline) transform(body *cp.Body) Outline {
	out := Outline{Kind: o.Kind, Radius: o.Radius}
	if len(o.Verts) > 0 {
		out.Verts = make([]cp.Vector, len(o.Verts))
		for i, v := range o.Verts {
			out.Verts[i] = body.LocalToWorld(v)
		}
	}
	out.A = body.LocalToWorld(o.A)
	out.B = body.LocalToWorld(o.B)
	return out
}
