package render

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
)

const (
	circleSegments = 24
	dotSize        = 4
)

// DrawSpace draws every shape in space with cp's debug renderer. Sensors,
// static shapes and dynamic shapes get different colors.
func DrawSpace(screen *ebiten.Image, space *cp.Space) {
	if screen == nil || space == nil {
		return
	}
	cp.DrawSpace(space, &spaceDrawer{screen: screen})
}

type spaceDrawer struct {
	screen *ebiten.Image
}

func (d *spaceDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	drawCircle(d.screen, pos, radius, toNRGBA(outline))
	end := cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}
	drawLine(d.screen, pos, end, toNRGBA(outline))
}

func (d *spaceDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	drawLine(d.screen, a, b, toNRGBA(fill))
}

func (d *spaceDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	drawCapsule(d.screen, a, b, radius, toNRGBA(fill))
}

func (d *spaceDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	drawPolygon(d.screen, verts[:count], toNRGBA(fill))
}

func (d *spaceDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = dotSize
	}
	half := size / 2
	c := toNRGBA(fill)
	drawLine(d.screen, cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, c)
	drawLine(d.screen, cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, c)
}

func (d *spaceDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *spaceDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.2, G: 1, B: 0.2, A: 0.9}
}

// ShapeColor is used as the stroke color by every draw call above.
func (d *spaceDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if shape == nil {
		return cp.FColor{R: 1, G: 1, B: 1, A: 1}
	}
	if shape.Sensor() {
		return cp.FColor{R: 1, G: 0.85, B: 0.2, A: 1}
	}
	if body := shape.Body(); body != nil && body.GetType() == cp.BODY_STATIC {
		return cp.FColor{R: 0.4, G: 0.7, B: 1, A: 1}
	}
	return cp.FColor{R: 0.9, G: 0.4, B: 0.9, A: 1}
}

func (d *spaceDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *spaceDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *spaceDrawer) Data() interface{} {
	return nil
}

func drawLine(screen *ebiten.Image, a, b cp.Vector, c color.Color) {
	ebitenutil.DrawLine(screen, a.X, a.Y, b.X, b.Y, c)
}

func drawPolygon(screen *ebiten.Image, verts []cp.Vector, c color.Color) {
	for i := range verts {
		drawLine(screen, verts[i], verts[(i+1)%len(verts)], c)
	}
}

func drawCircle(screen *ebiten.Image, center cp.Vector, radius float64, c color.Color) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, circleSegments)
	for i := 0; i < circleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(circleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	drawPolygon(screen, points, c)
}

// drawCapsule strokes the two long sides and both end caps of a swept
// segment.
func drawCapsule(screen *ebiten.Image, a, b cp.Vector, radius float64, c color.Color) {
	if radius <= 0 {
		drawLine(screen, a, b, c)
		return
	}
	n := b.Sub(a).Perp().Normalize().Mult(radius)
	if a.Equal(b) {
		n = cp.Vector{X: radius, Y: 0}
	}
	drawLine(screen, a.Add(n), b.Add(n), c)
	drawLine(screen, a.Sub(n), b.Sub(n), c)
	drawCircle(screen, a, radius, c)
	drawCircle(screen, b, radius, c)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
