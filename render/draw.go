// Package render draws a simulation World with ebiten. It holds no state
// of its own.
package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/platformer/obj"
	"github.com/milk9111/platformer/physics"
	"golang.org/x/image/colornames"
)

var (
	Background    color.Color = colornames.Black
	PlatformColor color.Color = colornames.Lightslategray
	PlayerColor   color.Color = colornames.Crimson
	OutlineColor  color.Color = colornames.Lime
	SensorColor   color.Color = colornames.Gold
	MarkerColor   color.Color = colornames.White
)

const markerRadius = 2

// Options selects the debug layers drawn on top of the scene.
type Options struct {
	Outlines  bool
	Space     bool
	Markers   bool
	Telemetry bool
}

// DrawWorld draws platforms and the player as filled rectangles and then
// whatever debug layers opts enables. Walls are never filled.
func DrawWorld(screen *ebiten.Image, w *obj.World, opts Options) {
	screen.Fill(Background)
	if w == nil || w.State() != obj.StateRunning {
		return
	}

	for _, p := range w.Platforms() {
		FillBody(screen, p, PlatformColor)
	}
	FillBody(screen, w.Player().Body, PlayerColor)

	if opts.Space {
		DrawSpace(screen, w.Physics().Space())
	}
	if opts.Outlines {
		for _, p := range w.Platforms() {
			DrawBodyOutline(screen, w.Physics(), p.BodyID())
		}
		for _, wall := range w.Walls() {
			DrawBodyOutline(screen, w.Physics(), wall.BodyID())
		}
		DrawBodyOutline(screen, w.Physics(), w.Player().BodyID())
	}
	if opts.Markers {
		for _, p := range w.Platforms() {
			DrawMarker(screen, p.Position())
		}
		DrawMarker(screen, w.Player().Position())
	}
	if opts.Telemetry {
		DrawTelemetry(screen, w.Snapshot())
	}
}

// FillBody fills the body's bounding rectangle.
func FillBody(screen *ebiten.Image, b *obj.Body, c color.Color) {
	r := b.Rect()
	vector.FillRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), c, false)
}

// DrawBodyOutline strokes every shape attached to body. A body without
// shapes is a programming error.
func DrawBodyOutline(screen *ebiten.Image, world *physics.World, body physics.BodyID) {
	shapes := world.BodyShapes(body)
	if len(shapes) == 0 {
		panic(fmt.Sprintf("render: body %s has no shapes", body))
	}
	for _, id := range shapes {
		outline, ok := world.ShapeOutline(id)
		if !ok {
			continue
		}
		c := OutlineColor
		if world.ShapeIsSensor(id) {
			c = SensorColor
		}
		switch outline.Kind {
		case physics.OutlinePolygon:
			drawPolygon(screen, outline.Verts, c)
		case physics.OutlineCapsule:
			drawCapsule(screen, outline.A, outline.B, outline.Radius, c)
		}
	}
}

func DrawMarker(screen *ebiten.Image, pos cp.Vector) {
	vector.FillCircle(screen, float32(pos.X), float32(pos.Y), markerRadius, MarkerColor, true)
}

func DrawTelemetry(screen *ebiten.Image, snap obj.Snapshot) {
	text := fmt.Sprintf("Frame: %d  FPS: %.1f\nPosition: (%.1f, %.1f)\nVelocity: (%.1f, %.1f)\nGrounded: %v  Contacts: %d",
		snap.Frame, ebiten.ActualFPS(),
		snap.Position.X, snap.Position.Y,
		snap.Velocity.X, snap.Velocity.Y,
		snap.Grounded, snap.Contacts,
	)
	ebitenutil.DebugPrintAt(screen, text, 10, 10)
}
