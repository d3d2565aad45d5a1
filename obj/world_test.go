package obj

import (
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/milk9111/platformer/common"
	"github.com/milk9111/platformer/levels"
	"github.com/milk9111/platformer/physics"
	"github.com/milk9111/platformer/prefabs"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func flatLevel() *levels.Level {
	return &levels.Level{
		Name:   "test",
		Width:  640,
		Height: 480,
		Spawn:  common.Point{X: 320, Y: 300},
		Platforms: []common.Rect{
			{X: 0, Y: 450, W: 640, H: 30},
			{X: 40, Y: 350, W: 100, H: 16},
		},
		Walls: []common.Rect{
			{X: -2, Y: 0, W: 2, H: 450},
			{X: 640, Y: 0, W: 2, H: 450},
		},
	}
}

func newTestWorld(t *testing.T, spec prefabs.WorldSpec, level *levels.Level) *World {
	t.Helper()
	w := NewWorld(spec, level, quietLogger())
	t.Cleanup(func() { w.Unload() })
	return w
}

// runUntil steps with in until cond holds and returns the number of frames
// taken, or -1 after limit frames.
func runUntil(w *World, in Input, limit int, cond func() bool) int {
	for i := 1; i <= limit; i++ {
		w.Update(in)
		if cond() {
			return i
		}
	}
	return -1
}

func TestNewWorld(t *testing.T) {
	w := newTestWorld(t, prefabs.DefaultWorldSpec(), flatLevel())

	if w.State() != StateRunning {
		t.Fatalf("expected running, got %v", w.State())
	}
	if len(w.Platforms()) != 2 || len(w.Walls()) != 2 {
		t.Fatalf("expected 2 platforms and 2 walls, got %d and %d", len(w.Platforms()), len(w.Walls()))
	}
	if got := w.Physics().BodyCount(); got != 5 {
		t.Fatalf("expected 5 bodies, got %d", got)
	}
	for _, p := range w.Platforms() {
		if p.Kind() != KindPlatform || !p.Static() {
			t.Fatalf("platform has kind %v", p.Kind())
		}
	}
	for _, wall := range w.Walls() {
		if wall.Kind() != KindWall || !wall.Static() {
			t.Fatalf("wall has kind %v", wall.Kind())
		}
	}

	p := w.Player()
	if p.Kind() != KindPlayer || p.Static() {
		t.Fatalf("player has kind %v", p.Kind())
	}
	if p.Grounded() {
		t.Fatalf("player should start airborne")
	}
	if got := w.Physics().BodyShapeCount(p.BodyID()); got != 2 {
		t.Fatalf("expected primary and foot shapes, got %d", got)
	}
	if !w.Physics().ShapeIsSensor(p.FootSensor()) || w.Physics().ShapeIsSensor(p.ShapeID()) {
		t.Fatalf("only the foot shape should be a sensor")
	}
	if p.Mass() <= 0 {
		t.Fatalf("player mass should be positive, got %v", p.Mass())
	}
	if w.KillY() != 480+prefabs.DefaultWorldSpec().Physics.KillMargin {
		t.Fatalf("unexpected kill line %v", w.KillY())
	}
}

func TestGroundedLastWriteWins(t *testing.T) {
	cases := []struct {
		name   string
		events []bool
		want   bool
	}{
		{"none", nil, false},
		{"begin", []bool{true}, true},
		{"begin_end", []bool{true, false}, false},
		{"end_only", []bool{false}, false},
		{"double_begin_single_end", []bool{true, true, false}, false},
		{"end_then_begin", []bool{true, false, true}, true},
		{"repeated_end", []bool{true, false, false}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := newTestWorld(t, prefabs.DefaultWorldSpec(), flatLevel())
			p := w.Player()
			for _, touching := range c.events {
				p.SetFootStatus(touching)
			}
			if p.Grounded() != c.want {
				t.Fatalf("grounded = %v, want %v", p.Grounded(), c.want)
			}
		})
	}
}

func TestGroundedCounted(t *testing.T) {
	cases := []struct {
		name     string
		events   []bool
		want     bool
		contacts int
	}{
		{"double_begin_single_end", []bool{true, true, false}, true, 1},
		{"balanced", []bool{true, true, false, false}, false, 0},
		{"end_without_begin", []bool{false, true}, true, 1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec := prefabs.DefaultWorldSpec()
			spec.Player.GroundedMode = prefabs.GroundedCounted
			w := newTestWorld(t, spec, flatLevel())
			p := w.Player()
			for _, touching := range c.events {
				p.SetFootStatus(touching)
			}
			if p.Grounded() != c.want || p.Contacts() != c.contacts {
				t.Fatalf("grounded = %v contacts = %d, want %v and %d", p.Grounded(), p.Contacts(), c.want, c.contacts)
			}
		})
	}
}

func TestJumpOnlyWhenGrounded(t *testing.T) {
	spec := prefabs.DefaultWorldSpec()
	units := common.NewUnits(spec.Physics.PixelsPerMeter)

	t.Run("airborne_noop", func(t *testing.T) {
		w := newTestWorld(t, spec, flatLevel())
		p := w.Player()
		before := p.Velocity()
		if p.Jump() {
			t.Fatalf("Jump should report false while airborne")
		}
		if p.Velocity() != before || p.Grounded() {
			t.Fatalf("airborne jump changed state: %v -> %v", before, p.Velocity())
		}
	})

	t.Run("grounded_impulse", func(t *testing.T) {
		w := newTestWorld(t, spec, flatLevel())
		p := w.Player()
		p.SetFootStatus(true)
		if !p.Jump() {
			t.Fatalf("Jump should report true while grounded")
		}
		want := -units.Pixels(spec.Player.JumpImpulse)
		if got := p.Velocity().Y; math.Abs(got-want) > 1e-6 {
			t.Fatalf("vertical velocity = %v, want %v", got, want)
		}
		if p.Velocity().X != 0 {
			t.Fatalf("jump should not move sideways, got %v", p.Velocity())
		}
	})

	t.Run("update_while_airborne", func(t *testing.T) {
		w := newTestWorld(t, spec, flatLevel())
		w.Update(Input{JumpPressed: true})
		if w.Jumps() != 0 {
			t.Fatalf("expected no jump on the first frame, got %d", w.Jumps())
		}
	})
}

func TestMoveImpulseProportionalToMass(t *testing.T) {
	densities := []float64{0.05, 0.5, 2}
	var masses []float64

	for _, density := range densities {
		spec := prefabs.DefaultWorldSpec()
		spec.Player.Density = density
		w := newTestWorld(t, spec, flatLevel())
		p := w.Player()
		units := common.NewUnits(spec.Physics.PixelsPerMeter)
		step := units.Pixels(spec.Player.MoveImpulse) / 2

		p.MoveRight()
		if got := p.Velocity().X; math.Abs(got-step) > 1e-6 {
			t.Fatalf("density %v: velocity after MoveRight = %v, want %v", density, got, step)
		}
		p.MoveRight()
		if got := p.Velocity().X; math.Abs(got-2*step) > 1e-6 {
			t.Fatalf("density %v: impulse depends on velocity, got %v", density, got)
		}
		p.MoveLeft()
		p.MoveLeft()
		p.MoveLeft()
		if got := p.Velocity().X; math.Abs(got+step) > 1e-6 {
			t.Fatalf("density %v: velocity after MoveLeft = %v, want %v", density, got, -step)
		}
		masses = append(masses, p.Mass())
	}

	for i := range densities {
		ratio := masses[i] / masses[0]
		want := densities[i] / densities[0]
		if math.Abs(ratio-want) > 1e-9 {
			t.Fatalf("mass ratio %v, want %v", ratio, want)
		}
	}
}

func TestRightWinsOverLeft(t *testing.T) {
	w := newTestWorld(t, prefabs.DefaultWorldSpec(), flatLevel())
	w.Update(Input{Left: true, Right: true})
	if vx := w.Player().Velocity().X; vx <= 0 {
		t.Fatalf("expected rightward velocity, got %v", vx)
	}
}

func TestPositionFollowsEngine(t *testing.T) {
	w := newTestWorld(t, prefabs.DefaultWorldSpec(), flatLevel())
	p := w.Player()
	inputs := []Input{{}, {Right: true}, {Right: true}, {Left: true}, {JumpPressed: true}, {}}
	for i := 0; i < 120; i++ {
		w.Update(inputs[i%len(inputs)])
		if got, want := p.Position(), w.Physics().BodyPosition(p.BodyID()); got != want {
			t.Fatalf("frame %d: cached position %v, engine position %v", i, got, want)
		}
	}
	if w.Frame() != 120 {
		t.Fatalf("expected 120 frames, got %d", w.Frame())
	}
}

func TestFallLandJumpScenario(t *testing.T) {
	w := newTestWorld(t, prefabs.DefaultWorldSpec(), flatLevel())
	p := w.Player()

	if p.Grounded() {
		t.Fatalf("player should start airborne")
	}
	frames := runUntil(w, Input{}, 300, p.Grounded)
	if frames < 0 {
		t.Fatalf("player never landed; position %v", p.Position())
	}
	if frames < 2 {
		t.Fatalf("player landed too early, after %d frames", frames)
	}
	// capsule is 60 tall, floor top is 450
	if math.Abs(p.Position().Y-420) > 2 {
		t.Fatalf("expected to rest near y=420, got %v", p.Position().Y)
	}

	runUntil(w, Input{}, 30, func() bool { return false })
	if !p.Grounded() {
		t.Fatalf("player should stay grounded while resting")
	}

	w.Update(Input{JumpPressed: true})
	if w.Jumps() != 1 {
		t.Fatalf("expected the grounded jump to apply, got %d jumps", w.Jumps())
	}
	if runUntil(w, Input{}, 60, func() bool { return !p.Grounded() }) < 0 && p.Grounded() {
		t.Fatalf("foot sensor never left the floor after jumping")
	}
	if runUntil(w, Input{}, 300, p.Grounded) < 0 {
		t.Fatalf("player never landed after the jump")
	}
}

func TestHoldRightApproachesTerminalVelocity(t *testing.T) {
	spec := prefabs.DefaultWorldSpec()
	spec.Player.Friction = 0
	level := &levels.Level{
		Name:      "long",
		Spawn:     common.Point{X: 100, Y: 400},
		Platforms: []common.Rect{{X: 0, Y: 450, W: 100000, H: 30}},
	}
	w := newTestWorld(t, spec, level)
	p := w.Player()
	if runUntil(w, Input{}, 300, p.Grounded) < 0 {
		t.Fatalf("player never landed")
	}

	units := common.NewUnits(spec.Physics.PixelsPerMeter)
	kick := units.Pixels(spec.Player.MoveImpulse) / 2
	sub := spec.Physics.TimeStep / float64(spec.Physics.SubSteps)
	decay := math.Pow(1/(1+sub*spec.Player.LinearDamping), float64(spec.Physics.SubSteps))
	terminal := kick * decay / (1 - decay)

	var vs []float64
	for i := 0; i < 240; i++ {
		w.Update(Input{Right: true})
		if !p.Grounded() {
			t.Fatalf("frame %d: player left the ground", i)
		}
		vs = append(vs, p.Velocity().X)
	}

	for i, v := range vs {
		if v > terminal+1e-6 {
			t.Fatalf("frame %d: velocity %v exceeds terminal %v", i, v, terminal)
		}
		if i > 0 && v < vs[i-1]-1e-6 {
			t.Fatalf("frame %d: velocity dropped from %v to %v", i, vs[i-1], v)
		}
	}
	last := vs[len(vs)-1]
	if math.Abs(last-terminal)/terminal > 0.01 {
		t.Fatalf("velocity %v did not approach terminal %v", last, terminal)
	}
	if first, final := vs[1]-vs[0], last-vs[len(vs)-2]; final >= first {
		t.Fatalf("velocity gain should shrink, first %v final %v", first, final)
	}
}

func TestFallingOffRespawns(t *testing.T) {
	spec := prefabs.DefaultWorldSpec()
	spec.Physics.KillMargin = 20
	level := &levels.Level{
		Name:      "gap",
		Width:     640,
		Height:    480,
		Spawn:     common.Point{X: 320, Y: 300},
		Platforms: []common.Rect{{X: 0, Y: 450, W: 100, H: 30}},
	}
	w := newTestWorld(t, spec, level)
	p := w.Player()

	deepest := 0.0
	respawned := false
	for i := 0; i < 900 && !respawned; i++ {
		w.Update(Input{})
		y := p.Position().Y
		if y < deepest-100 {
			respawned = true
		}
		deepest = math.Max(deepest, y)
	}
	if !respawned {
		t.Fatalf("player never respawned; deepest y %v, kill line %v", deepest, w.KillY())
	}
	if deepest > w.KillY()+50 {
		t.Fatalf("player fell to %v, far past the kill line %v", deepest, w.KillY())
	}
	if v := p.Velocity(); v.Y > 50 {
		t.Fatalf("velocity should reset on respawn, got %v", v)
	}
}

func TestRespawnInput(t *testing.T) {
	w := newTestWorld(t, prefabs.DefaultWorldSpec(), flatLevel())
	p := w.Player()
	for i := 0; i < 30; i++ {
		w.Update(Input{Right: true})
	}
	w.Update(Input{RespawnPressed: true})
	// the frame still steps once after the teleport
	if got := p.Position(); got.X != 320 || math.Abs(got.Y-300) > 1 {
		t.Fatalf("expected respawn near (320, 300), got %v", got)
	}
	if v := p.Velocity(); v.X != 0 {
		t.Fatalf("respawn should stop sideways motion, got %v", v)
	}
}

func TestRespawnBlocksStaleJump(t *testing.T) {
	landed := func(t *testing.T, spec prefabs.WorldSpec) *World {
		t.Helper()
		w := newTestWorld(t, spec, flatLevel())
		if runUntil(w, Input{}, 300, w.Player().Grounded) < 0 {
			t.Fatalf("player never landed")
		}
		return w
	}
	counted := prefabs.DefaultWorldSpec()
	counted.Player.GroundedMode = prefabs.GroundedCounted

	cases := []struct {
		name string
		spec prefabs.WorldSpec
		run  func(w *World)
	}{
		{"respawn_then_jump", prefabs.DefaultWorldSpec(), func(w *World) {
			w.Update(Input{RespawnPressed: true})
			w.Update(Input{JumpPressed: true})
		}},
		{"respawn_and_jump_same_frame", prefabs.DefaultWorldSpec(), func(w *World) {
			w.Update(Input{RespawnPressed: true, JumpPressed: true})
		}},
		{"respawn_between_frames", prefabs.DefaultWorldSpec(), func(w *World) {
			w.RespawnPlayer()
			w.Update(Input{JumpPressed: true})
		}},
		{"counted_respawn_then_jump", counted, func(w *World) {
			w.Update(Input{RespawnPressed: true})
			w.Update(Input{JumpPressed: true})
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := landed(t, c.spec)
			c.run(w)
			p := w.Player()
			if w.Jumps() != 0 {
				t.Fatalf("jumped in mid-air after respawn: %d jumps, velocity %v", w.Jumps(), p.Velocity())
			}
			if p.Grounded() || p.Contacts() != 0 {
				t.Fatalf("grounded = %v contacts = %d at the spawn point", p.Grounded(), p.Contacts())
			}
		})
	}
}

func TestCountedModeSeededFromOverlaps(t *testing.T) {
	level := &levels.Level{
		Name:   "seam",
		Width:  640,
		Height: 480,
		Spawn:  common.Point{X: 320, Y: 380},
		Platforms: []common.Rect{
			{X: 0, Y: 450, W: 320, H: 30},
			{X: 320, Y: 450, W: 320, H: 30},
		},
	}

	t.Run("two_floors", func(t *testing.T) {
		w := newTestWorld(t, prefabs.DefaultWorldSpec(), level)
		p := w.Player()
		if runUntil(w, Input{}, 300, p.Grounded) < 0 {
			t.Fatalf("player never landed")
		}
		runUntil(w, Input{}, 10, func() bool { return false })

		tuned := w.Spec()
		tuned.Player.GroundedMode = prefabs.GroundedCounted
		w.ApplyTuning(tuned)
		if !p.Grounded() || p.Contacts() != 2 {
			t.Fatalf("grounded = %v contacts = %d, want true and 2", p.Grounded(), p.Contacts())
		}

		back := w.Spec()
		back.Player.GroundedMode = prefabs.GroundedToggle
		w.ApplyTuning(back)
		if !p.Grounded() || p.Contacts() != 0 {
			t.Fatalf("toggle mode: grounded = %v contacts = %d", p.Grounded(), p.Contacts())
		}
	})

	t.Run("recorded_touches", func(t *testing.T) {
		w := newTestWorld(t, prefabs.DefaultWorldSpec(), level)
		p := w.Player()
		a, b := w.Platforms()[0].ShapeID(), w.Platforms()[1].ShapeID()
		p.touchFoot(a, true)
		p.touchFoot(b, true)
		p.touchFoot(a, false)
		p.touchFoot(a, true)

		spec := w.Spec()
		spec.Player.GroundedMode = prefabs.GroundedCounted
		p.ApplyTuning(spec.Player, common.NewUnits(spec.Physics.PixelsPerMeter))
		if p.Contacts() != 2 {
			t.Fatalf("contacts = %d, want 2", p.Contacts())
		}
		p.touchFoot(b, false)
		if !p.Grounded() || p.Contacts() != 1 {
			t.Fatalf("grounded = %v contacts = %d after one end touch", p.Grounded(), p.Contacts())
		}
	})
}

func TestUnloadOrder(t *testing.T) {
	w := NewWorld(prefabs.DefaultWorldSpec(), flatLevel(), quietLogger())

	var want []physics.BodyID
	want = append(want, w.Player().BodyID())
	for _, p := range w.Platforms() {
		want = append(want, p.BodyID())
	}
	for _, wall := range w.Walls() {
		want = append(want, wall.BodyID())
	}

	var got []physics.BodyID
	w.Physics().OnBodyDestroyed(func(id physics.BodyID) {
		if w.Physics().Destroyed() {
			t.Errorf("body %v released after the physics world", id)
		}
		got = append(got, id)
	})

	if !w.Unload() {
		t.Fatalf("first Unload should report true")
	}
	if len(got) != len(want) {
		t.Fatalf("released %d bodies, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("release %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if !w.Physics().Destroyed() || w.State() != StateUnloaded {
		t.Fatalf("physics world should be destroyed last")
	}

	if w.Unload() {
		t.Fatalf("second Unload should report false")
	}
	if len(got) != len(want) {
		t.Fatalf("second Unload released more bodies")
	}

	frame := w.Frame()
	w.Update(Input{Right: true, JumpPressed: true})
	if w.Frame() != frame {
		t.Fatalf("Update after Unload should be a no-op")
	}
	if !w.Player().Unloaded() || w.Player().Unload() {
		t.Fatalf("player should already be unloaded")
	}
}

func TestApplyTuning(t *testing.T) {
	spec := prefabs.DefaultWorldSpec()
	w := newTestWorld(t, spec, flatLevel())

	tuned := spec
	tuned.Player.MoveImpulse = 3
	tuned.Player.LinearDamping = 1
	tuned.Player.GroundedMode = prefabs.GroundedCounted
	w.ApplyTuning(tuned)

	p := w.Player()
	p.MoveRight()
	units := common.NewUnits(spec.Physics.PixelsPerMeter)
	if got, want := p.Velocity().X, units.Pixels(3)/2; math.Abs(got-want) > 1e-6 {
		t.Fatalf("velocity after retuned move = %v, want %v", got, want)
	}
	if got := w.Physics().LinearDamping(p.BodyID()); got != 1 {
		t.Fatalf("damping = %v, want 1", got)
	}
	if p.GroundedMode() != prefabs.GroundedCounted {
		t.Fatalf("grounded mode not applied")
	}
}

func TestSnapshot(t *testing.T) {
	w := newTestWorld(t, prefabs.DefaultWorldSpec(), flatLevel())
	w.Update(Input{Right: true})
	s := w.Snapshot()
	if s.Frame != 1 || s.Position != w.Player().Position() || s.Velocity != w.Player().Velocity() {
		t.Fatalf("snapshot out of sync: %+v", s)
	}
}
