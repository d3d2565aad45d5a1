// Package replay drives a World from tengo scripts so runs can be
// reproduced without a keyboard.
//
// A script defines a global function
//
//	input := func(frame, player, state) { return {left: .., right: .., jump: .., respawn: ..} }
//
// that is called once per frame. player is a read-only map with x, y, vx,
// vy, grounded and contacts; state is a map that persists between frames.
// Missing keys in the result count as false.
package replay

import (
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/platformer/obj"
	"github.com/milk9111/platformer/prefabs"
)

const dispatchScript = `
__input = input(__frame, __player, __state)
`

type Script struct {
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
}

// Load compiles a script from disk or from the embedded prefabs.
func Load(name string) (*Script, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("replay: load %s: %w", name, err)
	}
	return Compile(name, src)
}

func Compile(name string, src []byte) (*Script, error) {
	full := string(src) + "\n" + dispatchScript
	script := tengo.NewScript([]byte(full))
	_ = script.Add("__frame", 0)
	_ = script.Add("__player", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__input", false)

	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("replay: compile %s: %w", name, err)
	}

	return &Script{
		name:     name,
		compiled: compiled,
		state:    &tengo.Map{Value: map[string]tengo.Object{}},
	}, nil
}

func (s *Script) Name() string {
	return s.name
}

// State returns a copy of the script's persistent state.
func (s *Script) State() map[string]any {
	out, _ := tengo.ToInterface(s.state).(map[string]any)
	return out
}

// Input evaluates the script for one frame.
func (s *Script) Input(frame int, snap obj.Snapshot) (obj.Input, error) {
	if err := s.compiled.Set("__frame", frame); err != nil {
		return obj.Input{}, err
	}
	if err := s.compiled.Set("__player", playerObject(snap)); err != nil {
		return obj.Input{}, err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return obj.Input{}, err
	}
	if err := s.compiled.Run(); err != nil {
		return obj.Input{}, fmt.Errorf("replay: %s frame %d: %w", s.name, frame, err)
	}

	result := s.compiled.Get("__input")
	values := result.Map()
	if values == nil {
		return obj.Input{}, fmt.Errorf("replay: %s frame %d: input returned %s, want a map", s.name, frame, result.ValueType())
	}
	return obj.Input{
		Left:           truthy(values["left"]),
		Right:          truthy(values["right"]),
		JumpPressed:    truthy(values["jump"]),
		RespawnPressed: truthy(values["respawn"]),
	}, nil
}

func playerObject(snap obj.Snapshot) *tengo.ImmutableMap {
	grounded := tengo.FalseValue
	if snap.Grounded {
		grounded = tengo.TrueValue
	}
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"x":        &tengo.Float{Value: snap.Position.X},
		"y":        &tengo.Float{Value: snap.Position.Y},
		"vx":       &tengo.Float{Value: snap.Velocity.X},
		"vy":       &tengo.Float{Value: snap.Velocity.Y},
		"grounded": grounded,
		"contacts": &tengo.Int{Value: int64(snap.Contacts)},
	}}
}

func truthy(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// Run feeds the script into w for frames frames. report, when set, sees the
// snapshot after every frame.
func Run(w *obj.World, s *Script, frames int, report func(obj.Snapshot)) error {
	for i := 0; i < frames; i++ {
		in, err := s.Input(i, w.Snapshot())
		if err != nil {
			return err
		}
		w.Update(in)
		if report != nil {
			report(w.Snapshot())
		}
	}
	return nil
}
