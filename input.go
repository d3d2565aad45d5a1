package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/platformer/obj"
)

const stickDeadZone = 0.3

// pollInput reads the keyboard and the first gamepad into one frame of
// player input.
func pollInput() obj.Input {
	in := obj.Input{
		Left:           ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyLeft),
		Right:          ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyRight),
		JumpPressed:    inpututil.IsKeyJustPressed(ebiten.KeySpace),
		RespawnPressed: inpututil.IsKeyJustPressed(ebiten.KeyR),
	}

	ids := ebiten.AppendGamepadIDs(nil)
	if len(ids) == 0 {
		return in
	}
	gid := ids[0]
	if !ebiten.IsStandardGamepadLayoutAvailable(gid) {
		return in
	}

	leftX := ebiten.StandardGamepadAxisValue(gid, ebiten.StandardGamepadAxisLeftStickHorizontal)
	in.Left = in.Left || leftX < -stickDeadZone ||
		ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonLeftLeft)
	in.Right = in.Right || leftX > stickDeadZone ||
		ebiten.IsStandardGamepadButtonPressed(gid, ebiten.StandardGamepadButtonLeftRight)
	// A on the standard layout
	in.JumpPressed = in.JumpPressed ||
		inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonRightBottom)
	in.RespawnPressed = in.RespawnPressed ||
		inpututil.IsStandardGamepadButtonJustPressed(gid, ebiten.StandardGamepadButtonCenterRight)
	return in
}
