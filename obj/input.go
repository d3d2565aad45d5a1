package obj

// Input is one frame of player intent. Left and Right are held states;
// JumpPressed and RespawnPressed are true only on the frame the key went
// down.
type Input struct {
	Left           bool
	Right          bool
	JumpPressed    bool
	RespawnPressed bool
}

// Direction reports the horizontal intent with right winning when both are
// held: +1 right, -1 left, 0 none.
func (in Input) Direction() int {
	switch {
	case in.Right:
		return 1
	case in.Left:
		return -1
	default:
		return 0
	}
}
