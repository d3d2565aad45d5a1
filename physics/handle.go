package physics

import "fmt"

// BodyID names a body owned by a World. The zero value is the null handle.
// Handles are plain values: two handles are equal when they name the same
// slot of the same world at the same revision, so a destroyed handle never
// equals one created later in the recycled slot.
type BodyID struct {
	world    uint16
	index    int32
	revision uint16
}

// ShapeID names a shape owned by a World. The zero value is the null handle.
type ShapeID struct {
	world    uint16
	index    int32
	revision uint16
}

var (
	NullBody  BodyID
	NullShape ShapeID
)

func (id BodyID) IsNull() bool {
	return id.index == 0
}

func (id BodyID) Equal(other BodyID) bool {
	return id == other
}

func (id BodyID) String() string {
	if id.IsNull() {
		return "body(null)"
	}
	return fmt.Sprintf("body(%d:%d.%d)", id.world, id.index, id.revision)
}

func (id ShapeID) IsNull() bool {
	return id.index == 0
}

func (id ShapeID) Equal(other ShapeID) bool {
	return id == other
}

func (id ShapeID) String() string {
	if id.IsNull() {
		return "shape(null)"
	}
	return fmt.Sprintf("shape(%d:%d.%d)", id.world, id.index, id.revision)
}
