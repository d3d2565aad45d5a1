package physics

import "github.com/jakecoffman/cp"

type SensorEventKind uint8

const (
	SensorBeginTouch SensorEventKind = iota + 1
	SensorEndTouch
)

func (k SensorEventKind) String() string {
	switch k {
	case SensorBeginTouch:
		return "begin"
	case SensorEndTouch:
		return "end"
	default:
		return "unknown"
	}
}

// SensorEvent reports a sensor shape starting or stopping overlap with a
// solid shape.
type SensorEvent struct {
	Kind    SensorEventKind
	Sensor  ShapeID
	Visitor ShapeID
}

// SensorEvents returns the events produced by the most recent Step in the
// order Chipmunk reported them. The slice is reused by the next Step.
func (w *World) SensorEvents() []SensorEvent {
	if w == nil || w.destroyed {
		return nil
	}
	return w.events
}

func (w *World) recordSensorEvent(arb *cp.Arbiter, kind SensorEventKind) {
	if w.destroyed {
		return
	}
	a, b := arb.Shapes()
	if a.Sensor() == b.Sensor() {
		return
	}
	if b.Sensor() {
		a, b = b, a
	}
	sensor, ok := w.shapeIndex[a]
	if !ok {
		return
	}
	visitor, ok := w.shapeIndex[b]
	if !ok {
		return
	}

	evt := SensorEvent{Kind: kind, Sensor: sensor, Visitor: visitor}
	if w.stepping {
		w.events = append(w.events, evt)
	} else {
		// removals outside Step surface with the next Step
		w.pending = append(w.pending, evt)
	}
}
