// Package interaction layers gesture, feedback and side-channel metadata on
// top of the session controller. Nothing in this package mutates the
// authoritative session record or bypasses the controller's transition rules.
package interaction

// Swipe thresholds, in pixels of horizontal travel. Direction is known past
// DirectionThreshold; navigation fires only past TriggerThreshold.
const (
	DirectionThreshold = 50
	TriggerThreshold   = 100
)

type Direction string

const (
	DirectionNone  Direction = "none"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Action is what a completed swipe asks the controller to do.
type Action string

const (
	ActionNone     Action = "none"
	ActionAdvance  Action = "advance"
	ActionPrevious Action = "previous"
)

// SwipeTracker accumulates one pointer drag. It is pure state: Begin/Move
// feed it positions, End resolves the gesture.
type SwipeTracker struct {
	startX float64
	lastX  float64
	active bool
}

func (t *SwipeTracker) Begin(x float64) {
	t.startX = x
	t.lastX = x
	t.active = true
}

// Move updates the drag and returns the detected direction, DirectionNone
// while travel is still below the threshold.
func (t *SwipeTracker) Move(x float64) Direction {
	if !t.active {
		return DirectionNone
	}
	t.lastX = x
	return t.direction(DirectionThreshold)
}

// End resolves the gesture. Below TriggerThreshold the swipe is a no-op; a
// leftward swipe maps to advance, rightward to previous.
func (t *SwipeTracker) End(x float64) Action {
	if !t.active {
		return ActionNone
	}
	t.lastX = x
	t.active = false
	switch t.direction(TriggerThreshold) {
	case DirectionLeft:
		return ActionAdvance
	case DirectionRight:
		return ActionPrevious
	default:
		return ActionNone
	}
}

func (t *SwipeTracker) direction(threshold float64) Direction {
	delta := t.lastX - t.startX
	if delta > threshold {
		return DirectionRight
	}
	if delta < -threshold {
		return DirectionLeft
	}
	return DirectionNone
}
