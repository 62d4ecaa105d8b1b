package interaction

import (
	"context"

	"quiz-session-service/internal/controller"
)

// Navigator is the slice of the controller a resolved gesture may drive.
type Navigator interface {
	Snapshot() controller.Snapshot
	Advance(ctx context.Context, elapsedSeconds int) (controller.Snapshot, error)
	Previous() (controller.Snapshot, error)
}

// GestureNavigator applies resolved swipe actions to the controller. The
// controller's transition rules stay authoritative; this layer only adds
// the mobile conventions on top: an advance swipe on an unanswered question
// is silently ignored, as is a previous swipe on the first question.
type GestureNavigator struct {
	nav Navigator
}

func NewGestureNavigator(nav Navigator) *GestureNavigator {
	return &GestureNavigator{nav: nav}
}

// Apply performs the action and reports whether navigation happened.
func (g *GestureNavigator) Apply(ctx context.Context, action Action, elapsedSeconds int) (controller.Snapshot, bool, error) {
	snap := g.nav.Snapshot()
	switch action {
	case ActionAdvance:
		if !snap.Answered {
			return snap, false, nil
		}
		next, err := g.nav.Advance(ctx, elapsedSeconds)
		if err != nil {
			return snap, false, err
		}
		return next, true, nil
	case ActionPrevious:
		if snap.Index == 0 {
			return snap, false, nil
		}
		prev, err := g.nav.Previous()
		if err != nil {
			return snap, false, err
		}
		return prev, true, nil
	default:
		return snap, false, nil
	}
}
