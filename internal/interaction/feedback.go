package interaction

import (
	"quiz-session-service/internal/controller"
)

// Cue is one haptic/audio feedback instruction for the client. Cues are
// observational: dropping one is always safe.
type Cue struct {
	Haptic string `json:"haptic"`
	Sound  string `json:"sound"`
	Kind   string `json:"kind"`
}

// cueFor maps a controller transition to its feedback pattern. Correctness
// is only known after the store round-trip, which is why feedback hangs off
// the transition stream instead of the tap itself.
func cueFor(t controller.Transition) (Cue, bool) {
	switch t.Kind {
	case controller.TransitionAnswerRevealed:
		if t.Correct != nil && *t.Correct {
			return Cue{Haptic: "light-double", Sound: "correct", Kind: string(t.Kind)}, true
		}
		return Cue{Haptic: "heavy", Sound: "incorrect", Kind: string(t.Kind)}, true
	case controller.TransitionAdvanced, controller.TransitionPrevious:
		return Cue{Haptic: "light", Sound: "tick", Kind: string(t.Kind)}, true
	case controller.TransitionCompleted, controller.TransitionDeadlineExpired:
		return Cue{Haptic: "success", Sound: "complete", Kind: string(t.Kind)}, true
	}
	return Cue{}, false
}

// FeedbackDispatcher converts controller transitions into feedback cues on
// its own goroutine. It subscribes like any other observer, so it can never
// block or delay a transition; if the cue buffer fills, cues are dropped.
type FeedbackDispatcher struct {
	cues chan Cue
	stop func()
}

// NewFeedbackDispatcher attaches to a controller and starts dispatching.
func NewFeedbackDispatcher(c *controller.Controller) *FeedbackDispatcher {
	transitions, cancel := c.Subscribe()
	d := &FeedbackDispatcher{
		cues: make(chan Cue, 16),
		stop: cancel,
	}
	go func() {
		for t := range transitions {
			cue, ok := cueFor(t)
			if !ok {
				continue
			}
			select {
			case d.cues <- cue:
			default:
			}
		}
		close(d.cues)
	}()
	return d
}

// Cues is the stream a client transport drains.
func (d *FeedbackDispatcher) Cues() <-chan Cue {
	return d.cues
}

// Stop unsubscribes; the cue channel closes once drained.
func (d *FeedbackDispatcher) Stop() {
	d.stop()
}
