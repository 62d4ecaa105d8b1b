package interaction

import (
	"testing"

	"quiz-session-service/internal/controller"
)

func boolPtr(v bool) *bool { return &v }

func TestCueMapping(t *testing.T) {
	testCases := []struct {
		name       string
		transition controller.Transition
		wantCue    bool
		wantHaptic string
		wantSound  string
	}{
		{
			name:       "correct answer",
			transition: controller.Transition{Kind: controller.TransitionAnswerRevealed, Correct: boolPtr(true)},
			wantCue:    true,
			wantHaptic: "light-double",
			wantSound:  "correct",
		},
		{
			name:       "incorrect answer",
			transition: controller.Transition{Kind: controller.TransitionAnswerRevealed, Correct: boolPtr(false)},
			wantCue:    true,
			wantHaptic: "heavy",
			wantSound:  "incorrect",
		},
		{
			name:       "navigation forward",
			transition: controller.Transition{Kind: controller.TransitionAdvanced},
			wantCue:    true,
			wantHaptic: "light",
			wantSound:  "tick",
		},
		{
			name:       "navigation back",
			transition: controller.Transition{Kind: controller.TransitionPrevious},
			wantCue:    true,
			wantHaptic: "light",
			wantSound:  "tick",
		},
		{
			name:       "completed",
			transition: controller.Transition{Kind: controller.TransitionCompleted},
			wantCue:    true,
			wantHaptic: "success",
			wantSound:  "complete",
		},
		{
			name:       "deadline expiry",
			transition: controller.Transition{Kind: controller.TransitionDeadlineExpired},
			wantCue:    true,
			wantHaptic: "success",
			wantSound:  "complete",
		},
		{
			name:       "unknown kind",
			transition: controller.Transition{Kind: controller.TransitionKind("unknown")},
			wantCue:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cue, ok := cueFor(tc.transition)
			if ok != tc.wantCue {
				t.Fatalf("Expected cue=%v, got %v", tc.wantCue, ok)
			}
			if !ok {
				return
			}
			if cue.Haptic != tc.wantHaptic {
				t.Errorf("Expected haptic %q, got %q", tc.wantHaptic, cue.Haptic)
			}
			if cue.Sound != tc.wantSound {
				t.Errorf("Expected sound %q, got %q", tc.wantSound, cue.Sound)
			}
		})
	}
}
