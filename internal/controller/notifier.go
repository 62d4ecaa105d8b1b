package controller

import "sync"

// TransitionKind labels what just happened for observers.
type TransitionKind string

const (
	TransitionAnswerRevealed  TransitionKind = "answer_revealed"
	TransitionAdvanced        TransitionKind = "advanced"
	TransitionPrevious        TransitionKind = "previous"
	TransitionCompleted       TransitionKind = "completed"
	TransitionDeadlineExpired TransitionKind = "deadline_expired"
)

// Transition is broadcast to observers after a state change has been
// applied. Correct is set only for answer reveals.
type Transition struct {
	Kind     TransitionKind `json:"kind"`
	Snapshot Snapshot       `json:"snapshot"`
	Correct  *bool          `json:"correct,omitempty"`
}

// notifier fans transitions out to subscribers. Sends never block: a
// subscriber that falls behind drops events rather than stalling the
// state machine.
type notifier struct {
	mu     sync.Mutex
	subs   map[chan Transition]struct{}
	closed bool
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[chan Transition]struct{})}
}

func (n *notifier) subscribe() (<-chan Transition, func()) {
	ch := make(chan Transition, 16)
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subs[ch]; ok {
			delete(n.subs, ch)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel
}

func (n *notifier) emit(t Transition) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subs {
		select {
		case ch <- t:
		default:
		}
	}
}

func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for ch := range n.subs {
		delete(n.subs, ch)
		close(ch)
	}
}
