// Package controller drives one active quiz session on behalf of an
// interactive client. It layers presentation sub-states (question, revealed,
// finishing, results) over the authoritative session record and is the only
// component allowed to issue writes for a session.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"
	"quiz-session-service/internal/selection"
)

// Phase is the client-facing sub-state of a session.
type Phase string

const (
	PhaseLoading   Phase = "loading"
	PhaseQuestion  Phase = "question"
	PhaseRevealed  Phase = "revealed"
	PhaseFinishing Phase = "finishing"
	PhaseResults   Phase = "results"
)

// ErrSubmissionInFlight rejects a second operation while a store round-trip
// for the same session is still pending (double-tap guard).
var ErrSubmissionInFlight = errors.New("a submission is already in flight")

// SessionAPI is the slice of the session service the controller drives.
type SessionAPI interface {
	SubmitAnswer(ctx context.Context, sessionID string, questionIndex, answerIndex, elapsedSeconds int) error
	Complete(ctx context.Context, sessionID string, finalElapsedSeconds int) (*models.QuizSession, error)
}

// AnswerResult is what reveal exposes after a successful submission.
type AnswerResult struct {
	Correct       bool     `json:"correct"`
	CorrectAnswer int      `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	References    []string `json:"references,omitempty"`
}

// Snapshot is the controller state sent to the UI.
type Snapshot struct {
	SessionID        string             `json:"session_id"`
	Phase            Phase              `json:"phase"`
	Index            int                `json:"index"`
	Total            int                `json:"total"`
	Question         *models.PublicView `json:"question,omitempty"`
	Answered         bool               `json:"answered"`
	RemainingSeconds int                `json:"remaining_seconds,omitempty"`
	Score            int                `json:"score,omitempty"`
	TimeSpentSeconds int                `json:"time_spent_seconds,omitempty"`
}

type Controller struct {
	mu       sync.Mutex
	api      SessionAPI
	session  *models.QuizSession
	quiz     []models.Question
	phase    Phase
	index    int
	inFlight bool

	deadline time.Time // zero for untimed modes
	expired  bool
	timer    *time.Timer

	now      func() time.Time
	retries  int
	backoff  time.Duration
	notifier *notifier
}

// New builds a controller over a loaded session and its question documents.
// For timed sessions the deadline is an absolute timestamp fixed here;
// remaining time is always recomputed from it, never counted down.
func New(api SessionAPI, session *models.QuizSession, quiz []models.Question) *Controller {
	c := &Controller{
		api:      api,
		session:  session,
		quiz:     quiz,
		phase:    PhaseQuestion,
		now:      time.Now,
		retries:  3,
		backoff:  100 * time.Millisecond,
		notifier: newNotifier(),
	}
	c.index = firstUnanswered(session)
	if session.Answered(c.index) {
		c.phase = PhaseRevealed
	}
	if session.Status == models.StatusCompleted {
		c.phase = PhaseResults
	}
	if session.Mode == models.ModeTimed && session.Status == models.StatusActive {
		c.deadline = session.CreatedAt.Add(selection.TimedDuration)
		c.armCountdown()
	}
	return c
}

// firstUnanswered picks the resume point: the first empty slot, or the last
// question when everything is answered.
func firstUnanswered(s *models.QuizSession) int {
	for i, a := range s.Answers {
		if a == nil {
			return i
		}
	}
	if len(s.Answers) == 0 {
		return 0
	}
	return len(s.Answers) - 1
}

// Snapshot returns the current state. Completed and finishing phases carry
// no question payload; active phases withhold the correct answer.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID: c.session.ID,
		Phase:     c.phase,
		Index:     c.index,
		Total:     len(c.quiz),
		Answered:  c.session.Answered(c.index),
	}
	if c.phase == PhaseQuestion || c.phase == PhaseRevealed {
		pv := c.quiz[c.index].Public()
		snap.Question = &pv
	}
	if !c.deadline.IsZero() {
		snap.RemainingSeconds = c.remainingLocked()
	}
	if c.phase == PhaseResults {
		snap.Score = c.session.Score
		snap.TimeSpentSeconds = c.session.TimeSpentSeconds
	}
	return snap
}

// Remaining reports the seconds left before the deadline, or 0 for untimed
// sessions.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingLocked()
}

func (c *Controller) remainingLocked() int {
	if c.deadline.IsZero() {
		return 0
	}
	left := c.deadline.Sub(c.now())
	if left < 0 {
		return 0
	}
	return int(left.Seconds())
}

// SelectAnswer records the option for the current question and moves to the
// revealed sub-state. It is accepted only in the question phase with no
// answer yet recorded for this index, and only when no other submission is
// in flight. The phase does not advance unless the store write succeeds.
func (c *Controller) SelectAnswer(ctx context.Context, option, elapsedSeconds int) (*AnswerResult, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if c.phase != PhaseQuestion {
		c.mu.Unlock()
		return nil, quizerr.ErrInvalidState
	}
	index := c.index
	if c.session.Answered(index) {
		c.mu.Unlock()
		return nil, quizerr.ErrInvalidState
	}
	if option < 0 || option >= len(c.quiz[index].Options) {
		c.mu.Unlock()
		return nil, quizerr.ErrOutOfRange
	}
	c.inFlight = true
	c.mu.Unlock()

	err := c.withRetry(ctx, func() error {
		return c.api.SubmitAnswer(ctx, c.session.ID, index, option, elapsedSeconds)
	})

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		// The option stays selectable client-side; the sub-state holds.
		c.mu.Unlock()
		return nil, err
	}

	opt := option
	c.session.Answers[index] = &opt
	c.session.TimeSpentSeconds = elapsedSeconds
	q := c.quiz[index]
	result := &AnswerResult{
		Correct:       option == q.CorrectAnswer,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		References:    q.References,
	}
	if c.phase == PhaseQuestion && c.index == index {
		c.phase = PhaseRevealed
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notifier.emit(Transition{Kind: TransitionAnswerRevealed, Snapshot: snap, Correct: &result.Correct})
	return result, nil
}

// Advance moves past a revealed question, or retries completion when the
// controller is stuck in finishing after a failed Complete.
func (c *Controller) Advance(ctx context.Context, elapsedSeconds int) (Snapshot, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Snapshot{}, ErrSubmissionInFlight
	}
	switch c.phase {
	case PhaseFinishing:
		c.mu.Unlock()
		return c.finish(ctx, elapsedSeconds, TransitionCompleted)
	case PhaseRevealed:
	default:
		c.mu.Unlock()
		return Snapshot{}, quizerr.ErrInvalidState
	}

	if c.index+1 < len(c.quiz) {
		c.index++
		if c.session.Answered(c.index) {
			c.phase = PhaseRevealed
		} else {
			c.phase = PhaseQuestion
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notifier.emit(Transition{Kind: TransitionAdvanced, Snapshot: snap})
		return snap, nil
	}

	c.phase = PhaseFinishing
	c.mu.Unlock()
	return c.finish(ctx, elapsedSeconds, TransitionCompleted)
}

// Previous steps back one question. Recorded answers are never cleared; an
// already-answered question is re-entered in its revealed sub-state.
func (c *Controller) Previous() (Snapshot, error) {
	c.mu.Lock()
	if c.phase != PhaseQuestion && c.phase != PhaseRevealed {
		c.mu.Unlock()
		return Snapshot{}, quizerr.ErrInvalidState
	}
	if c.index == 0 {
		c.mu.Unlock()
		return Snapshot{}, quizerr.ErrOutOfRange
	}
	c.index--
	if c.session.Answered(c.index) {
		c.phase = PhaseRevealed
	} else {
		c.phase = PhaseQuestion
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notifier.emit(Transition{Kind: TransitionPrevious, Snapshot: snap})
	return snap, nil
}

// EndEarly completes the session now, leaving unanswered slots empty. This
// is the explicit "submit quiz" action; simply abandoning the client leaves
// the session active and resumable.
func (c *Controller) EndEarly(ctx context.Context, elapsedSeconds int) (Snapshot, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Snapshot{}, ErrSubmissionInFlight
	}
	if c.phase == PhaseResults {
		c.mu.Unlock()
		return Snapshot{}, quizerr.ErrInvalidState
	}
	c.phase = PhaseFinishing
	c.mu.Unlock()
	return c.finish(ctx, elapsedSeconds, TransitionCompleted)
}

// finish runs Complete with retries. On failure the controller stays in
// finishing so the caller can retry without losing any answered data.
func (c *Controller) finish(ctx context.Context, elapsedSeconds int, kind TransitionKind) (Snapshot, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return Snapshot{}, ErrSubmissionInFlight
	}
	c.inFlight = true
	c.mu.Unlock()

	var completed *models.QuizSession
	err := c.withRetry(ctx, func() error {
		var cerr error
		completed, cerr = c.api.Complete(ctx, c.session.ID, elapsedSeconds)
		return cerr
	})

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}
	c.session = completed
	c.phase = PhaseResults
	c.stopCountdownLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notifier.emit(Transition{Kind: kind, Snapshot: snap})
	return snap, nil
}

// armCountdown schedules the forced finish at the absolute deadline.
func (c *Controller) armCountdown() {
	wait := c.deadline.Sub(c.now())
	if wait < 0 {
		wait = 0
	}
	c.timer = time.AfterFunc(wait, c.expire)
}

// expire is edge-triggered: it fires the forced completion exactly once,
// regardless of the sub-state the client was in.
func (c *Controller) expire() {
	c.mu.Lock()
	if c.expired || c.phase == PhaseResults {
		c.mu.Unlock()
		return
	}
	c.expired = true
	c.phase = PhaseFinishing
	elapsed := int(c.now().Sub(c.session.CreatedAt).Seconds())
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for {
		// A submit racing the deadline finishes first; wait it out rather
		// than dropping the forced completion.
		_, err := c.finish(ctx, elapsed, TransitionDeadlineExpired)
		if !errors.Is(err, ErrSubmissionInFlight) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (c *Controller) stopCountdownLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Close releases the countdown and all subscriber channels. The session
// itself is untouched: an active session stays resumable.
func (c *Controller) Close() {
	c.mu.Lock()
	c.stopCountdownLocked()
	c.mu.Unlock()
	c.notifier.close()
}

// Subscribe registers a transition observer. See notifier for delivery
// semantics; observers can never delay a transition.
func (c *Controller) Subscribe() (<-chan Transition, func()) {
	return c.notifier.subscribe()
}

// Owner returns the session's owning user id.
func (c *Controller) Owner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.UserID
}

// Done reports whether the controller has reached results.
func (c *Controller) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase == PhaseResults
}

// withRetry retries op with doubling backoff while the failure is transient.
// Taxonomy errors (InvalidState, OutOfRange, NotFound) are never retried.
func (c *Controller) withRetry(ctx context.Context, op func() error) error {
	delay := c.backoff
	var err error
	for attempt := 0; attempt < c.retries; attempt++ {
		err = op()
		if err == nil || !quizerr.IsTransient(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return quizerr.Transient("retry", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
