package service

import (
	"context"
	"fmt"
	"time"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"
	"quiz-session-service/internal/scoring"
	"quiz-session-service/internal/selection"

	"github.com/google/uuid"
)

// SessionStore is the persistence surface the service needs. The Mongo
// repository satisfies it in production; tests use an in-memory fake.
type SessionStore interface {
	Create(ctx context.Context, session *models.QuizSession) error
	FindByID(ctx context.Context, id string) (*models.QuizSession, error)
	RecordAnswer(ctx context.Context, id string, questionIndex, answerIndex, elapsedSeconds int) error
	MarkCompleted(ctx context.Context, id string, score, finalElapsedSeconds int, completedAt time.Time) error
	FindByUser(ctx context.Context, userID string) ([]models.QuizSession, error)
}

// QuestionSource is the read-only slice of the content collaborator.
type QuestionSource interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	FindFiltered(ctx context.Context, category, difficulty string) ([]models.Question, error)
}

// Publisher emits telemetry. Implementations must never block quiz progress.
type Publisher interface {
	Publish(eventType string, payload interface{})
}

type SessionService struct {
	store     SessionStore
	questions QuestionSource
	selector  *selection.Selector
	publisher Publisher
	now       func() time.Time
}

func NewSessionService(store SessionStore, questions QuestionSource, publisher Publisher) *SessionService {
	return &SessionService{
		store:     store,
		questions: questions,
		selector:  selection.NewSelector(questions),
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateSession selects the question set for the mode and persists a fresh
// active session with every answer slot empty.
func (s *SessionService) CreateSession(ctx context.Context, userID, mode string, filters selection.Filters, customCount int) (*models.QuizSession, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if !models.ValidMode(mode) {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}

	count := selection.CountForMode(mode, customCount)
	questionIDs, err := s.selector.Select(ctx, filters, count)
	if err != nil {
		return nil, err
	}

	session := &models.QuizSession{
		UserID:       userID,
		Mode:         mode,
		QuestionIDs:  questionIDs,
		Answers:      make([]*int, len(questionIDs)),
		Score:        0,
		Status:       models.StatusActive,
		SessionToken: uuid.NewString(),
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}

	s.publish("quiz.session.started", map[string]interface{}{
		"session_id":     session.ID,
		"user_id":        userID,
		"mode":           mode,
		"question_count": len(questionIDs),
	})
	return session, nil
}

func (s *SessionService) GetSession(ctx context.Context, id string) (*models.QuizSession, error) {
	return s.store.FindByID(ctx, id)
}

func (s *SessionService) ListByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	return s.store.FindByUser(ctx, userID)
}

// QuestionsForSession loads the session's full question documents in order.
func (s *SessionService) QuestionsForSession(ctx context.Context, session *models.QuizSession) ([]models.Question, error) {
	return s.questions.FindByIDs(ctx, session.QuestionIDs)
}

// SubmitAnswer records one answer slot. Re-submitting an index overwrites
// the prior value while the session is active; elapsedSeconds replaces the
// stored accumulator because the client owns wall-clock truth.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID string, questionIndex, answerIndex, elapsedSeconds int) error {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.Status != models.StatusActive {
		return quizerr.ErrInvalidState
	}
	if questionIndex < 0 || questionIndex >= len(session.QuestionIDs) {
		return quizerr.ErrOutOfRange
	}
	if answerIndex < 0 {
		return quizerr.ErrOutOfRange
	}
	if elapsedSeconds < session.TimeSpentSeconds {
		elapsedSeconds = session.TimeSpentSeconds
	}

	if err := s.store.RecordAnswer(ctx, sessionID, questionIndex, answerIndex, elapsedSeconds); err != nil {
		return err
	}

	s.publish("quiz.answer.submitted", map[string]interface{}{
		"session_id":     sessionID,
		"question_index": questionIndex,
	})
	return nil
}

// Complete joins the recorded answers against the canonical correct answers,
// scores the session and freezes it. Completing an already-completed session
// is rejected rather than silently re-scored.
func (s *SessionService) Complete(ctx context.Context, sessionID string, finalElapsedSeconds int) (*models.QuizSession, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, quizerr.ErrInvalidState
	}

	questions, err := s.questions.FindByIDs(ctx, session.QuestionIDs)
	if err != nil {
		return nil, err
	}

	score := scoring.Score(questions, session.Answers)
	completedAt := s.now()
	if finalElapsedSeconds < session.TimeSpentSeconds {
		finalElapsedSeconds = session.TimeSpentSeconds
	}

	if err := s.store.MarkCompleted(ctx, sessionID, score, finalElapsedSeconds, completedAt); err != nil {
		return nil, err
	}

	session.Status = models.StatusCompleted
	session.Score = score
	session.TimeSpentSeconds = finalElapsedSeconds
	session.CompletedAt = &completedAt

	s.publish("quiz.session.completed", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    session.UserID,
		"score":      score,
		"answered":   session.AnsweredCount(),
	})
	return session, nil
}

func (s *SessionService) publish(eventType string, payload map[string]interface{}) {
	if s.publisher != nil {
		s.publisher.Publish(eventType, payload)
	}
}
