package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"
	"quiz-session-service/internal/selection"
)

func selectionFilters() selection.Filters { return selection.Filters{} }

// memStore is an in-memory SessionStore mirroring the Mongo repository's
// semantics, including the active-only filters on writes.
type memStore struct {
	sessions map[string]*models.QuizSession
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]*models.QuizSession)}
}

func (m *memStore) Create(ctx context.Context, session *models.QuizSession) error {
	m.nextID++
	session.ID = fmt.Sprintf("session-%d", m.nextID)
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *memStore) FindByID(ctx context.Context, id string) (*models.QuizSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, quizerr.ErrNotFound
	}
	cp := *s
	cp.Answers = append([]*int(nil), s.Answers...)
	return &cp, nil
}

func (m *memStore) RecordAnswer(ctx context.Context, id string, questionIndex, answerIndex, elapsedSeconds int) error {
	s, ok := m.sessions[id]
	if !ok {
		return quizerr.ErrNotFound
	}
	if s.Status != models.StatusActive {
		return quizerr.ErrInvalidState
	}
	v := answerIndex
	s.Answers[questionIndex] = &v
	s.TimeSpentSeconds = elapsedSeconds
	return nil
}

func (m *memStore) MarkCompleted(ctx context.Context, id string, score, finalElapsedSeconds int, completedAt time.Time) error {
	s, ok := m.sessions[id]
	if !ok {
		return quizerr.ErrNotFound
	}
	if s.Status != models.StatusActive {
		return quizerr.ErrInvalidState
	}
	s.Status = models.StatusCompleted
	s.Score = score
	s.TimeSpentSeconds = finalElapsedSeconds
	s.CompletedAt = &completedAt
	return nil
}

func (m *memStore) FindByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	var out []models.QuizSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

// memQuestions serves a fixed pool where option 0 is always correct.
type memQuestions struct {
	pool []models.Question
}

func newMemQuestions(n int) *memQuestions {
	m := &memQuestions{}
	for i := 0; i < n; i++ {
		m.pool = append(m.pool, models.Question{
			ID:            fmt.Sprintf("q%d", i),
			Prompt:        fmt.Sprintf("question %d", i),
			Options:       []string{"right", "wrong", "wrong", "wrong"},
			CorrectAnswer: 0,
			Category:      "cardiology",
			Difficulty:    models.DifficultyEasy,
		})
	}
	return m
}

func (m *memQuestions) FindByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	byID := make(map[string]models.Question)
	for _, q := range m.pool {
		byID[q.ID] = q
	}
	out := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		q, ok := byID[id]
		if !ok {
			return nil, quizerr.ErrNotFound
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *memQuestions) FindFiltered(ctx context.Context, category, difficulty string) ([]models.Question, error) {
	var out []models.Question
	for _, q := range m.pool {
		if category != "" && q.Category != category {
			continue
		}
		if difficulty != "" && q.Difficulty != difficulty {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) Publish(eventType string, payload interface{}) {
	p.events = append(p.events, eventType)
}

func newTestService(questionCount int) (*SessionService, *memStore, *recordingPublisher) {
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := NewSessionService(store, newMemQuestions(questionCount), pub)
	return svc, store, pub
}

func TestCreateSessionInitializesEmptyAnswers(t *testing.T) {
	svc, _, pub := newTestService(20)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, "user-1", models.ModeQuick, selectionFilters(), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(session.QuestionIDs) != 10 {
		t.Errorf("Expected 10 questions for quick mode, got %d", len(session.QuestionIDs))
	}
	if len(session.Answers) != len(session.QuestionIDs) {
		t.Errorf("answers length %d does not match question_ids length %d", len(session.Answers), len(session.QuestionIDs))
	}
	for i, a := range session.Answers {
		if a != nil {
			t.Errorf("Expected answer slot %d to be nil", i)
		}
	}
	if session.Status != models.StatusActive {
		t.Errorf("Expected status active, got %s", session.Status)
	}
	if session.Score != 0 {
		t.Errorf("Expected score 0, got %d", session.Score)
	}
	if len(pub.events) == 0 || pub.events[0] != "quiz.session.started" {
		t.Errorf("Expected started event, got %v", pub.events)
	}
}

func TestCreateSessionRejectsUnknownMode(t *testing.T) {
	svc, _, _ := newTestService(20)
	if _, err := svc.CreateSession(context.Background(), "user-1", "marathon", selectionFilters(), 0); err == nil {
		t.Fatal("Expected error for unknown mode")
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	svc, _, _ := newTestService(20)
	ctx := context.Background()
	session, err := svc.CreateSession(ctx, "user-1", models.ModeQuick, selectionFilters(), 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := svc.SubmitAnswer(ctx, session.ID, 10, 0, 5); !errors.Is(err, quizerr.ErrOutOfRange) {
		t.Errorf("Expected OutOfRange for index 10, got %v", err)
	}
	if err := svc.SubmitAnswer(ctx, session.ID, -1, 0, 5); !errors.Is(err, quizerr.ErrOutOfRange) {
		t.Errorf("Expected OutOfRange for index -1, got %v", err)
	}
	if err := svc.SubmitAnswer(ctx, "missing", 0, 0, 5); !errors.Is(err, quizerr.ErrNotFound) {
		t.Errorf("Expected NotFound for missing session, got %v", err)
	}
}

func TestSubmitAnswerOverwritesSameIndex(t *testing.T) {
	svc, store, _ := newTestService(20)
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "user-1", models.ModeQuick, selectionFilters(), 0)

	if err := svc.SubmitAnswer(ctx, session.ID, 2, 1, 10); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := svc.SubmitAnswer(ctx, session.ID, 2, 3, 15); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	stored, _ := store.FindByID(ctx, session.ID)
	if stored.Answers[2] == nil || *stored.Answers[2] != 3 {
		t.Errorf("Expected latest answer 3 at index 2, got %v", stored.Answers[2])
	}
	if stored.TimeSpentSeconds != 15 {
		t.Errorf("Expected time replaced to 15, got %d", stored.TimeSpentSeconds)
	}
}

func TestCompleteScoresAndFreezes(t *testing.T) {
	svc, store, pub := newTestService(20)
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "user-1", models.ModeCustom, selectionFilters(), 5)
	if len(session.QuestionIDs) != 5 {
		t.Fatalf("Expected 5 questions, got %d", len(session.QuestionIDs))
	}

	// 2 correct (option 0), 3 wrong.
	answers := []int{0, 1, 2, 0, 3}
	for i, a := range answers {
		if err := svc.SubmitAnswer(ctx, session.ID, i, a, (i+1)*10); err != nil {
			t.Fatalf("Unexpected error at index %d: %v", i, err)
		}
	}

	completed, err := svc.Complete(ctx, session.ID, 60)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if completed.Status != models.StatusCompleted {
		t.Errorf("Expected completed status, got %s", completed.Status)
	}
	if completed.Score != 40 {
		t.Errorf("Expected score 40, got %d", completed.Score)
	}
	if completed.CompletedAt == nil {
		t.Error("Expected completed_at to be set")
	}
	if completed.TimeSpentSeconds != 60 {
		t.Errorf("Expected final time 60, got %d", completed.TimeSpentSeconds)
	}

	// Further submissions must be rejected and leave answers untouched.
	if err := svc.SubmitAnswer(ctx, session.ID, 0, 2, 99); !errors.Is(err, quizerr.ErrInvalidState) {
		t.Errorf("Expected InvalidState after completion, got %v", err)
	}
	stored, _ := store.FindByID(ctx, session.ID)
	if *stored.Answers[0] != 0 {
		t.Errorf("Answer mutated after completion: %v", *stored.Answers[0])
	}

	// Re-completing must be rejected, not silently re-scored.
	if _, err := svc.Complete(ctx, session.ID, 120); !errors.Is(err, quizerr.ErrInvalidState) {
		t.Errorf("Expected InvalidState on re-complete, got %v", err)
	}
	found := false
	for _, e := range pub.events {
		if e == "quiz.session.completed" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected completed event, got %v", pub.events)
	}
}

func TestCompleteWithUnansweredSlots(t *testing.T) {
	svc, _, _ := newTestService(20)
	ctx := context.Background()
	session, _ := svc.CreateSession(ctx, "user-1", models.ModeQuick, selectionFilters(), 0)

	// Answer 3 of 10 correctly, leave the rest nil.
	for i := 0; i < 3; i++ {
		if err := svc.SubmitAnswer(ctx, session.ID, i, 0, (i+1)*5); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	completed, err := svc.Complete(ctx, session.ID, 30)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if completed.Score != 30 {
		t.Errorf("Expected score 30 from 3/10 correct, got %d", completed.Score)
	}
	if completed.AnsweredCount() != 3 {
		t.Errorf("Expected 3 answered slots, got %d", completed.AnsweredCount())
	}
}

func TestCompleteMissingSession(t *testing.T) {
	svc, _, _ := newTestService(5)
	if _, err := svc.Complete(context.Background(), "missing", 10); !errors.Is(err, quizerr.ErrNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}
