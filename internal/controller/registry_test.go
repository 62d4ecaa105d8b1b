package controller

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"
)

type fakeLoader struct {
	*fakeAPI
}

func (f *fakeLoader) GetSession(ctx context.Context, id string) (*models.QuizSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id != f.session.ID {
		return nil, quizerr.ErrNotFound
	}
	return cloneSession(f.session), nil
}

func (f *fakeLoader) QuestionsForSession(ctx context.Context, session *models.QuizSession) ([]models.Question, error) {
	return f.quiz, nil
}

func newLoaderFixture(status string, answered int) *fakeLoader {
	quiz := []models.Question{
		{ID: "q0", Options: []string{"a", "b"}},
		{ID: "q1", Options: []string{"a", "b"}},
		{ID: "q2", Options: []string{"a", "b"}},
	}
	answers := make([]*int, len(quiz))
	for i := 0; i < answered; i++ {
		v := 0
		answers[i] = &v
	}
	session := &models.QuizSession{
		ID:          "session-1",
		UserID:      "user-1",
		Mode:        models.ModeQuick,
		QuestionIDs: []string{"q0", "q1", "q2"},
		Answers:     answers,
		Status:      status,
		CreatedAt:   time.Now(),
	}
	return &fakeLoader{fakeAPI: &fakeAPI{session: session, quiz: quiz}}
}

func TestRegistryResolveRebuildsFromStore(t *testing.T) {
	loader := newLoaderFixture(models.StatusActive, 2)
	r := NewRegistry(loader)
	ctx := context.Background()

	c, err := r.Resolve(ctx, "session-1", "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	snap := c.Snapshot()
	if snap.Index != 2 {
		t.Errorf("Expected resume at index 2, got %d", snap.Index)
	}
	if snap.Phase != PhaseQuestion {
		t.Errorf("Expected question phase, got %s", snap.Phase)
	}

	// A second resolve returns the cached controller.
	again, err := r.Resolve(ctx, "session-1", "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if again != c {
		t.Error("Expected the cached controller instance")
	}

	// Evicting leaves the session resumable: resolve rebuilds.
	r.Evict("session-1")
	rebuilt, err := r.Resolve(ctx, "session-1", "user-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rebuilt == c {
		t.Error("Expected a fresh controller after eviction")
	}
}

func TestRegistryEnforcesOwnership(t *testing.T) {
	loader := newLoaderFixture(models.StatusActive, 0)
	r := NewRegistry(loader)

	if _, err := r.Resolve(context.Background(), "session-1", "intruder"); !errors.Is(err, quizerr.ErrNotFound) {
		t.Errorf("Expected NotFound for foreign user, got %v", err)
	}
}

func TestRegistryRejectsCompletedSessions(t *testing.T) {
	loader := newLoaderFixture(models.StatusCompleted, 3)
	r := NewRegistry(loader)

	if _, err := r.Resolve(context.Background(), "session-1", "user-1"); !errors.Is(err, quizerr.ErrInvalidState) {
		t.Errorf("Expected InvalidState for completed session, got %v", err)
	}
}

func TestRegistryUnknownSession(t *testing.T) {
	loader := newLoaderFixture(models.StatusActive, 0)
	r := NewRegistry(loader)

	if _, err := r.Resolve(context.Background(), "missing", "user-1"); !errors.Is(err, quizerr.ErrNotFound) {
		t.Errorf("Expected NotFound, got %v", err)
	}
}
