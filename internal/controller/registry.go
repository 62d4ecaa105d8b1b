package controller

import (
	"context"
	"sync"

	"quiz-session-service/internal/models"
	"quiz-session-service/internal/quizerr"
)

// Loader resolves a session and its question documents from the store.
// The session service satisfies it.
type Loader interface {
	SessionAPI
	GetSession(ctx context.Context, id string) (*models.QuizSession, error)
	QuestionsForSession(ctx context.Context, session *models.QuizSession) ([]models.Question, error)
}

// Registry holds the live controller per session. One user drives one
// session through one controller; an evicted controller is rebuilt from the
// store on the next request, which is how abandoned sessions resume.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	loader      Loader
}

func NewRegistry(loader Loader) *Registry {
	return &Registry{
		controllers: make(map[string]*Controller),
		loader:      loader,
	}
}

// Register caches a controller for a freshly created session.
func (r *Registry) Register(sessionID string, c *Controller) {
	r.mu.Lock()
	r.controllers[sessionID] = c
	r.mu.Unlock()
}

// Resolve returns the live controller for the session, rebuilding it from
// the store if none is cached. Ownership is enforced here: a session is
// driven only by its owner.
func (r *Registry) Resolve(ctx context.Context, sessionID, userID string) (*Controller, error) {
	r.mu.Lock()
	if c, ok := r.controllers[sessionID]; ok {
		r.mu.Unlock()
		if c.Owner() != userID {
			return nil, quizerr.ErrNotFound
		}
		return c, nil
	}
	r.mu.Unlock()

	session, err := r.loader.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, quizerr.ErrNotFound
	}
	if session.Status != models.StatusActive {
		return nil, quizerr.ErrInvalidState
	}
	quiz, err := r.loader.QuestionsForSession(ctx, session)
	if err != nil {
		return nil, err
	}

	c := New(r.loader, session, quiz)

	r.mu.Lock()
	// Another request may have rebuilt it concurrently; keep the first.
	if existing, ok := r.controllers[sessionID]; ok {
		r.mu.Unlock()
		c.Close()
		return existing, nil
	}
	r.controllers[sessionID] = c
	r.mu.Unlock()
	return c, nil
}

// Evict drops and closes the cached controller. The session record is not
// touched, so evicting an active session leaves it resumable.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	c, ok := r.controllers[sessionID]
	if ok {
		delete(r.controllers, sessionID)
	}
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}
