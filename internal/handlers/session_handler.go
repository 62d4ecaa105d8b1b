package handlers

import (
	"errors"
	"net/http"

	"quiz-session-service/internal/controller"
	"quiz-session-service/internal/interaction"
	"quiz-session-service/internal/quizerr"
	"quiz-session-service/internal/selection"
	"quiz-session-service/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	Service  *service.SessionService
	Registry *controller.Registry
}

func NewSessionHandler(svc *service.SessionService, registry *controller.Registry) *SessionHandler {
	return &SessionHandler{Service: svc, Registry: registry}
}

// statusFor maps the error taxonomy onto HTTP statuses. Transient failures
// surface as 503 only after the controller's own retries are exhausted.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quizerr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, quizerr.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, quizerr.ErrOutOfRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, controller.ErrSubmissionInFlight):
		return http.StatusConflict
	case quizerr.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":     err.Error(),
		"retryable": quizerr.IsTransient(err),
	})
}

// CreateSession starts a quiz: selects the question set, persists the
// session and spins up its controller.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req struct {
		Mode       string `json:"mode" binding:"required"`
		Category   string `json:"category"`
		Difficulty string `json:"difficulty"`
		Count      int    `json:"count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format", "details": err.Error()})
		return
	}
	userID := c.GetHeader("X-User-ID")

	filters := selection.Filters{Category: req.Category, Difficulty: req.Difficulty}
	session, err := h.Service.CreateSession(c.Request.Context(), userID, req.Mode, filters, req.Count)
	if err != nil {
		fail(c, err)
		return
	}

	quiz, err := h.Service.QuestionsForSession(c.Request.Context(), session)
	if err != nil {
		fail(c, err)
		return
	}
	ctrl := controller.New(h.Service, session, quiz)
	h.Registry.Register(session.ID, ctrl)

	c.JSON(http.StatusCreated, gin.H{
		"session":  session,
		"snapshot": ctrl.Snapshot(),
	})
}

// GetSession returns the owner's session record. The correct answers never
// live in the session document, so nothing leaks before reveal.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	if session.UserID != c.GetHeader("X-User-ID") {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions returns the caller's session history.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	sessions, err := h.Service.ListByUser(c.Request.Context(), c.GetHeader("X-User-ID"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "count": len(sessions)})
}

// SubmitAnswer records the selected option for the current question and
// reveals correctness plus explanation.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req struct {
		Option         *int `json:"option" binding:"required"`
		ElapsedSeconds int  `json:"elapsed_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid answer format", "details": err.Error()})
		return
	}

	ctrl, err := h.resolve(c)
	if err != nil {
		fail(c, err)
		return
	}
	result, err := ctrl.SelectAnswer(c.Request.Context(), *req.Option, req.ElapsedSeconds)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"result":   result,
		"snapshot": ctrl.Snapshot(),
	})
}

// Advance moves past a revealed question; past the last question it
// completes the session.
func (h *SessionHandler) Advance(c *gin.Context) {
	var req struct {
		ElapsedSeconds int `json:"elapsed_seconds"`
	}
	_ = c.ShouldBindJSON(&req)

	ctrl, err := h.resolve(c)
	if err != nil {
		fail(c, err)
		return
	}
	snap, err := ctrl.Advance(c.Request.Context(), req.ElapsedSeconds)
	if err != nil {
		fail(c, err)
		return
	}
	h.evictIfDone(c.Param("id"), ctrl)
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// Previous steps back one question without clearing anything.
func (h *SessionHandler) Previous(c *gin.Context) {
	ctrl, err := h.resolve(c)
	if err != nil {
		fail(c, err)
		return
	}
	snap, err := ctrl.Previous()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// Finish is the explicit end-early/submit action. Unanswered slots stay
// empty and score against zero.
func (h *SessionHandler) Finish(c *gin.Context) {
	var req struct {
		ElapsedSeconds int `json:"elapsed_seconds"`
	}
	_ = c.ShouldBindJSON(&req)

	ctrl, err := h.resolve(c)
	if err != nil {
		fail(c, err)
		return
	}
	snap, err := ctrl.EndEarly(c.Request.Context(), req.ElapsedSeconds)
	if err != nil {
		fail(c, err)
		return
	}
	h.evictIfDone(c.Param("id"), ctrl)
	c.JSON(http.StatusOK, gin.H{"snapshot": snap})
}

// Swipe resolves a pointer drag into navigation. Sub-threshold swipes and
// advance swipes on unanswered questions are acknowledged no-ops.
func (h *SessionHandler) Swipe(c *gin.Context) {
	var req struct {
		StartX         float64 `json:"start_x"`
		EndX           float64 `json:"end_x"`
		ElapsedSeconds int     `json:"elapsed_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid swipe format", "details": err.Error()})
		return
	}

	ctrl, err := h.resolve(c)
	if err != nil {
		fail(c, err)
		return
	}

	var tracker interaction.SwipeTracker
	tracker.Begin(req.StartX)
	action := tracker.End(req.EndX)

	snap, navigated, err := interaction.NewGestureNavigator(ctrl).Apply(c.Request.Context(), action, req.ElapsedSeconds)
	if err != nil {
		fail(c, err)
		return
	}
	h.evictIfDone(c.Param("id"), ctrl)
	c.JSON(http.StatusOK, gin.H{
		"action":    action,
		"navigated": navigated,
		"snapshot":  snap,
	})
}

func (h *SessionHandler) resolve(c *gin.Context) (*controller.Controller, error) {
	return h.Registry.Resolve(c.Request.Context(), c.Param("id"), c.GetHeader("X-User-ID"))
}

func (h *SessionHandler) evictIfDone(sessionID string, ctrl *controller.Controller) {
	if ctrl.Done() {
		h.Registry.Evict(sessionID)
	}
}
