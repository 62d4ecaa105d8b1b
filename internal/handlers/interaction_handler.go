package handlers

import (
	"net/http"

	"quiz-session-service/internal/interaction"
	"quiz-session-service/internal/models"

	"github.com/gin-gonic/gin"
)

// InteractionHandler serves the side-channel metadata: confidence ratings,
// bookmarks and feature toggles. None of it touches the session record.
type InteractionHandler struct {
	Store *interaction.SidecarStore
}

func NewInteractionHandler(store *interaction.SidecarStore) *InteractionHandler {
	return &InteractionHandler{Store: store}
}

func (h *InteractionHandler) SetConfidence(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		Rating     int    `json:"rating" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.Store.SetConfidence(c.Request.Context(), c.GetHeader("X-User-ID"), c.Param("id"), req.QuestionID, req.Rating)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question_id": req.QuestionID, "rating": req.Rating})
}

func (h *InteractionHandler) SetBookmark(c *gin.Context) {
	var req struct {
		QuestionID string `json:"question_id" binding:"required"`
		Bookmarked *bool  `json:"bookmarked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := h.Store.SetBookmark(c.Request.Context(), c.GetHeader("X-User-ID"), c.Param("id"), req.QuestionID, *req.Bookmarked)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"question_id": req.QuestionID, "bookmarked": *req.Bookmarked})
}

func (h *InteractionHandler) SetPreferences(c *gin.Context) {
	var prefs models.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.SetPreferences(c.Request.Context(), c.GetHeader("X-User-ID"), prefs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *InteractionHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.Store.Snapshot(c.Request.Context(), c.GetHeader("X-User-ID"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
