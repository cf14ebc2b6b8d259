package handlers

import (
	"net/http"

	"kanmind-api/internal/services"

	"github.com/gin-gonic/gin"
)

// GetComments handles GET /api/tasks/:id/comments
func (h *Handler) GetComments(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	comments, err := h.svc.Comments.List(c.Request.Context(), userID, taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment handles POST /api/tasks/:id/comments
func (h *Handler) CreateComment(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req services.CommentInput
	if !h.bindJSON(c, &req) {
		return
	}

	comment, err := h.svc.Comments.Create(c.Request.Context(), userID, taskID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// DeleteComment handles DELETE /api/tasks/:id/comments/:comment_id
func (h *Handler) DeleteComment(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := h.parseID(c, "comment_id")
	if !ok {
		return
	}

	if err := h.svc.Comments.Delete(c.Request.Context(), userID, taskID, commentID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
