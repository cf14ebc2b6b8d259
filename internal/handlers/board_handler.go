package handlers

import (
	"net/http"

	"kanmind-api/internal/services"

	"github.com/gin-gonic/gin"
)

// GetBoards handles GET /api/boards
// Returns the boards the caller owns or is a member of, with live counters.
func (h *Handler) GetBoards(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}

	boards, err := h.svc.Boards.List(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, boards)
}

// CreateBoard handles POST /api/boards
func (h *Handler) CreateBoard(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req services.BoardInput
	if !h.bindJSON(c, &req) {
		return
	}

	board, err := h.svc.Boards.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, board)
}

// GetBoardByID handles GET /api/boards/:id
func (h *Handler) GetBoardByID(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	boardID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	board, err := h.svc.Boards.Get(c.Request.Context(), userID, boardID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// UpdateBoard handles PATCH /api/boards/:id
// A members list replaces the whole membership.
func (h *Handler) UpdateBoard(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	boardID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req services.BoardInput
	if !h.bindJSON(c, &req) {
		return
	}

	board, err := h.svc.Boards.Update(c.Request.Context(), userID, boardID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// DeleteBoard handles DELETE /api/boards/:id
func (h *Handler) DeleteBoard(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	boardID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Boards.Delete(c.Request.Context(), userID, boardID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
