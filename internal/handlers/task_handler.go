package handlers

import (
	"net/http"

	"kanmind-api/internal/services"

	"github.com/gin-gonic/gin"
)

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}

	var req services.TaskCreateInput
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.svc.Tasks.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// GetTaskByID handles GET /api/tasks/:id
func (h *Handler) GetTaskByID(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.svc.Tasks.Get(c.Request.Context(), userID, taskID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask handles PATCH /api/tasks/:id
// A "board" field is accepted and ignored. "assignee_id": null clears the
// assignee while an omitted key keeps it.
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req services.TaskPatchInput
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.svc.Tasks.Update(c.Request.Context(), userID, taskID, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	taskID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Tasks.Delete(c.Request.Context(), userID, taskID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAssignedTasks handles GET /api/tasks/assigned-to-me
func (h *Handler) GetAssignedTasks(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}

	tasks, err := h.svc.Tasks.AssignedTo(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetReviewingTasks handles GET /api/tasks/reviewing
func (h *Handler) GetReviewingTasks(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}

	tasks, err := h.svc.Tasks.Reviewing(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}
