package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/middleware"
	"kanmind-api/internal/services"

	"github.com/gin-gonic/gin"
)

// Handler serves the KanMind REST endpoints.
type Handler struct {
	svc *services.Services
	log logging.Logger
}

// New returns a Handler backed by svc.
func New(svc *services.Services, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// actorID returns the authenticated user id, answering 401 when it is missing.
func (h *Handler) actorID(c *gin.Context) (uint, bool) {
	id := c.GetUint(middleware.CtxUserID)
	if id == 0 {
		h.respondError(c, apperr.ErrUnauthenticated)
		return 0, false
	}
	return id, true
}

// parseID reads a numeric path parameter. Anything else does not name a
// resource, so it answers 404.
func (h *Handler) parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.respondError(c, apperr.NotFound(name))
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes the request body into dst. An empty body decodes as {}.
func (h *Handler) bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		h.respondError(c, apperr.NewValidation(typeErr.Field, fmt.Sprintf("Incorrect type. Expected %s, received %s.", typeErr.Type, typeErr.Value)))
	case errors.As(err, &syntaxErr):
		h.respondError(c, apperr.BadRequest(fmt.Sprintf("JSON parse error - %s", syntaxErr.Error())))
	default:
		h.respondError(c, apperr.BadRequest("Malformed request body."))
	}
	return false
}

// respondError renders err through the error taxonomy and logs failures that
// fall outside it.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, body, internal := apperr.Response(err)
	if internal {
		h.log.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err.Error(),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

// Health handles GET /health
func (h *Handler) Health(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ping(c.Request.Context()); err != nil {
			h.log.Error(c.Request.Context(), "health check failed", "error", err.Error())
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"message": "Database is not reachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "KanMind API is running",
		})
	}
}
