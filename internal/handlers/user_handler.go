package handlers

import (
	"net/http"
	"strings"

	"kanmind-api/internal/apperr"

	"github.com/gin-gonic/gin"
)

// EmailCheck handles GET /api/email-check?email=
// Returns the public profile of the user registered under email.
func (h *Handler) EmailCheck(c *gin.Context) {
	if _, ok := h.actorID(c); !ok {
		return
	}

	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		h.respondError(c, apperr.BadRequest("Missing email parameter."))
		return
	}

	user, err := h.svc.Identity.LookupByEmail(c.Request.Context(), email)
	if err != nil {
		if apperr.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Email not found."})
			return
		}
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Public())
}
