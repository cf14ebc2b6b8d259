package handlers

import (
	"net/http"

	"kanmind-api/internal/services"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the registration and login response
type AuthResponse struct {
	Token    string `json:"token"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	UserID   uint   `json:"user_id"`
}

func authResponse(s *services.Session) AuthResponse {
	return AuthResponse{
		Token:    s.Token,
		Fullname: s.User.Fullname,
		Email:    s.User.Email,
		UserID:   s.User.ID,
	}
}

// Registration handles POST /api/registration
func (h *Handler) Registration(c *gin.Context) {
	var req services.RegisterInput
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.svc.Identity.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse(session))
}

// Login handles POST /api/login
// Unknown email, wrong password and inactive account answer identically.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.svc.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse(session))
}

// Logout handles POST /api/logout
// It revokes the caller's token; the next login issues a new one.
func (h *Handler) Logout(c *gin.Context) {
	userID, ok := h.actorID(c)
	if !ok {
		return
	}
	if err := h.svc.Identity.Logout(c.Request.Context(), userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
