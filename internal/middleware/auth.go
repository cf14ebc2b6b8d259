package middleware

import (
	"context"
	"errors"
	"strings"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/models"

	"github.com/gin-gonic/gin"
)

// Context keys set by TokenAuth.
const (
	CtxUserID = "user_id"
	CtxUser   = "user"
)

// TokenResolver turns a presented token into its active user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// TokenAuth validates the token in the Authorization header. Both
// "Token <key>" and "Bearer <key>" are accepted.
func TokenAuth(tokens TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperr.ErrUnauthenticated)
			return
		}

		tokenString := ""
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && (strings.EqualFold(parts[0], "Token") || strings.EqualFold(parts[0], "Bearer")) {
			tokenString = parts[1]
		}
		if tokenString == "" {
			abort(c, apperr.ErrInvalidToken)
			return
		}

		user, err := tokens.Resolve(c.Request.Context(), tokenString)
		if err != nil {
			if !errors.Is(err, apperr.ErrInvalidToken) {
				c.Error(err)
			}
			abort(c, err)
			return
		}

		// Store user info in context for use in handlers
		c.Set(CtxUserID, user.ID)
		c.Set(CtxUser, user)

		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	status, body, _ := apperr.Response(err)
	c.AbortWithStatusJSON(status, body)
}
