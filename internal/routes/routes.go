package routes

import (
	"context"
	"net/http"
	"strings"

	"kanmind-api/internal/auth"
	"kanmind-api/internal/handlers"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/middleware"
	"kanmind-api/internal/services"
	"kanmind-api/internal/throttle"

	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Services       *services.Services
	Tokens         *auth.TokenService
	Log            logging.Logger
	Ping           func(context.Context) error
	AuthLimiter    *throttle.Limiter
	AllowedOrigins []string
}

// SetupRoutes builds the gin engine serving the KanMind API.
func SetupRoutes(d Deps) *gin.Engine {
	// Create a new GIN Router
	ginRouter := gin.New()
	ginRouter.RedirectTrailingSlash = false
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(middleware.RequestLogger(d.Log))

	// CORS middleware (for frontend integration)
	ginRouter.Use(middleware.CORS(d.AllowedOrigins))

	h := handlers.New(d.Services, d.Log)

	// Health check endpoint
	ginRouter.GET("/health", h.Health(d.Ping))

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		public := api.Group("")
		if d.AuthLimiter != nil {
			public.Use(middleware.Throttle(d.AuthLimiter))
		}
		public.POST("/registration", h.Registration)
		public.POST("/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.TokenAuth(d.Tokens))
	{
		protectedRoutes.POST("/logout", h.Logout)
		protectedRoutes.GET("/email-check", h.EmailCheck)

		// Board endpoints
		protectedRoutes.GET("/boards", h.GetBoards)
		protectedRoutes.POST("/boards", h.CreateBoard)
		protectedRoutes.GET("/boards/:id", h.GetBoardByID)
		protectedRoutes.PATCH("/boards/:id", h.UpdateBoard)
		protectedRoutes.DELETE("/boards/:id", h.DeleteBoard)

		// Task endpoints
		protectedRoutes.GET("/tasks/assigned-to-me", h.GetAssignedTasks)
		protectedRoutes.GET("/tasks/reviewing", h.GetReviewingTasks)
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.GET("/tasks/:id", h.GetTaskByID)
		protectedRoutes.PATCH("/tasks/:id", h.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)

		// Comment endpoints
		protectedRoutes.GET("/tasks/:id/comments", h.GetComments)
		protectedRoutes.POST("/tasks/:id/comments", h.CreateComment)
		protectedRoutes.DELETE("/tasks/:id/comments/:comment_id", h.DeleteComment)
	}

	return ginRouter
}

// StripTrailingSlash serves "/api/boards/" the same as "/api/boards".
func StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p := r.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			r.URL.Path = strings.TrimRight(p, "/")
			if r.URL.Path == "" {
				r.URL.Path = "/"
			}
			r.URL.RawPath = ""
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the router wrapped for serving.
func Handler(d Deps) http.Handler {
	return StripTrailingSlash(SetupRoutes(d))
}
