package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"kanmind-api/internal/auth"
	"kanmind-api/internal/logging"
	"kanmind-api/internal/middleware"
	"kanmind-api/internal/models"
	"kanmind-api/internal/services"
	"kanmind-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testServer struct {
	t        *testing.T
	db       *gorm.DB
	tokens   *auth.TokenService
	router   *gin.Engine
	owner    *models.User
	member   *models.User
	outsider *models.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustDB(t)
	tokens := auth.NewTokenService(db, auth.NewSigner("test-secret", "kanmind-api", "kanmind-clients", time.Hour))
	h := New(services.New(db, tokens, logging.Discard(), bcrypt.MinCost), logging.Discard())

	r := gin.New()
	r.POST("/api/registration", h.Registration)
	r.POST("/api/login", h.Login)

	protected := r.Group("/api")
	protected.Use(middleware.TokenAuth(tokens))
	protected.POST("/logout", h.Logout)
	protected.GET("/email-check", h.EmailCheck)
	protected.GET("/boards", h.GetBoards)
	protected.POST("/boards", h.CreateBoard)
	protected.GET("/boards/:id", h.GetBoardByID)
	protected.PATCH("/boards/:id", h.UpdateBoard)
	protected.DELETE("/boards/:id", h.DeleteBoard)
	protected.GET("/tasks/assigned-to-me", h.GetAssignedTasks)
	protected.GET("/tasks/reviewing", h.GetReviewingTasks)
	protected.POST("/tasks", h.CreateTask)
	protected.GET("/tasks/:id", h.GetTaskByID)
	protected.PATCH("/tasks/:id", h.UpdateTask)
	protected.DELETE("/tasks/:id", h.DeleteTask)
	protected.GET("/tasks/:id/comments", h.GetComments)
	protected.POST("/tasks/:id/comments", h.CreateComment)
	protected.DELETE("/tasks/:id/comments/:comment_id", h.DeleteComment)

	return &testServer{
		t:        t,
		db:       db,
		tokens:   tokens,
		router:   r,
		owner:    testutil.SeedUser(t, db, "owner@example.com", "Olivia Owner"),
		member:   testutil.SeedUser(t, db, "member@example.com", "Max Member"),
		outsider: testutil.SeedUser(t, db, "outsider@example.com", "Otto Outsider"),
	}
}

func (s *testServer) tokenFor(u *models.User) string {
	s.t.Helper()
	token, err := s.tokens.IssueFor(context.Background(), u)
	require.NoError(s.t, err)
	return token
}

// do sends a request as u; a nil u sends no Authorization header.
func (s *testServer) do(method, path string, u *models.User, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Token "+s.tokenFor(u))
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
