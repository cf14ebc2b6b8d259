package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kanmind-api/internal/apperr"
	"kanmind-api/internal/testutil"

	"github.com/stretchr/testify/require"
)

func TestRegistration_ReturnsToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/registration", nil, map[string]string{
		"fullname":          "Nina New",
		"email":             "Nina@Example.com",
		"password":          "plum-orbit-77",
		"repeated_password": "plum-orbit-77",
	})
	requireStatus(t, w, http.StatusCreated)

	resp := decode[AuthResponse](t, w)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "nina@example.com", resp.Email)
	require.Equal(t, "Nina New", resp.Fullname)
	require.NotZero(t, resp.UserID)
}

func TestRegistration_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/registration", nil, map[string]string{
		"fullname":          "Dup",
		"email":             "owner@example.com",
		"password":          "plum-orbit-77",
		"repeated_password": "plum-orbit-78",
	})
	requireStatus(t, w, http.StatusBadRequest)

	fields := decode[map[string][]string](t, w)
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "repeated_password")
}

func TestRegistration_MalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/registration", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	requireStatus(t, w, http.StatusBadRequest)
	require.Contains(t, decode[map[string]string](t, w), "detail")
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/login", nil, LoginRequest{Email: "OWNER@example.com", Password: testutil.Password})
	requireStatus(t, w, http.StatusOK)
	first := decode[AuthResponse](t, w)
	require.Equal(t, s.owner.ID, first.UserID)

	w = s.do(http.MethodPost, "/api/login", nil, LoginRequest{Email: "owner@example.com", Password: testutil.Password})
	requireStatus(t, w, http.StatusOK)
	require.Equal(t, first.Token, decode[AuthResponse](t, w).Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)

	for _, req := range []LoginRequest{
		{Email: "owner@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: testutil.Password},
	} {
		w := s.do(http.MethodPost, "/api/login", nil, req)
		requireStatus(t, w, http.StatusBadRequest)
		require.Equal(t, apperr.DetailInvalidCredentials, decode[map[string]string](t, w)["detail"])
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.tokenFor(s.owner)

	send := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	requireStatus(t, send(http.MethodPost, "/api/logout"), http.StatusNoContent)

	w := send(http.MethodGet, "/api/boards")
	requireStatus(t, w, http.StatusUnauthorized)
	require.Equal(t, apperr.DetailInvalidToken, decode[map[string]string](t, w)["detail"])
}
