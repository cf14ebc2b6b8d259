package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		body     any
		internal bool
	}{
		{"validation", NewValidation("email", "Email already exists."), http.StatusBadRequest,
			map[string][]string{"email": {"Email already exists."}}, false},
		{"bad request", BadRequest("Missing email parameter."), http.StatusBadRequest,
			map[string]string{"detail": "Missing email parameter."}, false},
		{"credentials", ErrInvalidCredentials, http.StatusBadRequest,
			map[string]string{"detail": DetailInvalidCredentials}, false},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized,
			map[string]string{"detail": DetailUnauthenticated}, false},
		{"wrapped token", fmt.Errorf("%w: expired", ErrInvalidToken), http.StatusUnauthorized,
			map[string]string{"detail": DetailInvalidToken}, false},
		{"forbidden", Forbidden("No."), http.StatusForbidden,
			map[string]string{"detail": "No."}, false},
		{"not found", fmt.Errorf("load: %w", NotFound("task")), http.StatusNotFound,
			map[string]string{"detail": DetailNotFound}, false},
		{"throttled", ErrThrottled, http.StatusTooManyRequests,
			map[string]string{"detail": DetailThrottled}, false},
		{"internal", errors.New("disk on fire"), http.StatusInternalServerError,
			map[string]string{"detail": DetailInternal}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, body, internal := Response(tc.err)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.body, body)
			require.Equal(t, tc.internal, internal)
		})
	}
}
