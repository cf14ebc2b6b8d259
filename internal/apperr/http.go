package apperr

import (
	"errors"
	"net/http"
)

// Client-facing details of the sentinel errors.
const (
	DetailUnauthenticated    = "Authentication credentials were not provided."
	DetailInvalidToken       = "Invalid token."
	DetailInvalidCredentials = "Invalid credentials."
	DetailNotFound           = "Not found."
	DetailThrottled          = "Request was throttled."
	DetailInternal           = "Internal server error."
)

// Response maps err to an HTTP status and JSON body. Validation errors render
// as a field-to-messages object; everything else as {"detail": "..."}.
// internal is true when err is not part of the taxonomy and should be logged.
func Response(err error) (status int, body any, internal bool) {
	var (
		ve *ValidationError
		br *BadRequestError
		pe *PermissionError
		nf *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Fields, false
	case errors.As(err, &br):
		return http.StatusBadRequest, detail(br.Detail), false
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, detail(DetailInvalidCredentials), false
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, detail(DetailUnauthenticated), false
	case errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized, detail(DetailInvalidToken), false
	case errors.As(err, &pe):
		return http.StatusForbidden, detail(pe.Detail), false
	case errors.As(err, &nf):
		return http.StatusNotFound, detail(DetailNotFound), false
	case errors.Is(err, ErrThrottled):
		return http.StatusTooManyRequests, detail(DetailThrottled), false
	}
	return http.StatusInternalServerError, detail(DetailInternal), true
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}
