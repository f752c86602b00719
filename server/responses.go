package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/jrsteele09/infonow-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const maxRequestBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Message  string `json:"message"`
	Error    string `json:"error,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode response")
	}
}

// writeError maps err to a status and writes message. 401 responses always
// carry the entry-page redirect; 5xx responses never carry error detail.
func writeError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := statusForError(err)
	body := errorResponse{Message: message}

	switch {
	case status == http.StatusUnauthorized:
		body.Redirect = "/"
		body.Error = err.Error()
	case status >= http.StatusInternalServerError:
		log.Err(err).Str("path", r.URL.Path).Msg(message)
	}
	writeJSON(w, status, body)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Message: message, Redirect: "/"})
}

func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrAuthenticationFailed), errors.Is(err, apperrors.ErrInvalidOrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrUnsupported):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v. Malformed bodies are BadRequest.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Kindf(apperrors.ErrBadRequest, err, "[decodeJSON] invalid request body")
	}
	return nil
}
