package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/quissme/resonance/internal/quissme"
	"github.com/quissme/resonance/internal/store"
)

var errBadRequest = errors.New("bad request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusFor maps engine and storage errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, quissme.ErrUnknownQuiz),
		errors.Is(err, quissme.ErrUnknownCluster):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, quissme.ErrInvalidAnswer),
		errors.Is(err, quissme.ErrInvalidZone):
		return http.StatusBadRequest
	case errors.Is(err, quissme.ErrDuplicateAnswer),
		errors.Is(err, quissme.ErrClusterIncomplete),
		errors.Is(err, quissme.ErrAlreadyActive),
		errors.Is(err, quissme.ErrNotActivated):
		return http.StatusConflict
	case errors.Is(err, quissme.ErrActivationLimit):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeServiceError writes err with its mapped status. Internal errors are
// logged and hidden from the client.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
