package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quissme/resonance/internal/quissme"
)

type ActivateRequest struct {
	QuizID  string          `json:"quizId"`
	Partner quissme.Partner `json:"partner"`
}

func handleActivate(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ActivateRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.QuizID = strings.TrimSpace(req.QuizID)
		if req.QuizID == "" {
			writeError(w, http.StatusBadRequest, "quizId is required")
			return
		}

		out, err := svc.Activate(r.Context(), chi.URLParam(r, "coupleID"), req.QuizID, req.Partner)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

func handleSeeds(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who := quissme.Partner(r.URL.Query().Get("partner"))

		seeds, err := svc.Seeds(r.Context(), chi.URLParam(r, "coupleID"), who)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, seeds)
	}
}
