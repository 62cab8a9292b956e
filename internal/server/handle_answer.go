package server

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quissme/resonance/internal/quissme"
)

type AnswerRequest struct {
	QuizID      string          `json:"quizId"`
	Partner     quissme.Partner `json:"partner"`
	OptionIndex *int            `json:"optionIndex"`
}

func handleAnswer(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.QuizID = strings.TrimSpace(req.QuizID)
		if req.QuizID == "" || req.OptionIndex == nil {
			writeError(w, http.StatusBadRequest, "quizId and optionIndex are required")
			return
		}

		out, err := svc.SubmitAnswer(r.Context(), chi.URLParam(r, "coupleID"), quissme.Answer{
			QuizID:      req.QuizID,
			OptionIndex: *req.OptionIndex,
			Partner:     req.Partner,
		})
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
