package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quissme/resonance/internal/quissme"
)

type CreateCoupleRequest struct {
	PartnerA string `json:"partnerA"`
	PartnerB string `json:"partnerB"`
}

func handleCreateCouple(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateCoupleRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		c, err := svc.CreateCouple(r.Context(), req.PartnerA, req.PartnerB)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func handleGetCouple(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Couple(r.Context(), chi.URLParam(r, "coupleID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func handleListBuffs(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buffs, err := svc.Buffs(r.Context(), chi.URLParam(r, "coupleID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, buffs)
	}
}

func handleQuizStatuses(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		who := quissme.Partner(r.URL.Query().Get("partner"))

		statuses, err := svc.QuizStatuses(r.Context(), chi.URLParam(r, "coupleID"), who)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, statuses)
	}
}

func handleHistory(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := svc.History(r.Context(), chi.URLParam(r, "coupleID"))
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, h)
	}
}
