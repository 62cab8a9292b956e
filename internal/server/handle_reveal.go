package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quissme/resonance/internal/quissme"
)

func handleReveal(logger *slog.Logger, svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cluster := quissme.Cluster(chi.URLParam(r, "cluster"))

		out, err := svc.Reveal(r.Context(), chi.URLParam(r, "coupleID"), cluster)
		if err != nil {
			writeServiceError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
