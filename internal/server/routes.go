package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/quissme/resonance/internal/metrics"
)

func addRoutes(r chi.Router, logger *slog.Logger, svc *Service, rec *metrics.Recorder) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("QuissMe API", "/openapi.json", "/docs"))
	r.Handle("/metrics", rec.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/quizzes", handleListQuizzes(svc))
		r.Get("/traits", handleListTraits(svc))

		r.Post("/couples", handleCreateCouple(logger, svc))
		r.Route("/couples/{coupleID}", func(r chi.Router) {
			r.Get("/", handleGetCouple(logger, svc))
			r.Post("/activations", handleActivate(logger, svc))
			r.Get("/seeds", handleSeeds(logger, svc))
			r.Post("/answers", handleAnswer(logger, svc))
			r.Get("/quizzes", handleQuizStatuses(logger, svc))
			r.Post("/clusters/{cluster}/reveal", handleReveal(logger, svc))
			r.Get("/buffs", handleListBuffs(logger, svc))
			r.Get("/history", handleHistory(logger, svc))
			r.Get("/events", handleEvents(logger, svc))
			r.Get("/ws", handleWS(logger, svc))
		})
	})
}
