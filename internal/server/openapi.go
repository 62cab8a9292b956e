package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/quissme/resonance/internal/handler/health"
	"github.com/quissme/resonance/internal/quissme"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

type coupleParam struct {
	CoupleID string `path:"coupleID"`
}

type quizStatusParams struct {
	CoupleID string `path:"coupleID"`
	Partner  string `query:"partner" enum:"A,B" required:"true"`
}

type revealParams struct {
	CoupleID string `path:"coupleID"`
	Cluster  string `path:"cluster" enum:"passion,stability,future"`
}

type answerInput struct {
	CoupleID string `path:"coupleID"`
	AnswerRequest
}

type activateInput struct {
	CoupleID string `path:"coupleID"`
	ActivateRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "QuissMe API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Quiz scoring and relationship state for couples.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]health.Result{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(map[string]health.Result{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/quizzes
	listQuizzes, _ := r.NewOperationContext(http.MethodGet, "/api/quizzes")
	listQuizzes.SetSummary("List quizzes")
	listQuizzes.SetDescription("Returns the quiz catalog in play order.")
	listQuizzes.AddRespStructure([]QuizView{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listQuizzes)

	// GET /api/traits
	listTraits, _ := r.NewOperationContext(http.MethodGet, "/api/traits")
	listTraits.SetSummary("List traits")
	listTraits.AddRespStructure([]TraitView{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listTraits)

	// POST /api/couples
	createCouple, _ := r.NewOperationContext(http.MethodPost, "/api/couples")
	createCouple.SetSummary("Create couple")
	createCouple.SetDescription("Creates a couple with every trait at medium.")
	createCouple.AddReqStructure(CreateCoupleRequest{})
	createCouple.AddRespStructure(CoupleView{}, openapi.WithHTTPStatus(http.StatusCreated))
	createCouple.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(createCouple)

	// GET /api/couples/{coupleID}
	getCouple, _ := r.NewOperationContext(http.MethodGet, "/api/couples/{coupleID}")
	getCouple.SetSummary("Get couple")
	getCouple.SetDescription("Returns cluster progress, traits, active buffs and past drops.")
	getCouple.AddReqStructure(coupleParam{})
	getCouple.AddRespStructure(CoupleView{}, openapi.WithHTTPStatus(http.StatusOK))
	getCouple.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getCouple)

	// POST /api/couples/{coupleID}/activations
	postActivation, _ := r.NewOperationContext(http.MethodPost, "/api/couples/{coupleID}/activations")
	postActivation.SetSummary("Activate quiz")
	postActivation.SetDescription("Opens a quiz for both partners. Each partner has a weekly allowance and a couple has a limited number of open quizzes.")
	postActivation.AddReqStructure(activateInput{})
	postActivation.AddRespStructure(ActivationOutcome{}, openapi.WithHTTPStatus(http.StatusCreated))
	postActivation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postActivation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postActivation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postActivation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusTooManyRequests))
	_ = r.AddOperation(postActivation)

	// GET /api/couples/{coupleID}/seeds
	getSeeds, _ := r.NewOperationContext(http.MethodGet, "/api/couples/{coupleID}/seeds")
	getSeeds.SetSummary("Activation allowance")
	getSeeds.SetDescription("Returns a partner's remaining weekly activations and the couple's free quiz slots.")
	getSeeds.AddReqStructure(quizStatusParams{})
	getSeeds.AddRespStructure(quissme.Seeds{}, openapi.WithHTTPStatus(http.StatusOK))
	getSeeds.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getSeeds.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSeeds)

	// POST /api/couples/{coupleID}/answers
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/couples/{coupleID}/answers")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Records one partner's answer. The quiz is scored once both partners have answered. When activation is required, unactivated quizzes are rejected with 409.")
	postAnswer.AddReqStructure(answerInput{})
	postAnswer.AddRespStructure(AnswerOutcome{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postAnswer)

	// GET /api/couples/{coupleID}/quizzes
	getStatuses, _ := r.NewOperationContext(http.MethodGet, "/api/couples/{coupleID}/quizzes")
	getStatuses.SetSummary("Quiz statuses")
	getStatuses.SetDescription("Returns every quiz with its status from one partner's point of view.")
	getStatuses.AddReqStructure(quizStatusParams{})
	getStatuses.AddRespStructure([]QuizStatusView{}, openapi.WithHTTPStatus(http.StatusOK))
	getStatuses.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	getStatuses.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getStatuses)

	// POST /api/couples/{coupleID}/clusters/{cluster}/reveal
	postReveal, _ := r.NewOperationContext(http.MethodPost, "/api/couples/{coupleID}/clusters/{cluster}/reveal")
	postReveal.SetSummary("Reveal cluster")
	postReveal.SetDescription("Aggregates a completed cluster into an insight drop, unlocks its buff, updates traits and starts a new cycle.")
	postReveal.AddReqStructure(revealParams{})
	postReveal.AddRespStructure(RevealOutcome{}, openapi.WithHTTPStatus(http.StatusOK))
	postReveal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postReveal.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postReveal)

	// GET /api/couples/{coupleID}/buffs
	getBuffs, _ := r.NewOperationContext(http.MethodGet, "/api/couples/{coupleID}/buffs")
	getBuffs.SetSummary("Active buffs")
	getBuffs.AddReqStructure(coupleParam{})
	getBuffs.AddRespStructure([]BuffView{}, openapi.WithHTTPStatus(http.StatusOK))
	getBuffs.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getBuffs)

	// GET /api/couples/{coupleID}/history
	getHistory, _ := r.NewOperationContext(http.MethodGet, "/api/couples/{coupleID}/history")
	getHistory.SetSummary("Reveal history")
	getHistory.SetDescription("Returns every revealed cluster cycle with its drop, plus zone totals and reveal counts per cluster.")
	getHistory.AddReqStructure(coupleParam{})
	getHistory.AddRespStructure(HistoryView{}, openapi.WithHTTPStatus(http.StatusOK))
	getHistory.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getHistory)

	// GET /api/couples/{coupleID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/couples/{coupleID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of quiz_activated, partner_answered, quiz_scored, cluster_complete and cluster_revealed events.")
	getEvents.AddReqStructure(coupleParam{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/couples/{coupleID}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/couples/{coupleID}/ws")
	getWS.SetSummary("WebSocket event stream")
	getWS.SetDescription("Upgrades to a WebSocket connection carrying the same events as the SSE stream.")
	getWS.AddReqStructure(coupleParam{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
