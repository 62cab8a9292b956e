// Package metrics exposes prometheus counters for engine activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quissme/resonance/internal/quissme"
)

// Recorder counts answers, scored quizzes, reveals and event subscribers.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	reg         *prometheus.Registry
	answers     *prometheus.CounterVec
	results     *prometheus.CounterVec
	reveals     *prometheus.CounterVec
	buffs       *prometheus.CounterVec
	subscribers prometheus.Gauge
}

// New registers the engine metrics plus the Go and process collectors on a
// fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		answers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quissme",
			Name:      "answers_total",
			Help:      "Answers accepted, by cluster and partner.",
		}, []string{"cluster", "partner"}),
		results: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quissme",
			Name:      "quiz_results_total",
			Help:      "Quizzes scored once both partners answered, by cluster and zone.",
		}, []string{"cluster", "zone"}),
		reveals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quissme",
			Name:      "cluster_reveals_total",
			Help:      "Completed clusters revealed, by cluster, primary zone and archetype.",
		}, []string{"cluster", "primary_zone", "archetype"}),
		buffs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quissme",
			Name:      "buffs_unlocked_total",
			Help:      "Buffs unlocked, by cluster.",
		}, []string{"cluster"}),
		subscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "quissme",
			Name:      "event_subscribers",
			Help:      "Open SSE and websocket event streams.",
		}),
	}
}

func (r *Recorder) Answer(a quissme.Answer, c quissme.Cluster) {
	if r == nil {
		return
	}
	r.answers.WithLabelValues(string(c), string(a.Partner)).Inc()
}

func (r *Recorder) QuizScored(res quissme.QuizResult) {
	if r == nil {
		return
	}
	r.results.WithLabelValues(string(res.Cluster), string(res.Zone)).Inc()
}

func (r *Recorder) Revealed(d quissme.DuoDrop, buff *quissme.ActiveBuff) {
	if r == nil {
		return
	}
	r.reveals.WithLabelValues(string(d.Cluster), string(d.PrimaryZone), d.ProfileArchetype).Inc()
	if buff != nil {
		r.buffs.WithLabelValues(string(buff.Cluster)).Inc()
	}
}

func (r *Recorder) SubscriberAdded() {
	if r == nil {
		return
	}
	r.subscribers.Inc()
}

func (r *Recorder) SubscriberRemoved() {
	if r == nil {
		return
	}
	r.subscribers.Dec()
}

// Handler serves the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
