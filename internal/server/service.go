package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quissme/resonance/internal/metrics"
	"github.com/quissme/resonance/internal/quissme"
	"github.com/quissme/resonance/internal/store"
)

// errCorruptState marks a stored snapshot that no longer matches the
// catalog. It maps to a 500, never to a client error.
var errCorruptState = errors.New("stored quiz state does not match catalog")

// Service runs the engine operations against stored couple state. Every
// write goes through store.ModifyCouple, which holds the database write
// lock from load to save, so concurrent answers of both partners apply one
// after the other.
type Service struct {
	store   store.Store
	catalog *quissme.Catalog
	drops   *quissme.DropGenerator
	broker  *Broker
	events  Publisher
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time

	limits          quissme.ActivationLimits
	gateActivations bool
}

type ServiceOption func(*Service)

// WithPublisher routes events through p instead of straight to the broker.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

func WithMetrics(rec *metrics.Recorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithActivation sets the activation limits. With required set, answers
// are rejected for quizzes nobody activated in the current cycle.
func WithActivation(limits quissme.ActivationLimits, required bool) ServiceOption {
	return func(s *Service) {
		s.limits = limits
		s.gateActivations = required
	}
}

func NewService(logger *slog.Logger, st store.Store, catalog *quissme.Catalog, broker *Broker, opts ...ServiceOption) *Service {
	s := &Service{
		store:   st,
		catalog: catalog,
		drops:   quissme.NewDropGenerator(catalog),
		broker:  broker,
		events:  broker,
		logger:  logger,
		now:     time.Now,
		limits:  quissme.DefaultActivationLimits,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Views returned by the service and serialized as-is by the handlers.

type QuizView struct {
	ID          string          `json:"id"`
	Cluster     quissme.Cluster `json:"cluster"`
	Facet       string          `json:"facet"`
	OptionCount int             `json:"optionCount"`
}

type TraitView struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type ClusterProgressView struct {
	AnsweredA int  `json:"answeredA"`
	AnsweredB int  `json:"answeredB"`
	Total     int  `json:"total"`
	Complete  bool `json:"complete"`
	Reveals   int  `json:"reveals"`
}

type BuffView struct {
	quissme.ActiveBuff
	Name          string `json:"name"`
	RemainingDays int    `json:"remainingDays"`
}

type CoupleView struct {
	ID        string                                  `json:"id"`
	PartnerA  string                                  `json:"partnerA"`
	PartnerB  string                                  `json:"partnerB"`
	Progress  map[quissme.Cluster]ClusterProgressView `json:"progress"`
	Traits    quissme.TraitLevels                     `json:"traits"`
	Buffs     []BuffView                              `json:"buffs"`
	Drops     []quissme.DuoDrop                       `json:"drops"`
	CreatedAt time.Time                               `json:"createdAt"`
}

type QuizStatusView struct {
	QuizView
	Status      quissme.QuizStatus `json:"status"`
	ActivatedBy *quissme.Partner   `json:"activatedBy,omitempty"`
}

type ActivationOutcome struct {
	Activation quissme.Activation `json:"activation"`
	Seeds      quissme.Seeds      `json:"seeds"`
}

// CycleView is one revealed cluster cycle with the drop it produced.
type CycleView struct {
	Result quissme.ClusterResult `json:"result"`
	Drop   *quissme.DuoDrop      `json:"drop,omitempty"`
}

type HistoryView struct {
	Cycles  []CycleView                            `json:"cycles"`
	Totals  map[quissme.Cluster]quissme.ZoneScores `json:"totals"`
	Reveals map[quissme.Cluster]int                `json:"reveals"`
}

type AnswerOutcome struct {
	Result          *quissme.QuizResult `json:"result"`
	Waiting         bool                `json:"waiting"`
	Progress        quissme.Progress    `json:"progress"`
	ClusterComplete bool                `json:"clusterComplete"`
}

type RevealOutcome struct {
	Result       quissme.ClusterResult         `json:"result"`
	Drop         quissme.DuoDrop               `json:"drop"`
	Buff         *quissme.ActiveBuff           `json:"buff"`
	TraitUpdates map[string]quissme.TraitLevel `json:"traitUpdates"`
	Traits       quissme.TraitLevels           `json:"traits"`
}

func (s *Service) Quizzes() []QuizView {
	quizzes := s.catalog.Quizzes()
	out := make([]QuizView, len(quizzes))
	for i, q := range quizzes {
		out[i] = quizView(q)
	}
	return out
}

func quizView(q quissme.Quiz) QuizView {
	return QuizView{ID: q.ID, Cluster: q.Cluster, Facet: q.FacetLabel, OptionCount: q.OptionCount}
}

func (s *Service) Traits() []TraitView {
	traits := s.catalog.Traits()
	out := make([]TraitView, len(traits))
	for i, t := range traits {
		out[i] = TraitView{Key: t.Key, Name: t.Name}
	}
	return out
}

func (s *Service) CreateCouple(ctx context.Context, partnerA, partnerB string) (CoupleView, error) {
	partnerA = strings.TrimSpace(partnerA)
	partnerB = strings.TrimSpace(partnerB)
	if partnerA == "" || partnerB == "" {
		return CoupleView{}, fmt.Errorf("%w: both partner names are required", errBadRequest)
	}

	c, err := s.store.CreateCouple(ctx, store.Couple{
		PartnerA: partnerA,
		PartnerB: partnerB,
		Traits:   quissme.DefaultTraitLevels(s.catalog),
	})
	if err != nil {
		return CoupleView{}, err
	}
	s.logger.Info("couple created", "couple_id", c.ID)
	return s.view(c)
}

func (s *Service) Couple(ctx context.Context, id string) (CoupleView, error) {
	c, err := s.store.Couple(ctx, id)
	if err != nil {
		return CoupleView{}, err
	}
	return s.view(c)
}

func (s *Service) view(c store.Couple) (CoupleView, error) {
	st, err := s.restore(c)
	if err != nil {
		return CoupleView{}, err
	}

	progress := make(map[quissme.Cluster]ClusterProgressView, len(quissme.Clusters))
	for _, cl := range quissme.Clusters {
		p := st.ClusterProgress(cl)
		progress[cl] = ClusterProgressView{
			AnsweredA: p.A,
			AnsweredB: p.B,
			Total:     s.catalog.ClusterSize(cl),
			Complete:  st.IsClusterComplete(cl),
			Reveals:   c.Reveals[cl],
		}
	}

	drops := c.Drops
	if drops == nil {
		drops = []quissme.DuoDrop{}
	}
	return CoupleView{
		ID:        c.ID,
		PartnerA:  c.PartnerA,
		PartnerB:  c.PartnerB,
		Progress:  progress,
		Traits:    c.Traits,
		Buffs:     s.buffViews(c.Buffs, s.now()),
		Drops:     drops,
		CreatedAt: c.CreatedAt,
	}, nil
}

// Buffs returns a couple's currently active buffs.
func (s *Service) Buffs(ctx context.Context, id string) ([]BuffView, error) {
	c, err := s.store.Couple(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buffViews(c.Buffs, s.now()), nil
}

func (s *Service) buffViews(buffs []quissme.ActiveBuff, now time.Time) []BuffView {
	out := []BuffView{}
	for _, b := range quissme.ActiveBuffs(buffs, now) {
		spec, _ := s.catalog.Buff(b.Cluster)
		out = append(out, BuffView{
			ActiveBuff:    b,
			Name:          spec.Name,
			RemainingDays: b.RemainingDays(now),
		})
	}
	return out
}

// QuizStatuses lists every quiz with its status from one partner's side.
func (s *Service) QuizStatuses(ctx context.Context, id string, who quissme.Partner) ([]QuizStatusView, error) {
	if !who.Valid() {
		return nil, fmt.Errorf("%w: partner must be A or B", errBadRequest)
	}
	c, err := s.store.Couple(ctx, id)
	if err != nil {
		return nil, err
	}
	st, err := s.restore(c)
	if err != nil {
		return nil, err
	}

	quizzes := s.catalog.Quizzes()
	out := make([]QuizStatusView, 0, len(quizzes))
	for _, q := range quizzes {
		status, err := st.QuizStatus(q.ID, who)
		if err != nil {
			return nil, err
		}
		v := QuizStatusView{QuizView: quizView(q), Status: status}
		if a, ok := st.Activation(q.ID); ok {
			v.ActivatedBy = &a.Partner
		}
		out = append(out, v)
	}
	return out, nil
}

// Seeds reports a partner's remaining activations and the couple's free
// quiz slots.
func (s *Service) Seeds(ctx context.Context, id string, who quissme.Partner) (quissme.Seeds, error) {
	if !who.Valid() {
		return quissme.Seeds{}, fmt.Errorf("%w: partner must be A or B", errBadRequest)
	}
	c, err := s.store.Couple(ctx, id)
	if err != nil {
		return quissme.Seeds{}, err
	}
	st, err := s.restore(c)
	if err != nil {
		return quissme.Seeds{}, err
	}
	return st.Seeds(who, s.now(), s.limits), nil
}

// Activate opens a quiz for both partners on behalf of who.
func (s *Service) Activate(ctx context.Context, coupleID, quizID string, who quissme.Partner) (ActivationOutcome, error) {
	q, ok := s.catalog.Quiz(quizID)
	if !ok {
		return ActivationOutcome{}, fmt.Errorf("%w: %q", quissme.ErrUnknownQuiz, quizID)
	}
	now := s.now()

	var out ActivationOutcome
	_, err := s.store.ModifyCouple(ctx, coupleID, func(c *store.Couple) error {
		st, err := s.restore(*c)
		if err != nil {
			return err
		}
		a, err := st.Activate(q.ID, who, now, s.limits)
		if err != nil {
			return err
		}
		out = ActivationOutcome{Activation: a, Seeds: st.Seeds(who, now, s.limits)}
		c.State = st.Snapshot()
		return nil
	})
	if err != nil {
		return ActivationOutcome{}, err
	}

	s.events.Publish(coupleID, Event{
		Type:     EventQuizActivated,
		CoupleID: coupleID,
		QuizID:   q.ID,
		Partner:  who,
		Cluster:  q.Cluster,
	})
	return out, nil
}

// SubmitAnswer records one partner's answer and scores the quiz once both
// partners have answered.
func (s *Service) SubmitAnswer(ctx context.Context, coupleID string, a quissme.Answer) (AnswerOutcome, error) {
	q, ok := s.catalog.Quiz(a.QuizID)
	if !ok {
		return AnswerOutcome{}, fmt.Errorf("%w: %q", quissme.ErrUnknownQuiz, a.QuizID)
	}
	a.AnsweredAt = s.now()

	var out AnswerOutcome
	_, err := s.store.ModifyCouple(ctx, coupleID, func(c *store.Couple) error {
		st, err := s.restore(*c)
		if err != nil {
			return err
		}
		if _, ok := st.Activation(q.ID); s.gateActivations && !ok {
			return fmt.Errorf("%w: %q", quissme.ErrNotActivated, q.ID)
		}
		res, err := st.SubmitAnswer(a)
		if err != nil {
			return err
		}
		out = AnswerOutcome{
			Result:          res,
			Waiting:         res == nil,
			Progress:        st.ClusterProgress(q.Cluster),
			ClusterComplete: st.IsClusterComplete(q.Cluster),
		}
		c.State = st.Snapshot()
		return nil
	})
	if err != nil {
		return AnswerOutcome{}, err
	}

	s.metrics.Answer(a, q.Cluster)
	s.events.Publish(coupleID, Event{
		Type:     EventPartnerAnswered,
		CoupleID: coupleID,
		QuizID:   q.ID,
		Partner:  a.Partner,
		Cluster:  q.Cluster,
	})
	if out.Result != nil {
		s.metrics.QuizScored(*out.Result)
		s.events.Publish(coupleID, Event{
			Type:     EventQuizScored,
			CoupleID: coupleID,
			QuizID:   q.ID,
			Cluster:  q.Cluster,
			Zone:     out.Result.Zone,
		})
		if out.ClusterComplete {
			s.events.Publish(coupleID, Event{Type: EventClusterComplete, CoupleID: coupleID, Cluster: q.Cluster})
		}
	}
	return out, nil
}

// Reveal turns a completed cluster into its drop, buff and trait changes,
// then starts a new cycle for the cluster. Trait levels are floored by the
// buffs active before this reveal; the buff it unlocks applies to later
// reveals only.
func (s *Service) Reveal(ctx context.Context, coupleID string, cluster quissme.Cluster) (RevealOutcome, error) {
	if !cluster.Valid() {
		return RevealOutcome{}, fmt.Errorf("%w: %q", quissme.ErrUnknownCluster, cluster)
	}
	now := s.now()

	var out RevealOutcome
	_, err := s.store.ModifyCouple(ctx, coupleID, func(c *store.Couple) error {
		st, err := s.restore(*c)
		if err != nil {
			return err
		}
		if !st.IsClusterComplete(cluster) {
			return fmt.Errorf("%w: %s", quissme.ErrClusterIncomplete, cluster)
		}

		cr, err := quissme.Aggregate(st.ClusterResults(cluster))
		if err != nil {
			return err
		}
		drop, err := s.drops.Generate(cr, now)
		if err != nil {
			return err
		}
		updates, err := quissme.UpdateTraits(s.catalog, cr, quissme.ActiveBuffs(c.Buffs, now))
		if err != nil {
			return err
		}
		buff := quissme.UnlockBuff(s.catalog, cr, now)

		c.Buffs = quissme.PruneExpired(c.Buffs, now)
		if buff != nil {
			c.Buffs = append(c.Buffs, *buff)
		}
		if c.Traits == nil {
			c.Traits = quissme.DefaultTraitLevels(s.catalog)
		}
		c.Traits = quissme.ApplyTraitUpdates(c.Traits, updates)
		c.Drops = append(c.Drops, drop)
		c.History = append(c.History, cr)
		if c.Reveals == nil {
			c.Reveals = make(map[quissme.Cluster]int)
		}
		c.Reveals[cluster]++

		st.ResetCluster(cluster)
		c.State = st.Snapshot()

		out = RevealOutcome{
			Result:       cr,
			Drop:         drop,
			Buff:         buff,
			TraitUpdates: updates,
			Traits:       c.Traits,
		}
		return nil
	})
	if err != nil {
		return RevealOutcome{}, err
	}

	s.logger.Info("cluster revealed",
		"couple_id", coupleID,
		"cluster", cluster,
		"primary_zone", out.Result.PrimaryZone,
		"archetype", out.Drop.ProfileArchetype,
	)
	s.metrics.Revealed(out.Drop, out.Buff)
	s.events.Publish(coupleID, Event{
		Type:     EventClusterRevealed,
		CoupleID: coupleID,
		Cluster:  cluster,
		Zone:     out.Result.PrimaryZone,
		DropID:   out.Drop.ID,
	})
	return out, nil
}

// History lists a couple's revealed cycles, oldest first, with zone totals
// summed per cluster.
func (s *Service) History(ctx context.Context, id string) (HistoryView, error) {
	c, err := s.store.Couple(ctx, id)
	if err != nil {
		return HistoryView{}, err
	}

	out := HistoryView{
		Cycles:  make([]CycleView, 0, len(c.History)),
		Totals:  make(map[quissme.Cluster]quissme.ZoneScores, len(quissme.Clusters)),
		Reveals: make(map[quissme.Cluster]int, len(quissme.Clusters)),
	}
	for _, cl := range quissme.Clusters {
		out.Totals[cl] = quissme.ZoneScores{}
		out.Reveals[cl] = c.Reveals[cl]
	}
	for i, cr := range c.History {
		cv := CycleView{Result: cr}
		// Reveal appends one drop and one history entry together.
		if i < len(c.Drops) {
			cv.Drop = &c.Drops[i]
		}
		out.Cycles = append(out.Cycles, cv)

		t := out.Totals[cr.Cluster]
		t.Flow += cr.Scores.Flow
		t.Spark += cr.Scores.Spark
		t.Talk += cr.Scores.Talk
		out.Totals[cr.Cluster] = t
	}
	return out, nil
}

// Subscribe opens an event stream for an existing couple.
func (s *Service) Subscribe(ctx context.Context, coupleID string) (chan []byte, func(), error) {
	if _, err := s.store.Couple(ctx, coupleID); err != nil {
		return nil, nil, err
	}
	ch := s.broker.Subscribe(coupleID)
	s.metrics.SubscriberAdded()
	return ch, func() {
		s.broker.Unsubscribe(coupleID, ch)
		s.metrics.SubscriberRemoved()
	}, nil
}

func (s *Service) restore(c store.Couple) (*quissme.QuizState, error) {
	st, err := quissme.RestoreQuizState(s.catalog, c.State)
	if err != nil {
		return nil, fmt.Errorf("couple %s: %w: %v", c.ID, errCorruptState, err)
	}
	return st, nil
}
