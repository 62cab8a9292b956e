package quissme

import (
	"fmt"
	"slices"
)

type QuizStatus string

const (
	StatusAvailable        QuizStatus = "available"
	StatusWaitingOnPartner QuizStatus = "answered_waiting_on_partner"
	StatusPartnerAnswered  QuizStatus = "partner_answered_waiting_on_you"
	StatusReadyToReveal    QuizStatus = "ready_to_reveal"
)

// answerPair holds at most one answer per partner.
type answerPair struct {
	A *Answer
	B *Answer
}

func (p *answerPair) get(who Partner) *Answer {
	if who == PartnerA {
		return p.A
	}
	return p.B
}

func (p *answerPair) set(a Answer) {
	if a.Partner == PartnerA {
		p.A = &a
		return
	}
	p.B = &a
}

// QuizState tracks one couple's answers for the current cycle of every
// cluster. It is not safe for concurrent use; callers serialize writes per
// couple.
type QuizState struct {
	catalog     *Catalog
	answers     map[string]*answerPair
	results     map[string]QuizResult
	order       []string
	progress    map[Cluster]*Progress
	activations map[string]Activation
	weeks       map[Partner]SeedWeek
}

func NewQuizState(catalog *Catalog) *QuizState {
	s := &QuizState{
		catalog:     catalog,
		answers:     make(map[string]*answerPair),
		results:     make(map[string]QuizResult),
		progress:    make(map[Cluster]*Progress, len(Clusters)),
		activations: make(map[string]Activation),
		weeks:       make(map[Partner]SeedWeek, 2),
	}
	for _, c := range Clusters {
		s.progress[c] = &Progress{}
	}
	return s
}

// SubmitAnswer records a partner's answer. It returns the quiz result once
// both partners have answered, or nil while the partner is still pending.
// A partner answering again before the pair completes replaces their
// earlier answer; once the quiz is scored for the current cycle further
// answers fail with ErrDuplicateAnswer.
func (s *QuizState) SubmitAnswer(a Answer) (*QuizResult, error) {
	q, ok := s.catalog.Quiz(a.QuizID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownQuiz, a.QuizID)
	}
	if !a.Partner.Valid() {
		return nil, fmt.Errorf("%w: partner %q", ErrInvalidAnswer, a.Partner)
	}
	if !inRange(q, a.OptionIndex) {
		return nil, fmt.Errorf("%w: option %d not in [0,%d)", ErrInvalidAnswer, a.OptionIndex, q.OptionCount)
	}
	if _, scored := s.results[q.ID]; scored {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateAnswer, q.ID)
	}

	pair := s.pair(q.ID)
	if pair.get(a.Partner) == nil {
		s.countAnswer(q.Cluster, a.Partner)
	}
	pair.set(a)

	if pair.A == nil || pair.B == nil {
		return nil, nil
	}

	zone := ClassifyZone(s.catalog, q.ID, *pair.A, *pair.B)
	r := QuizResult{
		QuizID:  q.ID,
		Cluster: q.Cluster,
		Zone:    zone,
		Tokens:  q.Tokens[zone],
	}
	s.results[q.ID] = r
	s.order = append(s.order, q.ID)
	return &r, nil
}

func (s *QuizState) pair(quizID string) *answerPair {
	p, ok := s.answers[quizID]
	if !ok {
		p = &answerPair{}
		s.answers[quizID] = p
	}
	return p
}

func (s *QuizState) countAnswer(c Cluster, who Partner) {
	p, ok := s.progress[c]
	if !ok {
		p = &Progress{}
		s.progress[c] = p
	}
	if who == PartnerA {
		p.A++
	} else {
		p.B++
	}
}

func (s *QuizState) ClusterProgress(c Cluster) Progress {
	if p, ok := s.progress[c]; ok {
		return *p
	}
	return Progress{}
}

// IsClusterComplete reports whether both partners answered every quiz of
// the cluster in the current cycle.
func (s *QuizState) IsClusterComplete(c Cluster) bool {
	size := s.catalog.ClusterSize(c)
	if size == 0 {
		return false
	}
	p := s.ClusterProgress(c)
	return p.A >= size && p.B >= size
}

// CompletedQuizzes returns the ids of scored quizzes in the order they
// were scored.
func (s *QuizState) CompletedQuizzes() []string {
	return slices.Clone(s.order)
}

// ClusterResults returns the scored results of a cluster in catalog order.
func (s *QuizState) ClusterResults(c Cluster) []QuizResult {
	var out []QuizResult
	for _, q := range s.catalog.QuizzesInCluster(c) {
		if r, ok := s.results[q.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// QuizStatus describes a quiz from one partner's point of view.
func (s *QuizState) QuizStatus(quizID string, who Partner) (QuizStatus, error) {
	if _, ok := s.catalog.Quiz(quizID); !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownQuiz, quizID)
	}
	if !who.Valid() {
		return "", fmt.Errorf("%w: partner %q", ErrInvalidAnswer, who)
	}
	if _, ok := s.results[quizID]; ok {
		return StatusReadyToReveal, nil
	}
	pair, ok := s.answers[quizID]
	if !ok {
		return StatusAvailable, nil
	}
	switch {
	case pair.get(who) != nil:
		return StatusWaitingOnPartner, nil
	case pair.get(who.Other()) != nil:
		return StatusPartnerAnswered, nil
	}
	return StatusAvailable, nil
}

// ResetCluster clears answers, results, activations and progress of a
// cluster so the couple can play it again. Weekly activation counts stay.
func (s *QuizState) ResetCluster(c Cluster) {
	for _, q := range s.catalog.QuizzesInCluster(c) {
		delete(s.answers, q.ID)
		delete(s.results, q.ID)
		delete(s.activations, q.ID)
	}
	s.order = slices.DeleteFunc(s.order, func(id string) bool {
		q, ok := s.catalog.Quiz(id)
		return ok && q.Cluster == c
	})
	s.progress[c] = &Progress{}
}

func (p Partner) Other() Partner {
	if p == PartnerA {
		return PartnerB
	}
	return PartnerA
}

// StateSnapshot is the serializable form of a QuizState.
type StateSnapshot struct {
	Answers     []Answer             `json:"answers"`
	Results     []QuizResult         `json:"results"`
	Activations []Activation         `json:"activations,omitempty"`
	Weeks       map[Partner]SeedWeek `json:"weeks,omitempty"`
}

func (s *QuizState) Snapshot() StateSnapshot {
	var snap StateSnapshot
	for _, q := range s.catalog.Quizzes() {
		pair, ok := s.answers[q.ID]
		if !ok {
			continue
		}
		if pair.A != nil {
			snap.Answers = append(snap.Answers, *pair.A)
		}
		if pair.B != nil {
			snap.Answers = append(snap.Answers, *pair.B)
		}
	}
	for _, id := range s.order {
		snap.Results = append(snap.Results, s.results[id])
	}
	for _, q := range s.catalog.Quizzes() {
		if a, ok := s.activations[q.ID]; ok {
			snap.Activations = append(snap.Activations, a)
		}
	}
	if len(s.weeks) > 0 {
		snap.Weeks = make(map[Partner]SeedWeek, len(s.weeks))
		for who, w := range s.weeks {
			snap.Weeks[who] = w
		}
	}
	return snap
}

// RestoreQuizState rebuilds a QuizState from a snapshot, validating it
// against the catalog.
func RestoreQuizState(catalog *Catalog, snap StateSnapshot) (*QuizState, error) {
	s := NewQuizState(catalog)
	for _, a := range snap.Answers {
		q, ok := catalog.Quiz(a.QuizID)
		if !ok {
			return nil, fmt.Errorf("restoring answer: %w: %q", ErrUnknownQuiz, a.QuizID)
		}
		if !a.Partner.Valid() || !inRange(q, a.OptionIndex) {
			return nil, fmt.Errorf("restoring answer for %q: %w", a.QuizID, ErrInvalidAnswer)
		}
		pair := s.pair(q.ID)
		if pair.get(a.Partner) == nil {
			s.countAnswer(q.Cluster, a.Partner)
		}
		pair.set(a)
	}
	for _, r := range snap.Results {
		pair, ok := s.answers[r.QuizID]
		if !ok || pair.A == nil || pair.B == nil {
			return nil, fmt.Errorf("restoring result for %q: missing answers", r.QuizID)
		}
		if !r.Zone.Valid() {
			return nil, fmt.Errorf("restoring result for %q: %w %q", r.QuizID, ErrInvalidZone, r.Zone)
		}
		if _, dup := s.results[r.QuizID]; dup {
			return nil, fmt.Errorf("restoring result for %q: %w", r.QuizID, ErrDuplicateAnswer)
		}
		s.results[r.QuizID] = r
		s.order = append(s.order, r.QuizID)
	}
	for _, a := range snap.Activations {
		if _, ok := catalog.Quiz(a.QuizID); !ok {
			return nil, fmt.Errorf("restoring activation: %w: %q", ErrUnknownQuiz, a.QuizID)
		}
		if !a.Partner.Valid() {
			return nil, fmt.Errorf("restoring activation for %q: %w", a.QuizID, ErrInvalidAnswer)
		}
		if _, dup := s.activations[a.QuizID]; dup {
			return nil, fmt.Errorf("restoring activation for %q: %w", a.QuizID, ErrAlreadyActive)
		}
		s.activations[a.QuizID] = a
	}
	for who, w := range snap.Weeks {
		if !who.Valid() {
			return nil, fmt.Errorf("restoring activation week: %w: partner %q", ErrInvalidAnswer, who)
		}
		s.weeks[who] = w
	}
	return s, nil
}
