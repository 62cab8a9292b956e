package quissme

import (
	"fmt"
	"time"
)

// ActivationLimits bound how fast a couple opens quizzes. WeeklyPerPartner
// caps the activations of each partner within a seven-day window;
// MaxActive caps the activated quizzes of a couple that are not scored yet.
type ActivationLimits struct {
	WeeklyPerPartner int
	MaxActive        int
}

var DefaultActivationLimits = ActivationLimits{WeeklyPerPartner: 3, MaxActive: 3}

const activationWindow = 7 * 24 * time.Hour

// Activation opens a quiz for both partners in the current cycle.
type Activation struct {
	QuizID      string    `json:"quizId"`
	Partner     Partner   `json:"partner"`
	ActivatedAt time.Time `json:"activatedAt"`
}

// SeedWeek is one partner's activation window. A zero Start means the
// partner has not activated anything yet.
type SeedWeek struct {
	Start time.Time `json:"start"`
	Used  int       `json:"used"`
}

// Seeds summarizes what a partner may still activate.
type Seeds struct {
	WeeklyUsed     int  `json:"weeklyUsed"`
	SeedsRemaining int  `json:"seedsRemaining"`
	ActiveCount    int  `json:"activeCount"`
	SlotsRemaining int  `json:"slotsRemaining"`
	CanActivate    bool `json:"canActivate"`
}

// Activate opens quizID on behalf of who. It fails with ErrAlreadyActive
// when the quiz is already open or answered in this cycle and with
// ErrActivationLimit when who has no weekly activations left or the couple
// has no free slot.
func (s *QuizState) Activate(quizID string, who Partner, now time.Time, limits ActivationLimits) (Activation, error) {
	q, ok := s.catalog.Quiz(quizID)
	if !ok {
		return Activation{}, fmt.Errorf("%w: %q", ErrUnknownQuiz, quizID)
	}
	if !who.Valid() {
		return Activation{}, fmt.Errorf("%w: partner %q", ErrInvalidAnswer, who)
	}
	if _, scored := s.results[q.ID]; scored {
		return Activation{}, fmt.Errorf("%w: %q", ErrDuplicateAnswer, q.ID)
	}
	if _, ok := s.activations[q.ID]; ok {
		return Activation{}, fmt.Errorf("%w: %q", ErrAlreadyActive, q.ID)
	}
	if _, answered := s.answers[q.ID]; answered {
		return Activation{}, fmt.Errorf("%w: %q already has answers", ErrAlreadyActive, q.ID)
	}

	w := s.week(who, now)
	if w.Used >= limits.WeeklyPerPartner {
		return Activation{}, fmt.Errorf("%w: %d activations this week", ErrActivationLimit, w.Used)
	}
	if n := s.activeCount(); n >= limits.MaxActive {
		return Activation{}, fmt.Errorf("%w: %d quizzes active", ErrActivationLimit, n)
	}

	if w.Start.IsZero() {
		w.Start = now
	}
	w.Used++
	s.weeks[who] = w

	a := Activation{QuizID: q.ID, Partner: who, ActivatedAt: now}
	s.activations[q.ID] = a
	return a, nil
}

// Activation returns the activation of quizID in the current cycle.
func (s *QuizState) Activation(quizID string) (Activation, bool) {
	a, ok := s.activations[quizID]
	return a, ok
}

// Seeds reports who's remaining weekly activations and the couple's free
// slots at now.
func (s *QuizState) Seeds(who Partner, now time.Time, limits ActivationLimits) Seeds {
	used := s.week(who, now).Used
	active := s.activeCount()
	out := Seeds{
		WeeklyUsed:     used,
		SeedsRemaining: max(0, limits.WeeklyPerPartner-used),
		ActiveCount:    active,
		SlotsRemaining: max(0, limits.MaxActive-active),
	}
	out.CanActivate = out.SeedsRemaining > 0 && out.SlotsRemaining > 0
	return out
}

// week returns who's current window, starting a fresh one at now once the
// previous window is seven days old.
func (s *QuizState) week(who Partner, now time.Time) SeedWeek {
	w := s.weeks[who]
	if !w.Start.IsZero() && now.Sub(w.Start) >= activationWindow {
		return SeedWeek{Start: now}
	}
	return w
}

func (s *QuizState) activeCount() int {
	n := 0
	for id := range s.activations {
		if _, scored := s.results[id]; !scored {
			n++
		}
	}
	return n
}
