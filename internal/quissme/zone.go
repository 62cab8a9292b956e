package quissme

import (
	"fmt"
	"math"
)

// Similarity thresholds in tenths: >= 7/10 is flow, <= 3/10 is talk.
const (
	flowTenths = 7
	talkTenths = 3
)

// ClassifyZone returns the zone of a partner pair for one quiz. Anything it
// cannot resolve (unknown quiz, answers for another quiz, out-of-range
// options) is classified as talk: an unresolved pair needs a conversation,
// it never counts as agreement.
func ClassifyZone(catalog *Catalog, quizID string, a, b Answer) Zone {
	q, ok := catalog.Quiz(quizID)
	if !ok || a.QuizID != quizID || b.QuizID != quizID {
		return ZoneTalk
	}
	if !inRange(q, a.OptionIndex) || !inRange(q, b.OptionIndex) {
		return ZoneTalk
	}

	if isTalkPair(q, a.OptionIndex, b.OptionIndex) {
		return ZoneTalk
	}

	// similarity = 1 - diff/span, compared against k/10 without floats:
	// 1 - diff/span >= k/10  <=>  10*(span-diff) >= k*span
	span := q.OptionCount - 1
	near := 10 * (span - absInt(a.OptionIndex-b.OptionIndex))
	switch {
	case near >= flowTenths*span:
		return ZoneFlow
	case near <= talkTenths*span:
		return ZoneTalk
	default:
		return ZoneSpark
	}
}

// Similarity reports the normalized closeness of two option indices in
// [0,1] for the given quiz.
func Similarity(catalog *Catalog, quizID string, a, b Answer) (float64, error) {
	q, ok := catalog.Quiz(quizID)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownQuiz, quizID)
	}
	if !inRange(q, a.OptionIndex) || !inRange(q, b.OptionIndex) {
		return 0, fmt.Errorf("%w: option index out of range for %q", ErrInvalidAnswer, quizID)
	}
	diff := math.Abs(float64(a.OptionIndex - b.OptionIndex))
	return 1 - diff/float64(q.OptionCount-1), nil
}

func isTalkPair(q Quiz, i, j int) bool {
	for _, p := range q.TalkPairs {
		if (p[0] == i && p[1] == j) || (p[0] == j && p[1] == i) {
			return true
		}
	}
	return false
}

func inRange(q Quiz, idx int) bool {
	return idx >= 0 && idx < q.OptionCount
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
