package quissme

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tokens(quizID string) map[Zone]TokenBundle {
	m := make(map[Zone]TokenBundle, len(Zones))
	for _, z := range Zones {
		m[z] = TokenBundle{
			InsightStrength: fmt.Sprintf("%s %s strength", quizID, z),
			InsightGrowth:   fmt.Sprintf("%s %s growth", quizID, z),
			MicroStep:       fmt.Sprintf("%s %s step", quizID, z),
		}
	}
	return m
}

// newTestCatalog builds three clusters of five five-option quizzes, plus a
// standalone eleven-option quiz "wide" in the future cluster's place.
func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	traits := []Trait{
		{Key: "closeness", Name: "Closeness"},
		{Key: "play", Name: "Play"},
		{Key: "appreciation", Name: "Appreciation"},
		{Key: "repair", Name: "Repair"},
		{Key: "ritual", Name: "Ritual"},
		{Key: "boundaries", Name: "Boundaries"},
		{Key: "alignment", Name: "Alignment"},
		{Key: "fairness", Name: "Fairness"},
		{Key: "clarity", Name: "Clarity"},
		{Key: "tension", Name: "Tension"},
	}
	clusters := []ClusterSpec{
		{Cluster: ClusterPassion, Traits: []string{"closeness", "play", "appreciation"}, Archetype: "flame_duo"},
		{Cluster: ClusterStability, Traits: []string{"repair", "ritual", "boundaries"}, Archetype: "harbor_duo"},
		{Cluster: ClusterFuture, Traits: []string{"alignment", "fairness", "clarity"}, Archetype: "horizon_duo"},
	}
	buffs := []BuffSpec{
		{Cluster: ClusterPassion, Name: "Passion Boost", DurationDays: 7, AffectedTraits: []string{"closeness", "play", "appreciation"}},
		{Cluster: ClusterStability, Name: "Rock Solid", DurationDays: 7, AffectedTraits: []string{"repair", "ritual", "boundaries"}},
	}

	var quizzes []Quiz
	for _, c := range []Cluster{ClusterPassion, ClusterStability} {
		for i := 1; i <= 5; i++ {
			id := fmt.Sprintf("%s_%d", c, i)
			quizzes = append(quizzes, Quiz{
				ID:          id,
				Cluster:     c,
				FacetLabel:  id,
				OptionCount: 5,
				Tokens:      tokens(id),
			})
		}
	}
	quizzes = append(quizzes,
		Quiz{ID: "wide", Cluster: ClusterFuture, OptionCount: 11, Tokens: tokens("wide")},
		Quiz{ID: "paired", Cluster: ClusterFuture, OptionCount: 5, Tokens: tokens("paired"), TalkPairs: [][2]int{{0, 1}}},
	)

	c, err := NewCatalog(quizzes, clusters, buffs, traits, 60)
	require.NoError(t, err)
	return c
}

func answer(quizID string, who Partner, option int) Answer {
	return Answer{QuizID: quizID, OptionIndex: option, Partner: who, AnsweredAt: testNow}
}

func result(quizID string, c Cluster, z Zone) QuizResult {
	return QuizResult{QuizID: quizID, Cluster: c, Zone: z, Tokens: tokens(quizID)[z]}
}
