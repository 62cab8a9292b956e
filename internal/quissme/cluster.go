package quissme

import (
	"fmt"
	"slices"
)

// Aggregate tallies the zones of a cluster's quiz results. The primary zone
// is the most frequent one; ties go to the earlier zone in Zones.
func Aggregate(results []QuizResult) (ClusterResult, error) {
	if len(results) == 0 {
		return ClusterResult{}, ErrEmptyInput
	}

	cluster := results[0].Cluster
	var scores ZoneScores
	for _, r := range results {
		if r.Cluster != cluster {
			return ClusterResult{}, fmt.Errorf("%w: %s and %s", ErrMixedCluster, cluster, r.Cluster)
		}
		if !r.Zone.Valid() {
			return ClusterResult{}, fmt.Errorf("%w: %q on quiz %q", ErrInvalidZone, r.Zone, r.QuizID)
		}
		scores.add(r.Zone)
	}

	return ClusterResult{
		Cluster:     cluster,
		Quizzes:     slices.Clone(results),
		PrimaryZone: primaryZone(scores),
		Scores:      scores,
	}, nil
}

func primaryZone(scores ZoneScores) Zone {
	best := Zones[0]
	for _, z := range Zones[1:] {
		if scores.Get(z) > scores.Get(best) {
			best = z
		}
	}
	return best
}
