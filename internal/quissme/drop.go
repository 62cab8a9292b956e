package quissme

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DropGenerator turns completed clusters into insight drops. It is safe for
// concurrent use.
type DropGenerator struct {
	catalog *Catalog
	seq     atomic.Uint64
}

func NewDropGenerator(catalog *Catalog) *DropGenerator {
	return &DropGenerator{catalog: catalog}
}

// Generate builds the drop for a cluster result. The narrative comes from
// the first quiz that landed in the primary zone, so the text always
// matches the zone it is shown under.
func (g *DropGenerator) Generate(cr ClusterResult, now time.Time) (DuoDrop, error) {
	if len(cr.Quizzes) == 0 {
		return DuoDrop{}, ErrEmptyInput
	}
	if _, ok := g.catalog.ClusterTraits(cr.Cluster); !ok {
		return DuoDrop{}, fmt.Errorf("%w: %q", ErrUnknownCluster, cr.Cluster)
	}

	tokens := representativeTokens(cr)
	n := g.seq.Add(1)

	return DuoDrop{
		ID:               fmt.Sprintf("drop_%s_%d_%d", cr.Cluster, now.UnixNano(), n),
		Cluster:          cr.Cluster,
		PrimaryZone:      cr.PrimaryZone,
		InsightStrength:  tokens.InsightStrength,
		InsightGrowth:    tokens.InsightGrowth,
		MicroStep:        tokens.MicroStep,
		GeneratedAt:      now,
		ProfileArchetype: g.archetype(cr),
	}, nil
}

func representativeTokens(cr ClusterResult) TokenBundle {
	for _, r := range cr.Quizzes {
		if r.Zone == cr.PrimaryZone {
			return r.Tokens
		}
	}
	return cr.Quizzes[0].Tokens
}

// archetype picks the cluster's focused archetype when flow or spark alone
// reaches the catalog threshold share of the cluster, mosaic otherwise.
func (g *DropGenerator) archetype(cr ClusterResult) string {
	focused, ok := g.catalog.ClusterArchetype(cr.Cluster)
	if !ok {
		return ArchetypeMosaic
	}
	total := cr.Scores.Total()
	if total == 0 {
		return ArchetypeMosaic
	}
	top := max(cr.Scores.Flow, cr.Scores.Spark)
	if top*100 >= g.catalog.ArchetypeThresholdPercent()*total {
		return focused
	}
	return ArchetypeMosaic
}
