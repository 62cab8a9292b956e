package quissme

import (
	"fmt"
	"slices"
	"time"
)

const day = 24 * time.Hour

// UnlockBuff creates the buff earned by completing a cluster. It returns
// nil when the catalog has no buff for the cluster.
func UnlockBuff(catalog *Catalog, cr ClusterResult, now time.Time) *ActiveBuff {
	spec, ok := catalog.Buff(cr.Cluster)
	if !ok {
		return nil
	}
	return &ActiveBuff{
		BuffID:         fmt.Sprintf("%s_%d", cr.Cluster, now.UnixNano()),
		Cluster:        cr.Cluster,
		ActivatedAt:    now,
		ExpiresAt:      now.Add(time.Duration(spec.DurationDays) * day),
		AffectedTraits: spec.AffectedTraits,
	}
}

func (b ActiveBuff) IsActive(now time.Time) bool {
	return now.Before(b.ExpiresAt)
}

// RemainingDays rounds the time left up to whole days; expired buffs
// report zero.
func (b ActiveBuff) RemainingDays(now time.Time) int {
	left := b.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + day - 1) / day)
}

// ActiveBuffs returns the buffs still valid at now, in input order.
func ActiveBuffs(buffs []ActiveBuff, now time.Time) []ActiveBuff {
	var out []ActiveBuff
	for _, b := range buffs {
		if b.IsActive(now) {
			out = append(out, b)
		}
	}
	return out
}

// PruneExpired drops expired buffs from a stored list in place.
func PruneExpired(buffs []ActiveBuff, now time.Time) []ActiveBuff {
	return slices.DeleteFunc(buffs, func(b ActiveBuff) bool {
		return !b.IsActive(now)
	})
}
