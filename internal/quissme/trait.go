package quissme

import (
	"fmt"
	"maps"
)

// zoneLevel maps a cluster's primary zone onto trait levels. A talk zone
// still reads as building; there is no negative level.
var zoneLevel = map[Zone]TraitLevel{
	ZoneFlow:  LevelHigh,
	ZoneSpark: LevelHigh,
	ZoneTalk:  LevelBuilding,
}

// UpdateTraits derives new levels for the cluster's traits. Any of those
// traits named by one of activeBuffs is floored at medium, and a high level
// is never lowered. Traits outside the cluster are not returned. The caller
// filters activeBuffs to the ones valid now.
func UpdateTraits(catalog *Catalog, cr ClusterResult, activeBuffs []ActiveBuff) (map[string]TraitLevel, error) {
	keys, ok := catalog.ClusterTraits(cr.Cluster)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCluster, cr.Cluster)
	}
	level, ok := zoneLevel[cr.PrimaryZone]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidZone, cr.PrimaryZone)
	}

	updates := make(map[string]TraitLevel, len(keys))
	for _, k := range keys {
		updates[k] = level
	}

	for _, b := range activeBuffs {
		for _, k := range b.AffectedTraits {
			cur, ok := updates[k]
			if !ok {
				continue
			}
			if cur.rank() < LevelMedium.rank() {
				updates[k] = LevelMedium
			}
		}
	}
	return updates, nil
}

// DefaultTraitLevels is the starting state of a new couple.
func DefaultTraitLevels(catalog *Catalog) TraitLevels {
	levels := make(TraitLevels)
	for _, t := range catalog.Traits() {
		levels[t.Key] = LevelMedium
	}
	return levels
}

// ApplyTraitUpdates returns a copy of current with updates applied.
func ApplyTraitUpdates(current TraitLevels, updates map[string]TraitLevel) TraitLevels {
	next := maps.Clone(current)
	if next == nil {
		next = make(TraitLevels, len(updates))
	}
	maps.Copy(next, updates)
	return next
}
