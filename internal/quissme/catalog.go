package quissme

import (
	"fmt"
	"slices"
)

// ArchetypeMosaic is the archetype of a cluster without a dominant
// flow or spark profile.
const ArchetypeMosaic = "mosaic_duo"

type ClusterSpec struct {
	Cluster   Cluster
	Traits    []string
	Archetype string
}

type BuffSpec struct {
	Cluster        Cluster
	Name           string
	DurationDays   int
	AffectedTraits []string
}

// Catalog is the read-only reference data shared by every couple. Build it
// with NewCatalog; the zero value is empty.
type Catalog struct {
	quizzes          []Quiz
	byID             map[string]int
	clusters         map[Cluster]ClusterSpec
	buffs            map[Cluster]BuffSpec
	traits           []Trait
	thresholdPercent int
}

// NewCatalog validates the reference data and indexes it. The archetype
// threshold is the share of a cluster's quizzes, in percent, that a single
// flow or spark score must reach for the focused archetype.
func NewCatalog(quizzes []Quiz, clusters []ClusterSpec, buffs []BuffSpec, traits []Trait, archetypeThresholdPercent int) (*Catalog, error) {
	if archetypeThresholdPercent <= 0 || archetypeThresholdPercent > 100 {
		return nil, fmt.Errorf("%w: archetype threshold %d%% out of range", ErrInvalidCatalog, archetypeThresholdPercent)
	}

	c := &Catalog{
		byID:             make(map[string]int, len(quizzes)),
		clusters:         make(map[Cluster]ClusterSpec, len(clusters)),
		buffs:            make(map[Cluster]BuffSpec, len(buffs)),
		thresholdPercent: archetypeThresholdPercent,
	}

	traitKeys := make(map[string]bool, len(traits))
	for _, t := range traits {
		if t.Key == "" {
			return nil, fmt.Errorf("%w: trait with empty key", ErrInvalidCatalog)
		}
		if traitKeys[t.Key] {
			return nil, fmt.Errorf("%w: duplicate trait %q", ErrInvalidCatalog, t.Key)
		}
		traitKeys[t.Key] = true
		c.traits = append(c.traits, t)
	}

	for _, cs := range clusters {
		if !cs.Cluster.Valid() {
			return nil, fmt.Errorf("%w: %w %q", ErrInvalidCatalog, ErrUnknownCluster, cs.Cluster)
		}
		for _, key := range cs.Traits {
			if !traitKeys[key] {
				return nil, fmt.Errorf("%w: cluster %s references unknown trait %q", ErrInvalidCatalog, cs.Cluster, key)
			}
		}
		cs.Traits = slices.Clone(cs.Traits)
		c.clusters[cs.Cluster] = cs
	}

	for _, b := range buffs {
		if _, ok := c.clusters[b.Cluster]; !ok {
			return nil, fmt.Errorf("%w: buff for unconfigured cluster %q", ErrInvalidCatalog, b.Cluster)
		}
		if b.DurationDays <= 0 {
			return nil, fmt.Errorf("%w: buff %s has non-positive duration", ErrInvalidCatalog, b.Cluster)
		}
		for _, key := range b.AffectedTraits {
			if !traitKeys[key] {
				return nil, fmt.Errorf("%w: buff %s references unknown trait %q", ErrInvalidCatalog, b.Cluster, key)
			}
		}
		b.AffectedTraits = slices.Clone(b.AffectedTraits)
		c.buffs[b.Cluster] = b
	}

	for _, q := range quizzes {
		if err := c.validateQuiz(q); err != nil {
			return nil, err
		}
		c.byID[q.ID] = len(c.quizzes)
		c.quizzes = append(c.quizzes, cloneQuiz(q))
	}

	return c, nil
}

func (c *Catalog) validateQuiz(q Quiz) error {
	if q.ID == "" {
		return fmt.Errorf("%w: quiz with empty id", ErrInvalidCatalog)
	}
	if _, dup := c.byID[q.ID]; dup {
		return fmt.Errorf("%w: duplicate quiz %q", ErrInvalidCatalog, q.ID)
	}
	if _, ok := c.clusters[q.Cluster]; !ok {
		return fmt.Errorf("%w: quiz %q in unconfigured cluster %q", ErrInvalidCatalog, q.ID, q.Cluster)
	}
	if q.OptionCount < 2 {
		return fmt.Errorf("%w: quiz %q needs at least 2 options", ErrInvalidCatalog, q.ID)
	}
	for _, z := range Zones {
		if _, ok := q.Tokens[z]; !ok {
			return fmt.Errorf("%w: quiz %q has no %s tokens", ErrInvalidCatalog, q.ID, z)
		}
	}
	for _, p := range q.TalkPairs {
		for _, idx := range p {
			if idx < 0 || idx >= q.OptionCount {
				return fmt.Errorf("%w: quiz %q talk pair %v out of range", ErrInvalidCatalog, q.ID, p)
			}
		}
	}
	return nil
}

func cloneQuiz(q Quiz) Quiz {
	tokens := make(map[Zone]TokenBundle, len(q.Tokens))
	for z, t := range q.Tokens {
		tokens[z] = t
	}
	q.Tokens = tokens
	q.TalkPairs = slices.Clone(q.TalkPairs)
	return q
}

func (c *Catalog) Quiz(id string) (Quiz, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Quiz{}, false
	}
	return c.quizzes[i], true
}

// Quizzes returns all quizzes in catalog order.
func (c *Catalog) Quizzes() []Quiz {
	return slices.Clone(c.quizzes)
}

func (c *Catalog) QuizzesInCluster(cluster Cluster) []Quiz {
	var out []Quiz
	for _, q := range c.quizzes {
		if q.Cluster == cluster {
			out = append(out, q)
		}
	}
	return out
}

// ClusterSize is the number of quizzes both partners must answer to
// complete the cluster.
func (c *Catalog) ClusterSize(cluster Cluster) int {
	n := 0
	for _, q := range c.quizzes {
		if q.Cluster == cluster {
			n++
		}
	}
	return n
}

func (c *Catalog) ClusterTraits(cluster Cluster) ([]string, bool) {
	cs, ok := c.clusters[cluster]
	if !ok {
		return nil, false
	}
	return slices.Clone(cs.Traits), true
}

func (c *Catalog) ClusterArchetype(cluster Cluster) (string, bool) {
	cs, ok := c.clusters[cluster]
	if !ok || cs.Archetype == "" {
		return "", false
	}
	return cs.Archetype, true
}

func (c *Catalog) Buff(cluster Cluster) (BuffSpec, bool) {
	b, ok := c.buffs[cluster]
	if !ok {
		return BuffSpec{}, false
	}
	b.AffectedTraits = slices.Clone(b.AffectedTraits)
	return b, true
}

func (c *Catalog) Traits() []Trait {
	return slices.Clone(c.traits)
}

func (c *Catalog) ArchetypeThresholdPercent() int {
	return c.thresholdPercent
}
