// Package catalog loads the quiz catalog from YAML. The default catalog is
// embedded in the binary; a file on disk can replace it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quissme/resonance/internal/quissme"
)

//go:embed default.yaml
var defaultYAML []byte

type fileCatalog struct {
	ArchetypeThresholdPercent int           `yaml:"archetype_threshold_percent"`
	Traits                    []fileTrait   `yaml:"traits"`
	Clusters                  []fileCluster `yaml:"clusters"`
	Buffs                     []fileBuff    `yaml:"buffs"`
	Quizzes                   []fileQuiz    `yaml:"quizzes"`
}

type fileTrait struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
}

type fileCluster struct {
	ID        string   `yaml:"id"`
	Archetype string   `yaml:"archetype"`
	Traits    []string `yaml:"traits"`
}

type fileBuff struct {
	Cluster        string   `yaml:"cluster"`
	Name           string   `yaml:"name"`
	DurationDays   int      `yaml:"duration_days"`
	AffectedTraits []string `yaml:"affected_traits"`
}

type fileQuiz struct {
	ID          string                         `yaml:"id"`
	Cluster     string                         `yaml:"cluster"`
	Facet       string                         `yaml:"facet"`
	OptionCount int                            `yaml:"option_count"`
	Zones       map[string]quissme.TokenBundle `yaml:"zones"`
	TalkPairs   [][]int                        `yaml:"talk_pairs"`
}

// Default returns the embedded catalog.
func Default() (*quissme.Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog file. An empty path yields the embedded catalog.
func Load(path string) (*quissme.Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML catalog data and validates it.
func Parse(data []byte) (*quissme.Catalog, error) {
	var fc fileCatalog
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	traits := make([]quissme.Trait, 0, len(fc.Traits))
	for _, t := range fc.Traits {
		traits = append(traits, quissme.Trait{Key: t.Key, Name: t.Name})
	}

	clusters := make([]quissme.ClusterSpec, 0, len(fc.Clusters))
	for _, c := range fc.Clusters {
		clusters = append(clusters, quissme.ClusterSpec{
			Cluster:   quissme.Cluster(c.ID),
			Traits:    c.Traits,
			Archetype: c.Archetype,
		})
	}

	buffs := make([]quissme.BuffSpec, 0, len(fc.Buffs))
	for _, b := range fc.Buffs {
		buffs = append(buffs, quissme.BuffSpec{
			Cluster:        quissme.Cluster(b.Cluster),
			Name:           b.Name,
			DurationDays:   b.DurationDays,
			AffectedTraits: b.AffectedTraits,
		})
	}

	quizzes := make([]quissme.Quiz, 0, len(fc.Quizzes))
	for _, q := range fc.Quizzes {
		quiz, err := q.toQuiz()
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}

	return quissme.NewCatalog(quizzes, clusters, buffs, traits, fc.ArchetypeThresholdPercent)
}

func (q fileQuiz) toQuiz() (quissme.Quiz, error) {
	tokens := make(map[quissme.Zone]quissme.TokenBundle, len(q.Zones))
	for name, t := range q.Zones {
		z := quissme.Zone(name)
		if !z.Valid() {
			return quissme.Quiz{}, fmt.Errorf("%w: quiz %q has unknown zone %q", quissme.ErrInvalidCatalog, q.ID, name)
		}
		tokens[z] = t
	}

	var pairs [][2]int
	for _, p := range q.TalkPairs {
		if len(p) != 2 {
			return quissme.Quiz{}, fmt.Errorf("%w: quiz %q talk pair %v must have two options", quissme.ErrInvalidCatalog, q.ID, p)
		}
		pairs = append(pairs, [2]int{p[0], p[1]})
	}

	return quissme.Quiz{
		ID:          q.ID,
		Cluster:     quissme.Cluster(q.Cluster),
		FacetLabel:  q.Facet,
		OptionCount: q.OptionCount,
		Tokens:      tokens,
		TalkPairs:   pairs,
	}, nil
}
