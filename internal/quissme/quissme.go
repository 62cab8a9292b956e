// Package quissme is the couple resonance engine: it classifies paired
// answers into zones, aggregates clusters, generates insight drops, unlocks
// buffs and re-levels traits. It has zero external dependencies and performs
// no I/O; the quiz catalog and the current time are always passed in.
package quissme

import "time"

type Zone string

const (
	ZoneFlow  Zone = "flow"
	ZoneSpark Zone = "spark"
	ZoneTalk  Zone = "talk"
)

// Zones lists every zone in tie-break order.
var Zones = []Zone{ZoneFlow, ZoneSpark, ZoneTalk}

func (z Zone) Valid() bool {
	switch z {
	case ZoneFlow, ZoneSpark, ZoneTalk:
		return true
	}
	return false
}

type Cluster string

const (
	ClusterPassion   Cluster = "passion"
	ClusterStability Cluster = "stability"
	ClusterFuture    Cluster = "future"
)

var Clusters = []Cluster{ClusterPassion, ClusterStability, ClusterFuture}

func (c Cluster) Valid() bool {
	switch c {
	case ClusterPassion, ClusterStability, ClusterFuture:
		return true
	}
	return false
}

type Partner string

const (
	PartnerA Partner = "A"
	PartnerB Partner = "B"
)

func (p Partner) Valid() bool {
	return p == PartnerA || p == PartnerB
}

type TraitLevel string

const (
	LevelHigh     TraitLevel = "high"
	LevelMedium   TraitLevel = "medium"
	LevelBuilding TraitLevel = "building"
)

// rank orders levels so buffs can floor them; building < medium < high.
func (l TraitLevel) rank() int {
	switch l {
	case LevelHigh:
		return 2
	case LevelMedium:
		return 1
	}
	return 0
}

// TokenBundle is the narrative content shown for one zone of one quiz.
type TokenBundle struct {
	InsightStrength string `json:"insightStrength" yaml:"insight_strength"`
	InsightGrowth   string `json:"insightGrowth" yaml:"insight_growth"`
	MicroStep       string `json:"microStep" yaml:"micro_step"`
}

type Quiz struct {
	ID          string
	Cluster     Cluster
	FacetLabel  string
	OptionCount int
	Tokens      map[Zone]TokenBundle
	// TalkPairs are unordered option index pairs that always land in the
	// talk zone. Usually empty.
	TalkPairs [][2]int
}

type Answer struct {
	QuizID      string    `json:"quizId"`
	OptionIndex int       `json:"optionIndex"`
	Partner     Partner   `json:"partner"`
	AnsweredAt  time.Time `json:"answeredAt"`
}

type QuizResult struct {
	QuizID  string      `json:"quizId"`
	Cluster Cluster     `json:"cluster"`
	Zone    Zone        `json:"zone"`
	Tokens  TokenBundle `json:"tokens"`
}

type ZoneScores struct {
	Flow  int `json:"flow"`
	Spark int `json:"spark"`
	Talk  int `json:"talk"`
}

func (s ZoneScores) Get(z Zone) int {
	switch z {
	case ZoneFlow:
		return s.Flow
	case ZoneSpark:
		return s.Spark
	case ZoneTalk:
		return s.Talk
	}
	return 0
}

func (s *ZoneScores) add(z Zone) {
	switch z {
	case ZoneFlow:
		s.Flow++
	case ZoneSpark:
		s.Spark++
	case ZoneTalk:
		s.Talk++
	}
}

func (s ZoneScores) Total() int {
	return s.Flow + s.Spark + s.Talk
}

type ClusterResult struct {
	Cluster     Cluster      `json:"cluster"`
	Quizzes     []QuizResult `json:"quizzes"`
	PrimaryZone Zone         `json:"primaryZone"`
	Scores      ZoneScores   `json:"scores"`
}

type DuoDrop struct {
	ID               string    `json:"id"`
	Cluster          Cluster   `json:"cluster"`
	PrimaryZone      Zone      `json:"primaryZone"`
	InsightStrength  string    `json:"insightStrength"`
	InsightGrowth    string    `json:"insightGrowth"`
	MicroStep        string    `json:"microStep"`
	GeneratedAt      time.Time `json:"generatedAt"`
	ProfileArchetype string    `json:"profileArchetype"`
}

type ActiveBuff struct {
	BuffID         string    `json:"buffId"`
	Cluster        Cluster   `json:"cluster"`
	ActivatedAt    time.Time `json:"activatedAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
	AffectedTraits []string  `json:"affectedTraits"`
}

type Trait struct {
	Key  string
	Name string
}

// TraitLevels is the full trait state of one couple, keyed by trait key.
type TraitLevels map[string]TraitLevel

// Progress counts the quizzes of one cluster answered by each partner.
type Progress struct {
	A int `json:"a"`
	B int `json:"b"`
}
