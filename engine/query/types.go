package query

import (
	"sort"
	"strings"
)

// -----------------------------------------------------------------------------
// Intent
// -----------------------------------------------------------------------------

// Intent is the closed set of question categories the classifier may emit.
type Intent string

const (
	IntentFactual       Intent = "factual"
	IntentOpinion       Intent = "opinion"
	IntentLive          Intent = "live"
	IntentHistorical    Intent = "historical"
	IntentBallLevel     Intent = "ball_level"
	IntentComparison    Intent = "comparison"
	IntentSentiment     Intent = "sentiment"
	IntentVisualization Intent = "visualization"
	IntentPrediction    Intent = "prediction"
	IntentHybrid        Intent = "hybrid"
)

// ParseIntent coerces free-form NLU output into a known intent. Unknown
// values fall back to factual so a sloppy provider never breaks routing.
func ParseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_")))) {
	case IntentFactual:
		return IntentFactual
	case IntentOpinion:
		return IntentOpinion
	case IntentLive:
		return IntentLive
	case IntentHistorical:
		return IntentHistorical
	case IntentBallLevel:
		return IntentBallLevel
	case IntentComparison:
		return IntentComparison
	case IntentSentiment:
		return IntentSentiment
	case IntentVisualization:
		return IntentVisualization
	case IntentPrediction:
		return IntentPrediction
	case IntentHybrid:
		return IntentHybrid
	default:
		return IntentFactual
	}
}

// -----------------------------------------------------------------------------
// Temporal
// -----------------------------------------------------------------------------

// Temporal marks which time frame a query refers to.
type Temporal string

const (
	TemporalLive        Temporal = "live"
	TemporalRecent      Temporal = "recent"
	TemporalHistorical  Temporal = "historical"
	TemporalUnspecified Temporal = "unspecified"
)

func ParseTemporal(s string) Temporal {
	switch Temporal(strings.ToLower(strings.TrimSpace(s))) {
	case TemporalLive:
		return TemporalLive
	case TemporalRecent:
		return TemporalRecent
	case TemporalHistorical:
		return TemporalHistorical
	default:
		return TemporalUnspecified
	}
}

// -----------------------------------------------------------------------------
// Entity
// -----------------------------------------------------------------------------

// EntityKind is the closed set of entity types extracted from queries.
type EntityKind string

const (
	EntityPlayer    EntityKind = "player"
	EntityTeam      EntityKind = "team"
	EntityMatch     EntityKind = "match"
	EntityVenue     EntityKind = "venue"
	EntityDateRange EntityKind = "daterange"
)

// Entity is a typed name/id pair extracted by the classifier.
type Entity struct {
	Kind EntityKind `json:"kind"`
	Name string     `json:"name"`
	ID   string     `json:"id,omitempty"`
}

// Signature returns a deterministic, normalized representation of a set of
// entities, used as part of cache keys. Order of the input never matters.
func Signature(entities []Entity) string {
	if len(entities) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(entities))
	for _, e := range entities {
		name := strings.ToLower(strings.Join(strings.Fields(e.Name), " "))
		parts = append(parts, string(e.Kind)+"="+name)
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}
