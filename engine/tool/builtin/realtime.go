package builtin

import (
	"context"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/tool"
)

// LiveScores serves current match scorecards from the live data feed.
type LiveScores struct {
	base
}

func NewLiveScores(cfg ClientConfig) *LiveScores {
	return &LiveScores{base: base{
		name:       tool.LiveScores,
		ttl:        cache.TTLRealtime,
		caps:       []string{"scores", "scorecards", "current-matches"},
		sources:    []string{"live-feed"},
		confidence: 0.95,
		client:     newClient(cfg),
	}}
}

func (t *LiveScores) Trigger(cr *query.ClassificationResult) bool {
	if cr.Temporal != query.TemporalLive {
		return false
	}
	switch cr.Intent {
	case query.IntentLive, query.IntentFactual, query.IntentHybrid:
		return true
	default:
		return false
	}
}

func (t *LiveScores) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.getJSON(ctx, "/live/scores", map[string]string{
		"q":     q.Text,
		"teams": entityNames(entities, query.EntityTeam),
		"match": entityNames(entities, query.EntityMatch),
	})
}

// Commentary serves ball-by-ball commentary for ongoing matches.
type Commentary struct {
	base
}

func NewCommentary(cfg ClientConfig) *Commentary {
	return &Commentary{base: base{
		name:       tool.Commentary,
		ttl:        cache.TTLRealtime,
		caps:       []string{"commentary", "ball-by-ball"},
		sources:    []string{"live-feed"},
		confidence: 0.85,
		client:     newClient(cfg),
	}}
}

func (t *Commentary) Trigger(cr *query.ClassificationResult) bool {
	if cr.Temporal != query.TemporalLive {
		return false
	}
	return cr.Intent == query.IntentLive || cr.Intent == query.IntentHybrid
}

func (t *Commentary) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.getJSON(ctx, "/live/commentary", map[string]string{
		"q":     q.Text,
		"match": entityNames(entities, query.EntityMatch),
		"teams": entityNames(entities, query.EntityTeam),
	})
}

// Weather serves match-venue weather conditions.
type Weather struct {
	base
}

func NewWeather(cfg ClientConfig) *Weather {
	return &Weather{base: base{
		name:       tool.Weather,
		ttl:        cache.TTLRealtime,
		caps:       []string{"weather", "pitch-conditions"},
		sources:    []string{"weather-feed"},
		confidence: 0.8,
		client:     newClient(cfg),
	}}
}

func (t *Weather) Trigger(cr *query.ClassificationResult) bool {
	return cr.Temporal == query.TemporalLive && hasEntity(cr, query.EntityVenue)
}

func (t *Weather) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.getJSON(ctx, "/live/weather", map[string]string{
		"venue": entityNames(entities, query.EntityVenue),
	})
}
