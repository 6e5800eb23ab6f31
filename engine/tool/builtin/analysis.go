package builtin

import (
	"context"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/tool"
)

// Comparison runs the head-to-head comparison engine.
type Comparison struct {
	base
}

func NewComparison(cfg ClientConfig) *Comparison {
	return &Comparison{base: base{
		name:       tool.Comparison,
		ttl:        cache.TTLMedium,
		caps:       []string{"comparison", "head-to-head"},
		sources:    []string{"stats-database"},
		confidence: 0.9,
		client:     newClient(cfg),
	}}
}

func (t *Comparison) Trigger(cr *query.ClassificationResult) bool {
	if cr.Intent == query.IntentComparison {
		return true
	}
	return cr.Intent == query.IntentHybrid &&
		countEntities(cr, query.EntityPlayer, query.EntityTeam) >= 2
}

func (t *Comparison) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.postJSON(ctx, "/compare", map[string]any{
		"query":   q.Text,
		"players": entityNames(entities, query.EntityPlayer),
		"teams":   entityNames(entities, query.EntityTeam),
	})
}

// Sentiment runs the fan-sentiment engine over recent discussion threads.
type Sentiment struct {
	base
}

func NewSentiment(cfg ClientConfig) *Sentiment {
	return &Sentiment{base: base{
		name:       tool.Sentiment,
		ttl:        cache.TTLShort,
		caps:       []string{"sentiment", "fan-reaction"},
		sources:    []string{"discussion-feed"},
		confidence: 0.7,
		client:     newClient(cfg),
	}}
}

func (t *Sentiment) Trigger(cr *query.ClassificationResult) bool {
	if cr.Intent == query.IntentSentiment {
		return true
	}
	return cr.Intent == query.IntentHybrid && cr.Complexity >= 2
}

func (t *Sentiment) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.getJSON(ctx, "/sentiment", map[string]string{
		"q":       q.Text,
		"players": entityNames(entities, query.EntityPlayer),
		"teams":   entityNames(entities, query.EntityTeam),
	})
}

// Prediction runs the outcome prediction engine, which feeds on historical
// features supplied alongside it by the knowledge tool.
type Prediction struct {
	base
}

func NewPrediction(cfg ClientConfig) *Prediction {
	return &Prediction{base: base{
		name:       tool.Prediction,
		ttl:        cache.TTLShort,
		caps:       []string{"prediction", "win-probability"},
		sources:    []string{"prediction-model"},
		confidence: 0.6,
		client:     newClient(cfg),
	}}
}

func (t *Prediction) Trigger(cr *query.ClassificationResult) bool {
	return cr.Intent == query.IntentPrediction
}

func (t *Prediction) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.postJSON(ctx, "/predict", map[string]any{
		"query": q.Text,
		"teams": entityNames(entities, query.EntityTeam),
		"match": entityNames(entities, query.EntityMatch),
	})
}
