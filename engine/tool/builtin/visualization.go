package builtin

import (
	"context"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/tool"
)

// Visualization produces chart specifications. It has no data source of its
// own; the router pairs it with whichever tool supplies its input.
type Visualization struct {
	base
}

func NewVisualization(cfg ClientConfig) *Visualization {
	return &Visualization{base: base{
		name:       tool.Visualization,
		ttl:        cache.TTLMedium,
		caps:       []string{"charts", "trends", "wagon-wheel"},
		sources:    []string{"chart-service"},
		confidence: 0.8,
		client:     newClient(cfg),
	}}
}

func (t *Visualization) Trigger(cr *query.ClassificationResult) bool {
	return cr.Intent == query.IntentVisualization
}

func (t *Visualization) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.postJSON(ctx, "/chart", map[string]any{
		"query":   q.Text,
		"players": entityNames(entities, query.EntityPlayer),
		"teams":   entityNames(entities, query.EntityTeam),
	})
}
