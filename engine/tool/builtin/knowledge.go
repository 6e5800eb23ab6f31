package builtin

import (
	"context"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/tool"
)

// Knowledge adapts the historical knowledge store's search endpoint. It is
// the system's universal fallback: its trigger always fires, and the router
// returns it as a singleton when no other rule matches.
type Knowledge struct {
	base
	topK int
}

func NewKnowledge(cfg ClientConfig) *Knowledge {
	return &Knowledge{
		base: base{
			name:       tool.Knowledge,
			ttl:        cache.TTLLong,
			caps:       []string{"history", "records", "opinions", "career-stats"},
			sources:    []string{"knowledge-store"},
			confidence: 0.75,
			client:     newClient(cfg),
		},
		topK: 5,
	}
}

func (t *Knowledge) Trigger(*query.ClassificationResult) bool { return true }

func (t *Knowledge) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.postJSON(ctx, "/search", map[string]any{
		"query":     q.Text,
		"top_k":     t.topK,
		"players":   entityNames(entities, query.EntityPlayer),
		"teams":     entityNames(entities, query.EntityTeam),
		"daterange": entityNames(entities, query.EntityDateRange),
	})
}
