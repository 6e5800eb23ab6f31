package builtin

import (
	"context"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/tool"
)

// BallDB adapts the structured ball-level query service. The service owns
// query generation and execution; this tool only ships the criteria over.
type BallDB struct {
	base
}

func NewBallDB(cfg ClientConfig) *BallDB {
	return &BallDB{base: base{
		name:       tool.BallDB,
		ttl:        cache.TTLMedium,
		caps:       []string{"ball-level", "deliveries", "match-detail"},
		sources:    []string{"ball-database"},
		confidence: 0.9,
		client:     newClient(cfg),
	}}
}

func (t *BallDB) Trigger(cr *query.ClassificationResult) bool {
	if cr.Intent == query.IntentBallLevel {
		return true
	}
	return cr.Intent == query.IntentHybrid && cr.Temporal == query.TemporalHistorical
}

func (t *BallDB) Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error) {
	return t.client.postJSON(ctx, "/query", map[string]any{
		"requirement": q.Text,
		"players":     entityNames(entities, query.EntityPlayer),
		"teams":       entityNames(entities, query.EntityTeam),
		"matches":     entityNames(entities, query.EntityMatch),
		"daterange":   entityNames(entities, query.EntityDateRange),
	})
}
