package builtin

import (
	"strings"

	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
)

// base carries the descriptor metadata shared by every builtin tool.
// Trigger and Fetch stay with the concrete tool types.
type base struct {
	name       string
	ttl        cache.TTLClass
	caps       []string
	sources    []string
	confidence float64
	client     *client
}

func (b *base) Name() string             { return b.name }
func (b *base) TTLClass() cache.TTLClass { return b.ttl }
func (b *base) Capabilities() []string   { return b.caps }
func (b *base) Sources() []string        { return b.sources }
func (b *base) Confidence() float64      { return b.confidence }

// entityNames joins the names of entities of one kind for query parameters.
func entityNames(entities []query.Entity, kind query.EntityKind) string {
	var names []string
	for _, e := range entities {
		if e.Kind == kind {
			names = append(names, e.Name)
		}
	}
	return strings.Join(names, ",")
}

func hasEntity(cr *query.ClassificationResult, kind query.EntityKind) bool {
	for _, e := range cr.Entities {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func countEntities(cr *query.ClassificationResult, kinds ...query.EntityKind) int {
	n := 0
	for _, e := range cr.Entities {
		for _, k := range kinds {
			if e.Kind == k {
				n++
			}
		}
	}
	return n
}
