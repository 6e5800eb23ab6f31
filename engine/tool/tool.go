package tool

import (
	"context"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
)

// Tool is the capability contract every data-retrieval plugin implements.
// Implementations must be safe for concurrent Fetch calls and must honor
// context cancellation on every outbound call.
type Tool interface {
	// Name uniquely identifies the tool in the registry.
	Name() string
	// Trigger is a pure predicate deciding whether this tool can serve the
	// classified query. It must not perform I/O.
	Trigger(cr *query.ClassificationResult) bool
	// Fetch retrieves the payload for the query and its extracted entities.
	Fetch(ctx context.Context, q *query.Query, entities []query.Entity) (core.Payload, error)
	// TTLClass declares the freshness tier of the data this tool produces.
	TTLClass() cache.TTLClass
	// Capabilities lists the kinds of questions the tool can answer.
	Capabilities() []string
	// Sources lists the upstream data sources the tool reads from.
	Sources() []string
	// Confidence is the declared default confidence for fragments that do
	// not carry their own.
	Confidence() float64
}

// Canonical tool names. The router refers to tools by these; deployments may
// register additional plugins under new names without touching routing.
const (
	LiveScores    = "livescores"
	Commentary    = "commentary"
	Weather       = "weather"
	Knowledge     = "knowledge"
	BallDB        = "balldb"
	Comparison    = "comparison"
	Sentiment     = "sentiment"
	Visualization = "visualization"
	Prediction    = "prediction"
)
