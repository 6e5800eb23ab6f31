package pipeline

import (
	"time"

	"github.com/howzat/howzat/engine/fusion"
	"github.com/howzat/howzat/engine/query"
)

// Classification echoes how the query was understood, for clients and for
// debugging routing decisions.
type Classification struct {
	Intent     string         `json:"intent"`
	Temporal   string         `json:"temporal"`
	Entities   []query.Entity `json:"entities,omitempty"`
	Complexity int            `json:"complexity"`
	Confidence float64        `json:"confidence"`
	Fallback   bool           `json:"fallback,omitempty"`
}

// Answer is the fused response to one query.
type Answer struct {
	Query            string            `json:"query"`
	Classification   Classification    `json:"classification"`
	Fragments        []fusion.Fragment `json:"fragments"`
	ToolsUsed        []string          `json:"tools_used"`
	Degraded         bool              `json:"degraded"`
	Stale            bool              `json:"stale,omitempty"`
	Failures         map[string]string `json:"failures,omitempty"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
}

// BatchResult pairs one batch query with its answer or error.
type BatchResult struct {
	Answer *Answer
	Err    error
}

func newAnswer(q *query.Query, cr *query.ClassificationResult, fused *fusion.FusedContext, elapsed time.Duration) *Answer {
	return &Answer{
		Query: q.Text,
		Classification: Classification{
			Intent:     string(cr.Intent),
			Temporal:   string(cr.Temporal),
			Entities:   cr.Entities,
			Complexity: cr.Complexity,
			Confidence: cr.Confidence,
			Fallback:   cr.Fallback,
		},
		Fragments:        fused.Fragments,
		ToolsUsed:        fused.ToolsUsed,
		Degraded:         fused.Degraded,
		Stale:            fused.Stale,
		Failures:         fused.Failures,
		ProcessingTimeMS: elapsed.Milliseconds(),
	}
}
