package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/howzat/howzat/engine/core"
	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/registry"
	"github.com/howzat/howzat/engine/tool"
	"github.com/howzat/howzat/pkg/logger"
)

type stubTool struct {
	name    string
	trigger func(*query.ClassificationResult) bool
}

func (s *stubTool) Name() string { return s.name }
func (s *stubTool) Trigger(cr *query.ClassificationResult) bool {
	if s.trigger == nil {
		return false
	}
	return s.trigger(cr)
}
func (s *stubTool) Fetch(context.Context, *query.Query, []query.Entity) (core.Payload, error) {
	return core.Payload{}, nil
}
func (s *stubTool) TTLClass() cache.TTLClass { return cache.TTLShort }
func (s *stubTool) Capabilities() []string   { return nil }
func (s *stubTool) Sources() []string        { return nil }
func (s *stubTool) Confidence() float64      { return 0.5 }

// fullRegistry registers stubs for every canonical tool name with trigger
// predicates matching the builtin set.
func fullRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	ctx := logger.ContextWithLogger(t.Context(), logger.NewForTests())
	reg := registry.New()
	live := func(cr *query.ClassificationResult) bool { return cr.Temporal == query.TemporalLive }
	triggers := map[string]func(*query.ClassificationResult) bool{
		tool.LiveScores: live,
		tool.Commentary: live,
		tool.Weather:    func(cr *query.ClassificationResult) bool { return false },
		tool.Knowledge:  func(cr *query.ClassificationResult) bool { return true },
		tool.BallDB: func(cr *query.ClassificationResult) bool {
			return cr.Intent == query.IntentBallLevel
		},
		tool.Comparison: func(cr *query.ClassificationResult) bool {
			return cr.Intent == query.IntentComparison || cr.Intent == query.IntentHybrid
		},
		tool.Sentiment: func(cr *query.ClassificationResult) bool {
			return cr.Intent == query.IntentSentiment
		},
		tool.Visualization: func(cr *query.ClassificationResult) bool {
			return cr.Intent == query.IntentVisualization
		},
		tool.Prediction: func(cr *query.ClassificationResult) bool {
			return cr.Intent == query.IntentPrediction
		},
	}
	for _, name := range []string{
		tool.LiveScores, tool.Commentary, tool.Weather, tool.Knowledge, tool.BallDB,
		tool.Comparison, tool.Sentiment, tool.Visualization, tool.Prediction,
	} {
		require.NoError(t, reg.Register(ctx, &stubTool{name: name, trigger: triggers[name]}))
	}
	return reg
}

func TestRoute(t *testing.T) {
	r := New(fullRegistry(t))

	t.Run("Should route live factual queries to the score tool only", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentFactual,
			Temporal:   query.TemporalLive,
			Complexity: 1,
		})
		assert.Equal(t, []string{tool.LiveScores}, got)
	})

	t.Run("Should include both scores and commentary for ambiguous live intent", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentLive,
			Temporal:   query.TemporalLive,
			Complexity: 1,
		})
		assert.Equal(t, []string{tool.LiveScores, tool.Commentary}, got)
	})

	t.Run("Should add weather when a venue entity is present on a live query", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentLive,
			Temporal:   query.TemporalLive,
			Complexity: 1,
			Entities:   []query.Entity{{Kind: query.EntityVenue, Name: "MCG"}},
		})
		assert.Contains(t, got, tool.Weather)
	})

	t.Run("Should route historical queries to the knowledge tool", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentHistorical,
			Temporal:   query.TemporalHistorical,
			Complexity: 1,
		})
		assert.Equal(t, []string{tool.Knowledge}, got)
	})

	t.Run("Should add the ball database for ball-level historical queries", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentBallLevel,
			Temporal:   query.TemporalHistorical,
			Complexity: 2,
		})
		assert.Contains(t, got, tool.BallDB)
		assert.Contains(t, got, tool.Knowledge)
	})

	t.Run("Should route comparisons comparison-first with knowledge support", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentComparison,
			Complexity: 2,
		})
		assert.Equal(t, []string{tool.Comparison, tool.Knowledge}, got)
	})

	t.Run("Should keep sentiment isolated from realtime tools at low complexity", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentSentiment,
			Temporal:   query.TemporalLive,
			Complexity: 1,
		})
		assert.Equal(t, []string{tool.Sentiment}, got)
	})

	t.Run("Should pair sentiment with the score tool at complexity two", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentSentiment,
			Temporal:   query.TemporalLive,
			Complexity: 2,
		})
		assert.Equal(t, []string{tool.Sentiment, tool.LiveScores}, got)
	})

	t.Run("Should never route visualization alone", func(t *testing.T) {
		for _, temporal := range []query.Temporal{
			query.TemporalLive, query.TemporalHistorical, query.TemporalUnspecified,
		} {
			got := r.Route(&query.ClassificationResult{
				Intent:     query.IntentVisualization,
				Temporal:   temporal,
				Complexity: 1,
			})
			require.Contains(t, got, tool.Visualization)
			assert.GreaterOrEqual(t, len(got), 2, "visualization must ship with a data producer")
		}
	})

	t.Run("Should route prediction with knowledge as feature source", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentPrediction,
			Complexity: 1,
		})
		assert.Equal(t, []string{tool.Prediction, tool.Knowledge}, got)
	})

	t.Run("Should union trigger-fired tools for hybrid intent", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentHybrid,
			Temporal:   query.TemporalLive,
			Complexity: 2,
		})
		assert.Contains(t, got, tool.LiveScores)
		assert.Contains(t, got, tool.Commentary)
		assert.Contains(t, got, tool.Comparison)
		assert.Contains(t, got, tool.Knowledge)
	})

	t.Run("Should fall back to knowledge when nothing matches", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentFactual,
			Temporal:   query.TemporalUnspecified,
			Complexity: 1,
		})
		assert.Equal(t, []string{tool.Knowledge}, got)
	})

	t.Run("Should fall back to knowledge for nil classification", func(t *testing.T) {
		assert.Equal(t, []string{tool.Knowledge}, r.Route(nil))
	})

	t.Run("Should never return an empty set for any intent and temporal", func(t *testing.T) {
		intents := []query.Intent{
			query.IntentFactual, query.IntentOpinion, query.IntentLive,
			query.IntentHistorical, query.IntentBallLevel, query.IntentComparison,
			query.IntentSentiment, query.IntentVisualization, query.IntentPrediction,
			query.IntentHybrid,
		}
		temporals := []query.Temporal{
			query.TemporalLive, query.TemporalRecent,
			query.TemporalHistorical, query.TemporalUnspecified,
		}
		for _, intent := range intents {
			for _, temporal := range temporals {
				for complexity := 1; complexity <= 3; complexity++ {
					got := r.Route(&query.ClassificationResult{
						Intent:     intent,
						Temporal:   temporal,
						Complexity: complexity,
					})
					assert.NotEmpty(t, got, "intent=%s temporal=%s complexity=%d", intent, temporal, complexity)
				}
			}
		}
	})

	t.Run("Should never return duplicate tool names", func(t *testing.T) {
		got := r.Route(&query.ClassificationResult{
			Intent:     query.IntentBallLevel,
			Temporal:   query.TemporalHistorical,
			Complexity: 3,
		})
		seen := make(map[string]int)
		for _, name := range got {
			seen[name]++
		}
		for name, n := range seen {
			assert.Equal(t, 1, n, "tool %s appears %d times", name, n)
		}
	})
}
