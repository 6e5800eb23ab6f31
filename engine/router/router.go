package router

import (
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/registry"
	"github.com/howzat/howzat/engine/tool"
)

// Router maps a classification to an ordered, deduplicated set of tool
// names. Routing is a pure decision table over two orthogonal axes,
// analytical intent and temporal frame, evaluated first-match-wins per axis
// and unioned, so individual rules stay independently testable.
type Router struct {
	reg *registry.Registry
}

func New(reg *registry.Registry) *Router {
	return &Router{reg: reg}
}

// Route never returns an empty set: when no rule matches, the knowledge tool
// is the singleton fallback.
func (r *Router) Route(cr *query.ClassificationResult) []string {
	if cr == nil {
		return []string{tool.Knowledge}
	}
	unionAll := cr.Complexity >= 3 || cr.Intent == query.IntentHybrid

	set := newOrderedSet()
	// Analytical axis first: intent-specific tools outrank the generic
	// temporal ones in relevance.
	set.add(r.analyticalAxis(cr)...)
	temporal := r.temporalAxis(cr)
	if suppressRealtime(cr) {
		temporal = nil
	}
	set.add(temporal...)

	if unionAll {
		// Hybrid and high-complexity queries union every tool whose trigger
		// predicate fires instead of stopping at the first rule per axis.
		set.add(r.reg.Match(cr)...)
	}

	names := r.registered(set.values())
	if len(names) == 0 {
		return []string{tool.Knowledge}
	}
	return names
}

// analyticalAxis resolves the intent-driven rules, first match wins.
func (r *Router) analyticalAxis(cr *query.ClassificationResult) []string {
	switch cr.Intent {
	case query.IntentComparison:
		// The knowledge store supplies supporting stats for every comparison.
		return []string{tool.Comparison, tool.Knowledge}
	case query.IntentSentiment:
		return []string{tool.Sentiment}
	case query.IntentVisualization:
		// Visualization has no data source of its own and never runs alone.
		return append([]string{tool.Visualization}, r.dataProducers(cr)...)
	case query.IntentPrediction:
		return []string{tool.Prediction, tool.Knowledge}
	case query.IntentBallLevel:
		return []string{tool.BallDB, tool.Knowledge}
	default:
		return nil
	}
}

// temporalAxis resolves the time-frame rules, first match wins.
func (r *Router) temporalAxis(cr *query.ClassificationResult) []string {
	switch cr.Temporal {
	case query.TemporalLive:
		return r.realtimeTools(cr)
	case query.TemporalHistorical, query.TemporalRecent:
		out := []string{tool.Knowledge}
		if cr.Intent == query.IntentBallLevel {
			out = append(out, tool.BallDB)
		}
		return out
	default:
		return nil
	}
}

// realtimeTools picks the live-data tools matching the intent. A generic
// live intent cannot distinguish scores from commentary, so it includes
// both; a factual live question wants the scorecard only.
func (r *Router) realtimeTools(cr *query.ClassificationResult) []string {
	var out []string
	switch cr.Intent {
	case query.IntentLive, query.IntentHybrid:
		out = append(out, tool.LiveScores, tool.Commentary)
	case query.IntentFactual, query.IntentVisualization, query.IntentPrediction, query.IntentSentiment:
		out = append(out, tool.LiveScores)
	}
	if hasVenue(cr) {
		out = append(out, tool.Weather)
	}
	return out
}

// dataProducers finds the tools that feed the visualization engine.
func (r *Router) dataProducers(cr *query.ClassificationResult) []string {
	if cr.Temporal == query.TemporalLive {
		return []string{tool.LiveScores}
	}
	if cr.Temporal == query.TemporalHistorical || cr.Temporal == query.TemporalRecent {
		return []string{tool.Knowledge}
	}
	return []string{tool.Knowledge}
}

// suppressRealtime enforces the sentiment isolation rule: sentiment never
// pairs with realtime score tools unless the query is complex enough to
// warrant both.
func suppressRealtime(cr *query.ClassificationResult) bool {
	return cr.Intent == query.IntentSentiment && cr.Complexity < 2
}

// registered filters the ordered names down to tools actually present in
// the registry, preserving order.
func (r *Router) registered(names []string) []string {
	var out []string
	for _, name := range names {
		if _, err := r.reg.Resolve(name); err == nil {
			out = append(out, name)
		}
	}
	return out
}

func hasVenue(cr *query.ClassificationResult) bool {
	for _, e := range cr.Entities {
		if e.Kind == query.EntityVenue {
			return true
		}
	}
	return false
}

// orderedSet is a tiny insert-ordered string set.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(names ...string) {
	for _, name := range names {
		if _, ok := s.seen[name]; ok {
			continue
		}
		s.seen[name] = struct{}{}
		s.items = append(s.items, name)
	}
}

func (s *orderedSet) values() []string { return s.items }
