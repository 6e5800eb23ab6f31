package query

// ClassificationResult is the classifier's verdict on a query. It is
// produced once and never mutated afterward; the router and orchestrator
// only read it.
type ClassificationResult struct {
	Intent     Intent   `json:"intent"`
	Entities   []Entity `json:"entities,omitempty"`
	Temporal   Temporal `json:"temporal"`
	Complexity int      `json:"complexity"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Fallback   bool     `json:"fallback,omitempty"`
}

// DefaultResult is the recovery classification used when the NLU provider is
// unavailable. Historical intent is the safest route: the knowledge store can
// answer something for almost any cricket question.
func DefaultResult() *ClassificationResult {
	return &ClassificationResult{
		Intent:     IntentHistorical,
		Temporal:   TemporalUnspecified,
		Complexity: 1,
		Confidence: 0.0,
		Fallback:   true,
	}
}

// Normalize clamps out-of-range values coming from a lenient NLU parse.
func (r *ClassificationResult) Normalize() {
	if r.Complexity < 1 {
		r.Complexity = 1
	}
	if r.Complexity > 3 {
		r.Complexity = 3
	}
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}
	if r.Temporal == "" {
		r.Temporal = TemporalUnspecified
	}
}

// EntitiesOfKind filters the extracted entities by kind.
func (r *ClassificationResult) EntitiesOfKind(kind EntityKind) []Entity {
	var out []Entity
	for _, e := range r.Entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
