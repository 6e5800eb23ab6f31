package fusion

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/howzat/howzat/engine/orchestrator"
	"github.com/howzat/howzat/pkg/logger"
)

// ErrNoData means every routed tool failed and there is nothing to answer
// from. Partial failures never produce this; they degrade instead.
var ErrNoData = errors.New("no tool produced any data")

// Fragment is one deduplicated unit of retrieved knowledge, attributed to
// the tool that produced it.
type Fragment struct {
	Entity     string    `json:"entity,omitempty"`
	Metric     string    `json:"metric,omitempty"`
	Value      any       `json:"value"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	AsOf       time.Time `json:"as_of"`
	Stale      bool      `json:"stale,omitempty"`
}

// FusedContext is the merged view across all tool executions, ready for the
// answer surface. Fragments keep the routing priority order of their source
// tools.
type FusedContext struct {
	Fragments []Fragment        `json:"fragments"`
	ToolsUsed []string          `json:"tools_used"`
	Degraded  bool              `json:"degraded"`
	Failures  map[string]string `json:"failures,omitempty"`
	Stale     bool              `json:"stale,omitempty"`
}

// Fuse merges the executions of one fan-out. Fragments describing the same
// entity and metric are deduplicated, keeping the higher confidence, then the
// fresher value, then the earlier tool in routing order.
func Fuse(ctx context.Context, execs []orchestrator.Execution) (*FusedContext, error) {
	fused := &FusedContext{}
	best := make(map[string]int)
	for i := range execs {
		exec := &execs[i]
		if !exec.OK() {
			if fused.Failures == nil {
				fused.Failures = make(map[string]string)
			}
			fused.Failures[exec.Tool] = string(exec.FailureKind)
			fused.Degraded = true
			continue
		}
		fused.ToolsUsed = append(fused.ToolsUsed, exec.Tool)
		if exec.Stale {
			fused.Stale = true
		}
		for _, frag := range extract(exec) {
			mergeFragment(fused, best, frag)
		}
	}
	if len(fused.ToolsUsed) == 0 {
		logger.FromContext(ctx).Error("all tools failed", "failures", fused.Failures)
		return nil, ErrNoData
	}
	return fused, nil
}

func mergeFragment(fused *FusedContext, best map[string]int, frag Fragment) {
	key := dedupKey(frag)
	idx, seen := best[key]
	if !seen {
		best[key] = len(fused.Fragments)
		fused.Fragments = append(fused.Fragments, frag)
		return
	}
	if wins(frag, fused.Fragments[idx]) {
		fused.Fragments[idx] = frag
	}
}

// wins reports whether challenger should replace incumbent. Incumbents come
// earlier in routing order, so ties keep them.
func wins(challenger, incumbent Fragment) bool {
	if challenger.Confidence != incumbent.Confidence {
		return challenger.Confidence > incumbent.Confidence
	}
	return challenger.AsOf.After(incumbent.AsOf)
}

// dedupKey collides fragments naming the same entity and metric. Opaque
// fragments carry neither, so they are keyed by source tool and never merge
// across tools.
func dedupKey(frag Fragment) string {
	if frag.Entity == "" && frag.Metric == "" {
		return "\x00" + frag.Source
	}
	return strings.ToLower(frag.Entity) + "\x00" + strings.ToLower(frag.Metric)
}

// extract pulls fragments out of a tool payload. Tools that publish a
// "fragments" array get per-fragment attribution; anything else becomes one
// opaque fragment carrying the whole payload.
func extract(exec *orchestrator.Execution) []Fragment {
	raw, ok := exec.Payload["fragments"].([]any)
	if !ok {
		return []Fragment{{
			Value:      exec.Payload,
			Confidence: exec.Confidence,
			Source:     exec.Tool,
			AsOf:       exec.End,
			Stale:      exec.Stale,
		}}
	}
	frags := make([]Fragment, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		frag := Fragment{
			Entity:     stringField(entry, "entity"),
			Metric:     stringField(entry, "metric"),
			Value:      entry["value"],
			Confidence: exec.Confidence,
			Source:     exec.Tool,
			AsOf:       exec.End,
			Stale:      exec.Stale,
		}
		if c, ok := entry["confidence"].(float64); ok {
			frag.Confidence = c
		}
		if asOf := stringField(entry, "as_of"); asOf != "" {
			if ts, err := time.Parse(time.RFC3339, asOf); err == nil {
				frag.AsOf = ts
			}
		}
		frags = append(frags, frag)
	}
	return frags
}

func stringField(entry map[string]any, key string) string {
	s, _ := entry[key].(string)
	return s
}

// SortedFailureKinds lists the distinct failure kinds of a degraded fusion,
// for response metadata and metrics labels.
func (f *FusedContext) SortedFailureKinds() []string {
	if len(f.Failures) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(f.Failures))
	for _, kind := range f.Failures {
		seen[kind] = struct{}{}
	}
	kinds := make([]string, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
