package orchestrator

import (
	"time"

	"github.com/howzat/howzat/engine/core"
)

// Outcome is the terminal state of one tool execution.
type Outcome string

const (
	// OutcomeSuccess means the tool produced a payload via a live fetch.
	OutcomeSuccess Outcome = "success"
	// OutcomeCacheHit means a fresh cached payload was served without a fetch.
	OutcomeCacheHit Outcome = "cache_hit"
	// OutcomeFailure means the tool failed in a way a retry cannot fix.
	OutcomeFailure Outcome = "failure"
	// OutcomeTimeout means the tool exceeded its budget or its upstream kept
	// failing transiently until the budget ran out.
	OutcomeTimeout Outcome = "timeout"
)

// FailureKind subdivides failed executions for the degradation report.
type FailureKind string

const (
	FailureTimeout    FailureKind = "timeout"
	FailureUpstream   FailureKind = "upstream"
	FailureValidation FailureKind = "validation"
	FailureNotFound   FailureKind = "not_found"
	FailureInternal   FailureKind = "internal"
)

// Execution is the record of one tool run inside a fan-out. Exactly one is
// produced per routed tool, in router priority order.
type Execution struct {
	Tool        string
	Outcome     Outcome
	FailureKind FailureKind
	Payload     core.Payload
	// Confidence is the tool's declared default, used by fusion for
	// fragments that carry none of their own.
	Confidence float64
	// Stale marks a payload served past its freshness window after a
	// failed refresh.
	Stale bool
	// CacheBypassed marks a payload fetched directly because the cache
	// backend was unavailable.
	CacheBypassed bool
	// Attempts counts live fetch attempts. Zero when the payload came from
	// the cache or from a coalesced in-flight fetch.
	Attempts int
	Start    time.Time
	End      time.Time
	Err      error
}

// OK reports whether the execution produced a usable payload.
func (e *Execution) OK() bool {
	return e.Outcome == OutcomeSuccess || e.Outcome == OutcomeCacheHit
}

// Duration is the wall-clock time the execution took, cache time included.
func (e *Execution) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
