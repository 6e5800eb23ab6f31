package query

import (
	"errors"
	"strings"
)

var ErrEmptyQuery = errors.New("query: text cannot be empty")

// Query is the immutable per-request input. Session context carries prior
// turns and locale hints supplied by the caller.
type Query struct {
	Text      string
	SessionID string
	Context   map[string]string
}

// New normalizes the raw text and builds a Query. The context map is copied
// so later caller mutation cannot leak into the pipeline.
func New(text, sessionID string, sessionCtx map[string]string) (*Query, error) {
	normalized := strings.Join(strings.Fields(text), " ")
	if normalized == "" {
		return nil, ErrEmptyQuery
	}
	var ctx map[string]string
	if len(sessionCtx) > 0 {
		ctx = make(map[string]string, len(sessionCtx))
		for k, v := range sessionCtx {
			ctx[k] = v
		}
	}
	return &Query{Text: normalized, SessionID: sessionID, Context: ctx}, nil
}

// MemoKey identifies a query for classification memoization. Two requests
// with the same text and session must classify identically inside the memo
// window.
func (q *Query) MemoKey() string {
	return q.SessionID + "\x00" + q.Text
}
