package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// ID
// -----------------------------------------------------------------------------

type ID string

func NewID() ID {
	return ID(uuid.NewString())
}

func ParseID(s string) (ID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID(parsed.String()), nil
}

func (i ID) String() string {
	return string(i)
}

// -----------------------------------------------------------------------------
// Payload
// -----------------------------------------------------------------------------

// Payload is the opaque value a tool returns from a fetch. It is treated as
// read-only once produced.
type Payload map[string]any

func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func (p Payload) JSON() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}
	return string(b), nil
}

func PayloadFromJSON(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("unmarshaling payload: %w", err)
	}
	return p, nil
}

// GetString returns the string value stored under key, or "" when absent or
// not a string.
func (p Payload) GetString(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// GetFloat returns the numeric value stored under key, handling the float64
// representation produced by encoding/json.
func (p Payload) GetFloat(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
