package cache

import (
	"fmt"
	"time"
)

// TTLClass is a named freshness tier. The class set is fixed; the duration
// behind each class is configurable per deployment.
type TTLClass string

const (
	TTLRealtime TTLClass = "realtime"
	TTLShort    TTLClass = "short"
	TTLMedium   TTLClass = "medium"
	TTLLong     TTLClass = "long"
)

// Durations maps each TTL class to its freshness window.
type Durations struct {
	Realtime time.Duration `koanf:"realtime"`
	Short    time.Duration `koanf:"short"`
	Medium   time.Duration `koanf:"medium"`
	Long     time.Duration `koanf:"long"`
}

func DefaultDurations() Durations {
	return Durations{
		Realtime: 30 * time.Second,
		Short:    10 * time.Minute,
		Medium:   time.Hour,
		Long:     24 * time.Hour,
	}
}

// For returns the freshness window for a class. Unknown classes get the
// realtime window so they can never serve stale data by accident.
func (d Durations) For(class TTLClass) time.Duration {
	switch class {
	case TTLRealtime:
		return d.Realtime
	case TTLShort:
		return d.Short
	case TTLMedium:
		return d.Medium
	case TTLLong:
		return d.Long
	default:
		return d.Realtime
	}
}

func ParseTTLClass(s string) (TTLClass, error) {
	switch TTLClass(s) {
	case TTLRealtime, TTLShort, TTLMedium, TTLLong:
		return TTLClass(s), nil
	default:
		return "", fmt.Errorf("unknown ttl class %q", s)
	}
}
