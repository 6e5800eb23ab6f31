package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/howzat/howzat/engine/infra/cache"
	"github.com/howzat/howzat/engine/query"
	"github.com/howzat/howzat/engine/tool"
	"github.com/howzat/howzat/pkg/logger"
)

// ErrNotFound is returned by Resolve for unregistered tool names.
type ErrNotFound struct {
	Name string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("registry: tool %q not found", e.Name)
}

// Descriptor is the read-only capability metadata exposed per tool.
type Descriptor struct {
	Name         string         `json:"name"`
	TTLClass     cache.TTLClass `json:"ttl_class"`
	Capabilities []string       `json:"capabilities"`
	Sources      []string       `json:"sources"`
}

// Registry is the process-wide tool catalog. Registration happens at startup
// and is idempotent by name; query handling only reads.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]tool.Tool
	// order preserves first-registration order, which doubles as the
	// tie-break priority for Match.
	order []string
}

func New() *Registry {
	return &Registry{tools: make(map[string]tool.Tool)}
}

// Register adds a tool to the catalog. Re-registering a name overwrites the
// previous tool but keeps its original priority position.
func (r *Registry) Register(ctx context.Context, t tool.Tool) error {
	if t == nil {
		return fmt.Errorf("registry: tool cannot be nil")
	}
	name := canonicalize(t.Name())
	if name == "" {
		return fmt.Errorf("registry: tool name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = t
	logger.FromContext(ctx).Debug("registered tool", "name", name, "ttl_class", string(t.TTLClass()))
	return nil
}

// Resolve returns the tool registered under name.
func (r *Registry) Resolve(name string) (tool.Tool, error) {
	canonical := canonicalize(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[canonical]
	if !ok {
		return nil, &ErrNotFound{Name: canonical}
	}
	return t, nil
}

// Match evaluates every registered trigger predicate against the
// classification and returns the names that fired, in registration order.
func (r *Registry) Match(cr *query.ClassificationResult) []string {
	if cr == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, name := range r.order {
		if r.tools[name].Trigger(cr) {
			out = append(out, name)
		}
	}
	return out
}

// Names returns all registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Descriptors returns the capability metadata of every registered tool.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, Descriptor{
			Name:         name,
			TTLClass:     t.TTLClass(),
			Capabilities: t.Capabilities(),
			Sources:      t.Sources(),
		})
	}
	return out
}

func canonicalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
