package gate

import (
	"fmt"
	"sync"
)

// Registry is the signature -> Gate mapping shared by a Router's
// streams.
type Registry struct {
	mu    sync.RWMutex
	gates map[string]Gate
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{gates: make(map[string]Gate)}
}

// Register inserts g, failing with a SignatureCollision-shaped error if
// its signature is already taken.
func (r *Registry) Register(g Gate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sig := g.Signature()
	if _, exists := r.gates[sig]; exists {
		return fmt.Errorf("gate: signature collision: %q already registered", sig)
	}
	r.gates[sig] = g
	return nil
}

// Lookup returns the gate claiming typ, if any.
func (r *Registry) Lookup(typ string) (Gate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.gates[typ]
	return g, ok
}

// Len returns the number of registered signatures.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.gates)
}
