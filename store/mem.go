package store

import (
	"sync"

	"github.com/gatedb/gatedb/value"
)

// Mem is an in-memory Store backed by a plain map. It never drops
// objects: the store only ever grows, matching the spec's "objects
// never delete" lifecycle rule.
type Mem struct {
	mu      sync.RWMutex
	objects map[string]value.Value
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{objects: make(map[string]value.Value)}
}

func (s *Mem) Put(v value.Value) (string, error) {
	h := value.Hash(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[h]; !ok {
		s.objects[h] = deepCopy(v)
	}
	return h, nil
}

func (s *Mem) Get(hash string) (value.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.objects[hash]
	if !ok {
		return nil, notFound(hash)
	}
	return deepCopy(v), nil
}

func (s *Mem) Has(hash string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[hash]
	return ok, nil
}

// Snapshot returns a deep copy of every object, used by Runner.Snapshot.
func (s *Mem) Snapshot() map[string]value.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]value.Value, len(s.objects))
	for h, v := range s.objects {
		out[h] = deepCopy(v)
	}
	return out
}

// Restore replaces the store's contents with objects, used by
// Runner.Restore.
func (s *Mem) Restore(objects map[string]value.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = make(map[string]value.Value, len(objects))
	for h, v := range objects {
		s.objects[h] = deepCopy(v)
	}
}

func deepCopy(v value.Value) value.Value {
	switch t := v.(type) {
	case value.Seq:
		out := make(value.Seq, len(t))
		for i, e := range t {
			out[i] = deepCopy(e)
		}
		return out
	case value.Map:
		out := make(value.Map, len(t))
		for i, e := range t {
			out[i] = value.Entry{Key: e.Key, Val: deepCopy(e.Val)}
		}
		return out
	default:
		return v
	}
}
