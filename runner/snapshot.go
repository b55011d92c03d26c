package runner

import (
	"errors"

	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/value"
)

// Snapshot is a point-in-time deep copy of base store objects and ref
// bindings (spec §4.F.4), usable with Restore to undo everything since
// it was taken. Only defined over the in-memory backends — file-backed
// snapshotting is left to the operator (filesystem copy of the data
// directory), as the spec notes for §4.F.4.
type Snapshot struct {
	objects map[string]value.Value
	refs    map[string]string
}

// Snapshot captures the current base store/refs. Returns an error if
// either backend isn't the in-memory implementation.
func (r *Runner) Snapshot() (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ms, ok := r.baseStore.(*store.Mem)
	if !ok {
		return nil, errors.New("runner: Snapshot requires an in-memory store backend")
	}
	mr, ok := r.baseRefs.(*refs.Mem)
	if !ok {
		return nil, errors.New("runner: Snapshot requires an in-memory refs backend")
	}
	return &Snapshot{objects: ms.Snapshot(), refs: mr.Snapshot()}, nil
}

// Restore replaces the base store/refs contents with a prior Snapshot.
// It refuses to run while a transaction is active — roll that back
// first.
func (r *Runner) Restore(s *Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.txActive {
		return errors.New("runner: Restore called with a transaction active")
	}
	ms, ok := r.baseStore.(*store.Mem)
	if !ok {
		return errors.New("runner: Restore requires an in-memory store backend")
	}
	mr, ok := r.baseRefs.(*refs.Mem)
	if !ok {
		return errors.New("runner: Restore requires an in-memory refs backend")
	}
	ms.Restore(s.objects)
	mr.Restore(s.refs)
	return nil
}
