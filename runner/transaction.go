package runner

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/wal"
)

// beginTransaction implements the NONE -> ACTIVE transition of §4.H:
// swap the active store/refs for a fresh staging overlay over base.
// Reads from here on see staged writes; the base is untouched until
// commit.
func (r *Runner) beginTransaction() ([]gate.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.txActive {
		return nil, &gateerr.TransactionError{Message: "transaction already active"}
	}

	r.stagingStore = store.NewMem()
	r.stagingRefs = newOverlayRefs(r.baseRefs)
	r.store = &overlayStore{base: r.baseStore, staging: r.stagingStore}
	r.refs = r.stagingRefs
	r.txActive = true

	return []gate.Event{gate.New("transaction_begun")}, nil
}

// commitTransaction replays the staging overlay's journal — every
// object put and every ref set/delete performed since begin — against
// base in a single WAL batch, then drops the overlay.
func (r *Runner) commitTransaction() ([]gate.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.txActive {
		return nil, &gateerr.TransactionError{Message: "no transaction active"}
	}

	objects := r.stagingStore.Snapshot()
	var puts []wal.PutOp
	for hash, v := range objects {
		puts = append(puts, wal.PutOp{Hash: hash, Content: v})
	}

	stagedRefs := r.stagingRefs.staging.Snapshot()
	var refSets []wal.RefSetOp
	for name, hash := range stagedRefs {
		refSets = append(refSets, wal.RefSetOp{Name: name, Hash: hash})
	}

	var refDeletes []wal.RefDeleteOp
	for name := range r.stagingRefs.deleted {
		refDeletes = append(refDeletes, wal.RefDeleteOp{Name: name})
	}

	batch, err := r.wal.Begin(puts, refSets, refDeletes)
	if err != nil {
		return nil, err
	}
	for i, p := range batch.Puts {
		if _, err := r.baseStore.Put(p.Content); err != nil {
			return nil, err
		}
		if err := r.wal.MarkPutApplied(i); err != nil {
			return nil, err
		}
	}
	for i, rs := range batch.RefSets {
		if err := r.baseRefs.Set(rs.Name, rs.Hash); err != nil {
			return nil, err
		}
		if err := r.wal.MarkRefSetApplied(i); err != nil {
			return nil, err
		}
	}
	for i, rd := range batch.RefDeletes {
		if err := r.baseRefs.Delete(rd.Name); err != nil {
			return nil, err
		}
		if err := r.wal.MarkRefDeleteApplied(i); err != nil {
			return nil, err
		}
	}
	if err := r.wal.Commit(); err != nil {
		return nil, err
	}

	r.clearTransaction()
	return []gate.Event{gate.New("transaction_committed")}, nil
}

// rollbackTransaction discards the staging overlay without touching
// base.
func (r *Runner) rollbackTransaction() ([]gate.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.txActive {
		return nil, &gateerr.TransactionError{Message: "no transaction active"}
	}

	r.clearTransaction()
	return []gate.Event{gate.New("transaction_rolled_back")}, nil
}

func (r *Runner) clearTransaction() {
	r.store = r.baseStore
	r.refs = r.baseRefs
	r.stagingStore = nil
	r.stagingRefs = nil
	r.txActive = false
}
