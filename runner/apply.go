package runner

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/value"
	"github.com/gatedb/gatedb/wal"
)

// applyMutationBatch implements spec §4.F.3. Outside a transaction it
// logs to the WAL and commits against the base store/refs; inside one
// it writes straight to the staging overlay, which doubles as the
// commit journal a later transaction_commit replays (Design Notes,
// "Transaction staging").
func (r *Runner) applyMutationBatch(mb *gate.MutationBatch) error {
	hashes := make([]string, len(mb.Puts))
	for i, p := range mb.Puts {
		hashes[i] = value.Hash(p.Content)
	}
	resolve := func(rs gate.RefSet) string {
		if rs.ByHash {
			return rs.Hash
		}
		return hashes[rs.PutIndex]
	}

	if r.txActive {
		for _, p := range mb.Puts {
			if _, err := r.store.Put(p.Content); err != nil {
				return err
			}
		}
		for _, rs := range mb.RefSets {
			if err := r.refs.Set(rs.Name, resolve(rs)); err != nil {
				return err
			}
		}
		for _, rd := range mb.RefDeletes {
			if err := r.refs.Delete(rd.Name); err != nil {
				return err
			}
		}
		return nil
	}

	return r.applyDurable(mb.Puts, mb.RefSets, mb.RefDeletes, hashes, resolve)
}

// applyDurable writes puts/refSets/refDeletes through the WAL against
// the base store/refs, marking each op applied as it completes (spec
// §4.D.1–4.D.3).
func (r *Runner) applyDurable(puts []gate.Put, refSets []gate.RefSet, refDeletes []gate.RefDelete, hashes []string, resolve func(gate.RefSet) string) error {
	walPuts := make([]wal.PutOp, len(puts))
	for i, p := range puts {
		walPuts[i] = wal.PutOp{Hash: hashes[i], Content: p.Content}
	}
	walRefSets := make([]wal.RefSetOp, len(refSets))
	for i, rs := range refSets {
		walRefSets[i] = wal.RefSetOp{Name: rs.Name, Hash: resolve(rs)}
	}
	walRefDeletes := make([]wal.RefDeleteOp, len(refDeletes))
	for i, rd := range refDeletes {
		walRefDeletes[i] = wal.RefDeleteOp{Name: rd.Name}
	}

	batch, err := r.wal.Begin(walPuts, walRefSets, walRefDeletes)
	if err != nil {
		return err
	}
	for i, p := range batch.Puts {
		if _, err := r.baseStore.Put(p.Content); err != nil {
			return err
		}
		if err := r.wal.MarkPutApplied(i); err != nil {
			return err
		}
	}
	for i, rs := range batch.RefSets {
		if err := r.baseRefs.Set(rs.Name, rs.Hash); err != nil {
			return err
		}
		if err := r.wal.MarkRefSetApplied(i); err != nil {
			return err
		}
	}
	for i, rd := range batch.RefDeletes {
		if err := r.baseRefs.Delete(rd.Name); err != nil {
			return err
		}
		if err := r.wal.MarkRefDeleteApplied(i); err != nil {
			return err
		}
	}
	return r.wal.Commit()
}
