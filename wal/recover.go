package wal

import (
	"github.com/gatedb/gatedb/metrics"
	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/store"
)

// Recover implements spec §4.D.4: if wal/pending.json is present,
// reapply every unapplied put (via store.Put of its content), refSet
// (via refs.Set), and refDelete (via refs.Delete), then remove the
// file. Replay is idempotent — put is content-addressed and refSet/
// refDelete are overwrites — so calling Recover twice in a row is safe
// (P6).
func (w *WAL) Recover(s store.Store, r refs.Refs) error {
	batch, dirty, err := w.Check()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	w.log.Warn().Time("batchTime", batch.Timestamp).Msg("recovering pending WAL batch")

	for _, p := range batch.Puts {
		if p.Applied {
			continue
		}
		if _, err := s.Put(p.Content); err != nil {
			return err
		}
		metrics.WALRecoveredTotal.WithLabelValues("put").Inc()
	}
	for _, rs := range batch.RefSets {
		if rs.Applied {
			continue
		}
		if err := r.Set(rs.Name, rs.Hash); err != nil {
			return err
		}
		metrics.WALRecoveredTotal.WithLabelValues("refSet").Inc()
	}
	for _, rd := range batch.RefDeletes {
		if rd.Applied {
			continue
		}
		if err := r.Delete(rd.Name); err != nil {
			return err
		}
		metrics.WALRecoveredTotal.WithLabelValues("refDelete").Inc()
	}
	w.batch = nil
	return w.Commit()
}
