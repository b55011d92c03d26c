package planner

import (
	"strings"

	"github.com/gatedb/gatedb/gate"
)

// applyLocal folds mb's writes into st in place, the same bookkeeping
// Runner.applyMutationBatch does against the content store and ref map
// (package runner), but purely in memory. A statement gate that must
// call another package's StateGate.Transform more than once in a row —
// inserting N rows from a CTAS/INSERT...SELECT, say — needs each call
// after the first to see the counter and index state the previous call
// produced, since Reads/Transform only ever see the single snapshot
// Runner.RunStateGate resolved for the whole statement.
func applyLocal(st *gate.State, mb *gate.MutationBatch) {
	if mb == nil {
		return
	}
	for _, rs := range mb.RefSets {
		if rs.ByHash {
			continue
		}
		content := mb.Puts[rs.PutIndex].Content
		st.Refs[rs.Name] = content
		for prefix, bucket := range st.Patterns {
			if strings.HasPrefix(rs.Name, prefix) {
				bucket[rs.Name] = content
			}
		}
	}
	for _, rd := range mb.RefDeletes {
		delete(st.Refs, rd.Name)
		for _, bucket := range st.Patterns {
			delete(bucket, rd.Name)
		}
	}
}

// mergeBatch appends src's writes and emits onto dst, re-indexing src's
// RefSets by the offset src's Puts land at in dst's combined Puts slice
// (RefSet.PutIndex addresses a position within the same batch). Used to
// fold several single-row table-gate dispatches (one per VALUES row, or
// one per CTAS/INSERT...SELECT source row) into one MutationBatch the
// statement gate can return as its own.
func mergeBatch(dst, src *gate.MutationBatch) {
	offset := len(dst.Puts)
	dst.Puts = append(dst.Puts, src.Puts...)
	for _, rs := range src.RefSets {
		if rs.ByHash {
			dst.RefSets = append(dst.RefSets, rs)
			continue
		}
		rs.PutIndex += offset
		dst.RefSets = append(dst.RefSets, rs)
	}
	dst.RefDeletes = append(dst.RefDeletes, src.RefDeletes...)
	dst.Emits = append(dst.Emits, src.Emits...)
}
