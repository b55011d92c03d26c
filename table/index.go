package table

import (
	"sort"
	"strconv"

	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

type indexEntry struct {
	Value value.Value
	RowID int64
}

func (e indexEntry) toValue() value.Value {
	return value.MapOf("value", e.Value, "rowId", e.RowID)
}

func entryFromValue(v value.Value) indexEntry {
	m, _ := v.(value.Map)
	val, _ := m.Get("value")
	rid, _ := m.Get("rowId")
	id, _ := rid.(value.Int)
	return indexEntry{Value: val, RowID: int64(id)}
}

func indexEntries(idx value.Map) []indexEntry {
	seqVal, _ := idx.Get("entries")
	seq, _ := seqVal.(value.Seq)
	out := make([]indexEntry, len(seq))
	for i, e := range seq {
		out[i] = entryFromValue(e)
	}
	return out
}

func entriesToValue(entries []indexEntry) value.Seq {
	out := make(value.Seq, len(entries))
	for i, e := range entries {
		out[i] = e.toValue()
	}
	return out
}

func sortEntries(entries []indexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		c := eval.Compare(entries[i].Value, entries[j].Value)
		if c != 0 {
			return c < 0
		}
		return entries[i].RowID < entries[j].RowID
	})
}

func indexColumn(idx value.Map) string {
	v, _ := idx.Get("column")
	s, _ := v.(value.String)
	return string(s)
}

func indexUnique(idx value.Map) bool {
	v, _ := idx.Get("unique")
	b, _ := v.(value.Bool)
	return bool(b)
}

// insertIndexEntry appends an entry for a newly inserted/updated row,
// re-sorting by (value, rowId) per §4.J, and enforcing uniqueness when
// the index is UNIQUE.
func insertIndexEntry(idx value.Map, rowID int64, colValue value.Value) (value.Map, error) {
	entries := indexEntries(idx)
	if indexUnique(idx) {
		for _, e := range entries {
			if e.RowID != rowID && value.Equal(e.Value, colValue) {
				return idx, &gateerr.ConstraintError{Message: "unique constraint violated for column " + indexColumn(idx)}
			}
		}
	}
	entries = append(entries, indexEntry{Value: colValue, RowID: rowID})
	sortEntries(entries)
	return idx.Set("entries", entriesToValue(entries)), nil
}

// removeIndexEntry drops every entry for rowID (a row has at most one
// entry per index).
func removeIndexEntry(idx value.Map, rowID int64) value.Map {
	entries := indexEntries(idx)
	out := entries[:0]
	for _, e := range entries {
		if e.RowID != rowID {
			out = append(out, e)
		}
	}
	return idx.Set("entries", entriesToValue(out))
}

func newIndexGates() []gate.StateGate {
	return []gate.StateGate{
		indexCreateExecute(),
		indexScan(),
		indexDropExecute(),
	}
}

func indexCreateExecute() gate.StateGate {
	return gate.StateFunc("index_create_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().Pattern(rowsPrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			index := eventString(e, "index")
			column := eventString(e, "column")
			unique := eventBool(e, "unique")

			rows := st.Pattern(rowsPrefix(table))
			var entries []indexEntry
			for name, row := range rows {
				rowMap, _ := row.(value.Map)
				id := rowIDFromPath(name)
				colVal, _ := rowMap.Get(column)
				entries = append(entries, indexEntry{Value: colVal, RowID: id})
			}
			sortEntries(entries)

			idx := value.MapOf("column", column, "unique", unique, "entries", entriesToValue(entries))
			mb := gate.NewMutationBatch().Put("index", idx)
			mb.RefSet(indexPath(table, index), mb.PutIndex())
			mb.Emit(gate.New("index_created", "table", table, "index", index))
			return mb, nil
		},
	)
}

func indexScan() gate.StateGate {
	return gate.StateFunc("index_scan",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			index := eventString(e, "index")
			return gate.NewReadSet().Ref(schemaPath(table)).Ref(indexPath(table, index))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			index := eventString(e, "index")
			idxVal := st.Ref(indexPath(table, index))
			if value.IsNull(idxVal) {
				return nil, &gateerr.NotFound{Kind: "index", Name: index}
			}
			idx, _ := idxVal.(value.Map)
			entries := indexEntries(idx)

			op := eventString(e, "op")
			target, _ := e.Data.Get("value")
			target2, _ := e.Data.Get("value2")

			var matched []indexEntry
			for _, en := range entries {
				if indexOpMatches(op, en.Value, target, target2) {
					matched = append(matched, en)
				}
			}

			mb := gate.NewMutationBatch()
			mb.Emit(gate.New("scan_result", "table", table, "index", index, "rowIds", rowIDsToSeq(matched)))
			return mb, nil
		},
	)
}

func indexOpMatches(op string, v, target, target2 value.Value) bool {
	switch op {
	case "eq":
		return value.Equal(v, target)
	case "gte":
		return eval.Compare(v, target) >= 0
	case "gt":
		return eval.Compare(v, target) > 0
	case "lte":
		return eval.Compare(v, target) <= 0
	case "lt":
		return eval.Compare(v, target) < 0
	case "between":
		return eval.Compare(v, target) >= 0 && eval.Compare(v, target2) <= 0
	}
	return false
}

func rowIDsToSeq(entries []indexEntry) value.Seq {
	out := make(value.Seq, len(entries))
	for i, e := range entries {
		out[i] = value.Int(e.RowID)
	}
	return out
}

func indexDropExecute() gate.StateGate {
	return gate.StateFunc("index_drop_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			index := eventString(e, "index")
			return gate.NewReadSet().Ref(indexPath(table, index))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			index := eventString(e, "index")
			ifExists := eventBool(e, "ifExists")
			if value.IsNull(st.Ref(indexPath(table, index))) {
				if ifExists {
					mb := gate.NewMutationBatch()
					mb.Emit(gate.New("index_dropped", "table", table, "index", index))
					return mb, nil
				}
				return nil, &gateerr.NotFound{Kind: "index", Name: index}
			}
			mb := gate.NewMutationBatch().RefDelete(indexPath(table, index))
			mb.Emit(gate.New("index_dropped", "table", table, "index", index))
			return mb, nil
		},
	)
}

func rowIDFromPath(name string) int64 {
	i := len(name) - 1
	for i >= 0 && name[i] != '/' {
		i--
	}
	id, _ := strconv.ParseInt(name[i+1:], 10, 64)
	return id
}
