package table

import (
	"fmt"
	"strconv"

	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

func newDMLGates() []gate.StateGate {
	return []gate.StateGate{
		insertExecute(),
		updateExecute(),
		deleteExecute(),
	}
}

func insertExecute() gate.StateGate {
	return gate.StateFunc("insert_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().
				Ref(schemaPath(table)).
				Ref(counterPath(table)).
				Pattern(indexesPrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			schema, ok := schemaFromValue(st.Ref(schemaPath(table)))
			if !ok {
				return nil, &gateerr.NotFound{Kind: "table", Name: table}
			}

			counter := counterValue(st.Ref(counterPath(table)))
			newID := counter + 1

			rowVal, _ := e.Data.Get("row")
			rowIn, _ := rowVal.(value.Map)
			row, err := fillRow(schema, rowIn, newID)
			if err != nil {
				return nil, err
			}

			mb := gate.NewMutationBatch()
			mb.Put("row", row)
			rowIdx := mb.PutIndex()
			mb.RefSet(rowPath(table, newID), rowIdx)
			mb.Put("counter", value.String(strconv.FormatInt(newID, 10)))
			mb.RefSet(counterPath(table), mb.PutIndex())

			indexes := st.Pattern(indexesPrefix(table))
			for name, idxVal := range indexes {
				idx, _ := idxVal.(value.Map)
				col := indexColumn(idx)
				colVal, _ := row.Get(col)
				updated, err := insertIndexEntry(idx, newID, colVal)
				if err != nil {
					return nil, err
				}
				mb.Put("index", updated)
				mb.RefSet(name, mb.PutIndex())
			}

			mb.Emit(gate.New("row_inserted", "table", table, "id", newID))
			return mb, nil
		},
	)
}

func counterValue(v value.Value) int64 {
	s, ok := v.(value.String)
	if !ok {
		return 0
	}
	n, _ := strconv.ParseInt(string(s), 10, 64)
	return n
}

// fillRow backfills absent columns with their default (or null), sets
// id, and enforces NOT NULL (§4.K insert_execute, §7 ConstraintError).
func fillRow(schema Schema, in value.Map, id int64) (value.Map, error) {
	row := value.Map{}
	row = row.Set("id", value.Int(id))
	for _, col := range schema.Columns {
		if col.Name == "id" {
			continue
		}
		v, present := in.Get(col.Name)
		if !present || value.IsNull(v) {
			if !value.IsNull(col.Default) {
				v = col.Default
			} else {
				v = value.Null{}
			}
		}
		if col.NotNull && value.IsNull(v) {
			return nil, &gateerr.ConstraintError{Message: fmt.Sprintf("column %q may not be null", col.Name)}
		}
		row = row.Set(col.Name, v)
	}
	return row, nil
}

func updateExecute() gate.StateGate {
	return gate.StateFunc("update_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().
				Ref(schemaPath(table)).
				Pattern(rowsPrefix(table)).
				Pattern(indexesPrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			if value.IsNull(st.Ref(schemaPath(table))) {
				return nil, &gateerr.NotFound{Kind: "table", Name: table}
			}
			whereVal, _ := e.Data.Get("where")
			changesVal, _ := e.Data.Get("changes")
			changes, _ := changesVal.(value.Map)

			rows := st.Pattern(rowsPrefix(table))
			indexes := st.Pattern(indexesPrefix(table))

			mb := gate.NewMutationBatch()
			var ids value.Seq
			for name, rowVal := range rows {
				oldRow, _ := rowVal.(value.Map)
				match, err := eval.EvalCondition(whereVal, oldRow, nil)
				if err != nil {
					return nil, err
				}
				if !match {
					continue
				}
				newRow := oldRow
				for _, entry := range changes {
					v, err := eval.EvalExpr(entry.Val, oldRow, nil)
					if err != nil {
						return nil, err
					}
					newRow = newRow.Set(entry.Key, v)
				}
				id, _ := newRow.Get("id")
				idInt, _ := id.(value.Int)

				mb.Put("row", newRow)
				mb.RefSet(name, mb.PutIndex())

				for idxName, idxVal := range indexes {
					idx, _ := idxVal.(value.Map)
					idx = removeIndexEntry(idx, int64(idInt))
					col := indexColumn(idx)
					colVal, _ := newRow.Get(col)
					idx, err := insertIndexEntry(idx, int64(idInt), colVal)
					if err != nil {
						return nil, err
					}
					mb.Put("index", idx)
					mb.RefSet(idxName, mb.PutIndex())
				}

				ids = append(ids, id)
			}

			mb.Emit(gate.New("row_updated", "table", table, "ids", ids))
			return mb, nil
		},
	)
}

func deleteExecute() gate.StateGate {
	return gate.StateFunc("delete_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().
				Ref(schemaPath(table)).
				Pattern(rowsPrefix(table)).
				Pattern(indexesPrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			if value.IsNull(st.Ref(schemaPath(table))) {
				return nil, &gateerr.NotFound{Kind: "table", Name: table}
			}
			whereVal, _ := e.Data.Get("where")

			rows := st.Pattern(rowsPrefix(table))
			indexes := st.Pattern(indexesPrefix(table))

			mb := gate.NewMutationBatch()
			var ids value.Seq
			for name, rowVal := range rows {
				oldRow, _ := rowVal.(value.Map)
				match, err := eval.EvalCondition(whereVal, oldRow, nil)
				if err != nil {
					return nil, err
				}
				if !match {
					continue
				}
				mb.RefDelete(name)
				id, _ := oldRow.Get("id")
				idInt, _ := id.(value.Int)
				for idxName, idxVal := range indexes {
					idx, _ := idxVal.(value.Map)
					idx = removeIndexEntry(idx, int64(idInt))
					mb.Put("index", idx)
					mb.RefSet(idxName, mb.PutIndex())
				}
				ids = append(ids, id)
			}

			mb.Emit(gate.New("row_deleted", "table", table, "ids", ids))
			return mb, nil
		},
	)
}
