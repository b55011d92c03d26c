package planner

import (
	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/pipeline"
	"github.com/gatedb/gatedb/table"
	"github.com/gatedb/gatedb/value"
)

// dmlPlanReads declares every ref/pattern the dml_plan gate's Transform
// might touch: the target table's full footprint (schema, counter,
// rows, indexes) so repeated direct calls into the table package's own
// gates resolve against the same snapshot, plus whatever a carried
// SELECT plan (INSERT...SELECT, CTAS) itself reads.
func dmlPlanReads(e gate.Event) *gate.ReadSet {
	rs := gate.NewReadSet()
	tbl, _ := e.Data.Get("table")
	if s, ok := tbl.(value.String); ok {
		t := string(s)
		rs.Ref(table.SchemaPath(t)).
			Ref(table.CounterPath(t)).
			Pattern(table.RowsPrefix(t)).
			Pattern(table.IndexesPrefix(t))
	}
	if p, ok := e.Data.Get("selectPlan"); ok {
		nested := planReadSet(p)
		rs.RefNames = append(rs.RefNames, nested.RefNames...)
		rs.Patterns = append(rs.Patterns, nested.Patterns...)
	}
	return rs
}

// callGate resolves signature from reg, asserting it's a StateGate, and
// invokes Transform(e, st) directly — bypassing Stream.Emit/
// Runner.RunStateGate entirely. Safe here because dml_plan's own
// Transform already holds the single lock RunStateGate took for the
// whole statement; nothing re-enters it.
func callGate(reg *gate.Registry, signature string, e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
	g, ok := reg.Lookup(signature)
	if !ok {
		return nil, &gateerr.NotFound{Kind: "gate", Name: signature}
	}
	sg, ok := g.(gate.StateGate)
	if !ok {
		return nil, &gateerr.GateFailure{Source: signature, Cause: "not a state gate"}
	}
	return sg.Transform(e, st)
}

func dmlPlanTransform(reg *gate.Registry) func(gate.Event, *gate.State) (*gate.MutationBatch, error) {
	return func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
		kindVal, _ := e.Data.Get("kind")
		switch string(asStr(kindVal)) {
		case "insert":
			return runInsertPlan(reg, e, st)
		case "update":
			return runUpdateReturning(reg, e, st)
		case "delete":
			return runDeleteReturning(reg, e, st)
		case "ctas":
			return runCTAS(reg, e, st)
		}
		return nil, &gateerr.ParseError{Message: "dml_plan event carries unknown kind"}
	}
}

func dataSeq(e gate.Event, key string) value.Seq {
	v, ok := e.Data.Get(key)
	if !ok {
		return nil
	}
	seq, _ := v.(value.Seq)
	return seq
}

// runInsertPlan drives every INSERT form the simple single-row fast
// path in build.go doesn't cover: multiple VALUES rows, INSERT...
// SELECT, DEFAULT VALUES, ON CONFLICT, and RETURNING. Each source row
// is inserted via one direct insert_execute call, folding the
// in-memory counter/index state forward between rows with applyLocal
// so row 2 sees row 1's counter advance.
func runInsertPlan(reg *gate.Registry, e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
	tbl := string(asStr(mustGet(e.Data, "table")))
	columns := stringsOf(mustGet(e.Data, "columns"))
	conflictCol := string(asStr(mustGet(e.Data, "conflictCol")))
	conflictDoNothing, _ := mustGet(e.Data, "conflictDoNothing").(value.Bool)
	conflictSetVal, _ := e.Data.Get("conflictSet")
	conflictSet, _ := conflictSetVal.(value.Map)
	returning := dataSeq(e, "returning")
	defaultValues, _ := mustGet(e.Data, "defaultValues").(value.Bool)

	var sourceRows []value.Map
	if p, ok := e.Data.Get("selectPlan"); ok {
		ctx := newExecCtx(st)
		rows, err := executePlan(p, ctx)
		if err != nil {
			return nil, err
		}
		sourceRows = rows
		if len(columns) == 0 && len(rows) > 0 {
			columns = rows[0].Keys()
		}
	} else if defaultValues {
		sourceRows = []value.Map{{}}
	} else {
		for _, r := range dataSeq(e, "rows") {
			exprs, _ := r.(value.Seq)
			m, err := evalInsertRow(columns, exprs)
			if err != nil {
				return nil, err
			}
			sourceRows = append(sourceRows, m)
		}
	}

	combined := gate.NewMutationBatch()
	var returnedRows []value.Map

	for _, srcRow := range sourceRows {
		row := projectColumns(columns, srcRow)

		if conflictCol != "" {
			existing := findConflict(st, tbl, conflictCol, row)
			if existing != nil {
				if conflictDoNothing || len(conflictSet) == 0 {
					continue
				}
				id, _ := existing.Get("id")
				whereCond := value.MapOf("op", "=", "column", "id", "value", value.MapOf("literal", id))
				upd := gate.New("update_execute", "table", tbl, "where", whereCond, "changes", conflictSet)
				mb, err := callGate(reg, "update_execute", upd, st)
				if err != nil {
					return nil, err
				}
				applyLocal(st, mb)
				mergeBatch(combined, mb)
				if len(returning) > 0 {
					newRow := applyAssigns(*existing, conflictSet)
					returnedRows = append(returnedRows, newRow)
				}
				continue
			}
		}

		ins := gate.New("insert_execute", "table", tbl, "row", row)
		mb, err := callGate(reg, "insert_execute", ins, st)
		if err != nil {
			return nil, err
		}
		if len(returning) > 0 && len(mb.Puts) > 0 {
			if full, ok := mb.Puts[0].Content.(value.Map); ok {
				returnedRows = append(returnedRows, full)
			}
		}
		applyLocal(st, mb)
		mergeBatch(combined, mb)
	}

	if len(returning) > 0 {
		ctx := newExecCtx(st)
		projected, err := pipelineProject(returnedRows, returning, ctx)
		if err != nil {
			return nil, err
		}
		combined.Emit(gate.New("query_result", "rows", value.Seq(mapsToSeq(projected))))
	}
	return combined, nil
}

// findConflict scans the table's current rows (folded with any inserts
// already applied earlier in this same statement) for one whose
// conflictCol value equals row's.
func findConflict(st *gate.State, tbl, conflictCol string, row value.Map) *value.Map {
	rows := st.Pattern(table.RowsPrefix(tbl))
	want, _ := row.Get(conflictCol)
	for _, v := range rows {
		rm, ok := v.(value.Map)
		if !ok {
			continue
		}
		have, _ := rm.Get(conflictCol)
		if value.Equal(have, want) {
			cp := rm
			return &cp
		}
	}
	return nil
}

func applyAssigns(row value.Map, changes value.Map) value.Map {
	out := row
	for _, entry := range changes {
		v, err := eval.EvalExpr(entry.Val, row, nil)
		if err != nil {
			continue
		}
		out = out.Set(entry.Key, v)
	}
	return out
}

func projectColumns(columns []string, row value.Map) value.Map {
	if len(columns) == 0 {
		return row
	}
	m := value.Map{}
	for _, c := range columns {
		if v, ok := row.Get(c); ok {
			m = m.Set(c, v)
		}
	}
	return m
}

func mapsToSeq(rows []value.Map) []value.Value {
	out := make([]value.Value, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

// runUpdateReturning replicates update_execute's own WHERE-match/SET-
// apply pass purely to compute the RETURNING projection (update_execute
// itself only emits the matched ids, and its Puts slice interleaves row
// and index writes at a stride that depends on how many indexes the
// table has — not a stable contract to introspect from outside), then
// separately calls update_execute for the real mutation.
func runUpdateReturning(reg *gate.Registry, e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
	tbl := string(asStr(mustGet(e.Data, "table")))
	whereVal, _ := e.Data.Get("where")
	changesVal, _ := e.Data.Get("changes")
	changes, _ := changesVal.(value.Map)
	returning := dataSeq(e, "returning")

	rows := st.Pattern(table.RowsPrefix(tbl))
	var newRows []value.Map
	for _, v := range rows {
		oldRow, ok := v.(value.Map)
		if !ok {
			continue
		}
		match, err := eval.EvalCondition(whereVal, oldRow, nil)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		newRows = append(newRows, applyAssigns(oldRow, changes))
	}
	sortByID(newRows)

	upd := gate.New("update_execute", "table", tbl, "where", whereVal, "changes", changes)
	mb, err := callGate(reg, "update_execute", upd, st)
	if err != nil {
		return nil, err
	}

	if len(returning) > 0 {
		ctx := newExecCtx(st)
		projected, err := pipelineProject(newRows, returning, ctx)
		if err != nil {
			return nil, err
		}
		mb.Emit(gate.New("query_result", "rows", value.Seq(mapsToSeq(projected))))
	}
	return mb, nil
}

// runDeleteReturning mirrors runUpdateReturning's approach: capture the
// pre-deletion matching rows for the RETURNING projection, then call
// delete_execute (whose own Puts carry index writes only, never row
// content) for the actual removal.
func runDeleteReturning(reg *gate.Registry, e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
	tbl := string(asStr(mustGet(e.Data, "table")))
	whereVal, _ := e.Data.Get("where")
	returning := dataSeq(e, "returning")

	rows := st.Pattern(table.RowsPrefix(tbl))
	var matched []value.Map
	for _, v := range rows {
		oldRow, ok := v.(value.Map)
		if !ok {
			continue
		}
		match, err := eval.EvalCondition(whereVal, oldRow, nil)
		if err != nil {
			return nil, err
		}
		if match {
			matched = append(matched, oldRow)
		}
	}
	sortByID(matched)

	del := gate.New("delete_execute", "table", tbl, "where", whereVal)
	mb, err := callGate(reg, "delete_execute", del, st)
	if err != nil {
		return nil, err
	}

	if len(returning) > 0 {
		ctx := newExecCtx(st)
		projected, err := pipelineProject(matched, returning, ctx)
		if err != nil {
			return nil, err
		}
		mb.Emit(gate.New("query_result", "rows", value.Seq(mapsToSeq(projected))))
	}
	return mb, nil
}

// runCTAS executes the source SELECT, derives a column list (and a
// crude type) from its first result row, creates the table, then
// inserts every row one at a time — the same applyLocal/mergeBatch
// chaining runInsertPlan uses for a multi-row VALUES list.
func runCTAS(reg *gate.Registry, e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
	tbl := string(asStr(mustGet(e.Data, "table")))
	ifNotExists, _ := mustGet(e.Data, "ifNotExists").(value.Bool)
	planVal := mustGet(e.Data, "selectPlan")

	ctx := newExecCtx(st)
	rows, err := executePlan(planVal, ctx)
	if err != nil {
		return nil, err
	}

	var cols value.Seq
	if len(rows) > 0 {
		for _, name := range rows[0].Keys() {
			if name == "id" {
				continue
			}
			v, _ := rows[0].Get(name)
			cols = append(cols, value.MapOf("name", name, "type", inferColumnType(v), "notNull", false))
		}
	}

	create := gate.New("create_table_execute", "table", tbl, "ifNotExists", ifNotExists, "columns", cols)
	combined, err := callGate(reg, "create_table_execute", create, st)
	if err != nil {
		return nil, err
	}
	applyLocal(st, combined)

	for _, row := range rows {
		ins := gate.New("insert_execute", "table", tbl, "row", row)
		mb, err := callGate(reg, "insert_execute", ins, st)
		if err != nil {
			return nil, err
		}
		applyLocal(st, mb)
		mergeBatch(combined, mb)
	}

	combined.Emit(gate.New("table_created", "table", tbl))
	return combined, nil
}

func inferColumnType(v value.Value) string {
	switch v.(type) {
	case value.Int:
		return "integer"
	case value.Real:
		return "real"
	case value.Bool:
		return "boolean"
	default:
		return "text"
	}
}

// pipelineProject runs RETURNING's column list (the same ColumnItem
// shape a SELECT's project step uses) against already-materialized
// rows rather than a live table_scan.
func pipelineProject(rows []value.Map, columns value.Seq, ctx *execCtx) ([]value.Map, error) {
	return pipeline.Project(rows, columns, ctx.sub)
}
