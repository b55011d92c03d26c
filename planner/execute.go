package planner

import (
	"sort"

	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/pipeline"
	"github.com/gatedb/gatedb/table"
	"github.com/gatedb/gatedb/value"
)

// maxRecursionIterations bounds a recursive CTE's fixed-point loop
// (§4.O recursive CTEs): a working table that never stops growing
// raises RecursionLimit rather than looping forever.
const maxRecursionIterations = 1000

// execCtx is the state one compiled plan's execution threads through
// its steps, its CTE bindings, and any subqueries it reaches.
type execCtx struct {
	st   *gate.State
	sub  eval.SubqueryRunner
	ctes map[string][]value.Map
}

func newExecCtx(st *gate.State) *execCtx {
	ctx := &execCtx{st: st, ctes: map[string][]value.Map{}}
	ctx.sub = &subqueryRunner{ctx: ctx}
	return ctx
}

// executePlan runs a full query_plan value (`{ctes?, steps}` or
// `{ctes?, union:{all,left,right}}`) and returns its result rows.
func executePlan(plan value.Value, ctx *execCtx) ([]value.Map, error) {
	m, ok := plan.(value.Map)
	if !ok {
		return nil, &gateerr.TypeError{Message: "query plan must be a mapping"}
	}

	if ctesVal, ok := m.Get("ctes"); ok {
		if err := materializeCTEs(ctesVal, ctx); err != nil {
			return nil, err
		}
	}

	if u, ok := m.Get("union"); ok {
		um, _ := u.(value.Map)
		leftSteps, _ := um.Get("left")
		left, err := executeSteps(leftSteps, ctx)
		if err != nil {
			return nil, err
		}
		rightPlan, _ := um.Get("right")
		right, err := executePlan(rightPlan, ctx)
		if err != nil {
			return nil, err
		}
		combined := append(left, right...)
		allVal, _ := um.Get("all")
		all, _ := allVal.(value.Bool)
		if !bool(all) {
			combined = pipeline.Distinct(combined)
		}
		return combined, nil
	}

	stepsVal, _ := m.Get("steps")
	return executeSteps(stepsVal, ctx)
}

// materializeCTEs binds each WITH entry's rows into ctx.ctes before the
// statement's own steps run. A recursive binding repeatedly evaluates
// its recursive member against the previous round's new rows only (the
// "working table" of standard recursive CTE semantics), deduping every
// round's output against everything seen so far regardless of UNION vs
// UNION ALL — the common hierarchy-traversal use this exists for wants
// a fixed point, and deduping is what makes one reachable within
// maxRecursionIterations.
func materializeCTEs(ctesVal value.Value, ctx *execCtx) error {
	seq, _ := ctesVal.(value.Seq)
	for _, c := range seq {
		cm, _ := c.(value.Map)
		name := string(asStr(mustGet(cm, "name")))
		recursive, _ := mustGet(cm, "recursive").(value.Bool)

		seedPlan := mustGet(cm, "seed")
		seedRows, err := executePlan(seedPlan, ctx)
		if err != nil {
			return err
		}
		if !bool(recursive) {
			ctx.ctes[name] = seedRows
			continue
		}

		recurPlan, hasRecur := cm.Get("recur")
		all := append([]value.Map{}, seedRows...)
		delta := seedRows
		iterations := 0
		for hasRecur && len(delta) > 0 {
			iterations++
			if iterations > maxRecursionIterations {
				return &gateerr.RecursionLimit{Limit: maxRecursionIterations}
			}
			ctx.ctes[name] = delta
			next, err := executePlan(recurPlan, ctx)
			if err != nil {
				return err
			}
			var fresh []value.Map
			for _, r := range next {
				if !containsRow(all, r) {
					fresh = append(fresh, r)
				}
			}
			all = append(all, fresh...)
			delta = fresh
		}
		ctx.ctes[name] = all
	}
	return nil
}

func containsRow(rows []value.Map, row value.Map) bool {
	for _, r := range rows {
		if value.Equal(r, row) {
			return true
		}
	}
	return false
}

// executeSteps walks one steps list: the first step always produces the
// initial row set (table_scan/derived/cte_ref/values, per
// ast.SelectStatement.stepsOnly), and every later step transforms it.
func executeSteps(stepsVal value.Value, ctx *execCtx) ([]value.Map, error) {
	seq, ok := stepsVal.(value.Seq)
	if !ok || len(seq) == 0 {
		return nil, nil
	}
	rows, err := sourceRows(seq[0], ctx)
	if err != nil {
		return nil, err
	}

	for _, step := range seq[1:] {
		sm, ok := step.(value.Map)
		if !ok {
			continue
		}
		switch string(asStr(mustGet(sm, "type"))) {
		case "join":
			kind := string(asStr(mustGet(sm, "kind")))
			rightStep := mustGet(sm, "right")
			rightRows, err := sourceRows(rightStep, ctx)
			if err != nil {
				return nil, err
			}
			on, _ := sm.Get("on")
			rows, err = pipeline.Join(rows, rightRows, kind, on, ctx.sub)
			if err != nil {
				return nil, err
			}
		case "filter":
			cond, _ := sm.Get("condition")
			rows, err = pipeline.Filter(rows, cond, ctx.sub)
			if err != nil {
				return nil, err
			}
		case "aggregate":
			groupBy := stringsOf(mustGet(sm, "groupBy"))
			aggSeq, _ := mustGet(sm, "aggregates").(value.Seq)
			rows, err = pipeline.Aggregate(rows, groupBy, aggSeq)
			if err != nil {
				return nil, err
			}
		case "window":
			winSeq, _ := mustGet(sm, "windows").(value.Seq)
			rows, err = pipeline.Window(rows, winSeq)
			if err != nil {
				return nil, err
			}
		case "project":
			colSeq, _ := mustGet(sm, "columns").(value.Seq)
			rows, err = pipeline.Project(rows, colSeq, ctx.sub)
			if err != nil {
				return nil, err
			}
		case "distinct":
			rows = pipeline.Distinct(rows)
		case "order_by":
			itemSeq, _ := mustGet(sm, "items").(value.Seq)
			rows, err = pipeline.OrderBy(rows, itemSeq, ctx.sub)
			if err != nil {
				return nil, err
			}
		case "limit":
			rows = pipeline.Limit(rows, int64Ptr(sm, "limit"), int64Ptr(sm, "offset"))
		}
	}
	return rows, nil
}

// sourceRows resolves the single step shape that can produce an initial
// row set, whether it appears as a plan's first step or as a join's
// right operand.
func sourceRows(step value.Value, ctx *execCtx) ([]value.Map, error) {
	sm, ok := step.(value.Map)
	if !ok {
		return nil, nil
	}
	switch string(asStr(mustGet(sm, "type"))) {
	case "table_scan":
		tbl := string(asStr(mustGet(sm, "table")))
		if rows, ok := ctx.ctes[tbl]; ok {
			return rows, nil
		}
		if value.IsNull(ctx.st.Ref(table.SchemaPath(tbl))) {
			return nil, &gateerr.SchemaError{Message: "no such table: " + tbl}
		}
		rowsMap := ctx.st.Pattern(table.RowsPrefix(tbl))
		out := make([]value.Map, 0, len(rowsMap))
		for _, v := range rowsMap {
			rm, ok := v.(value.Map)
			if !ok {
				continue
			}
			out = append(out, rm)
		}
		sortByID(out)
		return out, nil
	case "derived":
		planVal := mustGet(sm, "plan")
		return executePlan(planVal, ctx)
	case "cte_ref":
		name := string(asStr(mustGet(sm, "name")))
		return ctx.ctes[name], nil
	case "values":
		seq, _ := mustGet(sm, "rows").(value.Seq)
		out := make([]value.Map, len(seq))
		for i, r := range seq {
			rm, _ := r.(value.Map)
			out[i] = rm
		}
		return out, nil
	}
	return nil, nil
}

// sortByID orders rows by their id column so a plain table_scan's
// output is deterministic across runs (the store's Pattern resolution
// is a Go map, whose iteration order isn't).
func sortByID(rows []value.Map) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i].Get("id")
		b, _ := rows[j].Get("id")
		return eval.Compare(a, b) < 0
	})
}

func stringsOf(v value.Value) []string {
	seq, _ := v.(value.Seq)
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = string(asStr(s))
	}
	return out
}

func int64Ptr(m value.Map, key string) *int64 {
	v, ok := m.Get(key)
	if !ok || value.IsNull(v) {
		return nil
	}
	i, ok := v.(value.Int)
	if !ok {
		return nil
	}
	n := int64(i)
	return &n
}
