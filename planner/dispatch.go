// Package planner compiles and executes the row pipeline a SELECT (or
// EXPLAIN SELECT) statement plans into, and orchestrates the
// multi-step DML forms (multi-row INSERT, INSERT...SELECT, CTAS,
// ON CONFLICT, RETURNING) that a single table-package gate call can't
// express alone.
//
// Three gates are registered (§4.N/§4.O): "sql" tokenizes and parses
// the statement and routes to exactly one follow-up event; "query_plan"
// runs a compiled SELECT plan to a result set; "dml_plan" is the
// compound-DML orchestrator described in dml.go.
package planner

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/parser"
	"github.com/gatedb/gatedb/value"
)

// Register wires the sql/query_plan/dml_plan gates onto reg. dml_plan's
// Transform closes over reg itself, so it can dispatch into any other
// registered gate (table-package gates in particular) by signature.
func Register(reg *gate.Registry) error {
	gates := []gate.Gate{
		sqlGate(),
		queryPlanGate(),
		gate.StateFunc("dml_plan", dmlPlanReads, dmlPlanTransform(reg)),
	}
	for _, g := range gates {
		if err := reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}

func sqlGate() gate.PureGate {
	return gate.PureFunc("sql", func(e gate.Event) (*gate.Event, error) {
		sqlVal, _ := e.Data.Get("sql")
		sqlStr, _ := sqlVal.(value.String)
		stmt, err := parser.Parse(string(sqlStr))
		if err != nil {
			return nil, err
		}
		follow, err := buildFollowup(stmt)
		if err != nil {
			return nil, err
		}
		return &follow, nil
	})
}

func queryPlanGate() gate.StateGate {
	return gate.StateFunc("query_plan",
		func(e gate.Event) *gate.ReadSet {
			plan, _ := e.Data.Get("plan")
			return planReadSet(plan)
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			plan, _ := e.Data.Get("plan")
			explain, _ := e.Data.Get("explain")
			isExplain, _ := explain.(value.Bool)

			ctx := newExecCtx(st)
			mb := gate.NewMutationBatch()

			if bool(isExplain) {
				rows, err := describePlan(plan)
				if err != nil {
					return nil, err
				}
				mb.Emit(gate.New("query_result", "rows", value.Seq(mapsToSeq(rows))))
				return mb, nil
			}

			rows, err := executePlan(plan, ctx)
			if err != nil {
				return nil, err
			}
			mb.Emit(gate.New("query_result", "rows", value.Seq(mapsToSeq(rows))))
			return mb, nil
		},
	)
}

// describePlan renders one {operation} row per compiled step (§4.O,
// EXPLAIN [FULL]): each row names the step kind and, where the step
// has one, the resolved table/index name — table_scan(users),
// join(inner,table_scan(orders)), filter, and so on. A plan with a union
// renders its left side's steps, then a "union" row, then its right side's.
func describePlan(plan value.Value) ([]value.Map, error) {
	m, ok := plan.(value.Map)
	if !ok {
		return nil, &gateerr.TypeError{Message: "query plan must be a mapping"}
	}
	var rows []value.Map
	if ctes, ok := m.Get("ctes"); ok {
		seq, _ := ctes.(value.Seq)
		for _, c := range seq {
			cm, _ := c.(value.Map)
			name := string(asStr(mustGet(cm, "name")))
			rows = append(rows, value.MapOf("operation", "cte("+name+")"))
			seed := mustGet(cm, "seed")
			seedRows, err := describePlan(seed)
			if err != nil {
				return nil, err
			}
			rows = append(rows, seedRows...)
		}
	}
	if u, ok := m.Get("union"); ok {
		um, _ := u.(value.Map)
		left, _ := um.Get("left")
		leftRows, err := describeSteps(left)
		if err != nil {
			return nil, err
		}
		rows = append(rows, leftRows...)
		rows = append(rows, value.MapOf("operation", "union"))
		right, _ := um.Get("right")
		rightRows, err := describePlan(right)
		if err != nil {
			return nil, err
		}
		rows = append(rows, rightRows...)
		return rows, nil
	}
	steps, _ := m.Get("steps")
	stepRows, err := describeSteps(steps)
	if err != nil {
		return nil, err
	}
	return append(rows, stepRows...), nil
}

func describeSteps(stepsVal value.Value) ([]value.Map, error) {
	seq, _ := stepsVal.(value.Seq)
	out := make([]value.Map, 0, len(seq))
	for _, step := range seq {
		sm, ok := step.(value.Map)
		if !ok {
			continue
		}
		out = append(out, value.MapOf("operation", describeStep(sm)))
	}
	return out, nil
}

func describeStep(sm value.Map) string {
	typ := string(asStr(mustGet(sm, "type")))
	switch typ {
	case "table_scan":
		return "table_scan(" + string(asStr(mustGet(sm, "table"))) + ")"
	case "cte_ref":
		return "cte_ref(" + string(asStr(mustGet(sm, "name"))) + ")"
	case "derived":
		return "derived"
	case "join":
		right, _ := sm.Get("right")
		rm, _ := right.(value.Map)
		return "join(" + string(asStr(mustGet(sm, "kind"))) + "," + describeStep(rm) + ")"
	default:
		return typ
	}
}
