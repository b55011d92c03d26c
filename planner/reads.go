package planner

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/table"
	"github.com/gatedb/gatedb/value"
)

// planReadSet walks a compiled query_plan (the §4.N shape ToPlanValue
// produces) and returns the ReadSet the query_plan gate needs: every table a table_scan step touches, plus every table a
// {subquery:}/{exists:}/{not_exists:} expression reaches no matter how
// deep it's nested in a filter condition, a projected expression, a
// join ON, or a CTE's seed/recursive member. table_scan is the only
// step type that ever needs a Reads entry; cte_ref and values steps
// source rows materialized earlier in the same plan, not from the
// store, and no other step type names a table.
func planReadSet(plan value.Value) *gate.ReadSet {
	rs := gate.NewReadSet()
	walkReads(plan, rs)
	return rs
}

func walkReads(v value.Value, rs *gate.ReadSet) {
	switch t := v.(type) {
	case value.Map:
		if typVal, ok := t.Get("type"); ok {
			switch string(asStr(typVal)) {
			case "table_scan":
				tbl := string(asStr(mustGet(t, "table")))
				rs.Ref(table.SchemaPath(tbl)).Pattern(table.RowsPrefix(tbl))
				return
			case "derived":
				if p, ok := t.Get("plan"); ok {
					walkReads(p, rs)
				}
				return
			case "cte_ref", "values":
				return
			}
			// join/filter/aggregate/window/project/distinct/order_by/
			// limit fall through to the generic walk below, so any
			// embedded "right" table_scan or nested subquery still gets
			// visited.
		}
		if p, ok := t.Get("subquery"); ok {
			walkReads(p, rs)
		}
		if p, ok := t.Get("exists"); ok {
			walkReads(p, rs)
		}
		if p, ok := t.Get("not_exists"); ok {
			walkReads(p, rs)
		}
		for _, e := range t {
			walkReads(e.Val, rs)
		}
	case value.Seq:
		for _, e := range t {
			walkReads(e, rs)
		}
	}
}

func asStr(v value.Value) value.String {
	s, _ := v.(value.String)
	return s
}

func mustGet(m value.Map, key string) value.Value {
	v, _ := m.Get(key)
	return v
}
