package planner

import "github.com/gatedb/gatedb/value"

// subqueryRunner implements eval.SubqueryRunner over the same execCtx
// the statement it's embedded in is executing with, so a subquery sees
// the same resolved State and CTE bindings as its enclosing statement
// (and can itself contain further nested subqueries, recursing through
// the same ctx).
type subqueryRunner struct {
	ctx *execCtx
}

// RunScalar runs plan and returns its first row's first column, or null
// if it produced no rows — the usual scalar-subquery contract.
func (r *subqueryRunner) RunScalar(plan value.Value) (value.Value, error) {
	rows, err := executePlan(plan, r.ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return value.Null{}, nil
	}
	return rows[0][0].Val, nil
}

// RunRows runs plan and returns every result row, for EXISTS/NOT EXISTS
// and IN (SELECT ...).
func (r *subqueryRunner) RunRows(plan value.Value) ([]value.Map, error) {
	return executePlan(plan, r.ctx)
}
