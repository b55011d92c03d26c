package eval

import (
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

// EvalCondition evaluates a condition tree against row (§4.I). A null
// or missing condition is true — the "no WHERE clause" case.
func EvalCondition(cond value.Value, row value.Map, sub SubqueryRunner) (bool, error) {
	if value.IsNull(cond) {
		return true, nil
	}
	m, ok := cond.(value.Map)
	if !ok {
		return false, &gateerr.TypeError{Message: "condition must be a mapping"}
	}

	if list, ok := m.Get("and"); ok {
		seq, _ := list.(value.Seq)
		for _, c := range seq {
			r, err := EvalCondition(c, row, sub)
			if err != nil {
				return false, err
			}
			if !r {
				return false, nil
			}
		}
		return true, nil
	}
	if list, ok := m.Get("or"); ok {
		seq, _ := list.(value.Seq)
		for _, c := range seq {
			r, err := EvalCondition(c, row, sub)
			if err != nil {
				return false, err
			}
			if r {
				return true, nil
			}
		}
		return false, nil
	}
	if sub1, ok := m.Get("not"); ok {
		r, err := EvalCondition(sub1, row, sub)
		if err != nil {
			return false, err
		}
		return !r, nil
	}
	if plan, ok := m.Get("exists"); ok {
		return evalExists(plan, sub, false)
	}
	if plan, ok := m.Get("not_exists"); ok {
		return evalExists(plan, sub, true)
	}

	return evalComparison(m, row, sub)
}

func evalExists(plan value.Value, sub SubqueryRunner, negate bool) (bool, error) {
	if sub == nil {
		return false, &gateerr.TypeError{Message: "exists condition with no subquery runner"}
	}
	rows, err := sub.RunRows(plan)
	if err != nil {
		return false, err
	}
	exists := len(rows) > 0
	if negate {
		return !exists, nil
	}
	return exists, nil
}

// operand resolves the right-hand side of a comparison: a map (literal/
// op/fn/case/coalesce/subquery) or a bare column reference both need
// EvalExpr; any other already-evaluated value.Value (a literal Int,
// Real, Bool, or a Seq for IN) passes through unchanged.
func operand(v value.Value, row value.Map, sub SubqueryRunner) (value.Value, error) {
	switch v.(type) {
	case value.Map, value.String:
		return EvalExpr(v, row, sub)
	}
	return v, nil
}

func evalComparison(m value.Map, row value.Map, sub SubqueryRunner) (bool, error) {
	colVal, _ := m.Get("column")
	colName, _ := colVal.(value.String)
	opVal, _ := m.Get("op")
	op, _ := opVal.(value.String)

	left := lookupColumn(row, string(colName))

	switch string(op) {
	case "is_null":
		return value.IsNull(left), nil
	case "is_not_null":
		return !value.IsNull(left), nil
	}

	rightRaw, hasRight := m.Get("value")
	var right value.Value
	var err error
	if hasRight && op != "in" && op != "not_in" {
		right, err = operand(rightRaw, row, sub)
		if err != nil {
			return false, err
		}
	}

	switch string(op) {
	case "=":
		cl, cr := coerceForCompare(left, right)
		return !value.IsNull(cl) && !value.IsNull(cr) && value.Equal(cl, cr), nil
	case "!=", "<>":
		if value.IsNull(left) || value.IsNull(right) {
			return false, nil
		}
		cl, cr := coerceForCompare(left, right)
		return !value.Equal(cl, cr), nil
	case "<":
		cl, cr := coerceForCompare(left, right)
		return numericCompareOK(cl, cr) && Compare(cl, cr) < 0, nil
	case ">":
		cl, cr := coerceForCompare(left, right)
		return numericCompareOK(cl, cr) && Compare(cl, cr) > 0, nil
	case "<=":
		cl, cr := coerceForCompare(left, right)
		return numericCompareOK(cl, cr) && Compare(cl, cr) <= 0, nil
	case ">=":
		cl, cr := coerceForCompare(left, right)
		return numericCompareOK(cl, cr) && Compare(cl, cr) >= 0, nil
	case "like", "ilike":
		if value.IsNull(left) || value.IsNull(right) {
			return false, nil
		}
		ls, rs := stringify(left), stringify(right)
		return like(ls, rs, string(op) == "ilike"), nil
	case "in", "not_in":
		if value.IsNull(left) {
			return false, nil
		}
		seq, err := inOperands(rightRaw, row, sub)
		if err != nil {
			return false, err
		}
		found := false
		for _, e := range seq {
			cl, ce := coerceForCompare(left, e)
			if value.Equal(cl, ce) {
				found = true
				break
			}
		}
		if string(op) == "not_in" {
			return !found, nil
		}
		return found, nil
	case "between", "not_between":
		if value.IsNull(left) {
			return false, nil
		}
		secondRaw, _ := m.Get("value2")
		second, err := operand(secondRaw, row, sub)
		if err != nil {
			return false, err
		}
		cl, cr := coerceForCompare(left, right)
		_, cs := coerceForCompare(left, second)
		within := Compare(cl, cr) >= 0 && Compare(cl, cs) <= 0
		if string(op) == "not_between" {
			return !within, nil
		}
		return within, nil
	}
	return false, &gateerr.TypeError{Message: "unknown comparison operator " + string(op)}
}

// inOperands resolves the raw (unevaluated) right-hand side of IN/NOT
// IN: a {subquery: plan} marker, whose rows contribute their first (and
// only expected) column, or a literal Seq of expression trees, each
// evaluated against row in turn (an IN list element can itself be a
// column reference or a {literal:...}/op/fn shape, not just a bare
// value).
func inOperands(rightRaw value.Value, row value.Map, sub SubqueryRunner) (value.Seq, error) {
	if m, ok := rightRaw.(value.Map); ok {
		if plan, ok := m.Get("subquery"); ok {
			if sub == nil {
				return nil, &gateerr.TypeError{Message: "IN subquery with no subquery runner"}
			}
			rows, err := sub.RunRows(plan)
			if err != nil {
				return nil, err
			}
			out := make(value.Seq, 0, len(rows))
			for _, r := range rows {
				if len(r) == 0 {
					out = append(out, value.Null{})
					continue
				}
				out = append(out, r[0].Val)
			}
			return out, nil
		}
	}
	seq, ok := rightRaw.(value.Seq)
	if !ok {
		return nil, nil
	}
	out := make(value.Seq, len(seq))
	for i, e := range seq {
		v, err := EvalExpr(e, row, sub)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// numericCompareOK collapses the three-valued-logic rule of §4.I: a
// null operand on either side of an ordering comparison is false, not
// an error.
func numericCompareOK(a, b value.Value) bool {
	return !value.IsNull(a) && !value.IsNull(b)
}
