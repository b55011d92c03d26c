package eval

import (
	"fmt"
	"strings"

	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

// SubqueryRunner lets EvalExpr/EvalCondition evaluate {subquery: plan},
// {exists: plan}, and {in: {subquery: plan}} forms without the eval
// package depending on the planner. The planner supplies the
// implementation when it builds a pipeline's filter/project steps.
type SubqueryRunner interface {
	RunScalar(plan value.Value) (value.Value, error)
	RunRows(plan value.Value) ([]value.Map, error)
}

// EvalExpr evaluates a scalar expression tree against row (§4.I).
func EvalExpr(expr value.Value, row value.Map, sub SubqueryRunner) (value.Value, error) {
	if value.IsNull(expr) {
		return value.Null{}, nil
	}
	switch t := expr.(type) {
	case value.String:
		return lookupColumn(row, string(t)), nil
	case value.Int, value.Real, value.Bool:
		return t, nil
	case value.Map:
		return evalExprMap(t, row, sub)
	}
	return nil, &gateerr.TypeError{Message: fmt.Sprintf("unsupported expression shape %T", expr)}
}

func lookupColumn(row value.Map, name string) value.Value {
	if v, ok := row.Get(name); ok {
		return v
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		if v, ok := row.Get(name[i+1:]); ok {
			return v
		}
	}
	return value.Null{}
}

func evalExprMap(m value.Map, row value.Map, sub SubqueryRunner) (value.Value, error) {
	if lit, ok := m.Get("literal"); ok {
		return lit, nil
	}
	if op, ok := m.Get("op"); ok {
		opName, _ := op.(value.String)
		left, _ := m.Get("left")
		right, _ := m.Get("right")
		lv, err := EvalExpr(left, row, sub)
		if err != nil {
			return nil, err
		}
		rv, err := EvalExpr(right, row, sub)
		if err != nil {
			return nil, err
		}
		return evalArith(string(opName), lv, rv)
	}
	if fn, ok := m.Get("fn"); ok {
		fnName, _ := fn.(value.String)
		argVals, _ := m.Get("args")
		argSeq, _ := argVals.(value.Seq)
		args := make([]value.Value, len(argSeq))
		for i, a := range argSeq {
			v, err := EvalExpr(a, row, sub)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return CallFunction(string(fnName), args)
	}
	if cases, ok := m.Get("case"); ok {
		return evalCase(cases, m, row, sub)
	}
	if list, ok := m.Get("coalesce"); ok {
		seq, _ := list.(value.Seq)
		for _, e := range seq {
			v, err := EvalExpr(e, row, sub)
			if err != nil {
				return nil, err
			}
			if !value.IsNull(v) {
				return v, nil
			}
		}
		return value.Null{}, nil
	}
	if plan, ok := m.Get("subquery"); ok {
		if sub == nil {
			return nil, &gateerr.TypeError{Message: "subquery expression with no subquery runner"}
		}
		return sub.RunScalar(plan)
	}
	return nil, &gateerr.TypeError{Message: "unrecognized scalar expression shape"}
}

func evalCase(cases value.Value, m value.Map, row value.Map, sub SubqueryRunner) (value.Value, error) {
	seq, _ := cases.(value.Seq)
	for _, c := range seq {
		branch, ok := c.(value.Map)
		if !ok {
			continue
		}
		when, _ := branch.Get("when")
		ok2, err := EvalCondition(when, row, sub)
		if err != nil {
			return nil, err
		}
		if ok2 {
			then, _ := branch.Get("then")
			return EvalExpr(then, row, sub)
		}
	}
	if els, ok := m.Get("else"); ok {
		return EvalExpr(els, row, sub)
	}
	return value.Null{}, nil
}

func evalArith(op string, l, r value.Value) (value.Value, error) {
	if op == "||" {
		return value.String(stringify(l) + stringify(r)), nil
	}
	if value.IsNull(l) || value.IsNull(r) {
		return value.Null{}, nil
	}
	lc, lok := coerceNumeric(l)
	rc, rok := coerceNumeric(r)
	if !lok || !rok {
		return nil, &gateerr.TypeError{Message: fmt.Sprintf("non-numeric operand for %q", op)}
	}
	lf, _ := asReal(lc)
	rf, _ := asReal(rc)

	switch op {
	case "+":
		return numericResult(lc, rc, lf+rf), nil
	case "-":
		return numericResult(lc, rc, lf-rf), nil
	case "*":
		return numericResult(lc, rc, lf*rf), nil
	case "/":
		if rf == 0 {
			return value.Null{}, nil
		}
		return value.Real(lf / rf), nil
	case "%":
		if rf == 0 {
			return value.Null{}, nil
		}
		li, _ := lc.(value.Int)
		ri, _ := rc.(value.Int)
		if _, lIsInt := lc.(value.Int); lIsInt {
			if _, rIsInt := rc.(value.Int); rIsInt {
				return value.Int(int64(li) % int64(ri)), nil
			}
		}
		return value.Real(float64(int64(lf) % int64(rf))), nil
	}
	return nil, &gateerr.TypeError{Message: fmt.Sprintf("unknown operator %q", op)}
}

// numericResult keeps an integer result integer when both operands were
// integers, matching §4.C's "integral real encodes as integer" rule at
// the arithmetic layer rather than only at encode time.
func numericResult(l, r value.Value, f float64) value.Value {
	_, lInt := l.(value.Int)
	_, rInt := r.(value.Int)
	if lInt && rInt && f == float64(int64(f)) {
		return value.Int(int64(f))
	}
	return value.Real(f)
}

func stringify(v value.Value) string {
	switch t := v.(type) {
	case value.String:
		return string(t)
	case value.Int:
		return fmt.Sprintf("%d", int64(t))
	case value.Real:
		return fmt.Sprintf("%v", float64(t))
	case value.Bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
