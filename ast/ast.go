// Package ast defines the typed statement tree the parser builds and
// the planner compiles. Scalar expressions and boolean conditions are
// represented directly as value.Value trees (§4.I already defines their
// shape as plain data — literal/op/fn/case maps for expressions,
// column/op/value maps and and/or/not/exists for conditions) rather
// than a second parallel node hierarchy; ast only adds the
// statement-level structure (SELECT/INSERT/UPDATE/.../CREATE TABLE...)
// a single parse pass produces, the way the teacher's ast package gives
// each T-SQL statement its own struct satisfying a shared Statement
// marker.
package ast

import "github.com/gatedb/gatedb/value"

// Expr is a scalar expression tree in the §4.I shape: a bare
// value.String column reference, a literal value.Int/Real/Bool/Null,
// or a value.Map carrying literal/op/fn/case/coalesce/subquery.
type Expr = value.Value

// Cond is a boolean condition tree in the §4.I shape.
type Cond = value.Value

// Column builds a bare column-reference expression.
func Column(name string) Expr { return value.String(name) }

// Lit wraps a literal value as an expression.
func Lit(v value.Value) Expr { return value.MapOf("literal", v) }

// Binary builds an arithmetic/concat expression {op,left,right}.
func Binary(op string, left, right Expr) Expr {
	return value.MapOf("op", op, "left", left, "right", right)
}

// Call builds a function-call expression {fn,args}.
func Call(name string, args ...Expr) Expr {
	seq := make(value.Seq, len(args))
	copy(seq, args)
	return value.MapOf("fn", name, "args", seq)
}

// WhenThen is one WHEN ... THEN ... arm of a CASE expression.
type WhenThen struct {
	When Cond
	Then Expr
}

func CaseExpr(whens []WhenThen, els Expr) Expr {
	seq := make(value.Seq, len(whens))
	for i, w := range whens {
		seq[i] = value.MapOf("when", w.When, "then", w.Then)
	}
	m := value.MapOf("case", seq)
	if els != nil {
		m = m.Set("else", els)
	}
	return m
}

// Coalesce builds a COALESCE expression.
func Coalesce(args ...Expr) Expr {
	seq := make(value.Seq, len(args))
	copy(seq, args)
	return value.MapOf("coalesce", seq)
}

// SubqueryExpr wraps a nested SELECT used as a scalar expression.
func SubqueryExpr(plan *SelectStatement) Expr {
	return value.MapOf("subquery", plan.ToPlanValue())
}

// Aggregate builds the {aggregate:{fn,column,distinct}} shape an
// aggregate step's output column is referenced by downstream steps
// through its alias, so this form only ever appears inside an
// aggregate step's own column list, never in a later filter/project.
func Aggregate(fn, column string, distinct bool) Expr {
	return value.MapOf("aggregate", value.MapOf("fn", fn, "column", column, "distinct", distinct))
}

// Cmp builds a comparison condition.
func Cmp(column, op string, val Expr) Cond {
	return value.MapOf("column", column, "op", op, "value", val)
}

// Between builds a BETWEEN/NOT BETWEEN condition.
func Between(column string, lo, hi Expr, negate bool) Cond {
	op := "between"
	if negate {
		op = "not_between"
	}
	return value.MapOf("column", column, "op", op, "value", lo, "value2", hi)
}

// IsNullCond builds IS [NOT] NULL.
func IsNullCond(column string, negate bool) Cond {
	op := "is_null"
	if negate {
		op = "is_not_null"
	}
	return value.MapOf("column", column, "op", op)
}

// InCond builds IN/NOT IN over a literal list.
func InCond(column string, list value.Seq, negate bool) Cond {
	op := "in"
	if negate {
		op = "not_in"
	}
	return value.MapOf("column", column, "op", op, "value", list)
}

// And/Or/Not combine conditions.
func And(parts ...Cond) Cond {
	if len(parts) == 1 {
		return parts[0]
	}
	seq := make(value.Seq, len(parts))
	copy(seq, parts)
	return value.MapOf("and", seq)
}

func Or(parts ...Cond) Cond {
	if len(parts) == 1 {
		return parts[0]
	}
	seq := make(value.Seq, len(parts))
	copy(seq, parts)
	return value.MapOf("or", seq)
}

func Not(c Cond) Cond { return value.MapOf("not", c) }

func Exists(plan *SelectStatement, negate bool) Cond {
	key := "exists"
	if negate {
		key = "not_exists"
	}
	return value.MapOf(key, plan.ToPlanValue())
}
