package ast

import "github.com/gatedb/gatedb/value"

// TableRef is one FROM/JOIN operand: a real table, a derived (sub-)
// SELECT, or a reference to a CTE bound earlier in the same statement.
type TableRef struct {
	Table    string
	Alias    string
	Subquery *SelectStatement
	CTEName  string
}

func (t TableRef) toStepValue() value.Value {
	switch {
	case t.Subquery != nil:
		return value.MapOf("type", "derived", "plan", t.Subquery.ToPlanValue(), "alias", t.Alias)
	case t.CTEName != "":
		alias := t.Alias
		if alias == "" {
			alias = t.CTEName
		}
		return value.MapOf("type", "cte_ref", "name", t.CTEName, "alias", alias)
	default:
		alias := t.Alias
		if alias == "" {
			alias = t.Table
		}
		return value.MapOf("type", "table_scan", "table", t.Table, "alias", alias)
	}
}

// JoinClause is one JOIN in a FROM clause.
type JoinClause struct {
	Kind  string // inner, left, right, full, cross
	Right TableRef
	On    Cond
}

// ColumnItem is one entry of a SELECT list: either `*` or an expression
// with an optional alias.
type ColumnItem struct {
	Star  bool
	Expr  Expr
	Alias string
}

// ToValue exposes a projection column's compiled shape (the same one
// a project step embeds) so callers building a RETURNING projection
// outside this package can reuse it.
func (c ColumnItem) ToValue() value.Value { return c.toValue() }

func (c ColumnItem) toValue() value.Value {
	if c.Star {
		return value.String("*")
	}
	m := value.MapOf("expr", c.Expr)
	if c.Alias != "" {
		m = m.Set("alias", value.String(c.Alias))
	}
	return m
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Expr       Expr
	Desc       bool
	NullsFirst bool
	NullsLast  bool
}

func (o OrderItem) toValue() value.Value {
	dir := "asc"
	if o.Desc {
		dir = "desc"
	}
	m := value.MapOf("expr", o.Expr, "direction", dir)
	if o.NullsFirst {
		m = m.Set("nulls", value.String("first"))
	} else if o.NullsLast {
		m = m.Set("nulls", value.String("last"))
	}
	return m
}

// AggregateItem is one aggregate column of an aggregate step.
type AggregateItem struct {
	Fn       string
	Column   string
	Alias    string
	Distinct bool
	Sep      string // GROUP_CONCAT separator, default ","
}

func (a AggregateItem) toValue() value.Value {
	sep := a.Sep
	if sep == "" {
		sep = ","
	}
	return value.MapOf("fn", a.Fn, "column", a.Column, "alias", a.Alias, "distinct", a.Distinct, "separator", sep)
}

// WindowItem is one `fn(...) OVER (...)` column of a SELECT list,
// realized as a window step between aggregate/filter and project.
type WindowItem struct {
	Fn          string
	Column      string
	Alias       string
	Distinct    bool
	PartitionBy []string
	OrderBy     []OrderItem
}

func (w WindowItem) toValue() value.Value {
	pb := make(value.Seq, len(w.PartitionBy))
	for i, c := range w.PartitionBy {
		pb[i] = value.String(c)
	}
	ob := make(value.Seq, len(w.OrderBy))
	for i, o := range w.OrderBy {
		ob[i] = o.toValue()
	}
	return value.MapOf("fn", w.Fn, "column", w.Column, "alias", w.Alias, "distinct", w.Distinct,
		"partitionBy", pb, "orderBy", ob)
}

// CTE is one WITH [RECURSIVE] binding.
type CTE struct {
	Name      string
	Recursive bool
	Seed      *SelectStatement // anchor member (the whole query if non-recursive)
	Recur     *SelectStatement // recursive member, nil unless Recursive
}

func (c CTE) toValue() value.Value {
	m := value.MapOf("name", c.Name, "recursive", c.Recursive, "seed", c.Seed.ToPlanValue())
	if c.Recur != nil {
		m = m.Set("recur", c.Recur.ToPlanValue())
	}
	return m
}

// UnionClause chains a second SELECT onto the first with UNION/UNION
// ALL.
type UnionClause struct {
	All   bool
	Right *SelectStatement
}

// SelectStatement is the full parsed shape of a SELECT (§6.A): CTEs,
// projection, FROM/JOINs, WHERE, GROUP BY/HAVING, ORDER BY, LIMIT/
// OFFSET, and an optional UNION continuation.
type SelectStatement struct {
	CTEs       []CTE
	Distinct   bool
	Columns    []ColumnItem
	From       *TableRef
	Joins      []JoinClause
	Where      Cond
	GroupBy    []string
	Aggregates []AggregateItem
	Having     Cond
	Windows    []WindowItem
	OrderBy    []OrderItem
	Limit      *int64
	Offset     *int64
	Union      *UnionClause
}

// ToPlanValue compiles the statement into the query_plan shape of
// §4.N: `{ctes, steps}` or, for a UNION, `{ctes, union: {all,left,
// right}}`. The canonical step order is table_scan/derived/cte_ref →
// join(s) → filter → aggregate → window → project → distinct →
// order_by → limit, with HAVING realized as a filter step after
// aggregate.
func (s *SelectStatement) ToPlanValue() value.Value {
	m := value.Map{}
	if len(s.CTEs) > 0 {
		ctes := make(value.Seq, len(s.CTEs))
		for i, c := range s.CTEs {
			ctes[i] = c.toValue()
		}
		m = m.Set("ctes", ctes)
	}
	if s.Union != nil {
		m = m.Set("union", value.MapOf(
			"all", s.Union.All,
			"left", s.stepsOnly(),
			"right", s.Union.Right.ToPlanValue(),
		))
		return m
	}
	m = m.Set("steps", s.stepsOnly())
	return m
}

func (s *SelectStatement) stepsOnly() value.Value {
	var steps value.Seq

	if s.From != nil {
		steps = append(steps, s.From.toStepValue())
	} else {
		steps = append(steps, value.MapOf("type", "values", "rows", value.Seq{value.Map{}}))
	}
	for _, j := range s.Joins {
		jm := value.MapOf("type", "join", "kind", j.Kind, "right", j.Right.toStepValue())
		if j.On != nil {
			jm = jm.Set("on", j.On)
		}
		steps = append(steps, jm)
	}
	if s.Where != nil {
		steps = append(steps, value.MapOf("type", "filter", "condition", s.Where))
	}
	if len(s.GroupBy) > 0 || len(s.Aggregates) > 0 {
		groupBy := make(value.Seq, len(s.GroupBy))
		for i, g := range s.GroupBy {
			groupBy[i] = value.String(g)
		}
		aggs := make(value.Seq, len(s.Aggregates))
		for i, a := range s.Aggregates {
			aggs[i] = a.toValue()
		}
		steps = append(steps, value.MapOf("type", "aggregate", "groupBy", groupBy, "aggregates", aggs))
		if s.Having != nil {
			steps = append(steps, value.MapOf("type", "filter", "condition", s.Having))
		}
	}
	if len(s.Windows) > 0 {
		wins := make(value.Seq, len(s.Windows))
		for i, w := range s.Windows {
			wins[i] = w.toValue()
		}
		steps = append(steps, value.MapOf("type", "window", "windows", wins))
	}
	if len(s.Columns) > 0 {
		cols := make(value.Seq, len(s.Columns))
		for i, c := range s.Columns {
			cols[i] = c.toValue()
		}
		steps = append(steps, value.MapOf("type", "project", "columns", cols))
	}
	if s.Distinct {
		steps = append(steps, value.MapOf("type", "distinct"))
	}
	if len(s.OrderBy) > 0 {
		items := make(value.Seq, len(s.OrderBy))
		for i, o := range s.OrderBy {
			items[i] = o.toValue()
		}
		steps = append(steps, value.MapOf("type", "order_by", "items", items))
	}
	if s.Limit != nil || s.Offset != nil {
		lm := value.Map{}
		if s.Limit != nil {
			lm = lm.Set("limit", value.Int(*s.Limit))
		}
		if s.Offset != nil {
			lm = lm.Set("offset", value.Int(*s.Offset))
		}
		steps = append(steps, lm.Set("type", value.String("limit")))
	}
	return steps
}
