package planner

import (
	"fmt"

	"github.com/gatedb/gatedb/ast"
	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

// buildFollowup turns one parsed statement into the single event the
// "sql" gate hands the Stream next: a table-package `*_execute` event
// for anything that mutates state in one straightforward pass, a
// `transaction_*` event for BEGIN/COMMIT/ROLLBACK, `query_plan` for a
// bare SELECT/EXPLAIN SELECT, or `dml_plan` for anything that needs the
// orchestration in dml.go (multi-row VALUES, INSERT...SELECT, CTAS,
// ON CONFLICT, or a RETURNING clause).
func buildFollowup(stmt any) (gate.Event, error) {
	switch s := stmt.(type) {
	case *ast.Begin:
		return gate.New("transaction_begin"), nil
	case *ast.Commit:
		return gate.New("transaction_commit"), nil
	case *ast.Rollback:
		return gate.New("transaction_rollback"), nil

	case *ast.SelectStatement:
		return gate.New("query_plan", "plan", s.ToPlanValue()), nil

	case *ast.Explain:
		return buildExplain(s)

	case *ast.CreateTable:
		return buildCreateTable(s)
	case *ast.DropTable:
		return gate.New("drop_table_execute", "table", s.Table, "ifExists", s.IfExists), nil
	case *ast.AlterTable:
		return buildAlterTable(s)
	case *ast.Truncate:
		return gate.New("truncate_execute", "table", s.Table), nil

	case *ast.CreateIndex:
		return gate.New("index_create_execute", "table", s.Table, "index", s.Index, "column", s.Column, "unique", s.Unique), nil
	case *ast.DropIndex:
		return gate.New("index_drop_execute", "table", s.Table, "index", s.Index, "ifExists", s.IfExists), nil

	case *ast.CreateView:
		return gate.New("create_view_execute", "view", s.View, "plan", s.Plan.ToPlanValue()), nil
	case *ast.DropView:
		return gate.New("drop_view_execute", "view", s.View, "ifExists", s.IfExists), nil

	case *ast.CreateTrigger:
		def := value.MapOf("table", s.Table, "event", s.Event, "timing", s.Timing, "action", s.Action)
		return gate.New("create_trigger_execute", "trigger", s.Trigger, "definition", def), nil
	case *ast.DropTrigger:
		return gate.New("drop_trigger_execute", "trigger", s.Trigger, "ifExists", s.IfExists), nil

	case *ast.Insert:
		return buildInsert(s)
	case *ast.Update:
		return buildUpdate(s)
	case *ast.Delete:
		return buildDelete(s)
	}
	return gate.Event{}, &gateerr.ParseError{Message: fmt.Sprintf("unsupported statement type %T", stmt)}
}

func columnDefsToValue(cols []ast.ColumnDef) value.Seq {
	out := make(value.Seq, len(cols))
	for i, c := range cols {
		m := value.MapOf("name", c.Name, "type", c.Type, "notNull", c.NotNull)
		if c.HasDef {
			m = m.Set("default", c.Default)
		}
		out[i] = m
	}
	return out
}

func buildCreateTable(s *ast.CreateTable) (gate.Event, error) {
	if s.AsSelect != nil {
		return gate.New("dml_plan",
			"kind", "ctas",
			"table", s.Table,
			"ifNotExists", s.IfNotExists,
			"selectPlan", s.AsSelect.ToPlanValue(),
		), nil
	}
	return gate.New("create_table_execute",
		"table", s.Table,
		"ifNotExists", s.IfNotExists,
		"columns", columnDefsToValue(s.Columns),
	), nil
}

func buildAlterTable(s *ast.AlterTable) (gate.Event, error) {
	switch {
	case s.AddColumn != nil:
		col := value.MapOf("name", s.AddColumn.Name, "type", s.AddColumn.Type, "notNull", s.AddColumn.NotNull)
		if s.AddColumn.HasDef {
			col = col.Set("default", s.AddColumn.Default)
		}
		return gate.New("alter_table_add_column", "table", s.Table, "column", col), nil
	case s.DropColumn != "":
		return gate.New("alter_table_drop_column", "table", s.Table, "column", s.DropColumn), nil
	case s.RenameTo != "":
		return gate.New("alter_table_rename", "table", s.Table, "to", s.RenameTo), nil
	case s.AddConstraint != nil:
		def := value.MapOf("kind", s.AddConstraint.Kind, "column", s.AddConstraint.Column)
		return gate.New("create_constraint_execute", "table", s.Table, "constraint", s.AddConstraint.Name, "definition", def), nil
	case s.DropConstraintName != "":
		return gate.New("drop_constraint_execute", "table", s.Table, "constraint", s.DropConstraintName, "ifExists", s.DropConstraintIfExists), nil
	}
	return gate.Event{}, &gateerr.ParseError{Message: "ALTER TABLE statement carries no operation"}
}

func assignsToValue(set []ast.AssignExpr) value.Map {
	m := value.Map{}
	for _, a := range set {
		m = m.Set(a.Column, a.Expr)
	}
	return m
}

func columnItemsToValue(items []ast.ColumnItem) value.Seq {
	out := make(value.Seq, len(items))
	for i, c := range items {
		out[i] = c.ToValue()
	}
	return out
}

// insertRowsToValue carries each VALUES row as a Seq of expression
// trees (not yet evaluated) so dml.go/insert_execute can evaluate them
// per row against an (always empty, for INSERT) row context.
func insertRowsToValue(rows []value.Seq) value.Seq {
	out := make(value.Seq, len(rows))
	for i, r := range rows {
		out[i] = append(value.Seq{}, r...)
	}
	return out
}

func buildInsert(s *ast.Insert) (gate.Event, error) {
	simple := s.Select == nil && !s.DefaultValues && len(s.Rows) == 1 &&
		s.ConflictCol == "" && len(s.Returning) == 0

	if simple {
		row, err := evalInsertRow(s.Columns, s.Rows[0])
		if err != nil {
			return gate.Event{}, err
		}
		return gate.New("insert_execute", "table", s.Table, "row", row), nil
	}

	data := value.MapOf(
		"kind", "insert",
		"table", s.Table,
		"columns", stringsToSeq(s.Columns),
		"defaultValues", s.DefaultValues,
		"conflictCol", s.ConflictCol,
		"conflictDoNothing", s.ConflictDoNothing,
		"conflictSet", assignsToValue(s.ConflictSet),
		"returning", columnItemsToValue(s.Returning),
	)
	if s.Select != nil {
		data = data.Set("selectPlan", s.Select.ToPlanValue())
	} else {
		data = data.Set("rows", insertRowsToValue(s.Rows))
	}
	return gate.NewWithData("dml_plan", data), nil
}

// evalInsertRow evaluates one VALUES row's expressions (literal or
// expression trees, no row context) into the {table,row} shape
// insert_execute expects.
func evalInsertRow(columns []string, row value.Seq) (value.Map, error) {
	m := value.Map{}
	for i, v := range row {
		v2, err := eval.EvalExpr(v, value.Map{}, nil)
		if err != nil {
			return nil, err
		}
		if len(columns) > i {
			m = m.Set(columns[i], v2)
		}
	}
	return m, nil
}

func stringsToSeq(ss []string) value.Seq {
	out := make(value.Seq, len(ss))
	for i, s := range ss {
		out[i] = value.String(s)
	}
	return out
}

func buildUpdate(s *ast.Update) (gate.Event, error) {
	if len(s.Returning) == 0 {
		return gate.New("update_execute", "table", s.Table, "where", s.Where, "changes", assignsToValue(s.Set)), nil
	}
	return gate.New("dml_plan",
		"kind", "update",
		"table", s.Table,
		"where", s.Where,
		"changes", assignsToValue(s.Set),
		"returning", columnItemsToValue(s.Returning),
	), nil
}

func buildDelete(s *ast.Delete) (gate.Event, error) {
	if len(s.Returning) == 0 {
		return gate.New("delete_execute", "table", s.Table, "where", s.Where), nil
	}
	return gate.New("dml_plan",
		"kind", "delete",
		"table", s.Table,
		"where", s.Where,
		"returning", columnItemsToValue(s.Returning),
	), nil
}

// buildExplain compiles EXPLAIN's inner statement: SELECT/CTE/UNION
// explain as the compiled plan's own step list (one row per step, per
// §4.O); any other statement kind explains as a single descriptive row
// without executing it.
func buildExplain(s *ast.Explain) (gate.Event, error) {
	if sel, ok := s.Inner.(*ast.SelectStatement); ok {
		return gate.New("query_plan", "plan", sel.ToPlanValue(), "explain", true), nil
	}
	inner, err := buildFollowup(s.Inner)
	if err != nil {
		return gate.Event{}, err
	}
	return gate.New("query_result", "rows", value.Seq{
		value.MapOf("operation", fmt.Sprintf("%s(%s)", inner.Type, describeEventTarget(inner))),
	}), nil
}

func describeEventTarget(e gate.Event) string {
	for _, key := range []string{"table", "view", "trigger", "index"} {
		if v, ok := e.Data.Get(key); ok {
			if s, ok := v.(value.String); ok {
				return string(s)
			}
		}
	}
	return ""
}
