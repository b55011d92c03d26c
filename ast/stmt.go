package ast

import "github.com/gatedb/gatedb/value"

// ColumnDef is one column of a CREATE TABLE / ALTER TABLE ADD COLUMN.
type ColumnDef struct {
	Name     string
	Type     string
	NotNull  bool
	HasDef   bool
	Default  value.Value
}

// CreateTable is `CREATE TABLE [IF NOT EXISTS] t (...)`. AsSelect is
// set instead of Columns for `CREATE TABLE t AS SELECT ...` (CTAS);
// the planner derives columns from the first result row.
type CreateTable struct {
	Table       string
	Columns     []ColumnDef
	IfNotExists bool
	AsSelect    *SelectStatement
}

// DropTable is `DROP TABLE [IF EXISTS] t`.
type DropTable struct {
	Table    string
	IfExists bool
}

// AlterTable carries exactly one of its optional sub-operations.
type AlterTable struct {
	Table      string
	AddColumn  *ColumnDef
	DropColumn string
	RenameTo   string
	AddConstraint *ConstraintDef
	DropConstraintName string
	DropConstraintIfExists bool
}

// ConstraintDef is a catalog-only constraint definition (§9 Open
// Question b: catalog-only, not enforced at write time).
type ConstraintDef struct {
	Name   string
	Kind   string // unique, check, not_null, ...
	Column string
}

// CreateIndex is `CREATE [UNIQUE] INDEX i ON t (col)`.
type CreateIndex struct {
	Index  string
	Table  string
	Column string
	Unique bool
}

// DropIndex is `DROP INDEX i ON t`.
type DropIndex struct {
	Index    string
	Table    string
	IfExists bool
}

// CreateView is `CREATE VIEW v AS SELECT ...`.
type CreateView struct {
	View string
	Plan *SelectStatement
}

// DropView is `DROP VIEW [IF EXISTS] v`.
type DropView struct {
	View     string
	IfExists bool
}

// CreateTrigger is a catalog-only trigger definition.
type CreateTrigger struct {
	Trigger string
	Table   string
	Event   string // insert/update/delete
	Timing  string // before/after
	Action  value.Value
}

// DropTrigger is `DROP TRIGGER r`.
type DropTrigger struct {
	Trigger  string
	IfExists bool
}

// Truncate is `TRUNCATE [TABLE] t`.
type Truncate struct {
	Table string
}

// AssignExpr is one `col = expr` pair of an UPDATE SET list or the
// UPDATE half of ON CONFLICT DO UPDATE SET.
type AssignExpr struct {
	Column string
	Expr   Expr
}

// InsertValues carries the rows of a VALUES list.
type InsertValues struct {
	Columns []string // empty means "all columns, in schema order"
	Rows    []value.Seq
}

// Insert is every INSERT INTO form: VALUES (one or more rows), SELECT,
// and DEFAULT VALUES, plus an optional ON CONFLICT clause and
// RETURNING list.
type Insert struct {
	Table         string
	Columns       []string
	Rows          []value.Seq // literal VALUES rows, as expressions
	Select        *SelectStatement
	DefaultValues bool
	ConflictCol   string // "" means no ON CONFLICT clause
	ConflictDoNothing bool
	ConflictSet   []AssignExpr
	Returning     []ColumnItem
}

// Update is `UPDATE t SET ... [WHERE ...] [RETURNING ...]`.
type Update struct {
	Table     string
	Set       []AssignExpr
	Where     Cond
	Returning []ColumnItem
}

// Delete is `DELETE FROM t [WHERE ...] [RETURNING ...]`.
type Delete struct {
	Table     string
	Where     Cond
	Returning []ColumnItem
}

// Begin/Commit/Rollback are the transaction-control statements.
type Begin struct{}
type Commit struct{}
type Rollback struct{}

// Explain wraps any other statement for `EXPLAIN <stmt>`.
type Explain struct {
	Inner any
}
