package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/ast"
	"github.com/gatedb/gatedb/parser"
	"github.com/gatedb/gatedb/value"
)

func TestParseSimpleSelect(t *testing.T) {
	stmt, err := parser.Parse("SELECT id, name FROM users WHERE age >= 18")
	require.NoError(t, err)

	sel, ok := stmt.(*ast.SelectStatement)
	require.True(t, ok)
	assert.Equal(t, "users", sel.From.Table)
	require.Len(t, sel.Columns, 2)
	assert.Equal(t, value.String("id"), sel.Columns[0].Expr)
	assert.NotNil(t, sel.Where)
}

func TestParseSelectStar(t *testing.T) {
	stmt, err := parser.Parse("SELECT * FROM t")
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	require.Len(t, sel.Columns, 1)
	assert.True(t, sel.Columns[0].Star)
}

func TestParseSelectWithJoinAndOrderLimit(t *testing.T) {
	stmt, err := parser.Parse(`
		SELECT u.name, o.total
		FROM users u
		JOIN orders o ON u.id = o.user_id
		WHERE o.total > 100
		ORDER BY o.total DESC
		LIMIT 10
	`)
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	require.Len(t, sel.Joins, 1)
	assert.Equal(t, "inner", sel.Joins[0].Kind)
	assert.Equal(t, "orders", sel.Joins[0].Right.Table)
	require.Len(t, sel.OrderBy, 1)
	assert.True(t, sel.OrderBy[0].Desc)
	require.NotNil(t, sel.Limit)
	assert.EqualValues(t, 10, *sel.Limit)
}

func TestParseAggregateWithGroupByHaving(t *testing.T) {
	stmt, err := parser.Parse(`
		SELECT department, COUNT(*) AS n
		FROM employees
		GROUP BY department
		HAVING COUNT(*) > 5
	`)
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	require.Len(t, sel.Aggregates, 2) // one from SELECT list, one lifted from HAVING
	assert.Equal(t, "COUNT", sel.Aggregates[0].Fn)
	assert.Equal(t, []string{"department"}, sel.GroupBy)
	assert.NotNil(t, sel.Having)
}

func TestParseWindowFunction(t *testing.T) {
	stmt, err := parser.Parse(`
		SELECT name, RANK() OVER (PARTITION BY dept ORDER BY salary DESC) AS r
		FROM employees
	`)
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	require.Len(t, sel.Windows, 1)
	assert.Equal(t, "RANK", sel.Windows[0].Fn)
	assert.Equal(t, []string{"dept"}, sel.Windows[0].PartitionBy)
}

func TestParseRecursiveCTE(t *testing.T) {
	stmt, err := parser.Parse(`
		WITH RECURSIVE ancestry(id) AS (
			SELECT id FROM people WHERE parent_id IS NULL
			UNION ALL
			SELECT p.id FROM people p JOIN ancestry a ON p.parent_id = a.id
		)
		SELECT * FROM ancestry
	`)
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	require.Len(t, sel.CTEs, 1)
	assert.True(t, sel.CTEs[0].Recursive)
	assert.NotNil(t, sel.CTEs[0].Recur)
}

func TestParseInListAndBetweenAndLike(t *testing.T) {
	stmt, err := parser.Parse(`SELECT * FROM t WHERE a IN (1,2,3) AND b BETWEEN 1 AND 10 AND c LIKE 'x%'`)
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	assert.NotNil(t, sel.Where)
}

func TestParseExists(t *testing.T) {
	stmt, err := parser.Parse(`SELECT * FROM a WHERE EXISTS (SELECT 1 FROM b WHERE b.a_id = a.id)`)
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	m, ok := sel.Where.(value.Map)
	require.True(t, ok)
	_, hasExists := m.Get("exists")
	assert.True(t, hasExists)
}

func TestParseUnion(t *testing.T) {
	stmt, err := parser.Parse(`SELECT id FROM a UNION SELECT id FROM b`)
	require.NoError(t, err)
	sel := stmt.(*ast.SelectStatement)
	require.NotNil(t, sel.Union)
	assert.False(t, sel.Union.All)
}

func TestParseCreateTable(t *testing.T) {
	stmt, err := parser.Parse(`CREATE TABLE IF NOT EXISTS users (name TEXT NOT NULL, age INTEGER)`)
	require.NoError(t, err)
	ct := stmt.(*ast.CreateTable)
	assert.Equal(t, "users", ct.Table)
	assert.True(t, ct.IfNotExists)
	require.Len(t, ct.Columns, 2)
	assert.Equal(t, "name", ct.Columns[0].Name)
	assert.True(t, ct.Columns[0].NotNull)
}

func TestParseCreateTableAsSelect(t *testing.T) {
	stmt, err := parser.Parse(`CREATE TABLE adults AS SELECT id, name FROM users WHERE age >= 18`)
	require.NoError(t, err)
	ct := stmt.(*ast.CreateTable)
	assert.Equal(t, "adults", ct.Table)
	require.NotNil(t, ct.AsSelect)
}

func TestParseAlterTableAddColumn(t *testing.T) {
	stmt, err := parser.Parse(`ALTER TABLE users ADD COLUMN nickname TEXT`)
	require.NoError(t, err)
	at := stmt.(*ast.AlterTable)
	require.NotNil(t, at.AddColumn)
	assert.Equal(t, "nickname", at.AddColumn.Name)
}

func TestParseAlterTableRename(t *testing.T) {
	stmt, err := parser.Parse(`ALTER TABLE users RENAME TO people`)
	require.NoError(t, err)
	at := stmt.(*ast.AlterTable)
	assert.Equal(t, "people", at.RenameTo)
}

func TestParseInsertValuesMultiRow(t *testing.T) {
	stmt, err := parser.Parse(`INSERT INTO users (name, age) VALUES ('alice', 30), ('bob', 25)`)
	require.NoError(t, err)
	ins := stmt.(*ast.Insert)
	assert.Equal(t, "users", ins.Table)
	assert.Equal(t, []string{"name", "age"}, ins.Columns)
	require.Len(t, ins.Rows, 2)
}

func TestParseInsertOnConflictDoUpdate(t *testing.T) {
	stmt, err := parser.Parse(`
		INSERT INTO users (id, name) VALUES (1, 'alice')
		ON CONFLICT (id) DO UPDATE SET name = 'alice2'
		RETURNING id, name
	`)
	require.NoError(t, err)
	ins := stmt.(*ast.Insert)
	assert.Equal(t, "id", ins.ConflictCol)
	assert.False(t, ins.ConflictDoNothing)
	require.Len(t, ins.ConflictSet, 1)
	require.Len(t, ins.Returning, 2)
}

func TestParseInsertSelect(t *testing.T) {
	stmt, err := parser.Parse(`INSERT INTO adults SELECT id, name FROM users WHERE age >= 18`)
	require.NoError(t, err)
	ins := stmt.(*ast.Insert)
	require.NotNil(t, ins.Select)
}

func TestParseUpdateWithReturning(t *testing.T) {
	stmt, err := parser.Parse(`UPDATE users SET age = age + 1 WHERE name = 'alice' RETURNING id, age`)
	require.NoError(t, err)
	u := stmt.(*ast.Update)
	assert.Equal(t, "users", u.Table)
	require.Len(t, u.Set, 1)
	require.Len(t, u.Returning, 2)
}

func TestParseDeleteWithWhere(t *testing.T) {
	stmt, err := parser.Parse(`DELETE FROM users WHERE age < 18`)
	require.NoError(t, err)
	d := stmt.(*ast.Delete)
	assert.Equal(t, "users", d.Table)
	assert.NotNil(t, d.Where)
}

func TestParseTransactionControl(t *testing.T) {
	for _, tc := range []struct {
		sql string
	}{{"BEGIN"}, {"COMMIT"}, {"ROLLBACK"}} {
		stmt, err := parser.Parse(tc.sql)
		require.NoError(t, err)
		assert.NotNil(t, stmt)
	}
}

func TestParseExplainSelect(t *testing.T) {
	stmt, err := parser.Parse(`EXPLAIN SELECT * FROM users`)
	require.NoError(t, err)
	ex, ok := stmt.(*ast.Explain)
	require.True(t, ok)
	_, ok = ex.Inner.(*ast.SelectStatement)
	assert.True(t, ok)
}

func TestParseUnrecognizedStatementErrors(t *testing.T) {
	_, err := parser.Parse(`FROBNICATE users`)
	assert.Error(t, err)
}

func TestParseCreateIndexAndDropIndex(t *testing.T) {
	stmt, err := parser.Parse(`CREATE UNIQUE INDEX idx_name ON users (name)`)
	require.NoError(t, err)
	ci := stmt.(*ast.CreateIndex)
	assert.True(t, ci.Unique)
	assert.Equal(t, "users", ci.Table)

	stmt, err = parser.Parse(`DROP INDEX IF EXISTS idx_name ON users`)
	require.NoError(t, err)
	di := stmt.(*ast.DropIndex)
	assert.True(t, di.IfExists)
}
