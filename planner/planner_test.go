package planner_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/planner"
	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/runner"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/table"
	"github.com/gatedb/gatedb/value"
	"github.com/gatedb/gatedb/wal"
)

func newTestRunner(t *testing.T) *runner.Runner {
	t.Helper()
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()
	require.NoError(t, table.Register(reg))
	require.NoError(t, planner.Register(reg))
	r, err := runner.New(store.NewMem(), refs.NewMem(), w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func run(t *testing.T, r *runner.Runner, sql string) *gate.Stream {
	t.Helper()
	s := r.NewStream()
	s.Emit(gate.New("sql", "sql", sql))
	return s
}

func requireNoErrors(t *testing.T, s *gate.Stream) {
	t.Helper()
	for _, e := range s.Pending() {
		if e.Type == "error" {
			t.Fatalf("unexpected error event: %+v", e)
		}
	}
}

func firstOfType(t *testing.T, s *gate.Stream, typ string) gate.Event {
	t.Helper()
	for _, e := range s.Pending() {
		if e.Type == typ {
			return e
		}
	}
	t.Fatalf("no pending event of type %q; got %+v", typ, s.Pending())
	return gate.Event{}
}

func queryRows(t *testing.T, r *runner.Runner, sql string) value.Seq {
	t.Helper()
	s := run(t, r, sql)
	requireNoErrors(t, s)
	qr := firstOfType(t, s, "query_result")
	rows, _ := qr.Get("rows").(value.Seq)
	return rows
}

func TestSimpleSelectAfterInsert(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (name TEXT NOT NULL, age INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (name, age) VALUES ('alice', 30)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (name, age) VALUES ('bob', 17)`))

	rows := queryRows(t, r, `SELECT name FROM users WHERE age >= 18`)
	require.Len(t, rows, 1)
	m := rows[0].(value.Map)
	name, _ := m.Get("name")
	assert.Equal(t, value.String("alice"), name)
}

func TestMultiRowInsertAndSelect(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE t (n INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO t (n) VALUES (1), (2), (3)`))

	rows := queryRows(t, r, `SELECT n FROM t ORDER BY n`)
	require.Len(t, rows, 3)
}

func TestInsertSelectIntoAnotherTable(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE src (n INTEGER)`))
	requireNoErrors(t, run(t, r, `CREATE TABLE dst (n INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO src (n) VALUES (1), (2)`))
	requireNoErrors(t, run(t, r, `INSERT INTO dst SELECT n FROM src`))

	rows := queryRows(t, r, `SELECT n FROM dst ORDER BY n`)
	require.Len(t, rows, 2)
}

func TestCreateTableAsSelect(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (name TEXT, age INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (name, age) VALUES ('alice', 30), ('bob', 17)`))
	requireNoErrors(t, run(t, r, `CREATE TABLE adults AS SELECT name, age FROM users WHERE age >= 18`))

	rows := queryRows(t, r, `SELECT name FROM adults`)
	require.Len(t, rows, 1)
}

func TestInsertReturning(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (name TEXT)`))
	s := run(t, r, `INSERT INTO users (name) VALUES ('alice') RETURNING id, name`)
	requireNoErrors(t, s)
	qr := firstOfType(t, s, "query_result")
	rows, _ := qr.Get("rows").(value.Seq)
	require.Len(t, rows, 1)
	m := rows[0].(value.Map)
	name, _ := m.Get("name")
	assert.Equal(t, value.String("alice"), name)
}

func TestUpdateReturning(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (name TEXT, age INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (name, age) VALUES ('alice', 30)`))
	s := run(t, r, `UPDATE users SET age = 31 WHERE name = 'alice' RETURNING age`)
	requireNoErrors(t, s)
	qr := firstOfType(t, s, "query_result")
	rows, _ := qr.Get("rows").(value.Seq)
	require.Len(t, rows, 1)
	m := rows[0].(value.Map)
	age, _ := m.Get("age")
	assert.Equal(t, value.Int(31), age)
}

func TestDeleteReturning(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (name TEXT)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (name) VALUES ('alice')`))
	s := run(t, r, `DELETE FROM users WHERE name = 'alice' RETURNING name`)
	requireNoErrors(t, s)
	qr := firstOfType(t, s, "query_result")
	rows, _ := qr.Get("rows").(value.Seq)
	require.Len(t, rows, 1)

	rows = queryRows(t, r, `SELECT name FROM users`)
	require.Len(t, rows, 0)
}

func TestOnConflictDoNothing(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (id INTEGER, name TEXT)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (id, name) VALUES (1, 'alice')`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (id, name) VALUES (1, 'alice2') ON CONFLICT (id) DO NOTHING`))

	rows := queryRows(t, r, `SELECT name FROM users WHERE id = 1`)
	require.Len(t, rows, 1)
	m := rows[0].(value.Map)
	name, _ := m.Get("name")
	assert.Equal(t, value.String("alice"), name)
}

func TestOnConflictDoUpdate(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (id INTEGER, name TEXT)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (id, name) VALUES (1, 'alice')`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (id, name) VALUES (1, 'alice2') ON CONFLICT (id) DO UPDATE SET name = 'alice2'`))

	rows := queryRows(t, r, `SELECT name FROM users WHERE id = 1`)
	require.Len(t, rows, 1)
	m := rows[0].(value.Map)
	name, _ := m.Get("name")
	assert.Equal(t, value.String("alice2"), name)
}

func TestJoinAcrossTables(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (id INTEGER, name TEXT)`))
	requireNoErrors(t, run(t, r, `CREATE TABLE orders (user_id INTEGER, total INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO users (id, name) VALUES (1, 'alice')`))
	requireNoErrors(t, run(t, r, `INSERT INTO orders (user_id, total) VALUES (1, 100)`))

	rows := queryRows(t, r, `SELECT users.name, orders.total FROM users JOIN orders ON users.id = orders.user_id`)
	require.Len(t, rows, 1)
}

func TestAggregateGroupBy(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE sales (region TEXT, amount INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO sales (region, amount) VALUES ('east', 10), ('east', 20), ('west', 5)`))

	rows := queryRows(t, r, `SELECT region, SUM(amount) AS total FROM sales GROUP BY region ORDER BY region`)
	require.Len(t, rows, 2)
	first := rows[0].(value.Map)
	total, _ := first.Get("total")
	assert.Equal(t, value.Int(30), total)
}

func TestRecursiveCTE(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE people (id INTEGER, parent_id INTEGER)`))
	requireNoErrors(t, run(t, r, `INSERT INTO people (id, parent_id) VALUES (1, 0)`))
	requireNoErrors(t, run(t, r, `INSERT INTO people (id, parent_id) VALUES (2, 1)`))
	requireNoErrors(t, run(t, r, `INSERT INTO people (id, parent_id) VALUES (3, 2)`))

	rows := queryRows(t, r, `
		WITH RECURSIVE ancestry(id) AS (
			SELECT id FROM people WHERE id = 1
			UNION ALL
			SELECT p.id FROM people p JOIN ancestry a ON p.parent_id = a.id
		)
		SELECT id FROM ancestry
	`)
	require.Len(t, rows, 3)
}

func TestExplainSelectDescribesTableScan(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE users (name TEXT)`))

	s := run(t, r, `EXPLAIN SELECT * FROM users`)
	requireNoErrors(t, s)
	qr := firstOfType(t, s, "query_result")
	rows, _ := qr.Get("rows").(value.Seq)
	require.NotEmpty(t, rows)
	first := rows[0].(value.Map)
	op, _ := first.Get("operation")
	assert.Contains(t, string(op.(value.String)), "table_scan(users)")
}

func TestTransactionControlRoundTrip(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE t (n INTEGER)`))

	s := run(t, r, `BEGIN`)
	requireNoErrors(t, s)
	assert.Equal(t, "transaction_begun", firstOfType(t, s, "transaction_begun").Type)

	requireNoErrors(t, run(t, r, `INSERT INTO t (n) VALUES (1)`))

	s = run(t, r, `COMMIT`)
	requireNoErrors(t, s)
	assert.Equal(t, "transaction_committed", firstOfType(t, s, "transaction_committed").Type)
}

func TestDropTableThenSelectErrors(t *testing.T) {
	r := newTestRunner(t)
	requireNoErrors(t, run(t, r, `CREATE TABLE t (n INTEGER)`))
	requireNoErrors(t, run(t, r, `DROP TABLE t`))

	s := run(t, r, `SELECT n FROM t`)
	var sawError bool
	for _, e := range s.Pending() {
		if e.Type == "error" {
			sawError = true
		}
	}
	assert.True(t, sawError)
}
