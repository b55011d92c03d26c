package table_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/runner"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/table"
	"github.com/gatedb/gatedb/value"
	"github.com/gatedb/gatedb/wal"
)

func newTestRunner(t *testing.T) (*runner.Runner, *gate.Stream) {
	t.Helper()
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()
	require.NoError(t, table.Register(reg))
	r, err := runner.New(store.NewMem(), refs.NewMem(), w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)
	return r, r.NewStream()
}

func columnsEvent(cols ...value.Value) value.Seq {
	return value.Seq(cols)
}

func col(name, typ string, notNull bool) value.Value {
	return value.MapOf("name", name, "type", typ, "notNull", notNull)
}

func createUsersTable(t *testing.T, s *gate.Stream) {
	t.Helper()
	s.Emit(gate.New("create_table_execute",
		"table", "users",
		"columns", columnsEvent(col("name", "text", true), col("age", "integer", false)),
	))
}

func firstPendingOfType(t *testing.T, s *gate.Stream, typ string) gate.Event {
	t.Helper()
	for _, e := range s.Pending() {
		if e.Type == typ {
			return e
		}
	}
	t.Fatalf("no pending event of type %q; got %+v", typ, s.Pending())
	return gate.Event{}
}

func TestCreateTableThenInsertThenSelectByScan(t *testing.T) {
	_, s := newTestRunner(t)

	createUsersTable(t, s)
	assert.Equal(t, "table_created", firstPendingOfType(t, s, "table_created").Type)

	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("name", "alice", "age", 30)))
	inserted := firstPendingOfType(t, s, "row_inserted")
	assert.Equal(t, value.Int(1), inserted.Get("id"))
}

func TestCreateTableTwiceIsSchemaError(t *testing.T) {
	_, s := newTestRunner(t)
	createUsersTable(t, s)
	createUsersTable(t, s)

	var errs int
	for _, e := range s.Pending() {
		if e.Type == "error" {
			errs++
		}
	}
	assert.Equal(t, 1, errs)
}

func TestCreateTableIfNotExistsSuppressesError(t *testing.T) {
	_, s := newTestRunner(t)
	createUsersTable(t, s)
	s.Emit(gate.New("create_table_execute",
		"table", "users",
		"columns", columnsEvent(),
		"ifNotExists", true,
	))

	var sawExists bool
	for _, e := range s.Pending() {
		assert.NotEqual(t, "error", e.Type)
		if e.Type == "table_exists" {
			sawExists = true
		}
	}
	assert.True(t, sawExists)
}

func TestInsertEnforcesNotNull(t *testing.T) {
	_, s := newTestRunner(t)
	createUsersTable(t, s)
	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("age", 10)))
	e := firstPendingOfType(t, s, "error")
	source, _ := e.Get("source").(value.String)
	assert.Equal(t, "insert_execute", string(source))
}

func TestUpdateAndDeleteRoundTrip(t *testing.T) {
	_, s := newTestRunner(t)
	createUsersTable(t, s)
	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("name", "bob", "age", 20)))

	updateCond := value.MapOf("column", "name", "op", "=", "value", value.String("bob"))
	s.Emit(gate.New("update_execute", "table", "users",
		"where", updateCond,
		"changes", value.MapOf("age", value.Int(21)),
	))
	updated := firstPendingOfType(t, s, "row_updated")
	ids, _ := updated.Get("ids").(value.Seq)
	require.Len(t, ids, 1)

	deleteCond := value.MapOf("column", "age", "op", "=", "value", value.Int(21))
	s.Emit(gate.New("delete_execute", "table", "users", "where", deleteCond))
	deleted := firstPendingOfType(t, s, "row_deleted")
	ids2, _ := deleted.Get("ids").(value.Seq)
	require.Len(t, ids2, 1)
}

func TestIndexCreateScanAndMaintainOnInsert(t *testing.T) {
	_, s := newTestRunner(t)
	createUsersTable(t, s)
	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("name", "carol", "age", 40)))

	s.Emit(gate.New("index_create_execute", "table", "users", "index", "idx_age", "column", "age", "unique", false))
	firstPendingOfType(t, s, "index_created")

	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("name", "dave", "age", 50)))

	s.Emit(gate.New("index_scan", "table", "users", "index", "idx_age", "op", "gte", "value", value.Int(0)))
	scan := firstPendingOfType(t, s, "scan_result")
	rowIDs, _ := scan.Get("rowIds").(value.Seq)
	assert.Len(t, rowIDs, 2)
}

func TestDropTableRemovesEverythingUnderIt(t *testing.T) {
	_, s := newTestRunner(t)
	createUsersTable(t, s)
	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("name", "eve", "age", 1)))

	s.Emit(gate.New("drop_table_execute", "table", "users"))
	firstPendingOfType(t, s, "table_dropped")

	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("name", "frank", "age", 2)))
	firstPendingOfType(t, s, "error")
}

func TestAlterTableAddAndDropColumn(t *testing.T) {
	_, s := newTestRunner(t)
	createUsersTable(t, s)
	s.Emit(gate.New("insert_execute", "table", "users", "row", value.MapOf("name", "gina", "age", 5)))

	s.Emit(gate.New("alter_table_add_column", "table", "users", "column", col("email", "text", false)))
	firstPendingOfType(t, s, "column_added")

	s.Emit(gate.New("alter_table_drop_column", "table", "users", "column", "age"))
	firstPendingOfType(t, s, "column_dropped")
}
