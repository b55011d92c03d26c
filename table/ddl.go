package table

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

func newDDLGates() []gate.StateGate {
	return []gate.StateGate{
		createTableExecute(),
		dropTableExecute(),
		alterTableAddColumn(),
		alterTableDropColumn(),
		alterTableRename(),
		truncateExecute(),
	}
}

func columnsFromEvent(e gate.Event) []Column {
	colsVal, _ := e.Data.Get("columns")
	seq, _ := colsVal.(value.Seq)
	cols := make([]Column, 0, len(seq))
	cols = append(cols, Column{Name: "id", Type: "integer", NotNull: true})
	for _, c := range seq {
		col := columnFromValue(c)
		if col.Name == "id" {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func createTableExecute() gate.StateGate {
	return gate.StateFunc("create_table_execute",
		func(e gate.Event) *gate.ReadSet {
			return gate.NewReadSet().Ref(schemaPath(eventString(e, "table")))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			if !value.IsNull(st.Ref(schemaPath(table))) {
				if eventBool(e, "ifNotExists") {
					mb := gate.NewMutationBatch()
					mb.Emit(gate.New("table_exists", "table", table))
					return mb, nil
				}
				return nil, &gateerr.SchemaError{Message: "table already exists: " + table}
			}

			schema := Schema{Name: table, Columns: columnsFromEvent(e)}
			mb := gate.NewMutationBatch()
			mb.Put("schema", schema.toValue())
			mb.RefSet(schemaPath(table), mb.PutIndex())
			mb.Put("counter", value.String("0"))
			mb.RefSet(counterPath(table), mb.PutIndex())
			mb.Emit(gate.New("table_created", "table", table))
			return mb, nil
		},
	)
}

func dropTableExecute() gate.StateGate {
	return gate.StateFunc("drop_table_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().Ref(schemaPath(table)).Pattern(tablePrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			if value.IsNull(st.Ref(schemaPath(table))) {
				if eventBool(e, "ifExists") {
					mb := gate.NewMutationBatch()
					mb.Emit(gate.New("table_dropped", "table", table))
					return mb, nil
				}
				return nil, &gateerr.SchemaError{Message: "no such table: " + table}
			}
			mb := gate.NewMutationBatch()
			for name := range st.Pattern(tablePrefix(table)) {
				mb.RefDelete(name)
			}
			mb.Emit(gate.New("table_dropped", "table", table))
			return mb, nil
		},
	)
}

func alterTableAddColumn() gate.StateGate {
	return gate.StateFunc("alter_table_add_column",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().Ref(schemaPath(table)).Pattern(rowsPrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			schema, ok := schemaFromValue(st.Ref(schemaPath(table)))
			if !ok {
				return nil, &gateerr.NotFound{Kind: "table", Name: table}
			}
			colVal, _ := e.Data.Get("column")
			newCol := columnFromValue(colVal)
			if schema.hasColumn(newCol.Name) {
				return nil, &gateerr.SchemaError{Message: "column already exists: " + newCol.Name}
			}
			schema.Columns = append(schema.Columns, newCol)

			mb := gate.NewMutationBatch()
			mb.Put("schema", schema.toValue())
			mb.RefSet(schemaPath(table), mb.PutIndex())

			def := newCol.Default
			if value.IsNull(def) {
				def = value.Null{}
			}
			for name, rowVal := range st.Pattern(rowsPrefix(table)) {
				row, _ := rowVal.(value.Map)
				row = row.Set(newCol.Name, def)
				mb.Put("row", row)
				mb.RefSet(name, mb.PutIndex())
			}

			mb.Emit(gate.New("column_added", "table", table, "column", newCol.Name))
			return mb, nil
		},
	)
}

func alterTableDropColumn() gate.StateGate {
	return gate.StateFunc("alter_table_drop_column",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().Ref(schemaPath(table)).Pattern(rowsPrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			column := eventString(e, "column")
			if column == "id" {
				return nil, &gateerr.SchemaError{Message: "cannot drop the id column"}
			}
			schema, ok := schemaFromValue(st.Ref(schemaPath(table)))
			if !ok {
				return nil, &gateerr.NotFound{Kind: "table", Name: table}
			}
			if !schema.hasColumn(column) {
				return nil, &gateerr.SchemaError{Message: "no such column: " + column}
			}
			var kept []Column
			for _, c := range schema.Columns {
				if c.Name != column {
					kept = append(kept, c)
				}
			}
			schema.Columns = kept

			mb := gate.NewMutationBatch()
			mb.Put("schema", schema.toValue())
			mb.RefSet(schemaPath(table), mb.PutIndex())

			for name, rowVal := range st.Pattern(rowsPrefix(table)) {
				row, _ := rowVal.(value.Map)
				row = row.Delete(column)
				mb.Put("row", row)
				mb.RefSet(name, mb.PutIndex())
			}

			mb.Emit(gate.New("column_dropped", "table", table, "column", column))
			return mb, nil
		},
	)
}

// alterTableRename implements RENAME as a refSet of every target path
// plus a refDelete of every source path (§4.K), rather than rewriting
// any object: a rename only ever moves refs, never content.
func alterTableRename() gate.StateGate {
	return gate.StateFunc("alter_table_rename",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().Ref(schemaPath(table)).Pattern(tablePrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			newName := eventString(e, "to")
			if value.IsNull(st.Ref(schemaPath(table))) {
				return nil, &gateerr.NotFound{Kind: "table", Name: table}
			}
			if !value.IsNull(st.Ref(schemaPath(newName))) {
				return nil, &gateerr.SchemaError{Message: "table already exists: " + newName}
			}

			mb := gate.NewMutationBatch()
			prefix := tablePrefix(table)
			schemaSuffix := schemaPath(table)[len(prefix):]
			for name, content := range st.Pattern(prefix) {
				suffix := name[len(prefix):]
				if suffix == schemaSuffix {
					if schema, ok := schemaFromValue(content); ok {
						schema.Name = newName
						content = schema.toValue()
					}
				}
				mb.Put("object", content)
				mb.RefSet(tablePrefix(newName)+suffix, mb.PutIndex())
				mb.RefDelete(name)
			}
			mb.Emit(gate.New("table_renamed", "from", table, "to", newName))
			return mb, nil
		},
	)
}

func truncateExecute() gate.StateGate {
	return gate.StateFunc("truncate_execute",
		func(e gate.Event) *gate.ReadSet {
			table := eventString(e, "table")
			return gate.NewReadSet().Ref(schemaPath(table)).Pattern(rowsPrefix(table))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			table := eventString(e, "table")
			if value.IsNull(st.Ref(schemaPath(table))) {
				return nil, &gateerr.NotFound{Kind: "table", Name: table}
			}
			mb := gate.NewMutationBatch()
			for name := range st.Pattern(rowsPrefix(table)) {
				mb.RefDelete(name)
			}
			mb.Put("counter", value.String("0"))
			mb.RefSet(counterPath(table), mb.PutIndex())
			mb.Emit(gate.New("table_truncated", "table", table))
			return mb, nil
		},
	)
}
