package table

import "github.com/gatedb/gatedb/value"

// Column is one column of a table schema.
type Column struct {
	Name    string
	Type    string
	NotNull bool
	Default value.Value
}

// Schema is a table's name and column list, the object stored at schemaPath.
type Schema struct {
	Name    string
	Columns []Column
}

func (c Column) toValue() value.Map {
	m := value.MapOf("name", c.Name, "type", c.Type, "notNull", c.NotNull)
	if !value.IsNull(c.Default) {
		m = m.Set("default", c.Default)
	}
	return m
}

func columnFromValue(v value.Value) Column {
	m, _ := v.(value.Map)
	name, _ := m.Get("name")
	typ, _ := m.Get("type")
	notNull, _ := m.Get("notNull")
	def, _ := m.Get("default")
	nameStr, _ := name.(value.String)
	typStr, _ := typ.(value.String)
	notNullBool, _ := notNull.(value.Bool)
	return Column{Name: string(nameStr), Type: string(typStr), NotNull: bool(notNullBool), Default: def}
}

func (s Schema) toValue() value.Value {
	cols := make(value.Seq, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.toValue()
	}
	return value.MapOf("name", s.Name, "columns", cols)
}

func schemaFromValue(v value.Value) (Schema, bool) {
	if value.IsNull(v) {
		return Schema{}, false
	}
	m, ok := v.(value.Map)
	if !ok {
		return Schema{}, false
	}
	nameVal, _ := m.Get("name")
	nameStr, _ := nameVal.(value.String)
	colsVal, _ := m.Get("columns")
	seq, _ := colsVal.(value.Seq)
	cols := make([]Column, len(seq))
	for i, c := range seq {
		cols[i] = columnFromValue(c)
	}
	return Schema{Name: string(nameStr), Columns: cols}, true
}

func (s Schema) column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (s Schema) hasColumn(name string) bool {
	_, ok := s.column(name)
	return ok
}
