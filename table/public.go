package table

// Exported path builders let the planner (package planner) address the
// same ref paths the DDL/DML/index gates above use internally, so a
// query_plan's StateGate can build one ReadSet spanning every table,
// index, and view a compiled plan touches without this package
// depending on planner.

// SchemaPath returns the ref path of table's schema object.
func SchemaPath(table string) string { return schemaPath(table) }

// CounterPath returns the ref path of table's id counter.
func CounterPath(table string) string { return counterPath(table) }

// TablePrefix returns the ref-pattern prefix under which every object
// belonging to table lives (schema, counter, rows, indexes).
func TablePrefix(table string) string { return tablePrefix(table) }

// RowsPrefix returns the ref-pattern prefix under which table's rows live.
func RowsPrefix(table string) string { return rowsPrefix(table) }

// RowPath returns the ref path of one row of table.
func RowPath(table string, id int64) string { return rowPath(table, id) }

// IndexesPrefix returns the ref-pattern prefix under which table's
// indexes live.
func IndexesPrefix(table string) string { return indexesPrefix(table) }

// IndexPath returns the ref path of one named index on table.
func IndexPath(table, index string) string { return indexPath(table, index) }

// ViewPath returns the ref path of a stored view definition.
func ViewPath(name string) string { return viewPath(name) }

// RowIDFromPath extracts the trailing row id from a rows/ ref path.
func RowIDFromPath(name string) int64 { return rowIDFromPath(name) }
