// Package table implements the Table/DDL and Index/Meta gates of spec
// §4.K/§4.L: StateGates that read/mutate the schema, counter, rows, and
// index objects a table is made of, plus the catalog-only view/trigger/
// constraint gates and the transaction-lifecycle placeholders the
// Runner's special-cased dispatch (package runner) actually executes.
package table

import "fmt"

func schemaPath(table string) string { return fmt.Sprintf("db/tables/%s/schema", table) }
func counterPath(table string) string { return fmt.Sprintf("db/tables/%s/next_id", table) }
func rowsPrefix(table string) string  { return fmt.Sprintf("db/tables/%s/rows/", table) }
func rowPath(table string, id int64) string {
	return fmt.Sprintf("db/tables/%s/rows/%d", table, id)
}
func indexesPrefix(table string) string { return fmt.Sprintf("db/tables/%s/indexes/", table) }
func indexPath(table, index string) string {
	return fmt.Sprintf("db/tables/%s/indexes/%s", table, index)
}
func tablePrefix(table string) string { return fmt.Sprintf("db/tables/%s/", table) }

func viewPath(name string) string       { return fmt.Sprintf("db/views/%s", name) }
func triggerPath(name string) string    { return fmt.Sprintf("db/triggers/%s", name) }
func constraintsPrefix(table string) string {
	return fmt.Sprintf("db/constraints/%s/", table)
}
func constraintPath(table, name string) string {
	return fmt.Sprintf("db/constraints/%s/%s", table, name)
}
