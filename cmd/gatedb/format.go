package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/value"
)

// printEvent renders one of the event shapes a statement's Pending()
// can surface: query_result as a padded table, a mutation confirmation
// as a one-line summary, and error to whichever writer the caller
// chose (stdout for everything else, stderr for error).
func printEvent(w io.Writer, e gate.Event) {
	switch e.Type {
	case "query_result":
		rowsVal := e.Get("rows")
		rows, _ := rowsVal.(value.Seq)
		printTable(w, rows)
	case "error":
		msg := e.Get("message")
		src := e.Get("source")
		fmt.Fprintf(w, "error: %s (%s)\n", renderScalar(msg), renderScalar(src))
	case "row_inserted":
		fmt.Fprintf(w, "INSERT 1 (id=%s)\n", renderScalar(e.Get("id")))
	case "row_updated":
		ids, _ := e.Get("ids").(value.Seq)
		fmt.Fprintf(w, "UPDATE %d\n", len(ids))
	case "row_deleted":
		ids, _ := e.Get("ids").(value.Seq)
		fmt.Fprintf(w, "DELETE %d\n", len(ids))
	case "table_created":
		fmt.Fprintf(w, "CREATE TABLE %s\n", renderScalar(e.Get("table")))
	case "table_exists":
		fmt.Fprintf(w, "table already exists: %s\n", renderScalar(e.Get("table")))
	case "table_dropped":
		fmt.Fprintf(w, "DROP TABLE %s\n", renderScalar(e.Get("table")))
	case "table_renamed":
		fmt.Fprintf(w, "ALTER TABLE renamed to %s\n", renderScalar(e.Get("to")))
	case "table_truncated":
		fmt.Fprintf(w, "TRUNCATE %s\n", renderScalar(e.Get("table")))
	case "column_added":
		fmt.Fprintf(w, "ALTER TABLE %s ADD COLUMN %s\n", renderScalar(e.Get("table")), renderScalar(e.Get("column")))
	case "column_dropped":
		fmt.Fprintf(w, "ALTER TABLE %s DROP COLUMN %s\n", renderScalar(e.Get("table")), renderScalar(e.Get("column")))
	case "index_created":
		fmt.Fprintf(w, "CREATE INDEX %s\n", renderScalar(e.Get("index")))
	case "index_dropped":
		fmt.Fprintf(w, "DROP INDEX %s\n", renderScalar(e.Get("index")))
	case "view_created", "view_dropped", "trigger_created", "trigger_dropped", "constraint_created", "constraint_dropped":
		fmt.Fprintf(w, "%s\n", e.Type)
	case "transaction_begun":
		fmt.Fprintln(w, "BEGIN")
	case "transaction_committed":
		fmt.Fprintln(w, "COMMIT")
	case "transaction_rolled_back":
		fmt.Fprintln(w, "ROLLBACK")
	default:
		fmt.Fprintf(w, "%s %s\n", e.Type, renderScalar(e.Get("table")))
	}
}

func printTable(w io.Writer, rows value.Seq) {
	if len(rows) == 0 {
		fmt.Fprintln(w, "(0 rows)")
		return
	}
	first, ok := rows[0].(value.Map)
	if !ok {
		fmt.Fprintln(w, "(malformed result)")
		return
	}
	cols := first.Keys()

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
	for _, r := range rows {
		rm, ok := r.(value.Map)
		if !ok {
			continue
		}
		cells := make([]string, len(cols))
		for i, c := range cols {
			v, _ := rm.Get(c)
			cells[i] = renderScalar(v)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
	fmt.Fprintf(w, "(%d row(s))\n", len(rows))
}

func renderScalar(v value.Value) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case value.Null:
		return "NULL"
	case value.Bool:
		if t {
			return "true"
		}
		return "false"
	case value.Int:
		return strconv.FormatInt(int64(t), 10)
	case value.Real:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case value.String:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
