package pipeline

import (
	"sort"
	"strings"

	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/value"
)

// Window evaluates the window step's function list over rows,
// partitioning and ordering within each partition per window, and
// returns rows annotated with one new column per window (keyed by its
// alias) — the value each row carries downstream for project to pick
// up by name, the same "compute once, reference by alias" treatment
// aggregate steps get.
func Window(rows []value.Map, windows value.Seq) ([]value.Map, error) {
	out := make([]value.Map, len(rows))
	copy(out, rows)

	for _, w := range windows {
		wm, _ := w.(value.Map)
		fn := string(asString(get(wm, "fn")))
		column := string(asString(get(wm, "column")))
		alias := string(asString(get(wm, "alias")))
		partitionBy := stringSeq(get(wm, "partitionBy"))
		orderBy, _ := get(wm, "orderBy").(value.Seq)

		partitions := map[string][]int{}
		var order []string
		for i, row := range out {
			k := groupKey(row, partitionBy)
			if _, ok := partitions[k]; !ok {
				order = append(order, k)
			}
			partitions[k] = append(partitions[k], i)
		}

		for _, k := range order {
			idxs := idxsCopy(partitions[k])
			sortPartition(out, idxs, orderBy)
			assignWindowValues(out, idxs, fn, column, alias, orderBy)
		}
	}
	return out, nil
}

func get(m value.Map, key string) value.Value {
	v, _ := m.Get(key)
	return v
}

func stringSeq(v value.Value) []string {
	seq, _ := v.(value.Seq)
	out := make([]string, len(seq))
	for i, s := range seq {
		out[i] = string(asString(s))
	}
	return out
}

func idxsCopy(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func sortPartition(rows []value.Map, idxs []int, orderBy value.Seq) {
	sort.SliceStable(idxs, func(i, j int) bool {
		a, b := rows[idxs[i]], rows[idxs[j]]
		for _, it := range orderBy {
			m, _ := it.(value.Map)
			exprVal := get(m, "expr")
			desc := string(asString(get(m, "direction"))) == "desc"
			av, _ := eval.EvalExpr(exprVal, a, nil)
			bv, _ := eval.EvalExpr(exprVal, b, nil)
			c := eval.Compare(av, bv)
			if c == 0 {
				continue
			}
			if desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func assignWindowValues(rows []value.Map, idxs []int, fn, column, alias string, orderBy value.Seq) {
	fn = strings.ToUpper(fn)
	switch fn {
	case "ROW_NUMBER":
		for rank, i := range idxs {
			rows[i] = rows[i].Set(alias, value.Int(int64(rank+1)))
		}
	case "RANK", "DENSE_RANK":
		rank := 0
		dense := 0
		var prev value.Value
		for pos, i := range idxs {
			var v value.Seq
			for _, it := range orderBy {
				m, _ := it.(value.Map)
				ev, _ := eval.EvalExpr(get(m, "expr"), rows[i], nil)
				v = append(v, ev)
			}
			if pos == 0 || !value.Equal(v, prev) {
				dense++
				rank = pos + 1
			}
			prev = v
			if fn == "DENSE_RANK" {
				rows[i] = rows[i].Set(alias, value.Int(int64(dense)))
			} else {
				rows[i] = rows[i].Set(alias, value.Int(int64(rank)))
			}
		}
	case "SUM", "COUNT", "AVG", "MIN", "MAX":
		var running []value.Map
		for _, i := range idxs {
			running = append(running, rows[i])
			v, _ := computeAggregate(fn, column, false, "", running)
			rows[i] = rows[i].Set(alias, v)
		}
	}
}
