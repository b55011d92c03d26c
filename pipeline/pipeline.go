// Package pipeline implements the Row Pipeline Gates of spec §4.J: the
// pure, stateless transforms a compiled query_plan's steps reduce to
// once the planner has resolved the rows a table_scan/derived/cte_ref
// step needs. Every function here takes a row set in and returns a row
// set out, mirroring the way table/index.go's small row-shaping helpers
// (insertIndexEntry, removeIndexEntry) operate on plain value.Map/Seq
// rather than a richer row type.
package pipeline

import (
	"sort"
	"strconv"
	"strings"

	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/value"
)

// Filter keeps the rows for which cond evaluates true.
func Filter(rows []value.Map, cond value.Value, sub eval.SubqueryRunner) ([]value.Map, error) {
	if value.IsNull(cond) {
		return rows, nil
	}
	out := make([]value.Map, 0, len(rows))
	for _, row := range rows {
		ok, err := eval.EvalCondition(cond, row, sub)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// Project builds the output row set from a project step's column list:
// each entry is either the literal marker "*" (copy every input column)
// or {expr,alias}.
func Project(rows []value.Map, columns value.Seq, sub eval.SubqueryRunner) ([]value.Map, error) {
	out := make([]value.Map, len(rows))
	for i, row := range rows {
		projected := value.Map{}
		for _, c := range columns {
			if star, ok := c.(value.String); ok && string(star) == "*" {
				for _, e := range row {
					projected = projected.Set(e.Key, e.Val)
				}
				continue
			}
			m, ok := c.(value.Map)
			if !ok {
				continue
			}
			exprVal, _ := m.Get("expr")
			v, err := eval.EvalExpr(exprVal, row, sub)
			if err != nil {
				return nil, err
			}
			alias := columnLabel(m, exprVal)
			projected = projected.Set(alias, v)
		}
		out[i] = projected
	}
	return out, nil
}

func columnLabel(m value.Map, expr value.Value) string {
	if aliasVal, ok := m.Get("alias"); ok {
		if s, ok := aliasVal.(value.String); ok && s != "" {
			return string(s)
		}
	}
	if col, ok := expr.(value.String); ok {
		return string(col)
	}
	return "?column?"
}

// Distinct keeps the first occurrence of each structurally distinct row.
func Distinct(rows []value.Map) []value.Map {
	out := make([]value.Map, 0, len(rows))
	for _, row := range rows {
		dup := false
		for _, seen := range out {
			if value.Equal(row, seen) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, row)
		}
	}
	return out
}

// OrderBy sorts rows per the order_by step's items, a stable sort so
// ties preserve the previous step's relative order.
func OrderBy(rows []value.Map, items value.Seq, sub eval.SubqueryRunner) ([]value.Map, error) {
	out := make([]value.Map, len(rows))
	copy(out, rows)

	type key struct {
		vals []value.Value
	}
	keys := make([]key, len(out))
	for i, row := range out {
		var vals []value.Value
		for _, it := range items {
			m, _ := it.(value.Map)
			exprVal, _ := m.Get("expr")
			v, err := eval.EvalExpr(exprVal, row, sub)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		keys[i] = key{vals: vals}
	}

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		for k, it := range items {
			m, _ := it.(value.Map)
			dirVal, _ := m.Get("direction")
			desc := string(asString(dirVal)) == "desc"
			nullsVal, _ := m.Get("nulls")
			nullsFirst := desc
			switch string(asString(nullsVal)) {
			case "first":
				nullsFirst = true
			case "last":
				nullsFirst = false
			}

			a, b := keys[i].vals[k], keys[j].vals[k]
			aNull, bNull := value.IsNull(a), value.IsNull(b)
			if aNull || bNull {
				if aNull == bNull {
					continue
				}
				if nullsFirst {
					return aNull
				}
				return bNull
			}
			c := eval.Compare(a, b)
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
	return out, sortErr
}

func asString(v value.Value) value.String {
	s, _ := v.(value.String)
	return s
}

// Limit applies the limit step's optional limit/offset, both nil-safe.
func Limit(rows []value.Map, limit, offset *int64) []value.Map {
	start := int64(0)
	if offset != nil {
		start = *offset
	}
	if start < 0 {
		start = 0
	}
	if start >= int64(len(rows)) {
		return nil
	}
	end := int64(len(rows))
	if limit != nil {
		if start+*limit < end {
			end = start + *limit
		}
	}
	out := make([]value.Map, end-start)
	copy(out, rows[start:end])
	return out
}

// Aggregate groups rows by the aggregate step's groupBy columns and
// computes each aggregates entry, producing one output row per group
// (or a single row summarizing the whole input when groupBy is empty).
func Aggregate(rows []value.Map, groupBy []string, aggregates value.Seq) ([]value.Map, error) {
	groups := map[string][]value.Map{}
	var order []string
	for _, row := range rows {
		k := groupKey(row, groupBy)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], row)
	}
	if len(groupBy) == 0 && len(rows) == 0 {
		// COUNT(*) etc. over an empty set still yields one row.
		order = []string{""}
		groups[""] = nil
	}

	out := make([]value.Map, 0, len(order))
	for _, k := range order {
		members := groups[k]
		result := value.Map{}
		if len(members) > 0 {
			for _, col := range groupBy {
				v, _ := members[0].Get(col)
				result = result.Set(col, v)
			}
		}
		for _, a := range aggregates {
			am, _ := a.(value.Map)
			fnVal, _ := am.Get("fn")
			colVal, _ := am.Get("column")
			aliasVal, _ := am.Get("alias")
			distinctVal, _ := am.Get("distinct")
			sepVal, _ := am.Get("separator")
			v, err := computeAggregate(string(asString(fnVal)), string(asString(colVal)),
				bool(distinctVal.(value.Bool)), string(asString(sepVal)), members)
			if err != nil {
				return nil, err
			}
			result = result.Set(string(asString(aliasVal)), v)
		}
		out = append(out, result)
	}
	return out, nil
}

func groupKey(row value.Map, groupBy []string) string {
	var sb strings.Builder
	for _, col := range groupBy {
		v, _ := row.Get(col)
		sb.WriteString(stringifyKey(v))
		sb.WriteByte('\x1f')
	}
	return sb.String()
}

func stringifyKey(v value.Value) string {
	switch t := v.(type) {
	case value.String:
		return "s:" + string(t)
	case value.Int:
		return "i:" + strconv.FormatInt(int64(t), 10)
	case value.Real:
		return "r:" + strconv.FormatFloat(float64(t), 'g', -1, 64)
	case value.Bool:
		if t {
			return "b:1"
		}
		return "b:0"
	default:
		return "n:"
	}
}

func computeAggregate(fn, column string, distinct bool, sep string, rows []value.Map) (value.Value, error) {
	fn = strings.ToUpper(fn)
	var vals []value.Value
	for _, row := range rows {
		if column == "*" {
			vals = append(vals, value.Int(1))
			continue
		}
		v, _ := row.Get(column)
		if !value.IsNull(v) {
			vals = append(vals, v)
		}
	}
	if distinct {
		vals = dedupe(vals)
	}

	switch fn {
	case "COUNT":
		return value.Int(int64(len(vals))), nil
	case "SUM":
		var sum float64
		allInt := true
		for _, v := range vals {
			f, isInt := numericOf(v)
			sum += f
			if !isInt {
				allInt = false
			}
		}
		if allInt {
			return value.Int(int64(sum)), nil
		}
		return value.Real(sum), nil
	case "AVG":
		if len(vals) == 0 {
			return value.Null{}, nil
		}
		var sum float64
		for _, v := range vals {
			f, _ := numericOf(v)
			sum += f
		}
		return value.Real(sum / float64(len(vals))), nil
	case "MIN":
		return extreme(vals, -1), nil
	case "MAX":
		return extreme(vals, 1), nil
	case "GROUP_CONCAT":
		parts := make([]string, len(vals))
		for i, v := range vals {
			parts[i] = stringifyVal(v)
		}
		return value.String(strings.Join(parts, sep)), nil
	}
	return value.Null{}, nil
}

func dedupe(vals []value.Value) []value.Value {
	out := make([]value.Value, 0, len(vals))
	for _, v := range vals {
		dup := false
		for _, o := range out {
			if value.Equal(v, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, v)
		}
	}
	return out
}

func numericOf(v value.Value) (float64, bool) {
	switch t := v.(type) {
	case value.Int:
		return float64(t), true
	case value.Real:
		return float64(t), false
	}
	return 0, true
}

func extreme(vals []value.Value, sign int) value.Value {
	if len(vals) == 0 {
		return value.Null{}
	}
	best := vals[0]
	for _, v := range vals[1:] {
		if eval.Compare(v, best)*sign > 0 {
			best = v
		}
	}
	return best
}

func stringifyVal(v value.Value) string {
	switch t := v.(type) {
	case value.String:
		return string(t)
	case value.Int:
		return strconv.FormatInt(int64(t), 10)
	case value.Real:
		return strconv.FormatFloat(float64(t), 'g', -1, 64)
	case value.Bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
