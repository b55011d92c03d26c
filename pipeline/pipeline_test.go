package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/ast"
	"github.com/gatedb/gatedb/value"
)

func rows(maps ...value.Map) []value.Map { return maps }

func TestFilter(t *testing.T) {
	in := rows(
		value.MapOf("id", 1, "active", true),
		value.MapOf("id", 2, "active", false),
	)
	out, err := Filter(in, ast.Cmp("active", "=", ast.Lit(value.Bool(true))), nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, value.Int(1), mustGet(out[0], "id"))
}

func TestProjectStarAndAlias(t *testing.T) {
	in := rows(value.MapOf("id", 1, "name", "a"))
	cols := value.Seq{
		value.String("*"),
		value.MapOf("expr", ast.Column("name"), "alias", "n"),
	}
	out, err := Project(in, cols, nil)
	require.NoError(t, err)
	assert.Equal(t, value.String("a"), mustGet(out[0], "n"))
	assert.Equal(t, value.Int(1), mustGet(out[0], "id"))
}

func TestDistinct(t *testing.T) {
	in := rows(
		value.MapOf("id", 1),
		value.MapOf("id", 1),
		value.MapOf("id", 2),
	)
	out := Distinct(in)
	assert.Len(t, out, 2)
}

func TestOrderByDesc(t *testing.T) {
	in := rows(value.MapOf("n", 1), value.MapOf("n", 3), value.MapOf("n", 2))
	items := value.Seq{value.MapOf("expr", ast.Column("n"), "direction", "desc")}
	out, err := OrderBy(in, items, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), mustGet(out[0], "n"))
	assert.Equal(t, value.Int(1), mustGet(out[2], "n"))
}

func TestLimitOffset(t *testing.T) {
	in := rows(value.MapOf("n", 1), value.MapOf("n", 2), value.MapOf("n", 3))
	lim := int64(1)
	off := int64(1)
	out := Limit(in, &lim, &off)
	require.Len(t, out, 1)
	assert.Equal(t, value.Int(2), mustGet(out[0], "n"))
}

func TestAggregateGroupBy(t *testing.T) {
	in := rows(
		value.MapOf("dept", "eng", "salary", 100),
		value.MapOf("dept", "eng", "salary", 200),
		value.MapOf("dept", "sales", "salary", 50),
	)
	aggs := value.Seq{value.MapOf("fn", "SUM", "column", "salary", "alias", "total", "distinct", false, "separator", ",")}
	out, err := Aggregate(in, []string{"dept"}, aggs)
	require.NoError(t, err)
	require.Len(t, out, 2)
	byDept := map[string]value.Value{}
	for _, r := range out {
		d, _ := r.Get("dept")
		total, _ := r.Get("total")
		byDept[string(d.(value.String))] = total
	}
	assert.Equal(t, value.Int(300), byDept["eng"])
	assert.Equal(t, value.Int(50), byDept["sales"])
}

func TestJoinInner(t *testing.T) {
	left := rows(value.MapOf("id", 1, "name", "a"), value.MapOf("id", 2, "name", "b"))
	right := rows(value.MapOf("user_id", 1, "total", 10))
	on := ast.Cmp("id", "=", ast.Column("user_id"))
	out, err := Join(left, right, "inner", on, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, value.Int(10), mustGet(out[0], "total"))
}

func TestJoinLeftKeepsUnmatched(t *testing.T) {
	left := rows(value.MapOf("id", 1), value.MapOf("id", 2))
	right := rows(value.MapOf("user_id", 1))
	on := ast.Cmp("id", "=", ast.Column("user_id"))
	out, err := Join(left, right, "left", on, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
}

func TestWindowRowNumber(t *testing.T) {
	in := rows(value.MapOf("dept", "eng", "salary", 200), value.MapOf("dept", "eng", "salary", 100))
	orderItem := value.MapOf("expr", ast.Column("salary"), "direction", "desc")
	win := value.MapOf("fn", "ROW_NUMBER", "column", "*", "alias", "rn",
		"partitionBy", value.Seq{value.String("dept")},
		"orderBy", value.Seq{orderItem})
	windows := value.Seq{win}
	out, err := Window(in, windows)
	require.NoError(t, err)
	assert.Equal(t, value.Int(1), mustGet(out[0], "rn"))
}

func mustGet(m value.Map, key string) value.Value {
	v, _ := m.Get(key)
	return v
}
