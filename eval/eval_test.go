package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/value"
)

func row(kv ...any) value.Map {
	return value.MapOf(kv...)
}

func TestEvalConditionComparison(t *testing.T) {
	r := row("age", 30)
	cond := value.MapOf("column", "age", "op", ">=", "value", value.Int(18))
	ok, err := eval.EvalCondition(cond, r, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalConditionNullComparisonIsFalse(t *testing.T) {
	r := row("age", value.Null{})
	cond := value.MapOf("column", "age", "op", ">=", "value", value.Int(18))
	ok, err := eval.EvalCondition(cond, r, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvalConditionAndOr(t *testing.T) {
	r := row("age", 30, "name", "alice")
	cond := value.MapOf("and", value.Seq{
		value.MapOf("column", "age", "op", ">", "value", value.Int(10)),
		value.MapOf("column", "name", "op", "=", "value", value.String("alice")),
	})
	ok, err := eval.EvalCondition(cond, r, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalConditionLike(t *testing.T) {
	r := row("name", "Alice Smith")
	cond := value.MapOf("column", "name", "op", "like", "value", value.String("Alice%"))
	ok, err := eval.EvalCondition(cond, r, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalConditionNilIsTrue(t *testing.T) {
	ok, err := eval.EvalCondition(nil, row(), nil)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalExprArithmetic(t *testing.T) {
	expr := value.MapOf("op", "+", "left", value.Int(2), "right", value.Int(3))
	v, err := eval.EvalExpr(expr, row(), nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(5), v)
}

func TestEvalExprColumnLookup(t *testing.T) {
	r := row("age", 42)
	v, err := eval.EvalExpr(value.String("age"), r, nil)
	require.NoError(t, err)
	assert.Equal(t, value.Int(42), v)
}

func TestEvalExprDivisionByZeroIsNull(t *testing.T) {
	expr := value.MapOf("op", "/", "left", value.Int(1), "right", value.Int(0))
	v, err := eval.EvalExpr(expr, row(), nil)
	require.NoError(t, err)
	assert.True(t, value.IsNull(v))
}

func TestEvalExprFunctionCall(t *testing.T) {
	expr := value.MapOf("fn", "UPPER", "args", value.Seq{value.String("abc")})
	v, err := eval.EvalExpr(expr, row(), nil)
	require.NoError(t, err)
	assert.Equal(t, value.String("ABC"), v)
}

func TestCallFunctionCoalesce(t *testing.T) {
	v, err := eval.CallFunction("COALESCE", []value.Value{value.Null{}, value.Int(7)})
	require.NoError(t, err)
	assert.Equal(t, value.Int(7), v)
}

func TestCallFunctionCast(t *testing.T) {
	v, err := eval.CallFunction("CAST", []value.Value{value.String("42"), value.String("int")})
	require.NoError(t, err)
	assert.Equal(t, value.Int(42), v)
}

func TestCompareOrdersByType(t *testing.T) {
	assert.True(t, eval.Compare(value.Int(1), value.Bool(true)) < 0)
	assert.True(t, eval.Compare(value.Bool(true), value.String("a")) < 0)
	assert.Equal(t, 0, eval.Compare(value.Int(5), value.Real(5)))
}
