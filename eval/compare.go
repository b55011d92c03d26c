// Package eval implements the Expression Evaluator of spec §4.I: the
// Condition and Scalar Expression grammars, both encoded directly as
// value.Value trees (the same Map/Seq/scalar shapes the rest of the
// system already speaks), plus the §6.E built-in function catalog.
package eval

import (
	"strconv"
	"strings"

	"github.com/gatedb/gatedb/value"
)

// typeRank orders the three-way type precedence used by ORDER BY and
// index sort order: numeric < bool < string (§4.J).
func typeRank(v value.Value) int {
	switch v.(type) {
	case value.Int, value.Real:
		return 0
	case value.Bool:
		return 1
	case value.String:
		return 2
	default:
		return 3
	}
}

func asReal(v value.Value) (float64, bool) {
	switch t := v.(type) {
	case value.Int:
		return float64(t), true
	case value.Real:
		return float64(t), true
	}
	return 0, false
}

// Compare orders a and b per §4.J: numeric < bool < string by type,
// natural order within type, nulls sort last. Returns -1, 0, or 1.
func Compare(a, b value.Value) int {
	aNull, bNull := value.IsNull(a), value.IsNull(b)
	switch {
	case aNull && bNull:
		return 0
	case aNull:
		return 1
	case bNull:
		return -1
	}

	if ar, aok := asReal(a); aok {
		if br, bok := asReal(b); bok {
			switch {
			case ar < br:
				return -1
			case ar > br:
				return 1
			default:
				return 0
			}
		}
	}

	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}

	switch av := a.(type) {
	case value.Bool:
		bv := b.(value.Bool)
		if av == bv {
			return 0
		}
		if !bool(av) {
			return -1
		}
		return 1
	case value.String:
		bv := b.(value.String)
		return strings.Compare(string(av), string(bv))
	}
	return 0
}

// coerceNumeric attempts best-effort numeric coercion of a string
// operand, used by comparison and arithmetic when one side is numeric
// and the other is a string (§4.I).
func coerceNumeric(v value.Value) (value.Value, bool) {
	s, ok := v.(value.String)
	if !ok {
		return v, true
	}
	return parseNumber(string(s))
}

// coerceForCompare applies coerceNumeric to whichever side is a string
// when the other side is numeric, so a comparison like age > '3' reads
// '3' as 3 instead of falling back to type-rank ordering (§4.I).
func coerceForCompare(a, b value.Value) (value.Value, value.Value) {
	_, aStr := a.(value.String)
	_, bStr := b.(value.String)
	if aStr && !bStr {
		if _, bNum := asReal(b); bNum {
			if ca, ok := coerceNumeric(a); ok {
				a = ca
			}
		}
	} else if bStr && !aStr {
		if _, aNum := asReal(a); aNum {
			if cb, ok := coerceNumeric(b); ok {
				b = cb
			}
		}
	}
	return a, b
}

func parseNumber(s string) (value.Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return value.Int(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return value.Real(f), true
	}
	return nil, false
}
