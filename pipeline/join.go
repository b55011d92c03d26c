package pipeline

import (
	"github.com/gatedb/gatedb/eval"
	"github.com/gatedb/gatedb/value"
)

// Join combines left and right per a join step's kind and ON condition.
// Matched rows merge right's entries over a copy of left's (a later
// bare column wins on a name collision — known limitation, see
// DESIGN.md); unmatched left rows of a left/full join, and unmatched
// right rows of a right/full join, pair with an empty Map so referenced
// columns on the missing side resolve to null via normal column lookup.
func Join(left, right []value.Map, kind string, on value.Value, sub eval.SubqueryRunner) ([]value.Map, error) {
	var out []value.Map
	rightMatched := make([]bool, len(right))

	for _, lrow := range left {
		matchedAny := false
		for ri, rrow := range right {
			merged := merge(lrow, rrow)
			if kind == "cross" {
				out = append(out, merged)
				matchedAny = true
				continue
			}
			ok, err := eval.EvalCondition(on, merged, sub)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, merged)
				matchedAny = true
				rightMatched[ri] = true
			}
		}
		if !matchedAny && (kind == "left" || kind == "full") {
			out = append(out, merge(lrow, value.Map{}))
		}
	}

	if kind == "right" || kind == "full" {
		for ri, rrow := range right {
			if !rightMatched[ri] {
				out = append(out, merge(value.Map{}, rrow))
			}
		}
	}
	return out, nil
}

func merge(left, right value.Map) value.Map {
	out := left
	for _, e := range right {
		out = out.Set(e.Key, e.Val)
	}
	return out
}
