package value

// ToAny converts v into plain Go values (nil, bool, int64, float64,
// string, []any, map[string]any) suitable for encoding/json, used by the
// WAL and the file-backed store to serialize objects to disk.
func ToAny(v Value) any {
	if IsNull(v) {
		return nil
	}
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Real:
		return float64(t)
	case String:
		return string(t)
	case Seq:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToAny(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = ToAny(e.Val)
		}
		return out
	default:
		return nil
	}
}

// FromAny converts a decoded JSON value (as produced by
// encoding/json.Unmarshal into an any) back into a Value. Numbers arrive
// as float64 from encoding/json; FromAny narrows to Int when the value
// has no fractional part, matching Canonical's own integer/real rule.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case bool:
		return Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Real(t)
	case int64:
		return Int(t)
	case int:
		return Int(int64(t))
	case string:
		return String(t)
	case []any:
		out := make(Seq, len(t))
		for i, e := range t {
			out[i] = FromAny(e)
		}
		return out
	case map[string]any:
		var m Map
		for k, e := range t {
			m = m.Set(k, FromAny(e))
		}
		return m
	default:
		return Null{}
	}
}
