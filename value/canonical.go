package value

import (
	"strconv"
	"strings"
)

// Canonical produces the deterministic byte encoding of v described in
// spec §4.C: equal values yield byte-identical output, map keys sort by
// codepoint, reals that are integral encode without a fractional part,
// and undefined/null map values are omitted rather than written as null.
func Canonical(v Value) []byte {
	var b strings.Builder
	encode(&b, v)
	return []byte(b.String())
}

// CanonicalString is Canonical as a string, for callers (mostly tests)
// that want to compare or print it directly.
func CanonicalString(v Value) string {
	var b strings.Builder
	encode(&b, v)
	return b.String()
}

func encode(b *strings.Builder, v Value) {
	if IsNull(v) {
		b.WriteString("null")
		return
	}
	switch t := v.(type) {
	case Bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Int:
		b.WriteString(strconv.FormatInt(int64(t), 10))
	case Real:
		encodeReal(b, float64(t))
	case String:
		encodeString(b, string(t))
	case Seq:
		b.WriteByte('[')
		for i, e := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			encode(b, e)
		}
		b.WriteByte(']')
	case Map:
		b.WriteByte('{')
		first := true
		for _, e := range t {
			if e.Val == nil {
				continue
			}
			if !first {
				b.WriteByte(',')
			}
			first = false
			encodeString(b, e.Key)
			b.WriteByte(':')
			encode(b, e.Val)
		}
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

// encodeReal implements "shortest decimal round-trip; integers that
// happen to be real encode as integer form".
func encodeReal(b *strings.Builder, f float64) {
	if f == float64(int64(f)) && !isNegZero(f) {
		b.WriteString(strconv.FormatInt(int64(f), 10))
		return
	}
	b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func isNegZero(f float64) bool {
	return f == 0 && (1/f) < 0
}

func encodeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString("\\u")
				const hex = "0123456789abcdef"
				b.WriteByte(hex[(r>>12)&0xf])
				b.WriteByte(hex[(r>>8)&0xf])
				b.WriteByte(hex[(r>>4)&0xf])
				b.WriteByte(hex[r&0xf])
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}
