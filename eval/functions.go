package eval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

// CallFunction dispatches the §6.E built-in function catalog.
func CallFunction(name string, args []value.Value) (value.Value, error) {
	name = strings.ToUpper(name)
	switch name {
	// String
	case "UPPER":
		return value.String(strings.ToUpper(argString(args, 0))), nil
	case "LOWER":
		return value.String(strings.ToLower(argString(args, 0))), nil
	case "LENGTH", "CHAR_LENGTH":
		return value.Int(len([]rune(argString(args, 0)))), nil
	case "CONCAT":
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(stringify(a))
		}
		return value.String(sb.String()), nil
	case "SUBSTR":
		return substr(args)
	case "REPLACE":
		return value.String(strings.ReplaceAll(argString(args, 0), argString(args, 1), argString(args, 2))), nil
	case "TRIM":
		return value.String(strings.TrimSpace(argString(args, 0))), nil
	case "LEFT":
		return leftRight(args, true)
	case "RIGHT":
		return leftRight(args, false)
	case "REVERSE":
		r := []rune(argString(args, 0))
		for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
			r[i], r[j] = r[j], r[i]
		}
		return value.String(string(r)), nil
	case "REPEAT":
		n := int(argInt(args, 1))
		if n < 0 {
			n = 0
		}
		return value.String(strings.Repeat(argString(args, 0), n)), nil
	case "LPAD":
		return pad(args, true)
	case "RPAD":
		return pad(args, false)
	case "POSITION":
		idx := strings.Index(argString(args, 1), argString(args, 0))
		return value.Int(idx + 1), nil
	case "STARTS_WITH":
		return value.Bool(strings.HasPrefix(argString(args, 0), argString(args, 1))), nil
	case "ENDS_WITH":
		return value.Bool(strings.HasSuffix(argString(args, 0), argString(args, 1))), nil

	// Math
	case "ABS":
		f := argFloat(args, 0)
		return value.Real(math.Abs(f)), nil
	case "ROUND":
		return roundFn(args)
	case "CEIL":
		return value.Real(math.Ceil(argFloat(args, 0))), nil
	case "FLOOR":
		return value.Real(math.Floor(argFloat(args, 0))), nil
	case "POWER":
		return value.Real(math.Pow(argFloat(args, 0), argFloat(args, 1))), nil
	case "SQRT":
		return value.Real(math.Sqrt(argFloat(args, 0))), nil
	case "MOD":
		a, b := argInt(args, 0), argInt(args, 1)
		if b == 0 {
			return value.Null{}, nil
		}
		return value.Int(a % b), nil
	case "SIGN":
		f := argFloat(args, 0)
		switch {
		case f > 0:
			return value.Int(1), nil
		case f < 0:
			return value.Int(-1), nil
		default:
			return value.Int(0), nil
		}
	case "LN":
		return value.Real(math.Log(argFloat(args, 0))), nil
	case "EXP":
		return value.Real(math.Exp(argFloat(args, 0))), nil
	case "PI":
		return value.Real(math.Pi), nil

	// Null/cond
	case "COALESCE":
		for _, a := range args {
			if !value.IsNull(a) {
				return a, nil
			}
		}
		return value.Null{}, nil
	case "IFNULL":
		if len(args) > 0 && !value.IsNull(args[0]) {
			return args[0], nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return value.Null{}, nil
	case "NULLIF":
		if len(args) == 2 && value.Equal(args[0], args[1]) {
			return value.Null{}, nil
		}
		if len(args) > 0 {
			return args[0], nil
		}
		return value.Null{}, nil
	case "IIF":
		if len(args) != 3 {
			return nil, &gateerr.TypeError{Message: "IIF takes 3 arguments"}
		}
		cond, _ := args[0].(value.Bool)
		if cond {
			return args[1], nil
		}
		return args[2], nil

	// Type
	case "CAST":
		return cast(argString(args, 1), args[0])
	case "TYPEOF":
		return value.String(typeName(args[0])), nil

	// Compare
	case "GREATEST":
		return extremum(args, 1), nil
	case "LEAST":
		return extremum(args, -1), nil

	// Date/time
	case "DATE":
		return dateTimeFn(args, "2006-01-02")
	case "TIME":
		return dateTimeFn(args, "15:04:05")
	case "DATETIME":
		return dateTimeFn(args, "2006-01-02 15:04:05")
	case "CURRENT_DATE":
		return value.String(time.Now().UTC().Format("2006-01-02")), nil
	case "STRFTIME":
		return strftime(args)
	}
	return nil, &gateerr.TypeError{Message: fmt.Sprintf("unknown function %q", name)}
}

func argString(args []value.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	return stringify(args[i])
}

func argFloat(args []value.Value, i int) float64 {
	if i >= len(args) {
		return 0
	}
	f, _ := asReal(args[i])
	return f
}

func argInt(args []value.Value, i int) int64 {
	if i >= len(args) {
		return 0
	}
	switch t := args[i].(type) {
	case value.Int:
		return int64(t)
	case value.Real:
		return int64(t)
	}
	return 0
}

func substr(args []value.Value) (value.Value, error) {
	s := []rune(argString(args, 0))
	start := int(argInt(args, 1))
	if start < 1 {
		start = 1
	}
	if start > len(s)+1 {
		return value.String(""), nil
	}
	end := len(s)
	if len(args) > 2 {
		n := int(argInt(args, 2))
		if start-1+n < end {
			end = start - 1 + n
		}
	}
	if end < start-1 {
		end = start - 1
	}
	return value.String(string(s[start-1 : end])), nil
}

func leftRight(args []value.Value, fromLeft bool) (value.Value, error) {
	s := []rune(argString(args, 0))
	n := int(argInt(args, 1))
	if n < 0 {
		n = 0
	}
	if n > len(s) {
		n = len(s)
	}
	if fromLeft {
		return value.String(string(s[:n])), nil
	}
	return value.String(string(s[len(s)-n:])), nil
}

func pad(args []value.Value, left bool) (value.Value, error) {
	s := argString(args, 0)
	n := int(argInt(args, 1))
	fill := " "
	if len(args) > 2 {
		fill = argString(args, 2)
	}
	if fill == "" || len([]rune(s)) >= n {
		r := []rune(s)
		if len(r) > n {
			if left {
				return value.String(string(r[len(r)-n:])), nil
			}
			return value.String(string(r[:n])), nil
		}
		return value.String(s), nil
	}
	need := n - len([]rune(s))
	var sb strings.Builder
	for len([]rune(sb.String())) < need {
		sb.WriteString(fill)
	}
	padStr := string([]rune(sb.String())[:need])
	if left {
		return value.String(padStr + s), nil
	}
	return value.String(s + padStr), nil
}

func roundFn(args []value.Value) (value.Value, error) {
	f := argFloat(args, 0)
	digits := 0
	if len(args) > 1 {
		digits = int(argInt(args, 1))
	}
	mult := math.Pow(10, float64(digits))
	r := math.Round(f*mult) / mult
	if digits <= 0 && r == math.Trunc(r) {
		return value.Int(int64(r)), nil
	}
	return value.Real(r), nil
}

func cast(typ string, v value.Value) (value.Value, error) {
	switch strings.ToLower(typ) {
	case "int", "integer", "bigint":
		switch t := v.(type) {
		case value.Int:
			return t, nil
		case value.Real:
			return value.Int(int64(t)), nil
		case value.String:
			n, err := strconv.ParseInt(strings.TrimSpace(string(t)), 10, 64)
			if err != nil {
				return nil, &gateerr.TypeError{Message: "cannot cast " + string(t) + " to int"}
			}
			return value.Int(n), nil
		}
	case "real", "float", "double", "decimal":
		if f, ok := asReal(v); ok {
			return value.Real(f), nil
		}
		if s, ok := v.(value.String); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(string(s)), 64)
			if err != nil {
				return nil, &gateerr.TypeError{Message: "cannot cast " + string(s) + " to real"}
			}
			return value.Real(f), nil
		}
	case "text", "varchar", "string":
		return value.String(stringify(v)), nil
	case "bool", "boolean":
		if b, ok := v.(value.Bool); ok {
			return b, nil
		}
		return value.Bool(stringify(v) == "true"), nil
	}
	return value.String(stringify(v)), nil
}

func typeName(v value.Value) string {
	switch v.(type) {
	case value.Null, nil:
		return "null"
	case value.Bool:
		return "boolean"
	case value.Int:
		return "integer"
	case value.Real:
		return "real"
	case value.String:
		return "text"
	case value.Seq:
		return "sequence"
	case value.Map:
		return "mapping"
	}
	return "unknown"
}

func extremum(args []value.Value, sign int) value.Value {
	if len(args) == 0 {
		return value.Null{}
	}
	best := args[0]
	for _, a := range args[1:] {
		if value.IsNull(a) {
			continue
		}
		if value.IsNull(best) || Compare(a, best)*sign > 0 {
			best = a
		}
	}
	return best
}

func dateTimeFn(args []value.Value, layout string) (value.Value, error) {
	t, err := parseTimeArg(args)
	if err != nil {
		return nil, err
	}
	return value.String(t.UTC().Format(layout)), nil
}

func parseTimeArg(args []value.Value) (time.Time, error) {
	if len(args) == 0 {
		return time.Now(), nil
	}
	s := argString(args, 0)
	if s == "" || strings.EqualFold(s, "now") {
		return time.Now(), nil
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &gateerr.TypeError{Message: "unparseable date/time: " + s}
}

func strftime(args []value.Value) (value.Value, error) {
	if len(args) < 2 {
		return nil, &gateerr.TypeError{Message: "STRFTIME requires (format, date)"}
	}
	format := argString(args, 0)
	t, err := parseTimeArg(args[1:])
	if err != nil {
		return nil, err
	}
	return value.String(strftimeFormat(format, t)), nil
}

// strftimeFormat supports the common subset needed by the date/time
// catalog: %Y %m %d %H %M %S.
func strftimeFormat(format string, t time.Time) string {
	replacer := strings.NewReplacer(
		"%Y", fmt.Sprintf("%04d", t.Year()),
		"%m", fmt.Sprintf("%02d", int(t.Month())),
		"%d", fmt.Sprintf("%02d", t.Day()),
		"%H", fmt.Sprintf("%02d", t.Hour()),
		"%M", fmt.Sprintf("%02d", t.Minute()),
		"%S", fmt.Sprintf("%02d", t.Second()),
	)
	return replacer.Replace(format)
}
