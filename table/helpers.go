package table

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/value"
)

func eventString(e gate.Event, key string) string {
	s, _ := e.Get(key).(value.String)
	return string(s)
}

func eventBool(e gate.Event, key string) bool {
	b, _ := e.Get(key).(value.Bool)
	return bool(b)
}
