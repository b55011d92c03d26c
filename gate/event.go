// Package gate implements the event/gate routing engine (spec §4.E) and
// the read/mutate protocol's gate-facing half (§4.F): Event, Gate,
// PureGate, StateGate, ReadSet, MutationBatch, and the Stream that
// dispatches events to registered gates single-threaded and depth-first.
//
// The package deliberately knows nothing about the content store, ref
// map, or WAL — those live in package runner, which implements
// StateRunner and supplies it to Stream so StateGate dispatch can
// resolve reads and apply mutations without gate importing them (and
// runner importing gate instead, the only direction that doesn't
// cycle).
package gate

import "github.com/gatedb/gatedb/value"

// Event is the unit the router dispatches: a named type plus a
// string-keyed payload.
type Event struct {
	Type string
	Data value.Map
}

// New builds an Event from key/value pairs, e.g.
// gate.New("row_inserted", "table", "users", "id", 1).
func New(typ string, kv ...any) Event {
	return Event{Type: typ, Data: value.MapOf(kv...)}
}

// NewWithData builds an Event from an already-constructed Map.
func NewWithData(typ string, data value.Map) Event {
	return Event{Type: typ, Data: data}
}

// Get returns the value bound to key, or nil if absent.
func (e Event) Get(key string) value.Value {
	v, _ := e.Data.Get(key)
	return v
}

// ErrorEvent builds the standard `error` event shape: {message, source}.
func ErrorEvent(message, source string) Event {
	return New("error", "message", message, "source", source)
}
