package gate

import "github.com/gatedb/gatedb/value"

// ReadSet is a StateGate's declaration of the refs and prefix patterns
// it needs resolved before Transform runs. Chainable: ref/pattern both
// return the receiver so a Reads implementation can build one in a
// single expression.
type ReadSet struct {
	RefNames []string
	Patterns []string
}

// NewReadSet returns an empty ReadSet.
func NewReadSet() *ReadSet {
	return &ReadSet{}
}

// Ref adds a specific ref name to resolve.
func (rs *ReadSet) Ref(name string) *ReadSet {
	rs.RefNames = append(rs.RefNames, name)
	return rs
}

// Pattern adds a prefix whose matching refs should all be resolved.
func (rs *ReadSet) Pattern(prefix string) *ReadSet {
	rs.Patterns = append(rs.Patterns, prefix)
	return rs
}

// State is the resolved form of a ReadSet, built by the Runner:
// Refs maps each requested ref name to its object (nil if the ref was
// absent), and Patterns maps each requested prefix to a name->object
// mapping of every ref that matched it.
type State struct {
	Refs     map[string]value.Value
	Patterns map[string]map[string]value.Value
}

// NewState returns an empty, initialized State.
func NewState() *State {
	return &State{
		Refs:     make(map[string]value.Value),
		Patterns: make(map[string]map[string]value.Value),
	}
}

// Ref returns the resolved value for name (nil if absent/not
// requested).
func (s *State) Ref(name string) value.Value {
	return s.Refs[name]
}

// Pattern returns the resolved name->value mapping for prefix (nil if
// not requested).
func (s *State) Pattern(prefix string) map[string]value.Value {
	return s.Patterns[prefix]
}
