package runner

import (
	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/value"
)

// resolveReadSet implements spec §4.F.2: fetch every named ref and
// every pattern-matched ref's object, failing with CorruptRef if a
// bound ref's hash is absent from the store (I1).
func (r *Runner) resolveReadSet(rs *gate.ReadSet) (*gate.State, error) {
	st := gate.NewState()

	for _, name := range rs.RefNames {
		v, err := r.resolveOne(name)
		if err != nil {
			return nil, err
		}
		st.Refs[name] = v
	}

	for _, prefix := range rs.Patterns {
		names, err := r.refs.List(prefix)
		if err != nil {
			return nil, err
		}
		byName := st.Patterns[prefix]
		if byName == nil {
			byName = make(map[string]value.Value)
			st.Patterns[prefix] = byName
		}
		for _, name := range names {
			v, err := r.resolveOne(name)
			if err != nil {
				return nil, err
			}
			byName[name] = v
		}
	}

	return st, nil
}

func (r *Runner) resolveOne(name string) (value.Value, error) {
	hash, ok, err := r.refs.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	v, err := r.store.Get(hash)
	if err != nil {
		return nil, corruptRefErr(name, hash)
	}
	return v, nil
}
