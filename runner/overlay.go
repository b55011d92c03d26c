package runner

import (
	"sort"

	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/value"
)

// overlayStore layers an in-memory staging store on top of a base
// store for the lifetime of a transaction (spec §4.H, Design Notes
// "Transaction staging"). Writes land only in staging; reads check
// staging first and fall through to base.
type overlayStore struct {
	base    store.Store
	staging store.Store
}

func (o *overlayStore) Put(v value.Value) (string, error) {
	return o.staging.Put(v)
}

func (o *overlayStore) Get(hash string) (value.Value, error) {
	if ok, _ := o.staging.Has(hash); ok {
		return o.staging.Get(hash)
	}
	return o.base.Get(hash)
}

func (o *overlayStore) Has(hash string) (bool, error) {
	if ok, err := o.staging.Has(hash); ok || err != nil {
		return ok, err
	}
	return o.base.Has(hash)
}

// overlayRefs layers staged ref sets and deletes on top of a base Refs
// for the lifetime of a transaction. staging holds every name Set
// during the transaction; deleted holds every name Delete'd during it
// (so a delete of a base-only ref is visible to reads without touching
// base). Both maps double as the commit journal: Commit replays
// staging's contents and deleted's names against base in one WAL batch.
type overlayRefs struct {
	base    refs.Refs
	staging *refs.Mem
	deleted map[string]bool
}

func newOverlayRefs(base refs.Refs) *overlayRefs {
	return &overlayRefs{base: base, staging: refs.NewMem(), deleted: make(map[string]bool)}
}

func (o *overlayRefs) Get(name string) (string, bool, error) {
	if o.deleted[name] {
		return "", false, nil
	}
	if h, ok, _ := o.staging.Get(name); ok {
		return h, true, nil
	}
	return o.base.Get(name)
}

func (o *overlayRefs) Set(name, hash string) error {
	delete(o.deleted, name)
	return o.staging.Set(name, hash)
}

func (o *overlayRefs) Delete(name string) error {
	o.deleted[name] = true
	return o.staging.Delete(name)
}

func (o *overlayRefs) List(prefix string) ([]string, error) {
	baseNames, err := o.base.List(prefix)
	if err != nil {
		return nil, err
	}
	stagingNames, err := o.staging.List(prefix)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, n := range stagingNames {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range baseNames {
		if o.deleted[n] || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}
