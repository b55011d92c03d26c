// Package store implements the content-addressed object store (spec
// §4.A): values are keyed by the SHA-256 hex digest of their canonical
// encoding, immutable once written, and deduplicated by construction.
package store

import (
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
)

// Store is the content store interface; Mem and File are its two
// implementations.
type Store interface {
	// Put canonical-encodes v, hashes it, inserts it if absent, and
	// returns the hash. Idempotent.
	Put(v value.Value) (string, error)
	// Get returns a deep copy of the object stored under hash, or a
	// *gateerr.NotFound error if absent.
	Get(hash string) (value.Value, error)
	// Has reports whether hash is present.
	Has(hash string) (bool, error)
}

func notFound(hash string) error {
	return &gateerr.NotFound{Kind: "hash", Name: hash}
}
