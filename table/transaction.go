package table

import "github.com/gatedb/gatedb/gate"

// transactionGates returns placeholder StateGates for the three
// transaction-lifecycle signatures. The Runner special-cases these
// signatures before calling Reads/Transform at all (package runner,
// transaction.go) because transaction state lives on the Runner
// itself, not in the content store or ref map — so these bodies never
// actually run in production. They still need to be registered
// (Register fails on an unclaimed signature reaching a gate that
// doesn't exist) and behave sanely if ever invoked directly, e.g. in a
// unit test that drives a StateGate without going through a Runner.
func transactionGates() []gate.StateGate {
	noop := func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil }
	empty := func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() }
	return []gate.StateGate{
		gate.StateFunc("transaction_begin", empty, noop),
		gate.StateFunc("transaction_commit", empty, noop),
		gate.StateFunc("transaction_rollback", empty, noop),
	}
}
