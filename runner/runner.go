// Package runner implements the Runner (spec §4.G): it stitches the
// event/gate routing engine (package gate), the content store, the ref
// map, and the WAL together, resolving each claimed StateGate's
// ReadSet, applying its MutationBatch, and dispatching its follow-up
// events. It is the one package allowed to import gate, store, refs,
// and wal together, so it implements gate.StateRunner rather than any
// of those packages depending on each other.
package runner

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/wal"
)

// Runner owns the base store/refs/WAL plus the gate registry and log,
// and implements gate.StateRunner so a Stream can delegate StateGate
// execution to it.
type Runner struct {
	mu sync.Mutex

	baseStore store.Store
	baseRefs  refs.Refs
	wal       *wal.WAL
	log       zerolog.Logger

	// store/refs are the active view a StateGate's Reads/Transform see:
	// base outside a transaction, an overlay while one is active.
	store store.Store
	refs  refs.Refs

	txActive     bool
	stagingStore *store.Mem
	stagingRefs  *overlayRefs

	registry *gate.Registry
	gateLog  *gate.Log
	router   *gate.Router
}

// New builds a Runner over the given backing store/refs/WAL, recovering
// any pending WAL batch first (spec §4.D.4), and wires a fresh Router
// whose StateGate dispatch delegates back to this Runner.
func New(baseStore store.Store, baseRefs refs.Refs, w *wal.WAL, registry *gate.Registry, verbosity gate.Verbosity, log zerolog.Logger) (*Runner, error) {
	if err := w.Recover(baseStore, baseRefs); err != nil {
		return nil, err
	}
	r := &Runner{
		baseStore: baseStore,
		baseRefs:  baseRefs,
		store:     baseStore,
		refs:      baseRefs,
		wal:       w,
		log:       log.With().Str("component", "runner").Logger(),
		registry:  registry,
		gateLog:   gate.NewLog(verbosity),
	}
	r.router = gate.NewRouter(registry, r, r.gateLog)
	return r, nil
}

// NewStream starts a root Stream dispatching through this Runner's
// Router.
func (r *Runner) NewStream() *gate.Stream {
	return r.router.NewStream()
}

// Log returns the shared structured log.
func (r *Runner) Log() *gate.Log { return r.gateLog }

// InTransaction reports whether a transaction is currently staged.
func (r *Runner) InTransaction() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.txActive
}

// RunStateGate implements gate.StateRunner. Transaction-lifecycle
// signatures are special-cased because they mutate the Runner's own
// staging state rather than the content store or ref map directly;
// every other StateGate goes through the generic resolve/transform/
// apply path against whichever view (base or staging overlay) is
// currently active.
func (r *Runner) RunStateGate(g gate.StateGate, e gate.Event) ([]gate.Event, error) {
	switch g.Signature() {
	case "transaction_begin":
		return r.beginTransaction()
	case "transaction_commit":
		return r.commitTransaction()
	case "transaction_rollback":
		return r.rollbackTransaction()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rs := g.Reads(e)
	st, err := r.resolveReadSet(rs)
	if err != nil {
		return nil, err
	}
	mb, err := g.Transform(e, st)
	if err != nil {
		return nil, err
	}
	if mb == nil {
		return nil, nil
	}
	if err := r.applyMutationBatch(mb); err != nil {
		return nil, err
	}
	return mb.Emits, nil
}

func corruptRefErr(name, hash string) error {
	return &gateerr.CorruptRef{RefName: name, Hash: hash}
}
