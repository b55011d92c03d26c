package runner_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/gate"
	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/runner"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/value"
	"github.com/gatedb/gatedb/wal"
)

func newTestRunner(t *testing.T) *runner.Runner {
	t.Helper()
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()

	putGate := gate.StateFunc("put_row",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name, _ := e.Get("ref").(value.String)
			mb := gate.NewMutationBatch().Put("row", e.Get("value"))
			mb.RefSet(string(name), mb.PutIndex())
			return mb, nil
		},
	)
	require.NoError(t, reg.Register(putGate))

	readGate := gate.StateFunc("read_row",
		func(e gate.Event) *gate.ReadSet {
			name, _ := e.Get("ref").(value.String)
			return gate.NewReadSet().Ref(string(name))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name, _ := e.Get("ref").(value.String)
			v := st.Ref(string(name))
			mb := gate.NewMutationBatch()
			mb.Emit(gate.New("row_read", "value", v))
			return mb, nil
		},
	)
	require.NoError(t, reg.Register(readGate))

	r, err := runner.New(store.NewMem(), refs.NewMem(), w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)
	return r
}

func TestAutocommitPutThenRead(t *testing.T) {
	r := newTestRunner(t)
	s := r.NewStream()

	s.Emit(gate.New("put_row", "ref", "users/1", "value", "alice"))
	s.Emit(gate.New("read_row", "ref", "users/1"))

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "row_read", pending[0].Type)
	assert.Equal(t, value.String("alice"), pending[0].Get("value"))
}

func TestTransactionIsolatesReadsFromOutsideObservers(t *testing.T) {
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()

	beginGate := gate.StateFunc("transaction_begin",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil },
	)
	commitGate := gate.StateFunc("transaction_commit",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil },
	)
	putGate := gate.StateFunc("put_row",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name, _ := e.Get("ref").(value.String)
			mb := gate.NewMutationBatch().Put("row", e.Get("value"))
			mb.RefSet(string(name), mb.PutIndex())
			return mb, nil
		},
	)
	readGate := gate.StateFunc("read_row",
		func(e gate.Event) *gate.ReadSet {
			name, _ := e.Get("ref").(value.String)
			return gate.NewReadSet().Ref(string(name))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name, _ := e.Get("ref").(value.String)
			v := st.Ref(string(name))
			mb := gate.NewMutationBatch()
			mb.Emit(gate.New("row_read", "value", v))
			return mb, nil
		},
	)
	require.NoError(t, reg.Register(beginGate))
	require.NoError(t, reg.Register(commitGate))
	require.NoError(t, reg.Register(putGate))
	require.NoError(t, reg.Register(readGate))

	baseStore := store.NewMem()
	baseRefs := refs.NewMem()
	r, err := runner.New(baseStore, baseRefs, w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)

	s := r.NewStream()
	s.Emit(gate.New("transaction_begin"))
	assert.True(t, r.InTransaction())

	s.Emit(gate.New("put_row", "ref", "users/1", "value", "staged"))

	// Outside observer: base refs unaware of the staged write.
	_, ok, _ := baseRefs.Get("users/1")
	assert.False(t, ok)

	s.Emit(gate.New("read_row", "ref", "users/1"))

	s.Emit(gate.New("transaction_commit"))
	assert.False(t, r.InTransaction())

	hash, ok, _ := baseRefs.Get("users/1")
	require.True(t, ok)
	obj, err := baseStore.Get(hash)
	require.NoError(t, err)
	assert.Equal(t, value.String("staged"), obj)

	pending := s.Pending()
	var sawRead, sawCommit bool
	for _, e := range pending {
		if e.Type == "row_read" {
			sawRead = true
			assert.Equal(t, value.String("staged"), e.Get("value"))
		}
		if e.Type == "transaction_committed" {
			sawCommit = true
		}
	}
	assert.True(t, sawRead)
	assert.True(t, sawCommit)
}

func TestRollbackDiscardsStagedWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()

	beginGate := gate.StateFunc("transaction_begin",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil })
	rollbackGate := gate.StateFunc("transaction_rollback",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil })
	putGate := gate.StateFunc("put_row",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name, _ := e.Get("ref").(value.String)
			mb := gate.NewMutationBatch().Put("row", e.Get("value"))
			mb.RefSet(string(name), mb.PutIndex())
			return mb, nil
		})
	require.NoError(t, reg.Register(beginGate))
	require.NoError(t, reg.Register(rollbackGate))
	require.NoError(t, reg.Register(putGate))

	baseRefs := refs.NewMem()
	r, err := runner.New(store.NewMem(), baseRefs, w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)

	s := r.NewStream()
	s.Emit(gate.New("transaction_begin"))
	s.Emit(gate.New("put_row", "ref", "users/1", "value", "doomed"))
	s.Emit(gate.New("transaction_rollback"))

	_, ok, _ := baseRefs.Get("users/1")
	assert.False(t, ok)
	assert.False(t, r.InTransaction())
}

func TestDoubleBeginIsTransactionError(t *testing.T) {
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()
	beginGate := gate.StateFunc("transaction_begin",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil })
	require.NoError(t, reg.Register(beginGate))

	r, err := runner.New(store.NewMem(), refs.NewMem(), w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)

	s := r.NewStream()
	s.Emit(gate.New("transaction_begin"))
	s.Emit(gate.New("transaction_begin"))

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "error", pending[0].Type)
}

func TestCorruptRefSurfacesAsErrorEvent(t *testing.T) {
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()
	readGate := gate.StateFunc("read_row",
		func(e gate.Event) *gate.ReadSet {
			name, _ := e.Get("ref").(value.String)
			return gate.NewReadSet().Ref(string(name))
		},
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil })
	require.NoError(t, reg.Register(readGate))

	baseRefs := refs.NewMem()
	require.NoError(t, baseRefs.Set("users/1", "deadbeef"))
	r, err := runner.New(store.NewMem(), baseRefs, w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)

	s := r.NewStream()
	s.Emit(gate.New("read_row", "ref", "users/1"))

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "error", pending[0].Type)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := wal.New(dir, zerolog.Nop())
	require.NoError(t, err)
	reg := gate.NewRegistry()
	putGate := gate.StateFunc("put_row",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) {
			name, _ := e.Get("ref").(value.String)
			mb := gate.NewMutationBatch().Put("row", e.Get("value"))
			mb.RefSet(string(name), mb.PutIndex())
			return mb, nil
		})
	require.NoError(t, reg.Register(putGate))

	baseRefs := refs.NewMem()
	r, err := runner.New(store.NewMem(), baseRefs, w, reg, gate.Off, zerolog.Nop())
	require.NoError(t, err)

	snap, err := r.Snapshot()
	require.NoError(t, err)

	s := r.NewStream()
	s.Emit(gate.New("put_row", "ref", "users/1", "value", "temp"))
	_, ok, _ := baseRefs.Get("users/1")
	require.True(t, ok)

	require.NoError(t, r.Restore(snap))
	_, ok, _ = baseRefs.Get("users/1")
	assert.False(t, ok)
}
