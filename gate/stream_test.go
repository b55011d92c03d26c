package gate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/gate"
)

// fakeRunner lets stream tests exercise StateGate dispatch without a
// real Runner/store/refs/wal.
type fakeRunner struct {
	follow []gate.Event
	err    error
}

func (f *fakeRunner) RunStateGate(g gate.StateGate, e gate.Event) ([]gate.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.follow, nil
}

func TestRegisterDuplicateSignatureCollides(t *testing.T) {
	reg := gate.NewRegistry()
	g := gate.PureFunc("a", func(e gate.Event) (*gate.Event, error) { return nil, nil })
	require.NoError(t, reg.Register(g))
	err := reg.Register(g)
	assert.Error(t, err)
}

func TestEmitDepthFirstOrdering(t *testing.T) {
	var order []string

	reg := gate.NewRegistry()
	require.NoError(t, reg.Register(gate.PureFunc("a", func(e gate.Event) (*gate.Event, error) {
		order = append(order, "a")
		next := gate.New("b")
		return &next, nil
	})))
	require.NoError(t, reg.Register(gate.PureFunc("b", func(e gate.Event) (*gate.Event, error) {
		order = append(order, "b")
		next := gate.New("c")
		return &next, nil
	})))
	require.NoError(t, reg.Register(gate.PureFunc("c", func(e gate.Event) (*gate.Event, error) {
		order = append(order, "c")
		return nil, nil
	})))

	router := gate.NewRouter(reg, &fakeRunner{}, gate.NewLog(gate.Off))
	s := router.NewStream()
	s.Emit(gate.New("a"))

	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Empty(t, s.Pending())
	assert.Equal(t, 3, s.GateCount())
}

func TestUnclaimedEventGoesToPending(t *testing.T) {
	reg := gate.NewRegistry()
	router := gate.NewRouter(reg, &fakeRunner{}, gate.NewLog(gate.Off))
	s := router.NewStream()

	s.Emit(gate.New("mystery"))

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "mystery", pending[0].Type)
	assert.Equal(t, 0, s.GateCount())
	assert.Equal(t, 1, s.EventCount())
}

func TestPanickingGateProducesSingleErrorEventThenContinues(t *testing.T) {
	reg := gate.NewRegistry()
	require.NoError(t, reg.Register(gate.PureFunc("boom", func(e gate.Event) (*gate.Event, error) {
		panic("kaboom")
	})))

	router := gate.NewRouter(reg, &fakeRunner{}, gate.NewLog(gate.Off))
	s := router.NewStream()

	s.Emit(gate.New("boom"))
	s.Emit(gate.New("next-unclaimed"))

	pending := s.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "error", pending[0].Type)
	assert.Equal(t, "next-unclaimed", pending[1].Type)
}

func TestStateGateErrorBecomesErrorEvent(t *testing.T) {
	reg := gate.NewRegistry()
	sg := gate.StateFunc("insert_execute",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil },
	)
	require.NoError(t, reg.Register(sg))

	router := gate.NewRouter(reg, &fakeRunner{err: errors.New("write failed")}, gate.NewLog(gate.Off))
	s := router.NewStream()
	s.Emit(gate.New("insert_execute"))

	pending := s.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "error", pending[0].Type)
}

func TestStateGateFollowUpsDispatchInOrder(t *testing.T) {
	reg := gate.NewRegistry()
	sg := gate.StateFunc("insert_execute",
		func(e gate.Event) *gate.ReadSet { return gate.NewReadSet() },
		func(e gate.Event, st *gate.State) (*gate.MutationBatch, error) { return nil, nil },
	)
	require.NoError(t, reg.Register(sg))

	follow := []gate.Event{gate.New("row_inserted"), gate.New("index_updated")}
	router := gate.NewRouter(reg, &fakeRunner{follow: follow}, gate.NewLog(gate.Off))
	s := router.NewStream()
	s.Emit(gate.New("insert_execute"))

	pending := s.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "row_inserted", pending[0].Type)
	assert.Equal(t, "index_updated", pending[1].Type)
}

func TestChildStreamHasOwnPendingButSharesLog(t *testing.T) {
	reg := gate.NewRegistry()
	router := gate.NewRouter(reg, &fakeRunner{}, gate.NewLog(gate.Deep))
	root := router.NewStream()
	child := root.NewChild()

	root.Emit(gate.New("root-event"))
	child.Emit(gate.New("child-event"))

	assert.Len(t, root.Pending(), 1)
	assert.Len(t, child.Pending(), 1)
	assert.NotEqual(t, root.ID(), child.ID())
}

func TestPendingCopyDoesNotAliasInternalState(t *testing.T) {
	reg := gate.NewRegistry()
	router := gate.NewRouter(reg, &fakeRunner{}, gate.NewLog(gate.Off))
	s := router.NewStream()
	s.Emit(gate.New("unclaimed"))

	cp := s.Pending()
	cp[0] = gate.New("tampered")

	assert.Equal(t, "unclaimed", s.Pending()[0].Type)
}
