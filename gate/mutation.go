package gate

import "github.com/gatedb/gatedb/value"

// Put is one pending content-store write a MutationBatch describes.
// TypeTag is informational (used by logging/metrics, never interpreted
// by the store).
type Put struct {
	TypeTag string
	Content value.Value
}

// RefSet binds Name to the hash of the PutIndex'th Put in the same
// batch (when ByHash is false) or to Hash directly (when ByHash is
// true, used when swinging a ref to an already-known object).
type RefSet struct {
	Name     string
	PutIndex int
	Hash     string
	ByHash   bool
}

// RefDelete removes Name.
type RefDelete struct {
	Name string
}

// MutationBatch is a StateGate's declaration of what to write and what
// to emit next. Chainable, mirroring ReadSet.
type MutationBatch struct {
	Puts       []Put
	RefSets    []RefSet
	RefDeletes []RefDelete
	Emits      []Event
}

// NewMutationBatch returns an empty MutationBatch.
func NewMutationBatch() *MutationBatch {
	return &MutationBatch{}
}

// Put appends a pending content-store write and returns the batch for
// chaining. Use len(b.Puts)-1 right after calling this as the index to
// pass to RefSet.
func (b *MutationBatch) Put(typeTag string, content value.Value) *MutationBatch {
	b.Puts = append(b.Puts, Put{TypeTag: typeTag, Content: content})
	return b
}

// PutIndex returns the index the most recent Put call was assigned,
// for passing to RefSet without hand-counting.
func (b *MutationBatch) PutIndex() int {
	return len(b.Puts) - 1
}

// RefSet binds name to the hash of the putIndex'th put in this batch.
// Panics if putIndex is out of range at build time — a StateGate that
// references a put it never made is a programming error, not a runtime
// condition callers should need to handle.
func (b *MutationBatch) RefSet(name string, putIndex int) *MutationBatch {
	if putIndex < 0 || putIndex >= len(b.Puts) {
		panic("gate: RefSet putIndex out of range")
	}
	b.RefSets = append(b.RefSets, RefSet{Name: name, PutIndex: putIndex})
	return b
}

// RefSetHash binds name directly to a pre-existing hash.
func (b *MutationBatch) RefSetHash(name, hash string) *MutationBatch {
	b.RefSets = append(b.RefSets, RefSet{Name: name, Hash: hash, ByHash: true})
	return b
}

// RefDelete queues name for removal.
func (b *MutationBatch) RefDelete(name string) *MutationBatch {
	b.RefDeletes = append(b.RefDeletes, RefDelete{Name: name})
	return b
}

// Emit queues a follow-up event, dispatched depth-first once this
// batch's mutations have applied.
func (b *MutationBatch) Emit(e Event) *MutationBatch {
	b.Emits = append(b.Emits, e)
	return b
}
