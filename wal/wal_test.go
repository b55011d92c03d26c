package wal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gatedb/gatedb/refs"
	"github.com/gatedb/gatedb/store"
	"github.com/gatedb/gatedb/value"
)

func TestBeginCommitRemovesFile(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, zerolog.Nop())
	require.NoError(t, err)

	_, err = w.Begin([]PutOp{{Hash: "H1", Content: value.MapOf("id", 1)}}, nil, nil)
	require.NoError(t, err)

	_, dirty, err := w.Check()
	require.NoError(t, err)
	require.True(t, dirty)

	require.NoError(t, w.Commit())
	_, dirty, err = w.Check()
	require.NoError(t, err)
	require.False(t, dirty)
}

func TestCrashRecoverySwingsRef(t *testing.T) {
	dir := t.TempDir()
	row := value.MapOf("id", 1, "name", "Alice")
	h := value.Hash(row)

	s, err := store.NewFile(dir)
	require.NoError(t, err)
	_, err = s.Put(row)
	require.NoError(t, err)

	r, err := refs.NewFile(dir)
	require.NoError(t, err)

	batch := &Batch{
		Puts: []PutOp{{Hash: h, Content: row, Applied: true}},
		RefSets: []RefSetOp{
			{Name: "db/tables/users/rows/1", Hash: h, Applied: false},
		},
	}
	for i := range batch.Puts {
		batch.Puts[i].Raw = value.ToAny(batch.Puts[i].Content)
	}
	data, err := json.MarshalIndent(batch, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wal", "pending.json"), data, 0o644))

	_, ok, err := r.Get("db/tables/users/rows/1")
	require.NoError(t, err)
	require.False(t, ok)

	w, err := New(dir, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Recover(s, r))

	hash, ok, err := r.Get("db/tables/users/rows/1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, h, hash)

	_, dirty, err := w.Check()
	require.NoError(t, err)
	require.False(t, dirty)
}

func TestRecoverIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := store.NewMem()
	r := refs.NewMem()
	w, err := New(dir, zerolog.Nop())
	require.NoError(t, err)

	row := value.MapOf("id", 1)
	h, err := s.Put(row)
	require.NoError(t, err)
	_, err = w.Begin([]PutOp{{Hash: h, Content: row}}, []RefSetOp{{Name: "x", Hash: h}}, nil)
	require.NoError(t, err)

	require.NoError(t, w.Recover(s, r))
	require.NoError(t, w.Recover(s, r)) // second call is a no-op, file already gone

	hash, ok, err := r.Get("x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, h, hash)
}
