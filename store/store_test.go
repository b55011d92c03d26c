package store

import (
	"testing"

	"github.com/gatedb/gatedb/gateerr"
	"github.com/gatedb/gatedb/value"
	"github.com/stretchr/testify/require"
)

func TestMemPutGetRoundTrip(t *testing.T) {
	s := NewMem()
	v := value.MapOf("name", "Alice", "id", 1)
	h, err := s.Put(v)
	require.NoError(t, err)

	got, err := s.Get(h)
	require.NoError(t, err)
	require.Equal(t, value.CanonicalString(v), value.CanonicalString(got))
}

func TestMemPutIdempotent(t *testing.T) {
	s := NewMem()
	v := value.MapOf("a", 1)
	h1, err := s.Put(v)
	require.NoError(t, err)
	h2, err := s.Put(v)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestMemGetMissing(t *testing.T) {
	s := NewMem()
	_, err := s.Get("deadbeef")
	require.Error(t, err)
	var nf *gateerr.NotFound
	require.ErrorAs(t, err, &nf)
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFile(dir)
	require.NoError(t, err)

	v := value.MapOf("name", "Bob", "active", true)
	h, err := s.Put(v)
	require.NoError(t, err)

	has, err := s.Has(h)
	require.NoError(t, err)
	require.True(t, has)

	got, err := s.Get(h)
	require.NoError(t, err)
	require.Equal(t, value.CanonicalString(v), value.CanonicalString(got))
}

func TestFileAndMemProduceSameHash(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFile(dir)
	require.NoError(t, err)
	ms := NewMem()

	v := value.MapOf("x", 1, "y", "z")
	h1, err := fs.Put(v)
	require.NoError(t, err)
	h2, err := ms.Put(v)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}
