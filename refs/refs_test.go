package refs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemSetGetDelete(t *testing.T) {
	r := NewMem()
	require.NoError(t, r.Set("db/tables/users/rows/1", "H1"))

	h, ok, err := r.Get("db/tables/users/rows/1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "H1", h)

	require.NoError(t, r.Delete("db/tables/users/rows/1"))
	_, ok, err = r.Get("db/tables/users/rows/1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemListPrefixIsStrict(t *testing.T) {
	r := NewMem()
	require.NoError(t, r.Set("db/tables", "H0"))
	require.NoError(t, r.Set("db/tables/users/rows/1", "H1"))
	require.NoError(t, r.Set("db/tables/users/rows/2", "H2"))

	names, err := r.List("db/tables/")
	require.NoError(t, err)
	require.Equal(t, []string{"db/tables/users/rows/1", "db/tables/users/rows/2"}, names)
}

func TestMemListEmptyPrefixReturnsAll(t *testing.T) {
	r := NewMem()
	require.NoError(t, r.Set("a", "1"))
	require.NoError(t, r.Set("b", "2"))
	names, err := r.List("")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, names)
}

func TestFileRefsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, r.Set("db/tables/users/schema", "H1"))
	require.NoError(t, r.Set("db/tables/users/rows/1", "H2"))

	names, err := r.List("db/tables/users/")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"db/tables/users/schema", "db/tables/users/rows/1"}, names)

	require.NoError(t, r.Delete("db/tables/users/rows/1"))
	_, ok, err := r.Get("db/tables/users/rows/1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFileRefsPrunesEmptyDirs(t *testing.T) {
	dir := t.TempDir()
	r, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, r.Set("db/tables/users/rows/1", "H1"))
	require.NoError(t, r.Delete("db/tables/users/rows/1"))

	names, err := r.List("")
	require.NoError(t, err)
	require.Empty(t, names)
}
