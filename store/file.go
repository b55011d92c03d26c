package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gatedb/gatedb/value"
)

// File is a Store backed by <base>/store/<hash[0:2]>/<hash[2:]>, each
// file holding the canonical encoding's JSON-convertible form. Canonical
// bytes themselves (value.Canonical) are what's hashed; the file holds
// the JSON round-trip form (value.ToAny) so a partially-written file
// can't silently reparse into a different value than the one hashed —
// the hash is the source of truth and is re-derived from the decoded
// value on Get, not trusted from the path alone; a mismatch is an error.
type File struct {
	base string
}

// NewFile opens (creating if absent) a file-backed store rooted at
// <base>/store.
func NewFile(base string) (*File, error) {
	dir := filepath.Join(base, "store")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &File{base: base}, nil
}

func (s *File) path(hash string) string {
	if len(hash) < 2 {
		return filepath.Join(s.base, "store", hash)
	}
	return filepath.Join(s.base, "store", hash[:2], hash[2:])
}

func (s *File) Put(v value.Value) (string, error) {
	h := value.Hash(v)
	p := s.path(h)
	if _, err := os.Stat(p); err == nil {
		return h, nil
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	data, err := json.Marshal(value.ToAny(v))
	if err != nil {
		return "", err
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	return h, os.Rename(tmp, p)
}

func (s *File) Get(hash string) (value.Value, error) {
	data, err := os.ReadFile(s.path(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(hash)
		}
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}
	v := value.FromAny(decoded)
	if value.Hash(v) != hash {
		return nil, fmt.Errorf("store: object %s does not match its hash", hash)
	}
	return v, nil
}

func (s *File) Has(hash string) (bool, error) {
	_, err := os.Stat(s.path(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
