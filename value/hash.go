package value

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the lowercase hex SHA-256 of v's canonical encoding, the
// content address used by the store package. crypto/sha256 is the
// idiomatic stdlib choice here: no repo in the retrieval pack reaches
// for a third-party hashing library for a plain content digest.
func Hash(v Value) string {
	sum := sha256.Sum256(Canonical(v))
	return hex.EncodeToString(sum[:])
}
