package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// sigHexLen is the digest prefix kept as a signature: 16 hex chars, 64 bits,
// enough for practical uniqueness over observed action sequences.
const sigHexLen = 16

// Signature returns a deterministic, order-sensitive digest of the given
// ordered identifiers. It is the dedup and lookup key for behaviorally
// identical sequences: equal ordered inputs always hash equal, reordering
// changes the digest. Each identifier is length-prefixed before hashing so
// adjacent ids cannot run together.
func Signature(ids []string) string {
	h := sha256.New()
	for _, id := range ids {
		fmt.Fprintf(h, "%d:%s", len(id), id)
	}
	return hex.EncodeToString(h.Sum(nil))[:sigHexLen]
}
