package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the leading 12 hex characters
func (h Hash) Short() string {
	if len(h) > 12 {
		return string(h[:12])
	}
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// HashRecords fingerprints tabular records. Cells are separated by the unit
// separator and rows by the record separator so that ("a,b") and ("a","b")
// hash differently.
func HashRecords(records [][]string) Hash {
	var b strings.Builder
	for _, rec := range records {
		for i, cell := range rec {
			if i > 0 {
				b.WriteByte(0x1f)
			}
			b.WriteString(cell)
		}
		b.WriteByte(0x1e)
	}
	return NewHash([]byte(b.String()))
}
