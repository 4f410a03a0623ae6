// Package types defines the primitive types shared by the Klingnet SDK.
package types

import "encoding/hex"

// HashSize is the length of a hash in bytes.
const HashSize = 32

// Hash is a BLAKE3-256 digest. Transaction ids and section commitments are
// hashes.
type Hash [HashSize]byte

// Epoch is a chain epoch number.
type Epoch uint64

// String returns the hex form, which is also the transaction id format.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash.
func (h Hash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}
