// Package mtcrypto implements the cryptographic primitives the
// protocol's message codec and key-exchange state machine depend on:
// CRC-32, SHA-1/SHA-256 digesting, AES-256-IGE, RSA "PQ-inner-data"
// wrapping, and pq factorization. Arbitrary-precision arithmetic comes
// from the standard library's math/big, the external collaborator
// spec.md treats as outside the core's scope.
package mtcrypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"hash/crc32"
)

// CRC32 accumulates the IEEE CRC-32 checksum over any number of slices
// in sequence, equivalent to hashing their concatenation.
func CRC32(parts ...[]byte) uint32 {
	h := crc32.NewIEEE()
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum32()
}

// SHA1 digests the concatenation of parts.
func SHA1(parts ...[]byte) [20]byte {
	h := sha1.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SHA256 digests the concatenation of parts.
func SHA256(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
