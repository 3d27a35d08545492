package util

import (
	"hash/maphash"

	"github.com/spaolacci/murmur3"
)

// Murmur3String hashes s with 64-bit murmur3 without copying it.
func Murmur3String(s string) uint64 {
	return murmur3.Sum64(StringToByte(s))
}

// Murmur3Bytes hashes b with 64-bit murmur3.
func Murmur3Bytes(b []byte) uint64 {
	return murmur3.Sum64(b)
}

// ComparableHasher returns a hash function for any comparable type.
// NOTE: The seed is random and changes for every call (and every process), so the
// result must never be persisted or compared across hashers.
func ComparableHasher[K comparable]() func(K) uint64 {
	seed := maphash.MakeSeed()
	return func(key K) uint64 {
		return maphash.Comparable(seed, key)
	}
}
