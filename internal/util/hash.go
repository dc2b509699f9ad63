// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

const (
	fnvOffset64 = 1469598103934665603
	fnvPrime64  = 1099511628211
)

// BlockHash hashes a (device, block number) identity with 64-bit FNV-1a
// over the little-endian bytes of both fields, without allocating.
// FNV spreads dense sequential block numbers well enough for the shard
// mask; a keyed hash would only add cost on a path that runs under a lock.
func BlockHash(dev uint32, blockno uint64) uint64 {
	h := uint64(fnvOffset64)
	d := uint64(dev)
	for i := 0; i < 4; i++ {
		h ^= uint64(byte(d))
		h *= fnvPrime64
		d >>= 8
	}
	for i := 0; i < 8; i++ {
		h ^= uint64(byte(blockno))
		h *= fnvPrime64
		blockno >>= 8
	}
	return h
}
