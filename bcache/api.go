package bcache

// Cache is a fixed pool of block-sized buffers indexed by (device, block
// number). It serves two jobs at once: it cuts device I/O by keeping
// recently used blocks resident, and it is the serialization point
// through which all higher layers read or mutate a block — holders of a
// buffer have it exclusively until they Release it.
//
// All methods are safe for concurrent use by multiple goroutines.
//
// Lock discipline: EnsureValid, Write and Release require the caller to
// hold the buffer (i.e. to have obtained it from Acquire or Read and not
// yet released it). Violations are caller bugs and panic rather than
// corrupt cache state.
type Cache interface {
	// Acquire returns the buffer bound to (dev, blockno), admitting it
	// into the pool first if necessary, with the buffer's exclusive lock
	// held and its reference count raised. The payload is only known to
	// match the device after EnsureValid. Blocks until the buffer is
	// exclusively owned; fails with ErrNoBuffers when no slot can be
	// evicted, or ErrClosed after Close.
	Acquire(dev uint32, blockno uint64) (*Buf, error)

	// Read is Acquire followed by EnsureValid: the returned buffer's
	// payload reflects the device contents. On an I/O failure the buffer
	// is released before the error is returned; use Acquire plus
	// EnsureValid directly to keep the buffer across a retry.
	Read(dev uint32, blockno uint64) (*Buf, error)

	// EnsureValid populates the payload from the device if it does not
	// already reflect the device contents. Requires the buffer to be
	// held. Device errors are returned as-is (wrapped with context) and
	// may be retried by calling EnsureValid again.
	EnsureValid(b *Buf) error

	// Write synchronously writes the payload to the device. Requires the
	// buffer to be held.
	Write(b *Buf) error

	// Release unlocks the buffer and drops the reference taken by
	// Acquire. With the last reference gone the slot becomes an eviction
	// candidate; do not touch the buffer afterwards.
	Release(b *Buf)

	// Pin takes an extra reference without touching the exclusive lock,
	// keeping the slot immune from eviction across unlocked intervals.
	// The caller must currently hold a reference (lock not required).
	Pin(b *Buf)

	// Unpin drops a reference taken by Pin.
	Unpin(b *Buf)

	// Len returns the number of slots with live references.
	Len() int

	// Close marks the cache closed; subsequent Acquire/Read calls fail
	// with ErrClosed. Buffers already held remain usable until released.
	Close() error
}
