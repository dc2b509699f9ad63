package bcache

import (
	"sync/atomic"

	"github.com/IvanBrykalov/bufcache/internal/sleeplock"
)

// Buf is one buffer slot: a block-sized payload plus the cache metadata
// that tracks which block it holds. Slots are allocated once at startup
// and only ever relabelled with a new block identity; Acquire hands out
// a Buf with its exclusive lock already held.
type Buf struct {
	// Block identity. Stale after the last reference is dropped, until
	// the slot is relabelled by the next admission. Writable only during
	// admission, under the pool lock plus the affected shard locks.
	dev     uint32
	blockno uint64

	// valid reports whether data reflects the device's contents for the
	// current identity. Cleared on admission, set by EnsureValid; only
	// the exclusive-lock holder may touch it.
	valid bool

	// bound records that the slot has carried an identity at least once,
	// so the first admissions into a fresh pool don't count as evictions.
	bound bool

	data []byte
	idx  int // position in the pool, fixed for the slot's lifetime

	// refcnt counts live holders including pins. Modified under the
	// slot's shard lock; read atomically by the victim scan, which runs
	// under the pool lock only.
	refcnt atomic.Int32

	// lastUse is the use-order tick refreshed on every hit and
	// admission; the eviction policy ranks candidates by it.
	lastUse atomic.Uint64

	lk sleeplock.Lock
}

// Data returns the block payload. Only the exclusive-lock holder may
// read or mutate it.
func (b *Buf) Data() []byte { return b.data }

// Dev returns the device id of the cached block.
func (b *Buf) Dev() uint32 { return b.dev }

// Blockno returns the block number of the cached block.
func (b *Buf) Blockno() uint64 { return b.blockno }

// Valid reports whether the payload currently reflects the on-device
// contents. Meaningful only while holding the buffer.
func (b *Buf) Valid() bool { return b.valid }
