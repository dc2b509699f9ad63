package bcache

import (
	"github.com/IvanBrykalov/bufcache/device"
	"github.com/IvanBrykalov/bufcache/policy"
)

// DefaultBlockSize is the payload size used when Options.BlockSize is
// left zero. 4 KiB matches the common filesystem block size.
const DefaultBlockSize = 4096

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	// Hit and Miss record the outcome of the indexed lookup in Acquire.
	Hit()
	Miss()
	// Evict records a slot losing its previous block to a new admission.
	Evict()
	// DiskRead and DiskWrite record device transfers issued by the cache.
	DiskRead()
	DiskWrite()
	// Live reports the number of slots with live references after a
	// reference-count transition through zero.
	Live(n int)
}

// Options configures the cache. Defaults are applied in New:
//   - Shards <= 0    => auto (rounded up to a power of two)
//   - BlockSize <= 0 => DefaultBlockSize
//   - nil Policy     => exact LRU
//   - nil Metrics    => NoopMetrics
type Options struct {
	// Slots is the fixed number of buffer slots in the pool. Required.
	// The pool must be at least as large as the peak number of
	// concurrently held blocks, or Acquire returns ErrNoBuffers.
	Slots int

	// Shards is the number of index buckets, each with its own lock.
	// Rounded up to a power of two; 0 picks a CPU-based default.
	Shards int

	// BlockSize is the payload size of every slot, in bytes.
	BlockSize int

	// Device performs block I/O for EnsureValid and Write. May be nil
	// when the cache is exercised without a backend; EnsureValid and
	// Write then return ErrNoDevice.
	Device device.BlockDevice

	// Policy selects eviction victims on the miss path; nil => policy/lru.
	Policy policy.Policy

	// OnEvict is called with the displaced block's identity when a slot
	// is relabelled. Runs under the pool lock; keep it lightweight.
	OnEvict func(dev uint32, blockno uint64)

	// Metrics receives observability signals; nil => NoopMetrics.
	Metrics Metrics
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is safe for concurrent use and intended as the default when
// no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit()       {}
func (NoopMetrics) Miss()      {}
func (NoopMetrics) Evict()     {}
func (NoopMetrics) DiskRead()  {}
func (NoopMetrics) DiskWrite() {}
func (NoopMetrics) Live(int)   {}

// Ensure NoopMetrics implements the Metrics interface at compile time.
var _ Metrics = NoopMetrics{}
