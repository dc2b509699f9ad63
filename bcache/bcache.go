package bcache

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/IvanBrykalov/bufcache/internal/util"
	"github.com/IvanBrykalov/bufcache/policy"
	"github.com/IvanBrykalov/bufcache/policy/lru"
)

// cache ties the shard index and the buffer pool together.
//
// Lock order, outermost first: pool lock, then shard locks (ascending
// index when two are held), and only after every one of those is
// released, a buffer's exclusive lock. The exclusive lock is the only
// lock ever held across device I/O.
type cache struct {
	shards []*shard
	slots  []*Buf

	// pmu is the coarse pool lock. Held only for victim selection and
	// relabelling on the miss path; never across I/O and never while
	// blocking on a buffer's exclusive lock.
	pmu    sync.Mutex
	picker policy.Picker

	ticks  atomic.Uint64          // use-order clock
	live   util.PaddedAtomicInt64 // slots with refcnt > 0
	closed atomic.Bool

	opt Options
}

// New constructs a cache with the provided Options. The whole pool is
// allocated up front; no slot is ever allocated or freed afterwards,
// only relabelled.
func New(opt Options) Cache {
	if opt.Slots <= 0 {
		panic("bcache: Slots must be > 0")
	}
	if opt.BlockSize <= 0 {
		opt.BlockSize = DefaultBlockSize
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New()
	}

	sh := opt.Shards
	if sh <= 0 {
		sh = util.ReasonableShardCount()
	} else {
		sh = int(util.NextPow2(uint64(sh)))
	}
	opt.Shards = sh

	c := &cache{
		shards: make([]*shard, sh),
		slots:  make([]*Buf, opt.Slots),
		opt:    opt,
	}
	for i := range c.shards {
		c.shards[i] = &shard{}
	}
	for i := range c.slots {
		c.slots[i] = &Buf{idx: i, data: make([]byte, opt.BlockSize)}
	}
	c.picker = opt.Policy.New(opt.Slots)
	return c
}

// ---- Cache implementation ----

// Acquire looks the block up in its shard; on a miss it falls through to
// the admission path. The fast path touches one shard lock only and
// never the pool lock.
func (c *cache) Acquire(dev uint32, blockno uint64) (*Buf, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	si := c.shardFor(dev, blockno)
	s := c.shards[si]

	s.mu.Lock()
	if b := s.lookup(c.slots, dev, blockno); b != nil {
		b.refcnt.Add(1)
		b.lastUse.Store(c.tick())
		s.mu.Unlock()
		c.opt.Metrics.Hit()
		b.lk.Lock()
		return b, nil
	}
	s.mu.Unlock()

	return c.admit(dev, blockno, si)
}

// Read returns a buffer whose payload reflects the device contents.
func (c *cache) Read(dev uint32, blockno uint64) (*Buf, error) {
	b, err := c.Acquire(dev, blockno)
	if err != nil {
		return nil, err
	}
	if err := c.EnsureValid(b); err != nil {
		c.Release(b)
		return nil, err
	}
	return b, nil
}

// admit recycles a zero-ref slot for (dev, blockno), shard si.
//
// Between the failed fast-path scan and taking the pool lock, a
// concurrent admission for the same block can win the race; without the
// re-check below the pool would end up with two live slots bound to one
// block. Re-checking under the pool lock closes the window, since every
// admission serializes here.
func (c *cache) admit(dev uint32, blockno uint64, si int) (*Buf, error) {
	c.pmu.Lock()

	s := c.shards[si]
	s.mu.Lock()
	if b := s.lookup(c.slots, dev, blockno); b != nil {
		b.refcnt.Add(1)
		b.lastUse.Store(c.tick())
		s.mu.Unlock()
		c.pmu.Unlock()
		c.opt.Metrics.Hit()
		b.lk.Lock()
		return b, nil
	}
	s.mu.Unlock()
	c.opt.Metrics.Miss()

	vi := c.picker.Victim(poolView{c})
	if vi < 0 {
		c.pmu.Unlock()
		return nil, fmt.Errorf("%w (%d slots, all referenced)", ErrNoBuffers, len(c.slots))
	}
	b := c.slots[vi]
	oi := c.shardFor(b.dev, b.blockno) // victim's old shard, from stale identity

	// Take the new and old shard locks in ascending index order. Two
	// concurrent admissions migrating between the same pair of shards
	// would deadlock under a new-then-old order.
	lo, hi := si, oi
	if lo > hi {
		lo, hi = hi, lo
	}
	c.shards[lo].mu.Lock()
	if hi != lo {
		c.shards[hi].mu.Lock()
	}

	c.shards[oi].remove(vi) // no-op today: zero-ref slots hold no membership
	wasBound, edev, eblk := b.bound, b.dev, b.blockno
	b.dev, b.blockno = dev, blockno
	b.valid = false
	b.bound = true
	b.refcnt.Store(1)
	b.lastUse.Store(c.tick())
	c.shards[si].insert(vi)

	if hi != lo {
		c.shards[hi].mu.Unlock()
	}
	c.shards[lo].mu.Unlock()

	if wasBound {
		c.opt.Metrics.Evict()
		if cb := c.opt.OnEvict; cb != nil {
			cb(edev, eblk)
		}
	}
	c.opt.Metrics.Live(int(c.live.Add(1)))
	c.pmu.Unlock()

	b.lk.Lock()
	return b, nil
}

// EnsureValid reads the block from the device unless the payload already
// reflects it.
func (c *cache) EnsureValid(b *Buf) error {
	if !b.lk.Held() {
		panic("bcache: EnsureValid on unlocked buffer")
	}
	if b.valid {
		return nil
	}
	if c.opt.Device == nil {
		return ErrNoDevice
	}
	if err := c.opt.Device.ReadBlock(b.dev, b.blockno, b.data); err != nil {
		return fmt.Errorf("bcache: read dev %d block %d: %w", b.dev, b.blockno, err)
	}
	b.valid = true
	c.opt.Metrics.DiskRead()
	return nil
}

// Write writes the payload through to the device. The valid flag is left
// alone: writes happen on payloads the caller has just populated.
func (c *cache) Write(b *Buf) error {
	if !b.lk.Held() {
		panic("bcache: Write on unlocked buffer")
	}
	if c.opt.Device == nil {
		return ErrNoDevice
	}
	if err := c.opt.Device.WriteBlock(b.dev, b.blockno, b.data); err != nil {
		return fmt.Errorf("bcache: write dev %d block %d: %w", b.dev, b.blockno, err)
	}
	c.opt.Metrics.DiskWrite()
	return nil
}

// Release unlocks first so waiters can proceed while the reference
// bookkeeping completes under the shard lock.
func (c *cache) Release(b *Buf) {
	if !b.lk.Held() {
		panic("bcache: Release of unlocked buffer")
	}
	b.lk.Unlock()
	c.unref(b)
}

// Pin raises the reference count without touching the exclusive lock.
func (c *cache) Pin(b *Buf) {
	s := c.shards[c.shardFor(b.dev, b.blockno)]
	s.mu.Lock()
	if b.refcnt.Load() == 0 {
		s.mu.Unlock()
		panic("bcache: Pin of unreferenced buffer")
	}
	b.refcnt.Add(1)
	s.mu.Unlock()
}

// Unpin drops a reference taken by Pin.
func (c *cache) Unpin(b *Buf) {
	c.unref(b)
}

// Len returns the number of slots with live references.
func (c *cache) Len() int {
	return int(c.live.Load())
}

// Close marks the cache as closed. Buffers already held stay usable so
// in-flight work can finish and release cleanly.
func (c *cache) Close() error {
	c.closed.Store(true)
	return nil
}

// ---- internals ----

// unref drops one reference under the buffer's shard lock. When the
// count reaches zero the slot leaves its shard, which is the moment it
// becomes an eviction candidate; there is no separate free list, the
// victim scan finds it by its zero refcount.
func (c *cache) unref(b *Buf) {
	s := c.shards[c.shardFor(b.dev, b.blockno)]
	s.mu.Lock()
	n := b.refcnt.Add(-1)
	if n < 0 {
		s.mu.Unlock()
		panic("bcache: buffer reference count underflow")
	}
	if n == 0 {
		s.remove(b.idx)
		c.opt.Metrics.Live(int(c.live.Add(-1)))
	}
	s.mu.Unlock()
}

func (c *cache) shardFor(dev uint32, blockno uint64) int {
	return util.ShardIndex(util.BlockHash(dev, blockno), len(c.shards))
}

func (c *cache) tick() uint64 {
	return c.ticks.Add(1)
}

// poolView adapts the pool to the read-only view pickers consume.
// All methods are called with c.pmu held.
type poolView struct{ c *cache }

func (v poolView) Len() int             { return len(v.c.slots) }
func (v poolView) InUse(i int) bool     { return v.c.slots[i].refcnt.Load() > 0 }
func (v poolView) LastUse(i int) uint64 { return v.c.slots[i].lastUse.Load() }

var _ policy.Pool = poolView{}
