// Package bcache implements a fixed-pool, hash-sharded cache of storage
// block buffers with exclusive per-buffer access, in the mold of an OS
// kernel buffer cache.
//
// Design
//
//   - Pool: all buffer slots are allocated once at construction and only
//     ever relabelled with a new (device, block number) identity; nothing
//     is allocated or freed afterwards. For any block at most one slot in
//     the pool carries its identity with live references.
//
//   - Index: slots with live references are tracked by a fixed number of
//     shards, each a mutex plus a small vector of pool indices. Lookups
//     for blocks in different shards never contend. A slot leaves its
//     shard the instant its last reference is dropped, which keeps
//     zero-ref slots invisible to lookups and makes the eviction scan
//     race-free.
//
//   - Eviction: on a miss, a coarse pool lock serializes victim
//     selection. The target shard is re-checked under the pool lock
//     first, so two racing misses for the same block cannot admit it
//     twice. Victim choice is pluggable via the policy package; the
//     default is exact LRU by use tick, policy/clock offers a
//     second-chance sweep for large pools.
//
//   - Exclusive access: each slot carries a sleeplock that Acquire hands
//     to the caller. It is the only lock held across device I/O, and it
//     is always acquired after every shard/pool lock has been released.
//     Buffers pass to callers locked; EnsureValid, Write and Release
//     panic when called without holding the buffer.
//
//   - Pinning: Pin/Unpin adjust the reference count without the
//     exclusive lock, letting a higher layer keep a block resident
//     across unlocked intervals.
//
// Basic usage
//
//	dev := device.NewMem(4096)
//	c := bcache.New(bcache.Options{Slots: 64, Device: dev})
//	defer c.Close()
//
//	b, err := c.Read(0, 37) // locked buffer, payload valid
//	if err != nil { ... }
//	copy(b.Data(), payload)
//	if err := c.Write(b); err != nil { ... }
//	c.Release(b)
//
// Observability
//
// Options.Metrics receives hit/miss/evict and disk-transfer signals;
// NoopMetrics is the default and metrics/prom provides a Prometheus
// adapter.
package bcache
