package bcache

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/IvanBrykalov/bufcache/device"
)

// benchmarkMix exercises a read/write block mix against a warm cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines).
// The hot block set fits in the pool, so the workload measures the fast
// path plus the exclusive-lock handoff rather than device I/O.
func benchmarkMix(b *testing.B, readsPct int) {
	const (
		slots     = 4096
		blockSize = 512
	)
	c := New(Options{
		Slots:     slots,
		BlockSize: blockSize,
		Device:    device.NewMem(blockSize),
	})
	b.Cleanup(func() { _ = c.Close() })

	// Warm the pool so the measured loop is mostly hits.
	for n := uint64(0); n < slots/2; n++ {
		buf, err := c.Read(0, n)
		if err != nil {
			b.Fatal(err)
		}
		c.Release(buf)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	blockMask := uint64(slots/2 - 1) // hot set, power of two for fast &-mask

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := uint64(0)
		for pb.Next() {
			blockno := i & blockMask
			if int(r.Int31n(100)) < readsPct {
				buf, err := c.Read(0, blockno)
				if err != nil {
					b.Fatal(err)
				}
				c.Release(buf)
			} else {
				buf, err := c.Acquire(0, blockno)
				if err != nil {
					b.Fatal(err)
				}
				buf.Data()[0] = byte(i)
				c.Release(buf)
			}
			i++
		}
	})
}

func BenchmarkCache_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkCache_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// BenchmarkAcquireRelease_Hit measures the pure fast path: one resident
// block per worker stride, no device I/O, no contention on the pool lock.
func BenchmarkAcquireRelease_Hit(b *testing.B) {
	const slots = 1024
	c := New(Options{Slots: slots, BlockSize: 64})
	b.Cleanup(func() { _ = c.Close() })

	b.ReportAllocs()
	b.ResetTimer()

	var stride atomic.Uint64
	b.RunParallel(func(pb *testing.PB) {
		// Distinct block per worker avoids exclusive-lock contention,
		// isolating the shard lookup cost.
		blockno := stride.Add(1)
		for pb.Next() {
			buf, err := c.Acquire(0, blockno)
			if err != nil {
				b.Fatal(err)
			}
			c.Release(buf)
		}
	})
}
