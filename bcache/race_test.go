package bcache

import (
	"math/rand"
	"runtime"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/bufcache/device"
)

// A mixed workload of concurrent reads, writes and pin/unpin cycles over
// a block space larger than the pool, so admissions, evictions and
// cross-shard relabelling churn constantly. Should pass under `-race`
// without detector reports.
func TestRace_MixedWorkload(t *testing.T) {
	workers := 4 * runtime.GOMAXPROCS(0)

	// Each worker holds at most one buffer at a time, so a pool of
	// 2*workers can never be exhausted by this workload.
	slots := 2 * workers
	blockSpace := uint64(8 * slots)

	dev := device.NewMem(128)
	c := New(Options{
		Slots:     slots,
		Shards:    16,
		BlockSize: 128,
		Device:    dev,
	})
	t.Cleanup(func() { _ = c.Close() })

	deadline := time.Now().Add(2 * time.Second)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		id := w
		g.Go(func() error {
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				blockno := uint64(r.Intn(int(blockSpace)))
				switch r.Intn(100) {
				case 0, 1, 2, 3, 4, 5, 6, 7, 8, 9: // ~10% — pin/unpin dance
					b, err := c.Acquire(0, blockno)
					if err != nil {
						return err
					}
					c.Pin(b)
					c.Release(b)
					c.Unpin(b)
				case 10, 11, 12, 13, 14, 15, 16, 17, 18, 19,
					20, 21, 22, 23, 24, 25, 26, 27, 28, 29: // ~20% — write path
					b, err := c.Acquire(0, blockno)
					if err != nil {
						return err
					}
					b.Data()[0] = byte(id)
					if err := c.Write(b); err != nil {
						c.Release(b)
						return err
					}
					c.Release(b)
				default: // ~70% — read path
					b, err := c.Read(0, blockno)
					if err != nil {
						return err
					}
					_ = b.Data()[0]
					c.Release(b)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if n := c.Len(); n != 0 {
		t.Fatalf("Len after workload = %d, want 0", n)
	}
}

// Many goroutines hammering the same block exercises the fast path, the
// admission re-check, and the exclusive-lock handoff for one identity.
func TestRace_SingleBlockContention(t *testing.T) {
	c := New(Options{Slots: 4, Shards: 4, BlockSize: 64})
	t.Cleanup(func() { _ = c.Close() })

	const goroutines = 50
	start := make(chan struct{})

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		g.Go(func() error {
			<-start
			for n := 0; n < 100; n++ {
				b, err := c.Acquire(7, 42)
				if err != nil {
					return err
				}
				b.Data()[0]++
				c.Release(b)
			}
			return nil
		})
	}
	close(start)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
