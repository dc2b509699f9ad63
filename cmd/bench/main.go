// Command bench runs a synthetic block workload against the buffer cache
// and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/IvanBrykalov/bufcache/bcache"
	"github.com/IvanBrykalov/bufcache/device"
	pmet "github.com/IvanBrykalov/bufcache/metrics/prom"
	"github.com/IvanBrykalov/bufcache/policy/clock"
)

// benchMetrics counts cache signals locally for the final report and
// forwards them to the Prometheus adapter.
type benchMetrics struct {
	prom *pmet.Adapter

	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
	dreads atomic.Uint64
	dwrite atomic.Uint64
}

func (m *benchMetrics) Hit()       { m.hits.Add(1); m.prom.Hit() }
func (m *benchMetrics) Miss()      { m.misses.Add(1); m.prom.Miss() }
func (m *benchMetrics) Evict()     { m.evicts.Add(1); m.prom.Evict() }
func (m *benchMetrics) DiskRead()  { m.dreads.Add(1); m.prom.DiskRead() }
func (m *benchMetrics) DiskWrite() { m.dwrite.Add(1); m.prom.DiskWrite() }
func (m *benchMetrics) Live(n int) { m.prom.Live(n) }

func main() {
	// ---- Flags ----
	var (
		slots     = flag.Int("slots", 1024, "buffer pool size (slots)")
		shards    = flag.Int("shards", 0, "number of index shards (0=auto)")
		blockSize = flag.Int("bs", 4096, "block size in bytes")
		policy    = flag.String("policy", "lru", "eviction policy: lru | clock")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		blocks = flag.Int("blocks", 100_000, "block-number space size")
		zipfS  = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV  = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed   = flag.Int64("seed", time.Now().UnixNano(), "random seed")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// Each worker holds at most one buffer; keep the pool at least that
	// large so the run never dies of pool exhaustion.
	if *workers > *slots {
		log.Fatalf("workers (%d) must not exceed slots (%d)", *workers, *slots)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := &benchMetrics{prom: pmet.New(nil, "bufcache", "bench", nil)}
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build cache over a ramdisk ----
	opt := bcache.Options{
		Slots:     *slots,
		Shards:    *shards,
		BlockSize: *blockSize,
		Device:    device.NewMem(*blockSize),
		Metrics:   metrics,
	}
	switch *policy {
	case "lru":
		// nil => exact LRU by default
	case "clock":
		opt.Policy = clock.New()
	default:
		log.Fatalf("unknown policy: %q (use lru or clock)", *policy)
	}
	c := bcache.New(opt)
	defer func() { _ = c.Close() }()

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	blocksMax := uint64(*blocks - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	var reads, writes, total, fails uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, blocksMax)

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				blockno := localZipf.Uint64()
				atomic.AddUint64(&total, 1)
				if int(localR.Int31n(100)) < readPctVal {
					atomic.AddUint64(&reads, 1)
					b, err := c.Read(0, blockno)
					if err != nil {
						atomic.AddUint64(&fails, 1)
						continue
					}
					_ = b.Data()[0]
					c.Release(b)
				} else {
					atomic.AddUint64(&writes, 1)
					b, err := c.Acquire(0, blockno)
					if err != nil {
						atomic.AddUint64(&fails, 1)
						continue
					}
					b.Data()[0] = byte(id)
					if err := c.Write(b); err != nil {
						atomic.AddUint64(&fails, 1)
					}
					c.Release(b)
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	hitsN := metrics.hits.Load()
	missesN := metrics.misses.Load()

	hitRate := 0.0
	if hitsN+missesN > 0 {
		hitRate = float64(hitsN) / float64(hitsN+missesN) * 100
	}

	fmt.Printf("policy=%s slots=%d shards=%d bs=%d workers=%d blocks=%d dur=%v seed=%d\n",
		*policy, *slots, *shards, *blockSize, workersN, *blocks, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d  fails=%d\n",
		ops, float64(ops)/elapsed.Seconds(), atomic.LoadUint64(&reads), atomic.LoadUint64(&writes),
		atomic.LoadUint64(&fails))
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d  disk-reads=%d  disk-writes=%d\n",
		hitsN, missesN, hitRate, metrics.evicts.Load(), metrics.dreads.Load(), metrics.dwrite.Load())
	fmt.Printf("Len()=%d\n", c.Len())
}
