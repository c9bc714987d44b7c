package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/pprof"
	"strconv"
	"sync/atomic"
	"time"

	"emperror.dev/errors"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/evictcache/cache"
	pmet "github.com/IvanBrykalov/evictcache/metrics/prom"
	"github.com/IvanBrykalov/evictcache/policy"
)

// counters are shared by all workers; each field is touched atomically.
type counters struct {
	reads, writes, hits, misses atomic.Uint64
}

func run(ctx context.Context, cfg config, log logr.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := pmet.New(reg, "evictcache", "bench", prometheus.Labels{"policy": string(cfg.Policy)})

	c, err := buildCache(cfg, metrics, log)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	var servers []*http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second})
	}
	if cfg.PprofAddr != "" {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		servers = append(servers, &http.Server{Addr: cfg.PprofAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second})
	}
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("serving", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.WrapWithDetails(err, "http server failed", "addr", srv.Addr)
			}
			return nil
		})
	}

	preload(c, cfg.Preload)
	log.Info("starting workload",
		"policy", cfg.Policy, "capacity", cfg.Capacity, "shards", cfg.Shards,
		"workers", cfg.Workers, "duration", cfg.Duration.String(), "seed", cfg.Seed)

	var cnt counters
	loadCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	start := time.Now()
	var workers errgroup.Group
	for w := 0; w < cfg.Workers; w++ {
		workers.Go(func() error {
			work(loadCtx, c, cfg, int64(w), &cnt)
			return nil
		})
	}
	_ = workers.Wait()
	elapsed := time.Since(start)

	report(cfg, c, &cnt, elapsed)

	// Stop the HTTP endpoints once the workload is done.
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(err, "shutdown failed", "addr", srv.Addr)
		}
	}
	return g.Wait()
}

func buildCache(cfg config, m cache.Metrics, log logr.Logger) (cache.Cache[string, string], error) {
	newPolicy := func(capacity int) (cache.Cache[string, string], error) {
		return policy.Build(cfg.Policy, cfg.Policies, cache.Options[string, string]{
			Capacity: capacity,
			Metrics:  m,
			Logger:   log,
		})
	}
	if cfg.Shards == 1 {
		return newPolicy(cfg.Capacity)
	}

	// Build only fails for unknown kinds, so the first shard decides.
	var buildErr error
	s := cache.NewSharded(cfg.Shards, cfg.Capacity, func(n int) cache.Cache[string, string] {
		c, err := newPolicy(n)
		if err != nil && buildErr == nil {
			buildErr = err
		}
		return c
	})
	if buildErr != nil {
		return nil, buildErr
	}
	return s, nil
}

// preload writes n keys, each twice, so LRU-K admits them as well.
func preload(c cache.Cache[string, string], n int) {
	for i := 0; i < n; i++ {
		k := "k:" + strconv.Itoa(i)
		c.Put(k, "v"+strconv.Itoa(i))
		c.Put(k, "v"+strconv.Itoa(i))
	}
}

// work issues Zipf-distributed reads and writes until ctx ends. Each worker
// owns its RNG; rand.Rand is not goroutine-safe.
func work(ctx context.Context, c cache.Cache[string, string], cfg config, id int64, cnt *counters) {
	r := rand.New(rand.NewSource(cfg.Seed + id*9973))
	zipf := rand.NewZipf(r, cfg.ZipfS, cfg.ZipfV, uint64(cfg.Keys-1))
	key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

	for ctx.Err() == nil {
		if r.Intn(100) < cfg.ReadPct {
			cnt.reads.Add(1)
			if _, ok := c.Get(key()); ok {
				cnt.hits.Add(1)
			} else {
				cnt.misses.Add(1)
			}
			continue
		}
		cnt.writes.Add(1)
		c.Put(key(), "v"+strconv.Itoa(r.Int()))
	}
}

func report(cfg config, c cache.Cache[string, string], cnt *counters, elapsed time.Duration) {
	reads, writes := cnt.reads.Load(), cnt.writes.Load()
	hits, misses := cnt.hits.Load(), cnt.misses.Load()
	ops := reads + writes

	hitRate := 0.0
	if reads > 0 {
		hitRate = float64(hits) / float64(reads) * 100
	}
	st := c.Stats()

	fmt.Printf("policy=%s cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.Policy, cfg.Capacity, cfg.Shards, cfg.Workers, cfg.Keys, elapsed, cfg.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads, writes)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hits, misses, hitRate)
	fmt.Printf("evictions=%d  decays=%d  promotions=%d\n", st.Evictions, st.Decays, st.Promotions)
	fmt.Printf("Len()=%d Cap()=%d\n", c.Len(), c.Cap())
}
