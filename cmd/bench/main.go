// Command bench runs a synthetic Zipf workload against an eviction policy
// and exposes optional pprof/Prometheus endpoints.
//
// Every flag can also be set through the environment (EVICTCACHE_POLICY,
// EVICTCACHE_CAPACITY, ...) or a config file passed with --config.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "EVICTCACHE"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           "bench",
		Short:         "Run a synthetic workload against an evictcache policy.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := initLog(cfg.Verbose)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, log)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	f := rootCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	f.String("policy", "lru", "eviction policy: lru | lfu | lruk | lruk-lfu")
	f.Int("capacity", 100_000, "cache capacity (entries)")
	f.Int("shards", 0, "number of shards (0=auto, 1=unsharded)")
	f.Int("k", 2, "LRU-K promotion threshold")
	f.Int("history", 0, "LRU-K history capacity (0 = 4 x capacity)")
	f.Int("max-avg-freq", 0, "LFU aging threshold (0 = default)")

	f.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
	f.Duration("duration", 10*time.Second, "benchmark duration")
	f.Int("reads", 80, "read percentage [0..100]")
	f.Int("keys", 1_000_000, "keyspace size")
	f.Float64("zipf-s", 1.1, "Zipf s > 1 (skew)")
	f.Float64("zipf-v", 1.0, "Zipf v >= 1")
	f.Int64("seed", time.Now().UnixNano(), "random seed")
	f.Int("preload", 0, "preload entries (0 = capacity/2)")

	f.String("metrics-addr", "", "serve Prometheus metrics at addr (e.g. :8080); empty = disabled")
	f.String("pprof-addr", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	f.Bool("verbose", false, "enable debug logging")

	if err := viper.BindPFlags(f); err != nil {
		panic(err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
			os.Exit(1)
		}
	}
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
