package main

import (
	"time"

	"emperror.dev/errors"
	"github.com/spf13/viper"

	"github.com/IvanBrykalov/evictcache/policy"
	"github.com/IvanBrykalov/evictcache/policy/lfu"
)

// ErrInvalidConfig is returned for flag values the workload cannot run with.
const ErrInvalidConfig = errors.Sentinel("bench: invalid configuration")

type config struct {
	Policy   policy.Kind
	Capacity int
	Shards   int
	Policies policy.Config

	Workers  int
	Duration time.Duration
	ReadPct  int
	Keys     int
	ZipfS    float64
	ZipfV    float64
	Seed     int64
	Preload  int

	MetricsAddr string
	PprofAddr   string
	Verbose     bool
}

// loadConfig reads the merged flag/env/file settings from viper.
func loadConfig() (config, error) {
	kind, err := policy.ParseKind(viper.GetString("policy"))
	if err != nil {
		return config{}, err
	}
	cfg := config{
		Policy:   kind,
		Capacity: viper.GetInt("capacity"),
		Shards:   viper.GetInt("shards"),
		Policies: policy.Config{
			Aging:           lfu.Aging{MaxAverageFreq: viper.GetInt("max-avg-freq")},
			HistoryCapacity: viper.GetInt("history"),
			K:               viper.GetInt("k"),
		},
		Workers:     viper.GetInt("workers"),
		Duration:    viper.GetDuration("duration"),
		ReadPct:     viper.GetInt("reads"),
		Keys:        viper.GetInt("keys"),
		ZipfS:       viper.GetFloat64("zipf-s"),
		ZipfV:       viper.GetFloat64("zipf-v"),
		Seed:        viper.GetInt64("seed"),
		Preload:     viper.GetInt("preload"),
		MetricsAddr: viper.GetString("metrics-addr"),
		PprofAddr:   viper.GetString("pprof-addr"),
		Verbose:     viper.GetBool("verbose"),
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func (c *config) validate() error {
	switch {
	case c.Capacity <= 0:
		return errors.WithDetails(ErrInvalidConfig, "capacity", c.Capacity)
	case c.Keys < 2:
		return errors.WithDetails(ErrInvalidConfig, "keys", c.Keys)
	case c.ReadPct < 0 || c.ReadPct > 100:
		return errors.WithDetails(ErrInvalidConfig, "reads", c.ReadPct)
	case c.ZipfS <= 1 || c.ZipfV < 1:
		return errors.WithDetails(ErrInvalidConfig, "zipf-s", c.ZipfS, "zipf-v", c.ZipfV)
	case c.Duration <= 0:
		return errors.WithDetails(ErrInvalidConfig, "duration", c.Duration.String())
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.Preload <= 0 {
		c.Preload = c.Capacity / 2
	}
	return nil
}
