// Package config loads typed settings from the environment (and an
// optional .env file) into one struct instead of ad hoc os.Getenv calls
// scattered through main. Uses github.com/joho/godotenv.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Config holds every environment-tunable knob the core and its
// composition root need.
type Config struct {
	DataDir string

	SchedulerTickInterval time.Duration
	SchedulerTickDeadline time.Duration
	SchedulerLeaseTTL     time.Duration
	SchedulerMaxFanout    int

	ProximityCacheTTL       time.Duration
	ProximityHysteresisWait time.Duration
	ProximityCacheIdleEvict time.Duration

	AntiCheatRatePerSecond float64
	AntiCheatBurst         int

	MetricsAddr string
}

// Default returns the production defaults for every tunable above.
func Default() Config {
	return Config{
		DataDir:                 "./pb_data",
		SchedulerTickInterval:   30 * time.Second,
		SchedulerTickDeadline:   25 * time.Second,
		SchedulerLeaseTTL:       60 * time.Second,
		SchedulerMaxFanout:      16,
		ProximityCacheTTL:       30 * time.Second,
		ProximityHysteresisWait: 60 * time.Second,
		ProximityCacheIdleEvict: 5 * time.Minute,
		AntiCheatRatePerSecond:  1,
		AntiCheatBurst:          5,
		MetricsAddr:             ":9090",
	}
}

// Load reads .env (if present, errors are logged and ignored — the
// teacher's repos treat a missing .env as normal in production) then
// overlays any matching environment variables onto Default().
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", "error", err)
	}

	cfg := Default()
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := envDuration("SCHEDULER_TICK_INTERVAL"); v > 0 {
		cfg.SchedulerTickInterval = v
	}
	if v := envDuration("SCHEDULER_TICK_DEADLINE"); v > 0 {
		cfg.SchedulerTickDeadline = v
	}
	if v := envDuration("SCHEDULER_LEASE_TTL"); v > 0 {
		cfg.SchedulerLeaseTTL = v
	}
	if v := envInt("SCHEDULER_MAX_FANOUT"); v > 0 {
		cfg.SchedulerMaxFanout = v
	}
	if v := envDuration("PROXIMITY_CACHE_TTL"); v > 0 {
		cfg.ProximityCacheTTL = v
	}
	if v := envFloat("ANTICHEAT_RATE_PER_SECOND"); v > 0 {
		cfg.AntiCheatRatePerSecond = v
	}
	if v := envInt("ANTICHEAT_BURST"); v > 0 {
		cfg.AntiCheatBurst = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	return cfg
}

func envDuration(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("invalid duration env var", "key", key, "value", v, "error", err)
		return 0
	}
	return d
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("invalid int env var", "key", key, "value", v, "error", err)
		return 0
	}
	return n
}

func envFloat(key string) float64 {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn("invalid float env var", "key", key, "value", v, "error", err)
		return 0
	}
	return f
}
